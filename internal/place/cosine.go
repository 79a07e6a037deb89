package place

import "math"

// cosineOp penalizes the bend of one 3-cell signal-path segment. With pin
// points S (start cell), M1/M2 (mid cell, two pins) and T (end cell), the
// hop vectors are v1 = M1 - S and v2 = T - M2, and the penalty is
//
//	lambda * (1 - cos(angle(v1, v2)))
//
// which is zero for a straight, same-direction path and maximal (2*lambda)
// for a full reversal.
type cosineOp struct {
	ps     *ParamSpace
	lambda float64

	startCell, midCell, endCell    int
	offSX, offSY                   float64
	offMAX, offMAY, offMBX, offMBY float64
	offTX, offTY                   float64

	partials Partials
}

// cosDegenerateEps guards against zero-length hop vectors; below this the
// angle is undefined and the segment contributes nothing.
const cosDegenerateEps = 1e-12

func (o *cosineOp) vectors() (v1x, v1y, v2x, v2y float64) {
	sx := o.ps.X(o.startCell) + o.offSX
	sy := o.ps.Y(o.startCell) + o.offSY
	m1x := o.ps.X(o.midCell) + o.offMAX
	m1y := o.ps.Y(o.midCell) + o.offMAY
	m2x := o.ps.X(o.midCell) + o.offMBX
	m2y := o.ps.Y(o.midCell) + o.offMBY
	tx := o.ps.X(o.endCell) + o.offTX
	ty := o.ps.Y(o.endCell) + o.offTY
	return m1x - sx, m1y - sy, tx - m2x, ty - m2y
}

func (o *cosineOp) Evaluate() float64 {
	v1x, v1y, v2x, v2y := o.vectors()
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 < cosDegenerateEps || n2 < cosDegenerateEps {
		return 0
	}
	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	return o.lambda * (1 - cos)
}

func (o *cosineOp) ComputePartials() *Partials {
	o.partials.reset()
	v1x, v1y, v2x, v2y := o.vectors()
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 < cosDegenerateEps || n2 < cosDegenerateEps {
		return &o.partials
	}
	dot := v1x*v2x + v1y*v2y
	cos := dot / (n1 * n2)

	// d cos/d v1 = v2/(|v1||v2|) - cos*v1/|v1|^2, symmetric for v2.
	dc1x := v2x/(n1*n2) - cos*v1x/(n1*n1)
	dc1y := v2y/(n1*n2) - cos*v1y/(n1*n1)
	dc2x := v1x/(n1*n2) - cos*v2x/(n2*n2)
	dc2y := v1y/(n1*n2) - cos*v2y/(n2*n2)

	// Penalty is lambda*(1-cos): chain through v1 = M1-S, v2 = T-M2.
	o.partials.add(o.ps.Idx(o.startCell, OrientH), o.lambda*dc1x)
	o.partials.add(o.ps.Idx(o.startCell, OrientV), o.lambda*dc1y)
	o.partials.add(o.ps.Idx(o.midCell, OrientH), o.lambda*(-dc1x+dc2x))
	o.partials.add(o.ps.Idx(o.midCell, OrientV), o.lambda*(-dc1y+dc2y))
	o.partials.add(o.ps.Idx(o.endCell, OrientH), o.lambda*-dc2x)
	o.partials.add(o.ps.Idx(o.endCell, OrientV), o.lambda*-dc2y)
	return &o.partials
}
