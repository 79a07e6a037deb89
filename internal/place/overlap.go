package place

// overlapOp penalizes the overlap area of one unordered cell pair. With
// half-width sums hw = (wI+wJ)/2 and hh = (hI+hJ)/2, the raw per-axis
// overlaps are
//
//	ox = hw - |xcI - xcJ|,  oy = hh - |ycI - ycJ|
//
// (xc, yc are box centers) and the penalty is
// lambda*softplus(ox)*softplus(oy), a differentiable stand-in for
// max(0,ox)*max(0,oy). It vanishes when the boxes are apart and grows with
// the overlap area.
type overlapOp struct {
	ps     *ParamSpace
	lambda float64
	alpha  float64

	cellI, cellJ       int
	halfWI, halfHI     float64
	halfWJ, halfHJ     float64
	sumHalfW, sumHalfH float64

	partials Partials
}

func newOverlapOp(ps *ParamSpace, cellI int, wI, hI float64, cellJ int, wJ, hJ float64, alpha, lambda float64) *overlapOp {
	return &overlapOp{
		ps:     ps,
		lambda: lambda,
		alpha:  alpha,
		cellI:  cellI, cellJ: cellJ,
		halfWI: wI / 2, halfHI: hI / 2,
		halfWJ: wJ / 2, halfHJ: hJ / 2,
		sumHalfW: (wI + wJ) / 2,
		sumHalfH: (hI + hJ) / 2,
	}
}

// raw returns the pre-smoothing per-axis overlaps and the signed
// center-to-center deltas (I minus J).
func (o *overlapOp) raw() (ox, oy, dx, dy float64) {
	dx = (o.ps.X(o.cellI) + o.halfWI) - (o.ps.X(o.cellJ) + o.halfWJ)
	dy = (o.ps.Y(o.cellI) + o.halfHI) - (o.ps.Y(o.cellJ) + o.halfHJ)
	ox = o.sumHalfW - abs(dx)
	oy = o.sumHalfH - abs(dy)
	return
}

func (o *overlapOp) Evaluate() float64 {
	ox, oy, _, _ := o.raw()
	return o.lambda * softplus(ox, o.alpha) * softplus(oy, o.alpha)
}

func (o *overlapOp) ComputePartials() *Partials {
	o.partials.reset()
	ox, oy, dx, dy := o.raw()

	sx := softplus(ox, o.alpha)
	sy := softplus(oy, o.alpha)
	// d ox / d xI = -sign(dx); sign(0) treated as 0 so exactly coincident
	// centers contribute no x-gradient rather than an arbitrary one.
	gx := o.lambda * softplusGrad(ox, o.alpha) * -sign(dx) * sy
	gy := o.lambda * sx * softplusGrad(oy, o.alpha) * -sign(dy)

	o.partials.add(o.ps.Idx(o.cellI, OrientH), gx)
	o.partials.add(o.ps.Idx(o.cellJ, OrientH), -gx)
	o.partials.add(o.ps.Idx(o.cellI, OrientV), gy)
	o.partials.add(o.ps.Idx(o.cellJ, OrientV), -gy)
	return &o.partials
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
