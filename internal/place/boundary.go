package place

// Box is an axis-aligned region in scaled optimization coordinates.
type Box struct {
	XLo, YLo, XHi, YHi float64
}

func (b Box) Width() float64  { return b.XHi - b.XLo }
func (b Box) Height() float64 { return b.YHi - b.YLo }

// boundaryOp penalizes one cell for protruding past the placement boundary.
// Each of the four edges contributes softplus(protrusion), where protrusion
// is the signed distance the cell's edge sticks out. Fully inside, all four
// protrusions are negative and the penalty saturates to exactly zero.
type boundaryOp struct {
	ps       *ParamSpace
	lambda   float64
	alpha    float64
	cell     int
	w, h     float64
	boundary *Box

	partials Partials
}

func newBoundaryOp(ps *ParamSpace, cell int, w, h float64, boundary *Box, alpha, lambda float64) *boundaryOp {
	return &boundaryOp{ps: ps, lambda: lambda, alpha: alpha, cell: cell, w: w, h: h, boundary: boundary}
}

// protrusions returns signed overhangs (left, right, bottom, top).
func (o *boundaryOp) protrusions() (l, r, b, t float64) {
	x := o.ps.X(o.cell)
	y := o.ps.Y(o.cell)
	l = o.boundary.XLo - x
	r = x + o.w - o.boundary.XHi
	b = o.boundary.YLo - y
	t = y + o.h - o.boundary.YHi
	return
}

func (o *boundaryOp) Evaluate() float64 {
	l, r, b, t := o.protrusions()
	return o.lambda * (softplus(l, o.alpha) + softplus(r, o.alpha) +
		softplus(b, o.alpha) + softplus(t, o.alpha))
}

func (o *boundaryOp) ComputePartials() *Partials {
	o.partials.reset()
	l, r, b, t := o.protrusions()
	// d l/dx = -1, d r/dx = +1, likewise for y.
	dx := o.lambda * (softplusGrad(r, o.alpha) - softplusGrad(l, o.alpha))
	dy := o.lambda * (softplusGrad(t, o.alpha) - softplusGrad(b, o.alpha))
	o.partials.add(o.ps.Idx(o.cell, OrientH), dx)
	o.partials.add(o.ps.Idx(o.cell, OrientV), dy)
	return &o.partials
}
