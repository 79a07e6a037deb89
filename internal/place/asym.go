package place

// asymOp penalizes deviation from mirror symmetry for one symmetry group.
// For a symmetric pair with common width w the mirrored placement satisfies
// xI + xJ + w = 2*axis and yI = yJ, so the penalty is
//
//	(xI + xJ + w - 2*axis)^2 + (yI - yJ)^2
//
// summed over pairs, plus (x + w/2 - axis)^2 per self-symmetric cell. Zero
// at perfect mirror symmetry about the group's axis variable.
type asymOp struct {
	ps     *ParamSpace
	lambda float64
	group  int

	pairA, pairB []int
	pairW        []float64
	selfCell     []int
	selfHalfW    []float64

	partials Partials
}

func newAsymOp(ps *ParamSpace, group int, lambda float64) *asymOp {
	return &asymOp{ps: ps, lambda: lambda, group: group}
}

func (o *asymOp) addSymPair(cellA, cellB int, width float64) {
	o.pairA = append(o.pairA, cellA)
	o.pairB = append(o.pairB, cellB)
	o.pairW = append(o.pairW, width)
}

func (o *asymOp) addSelfSym(cell int, width float64) {
	o.selfCell = append(o.selfCell, cell)
	o.selfHalfW = append(o.selfHalfW, width/2)
}

func (o *asymOp) Evaluate() float64 {
	axis := o.ps.Axis(o.group)
	var sum float64
	for k := range o.pairA {
		rx := o.ps.X(o.pairA[k]) + o.ps.X(o.pairB[k]) + o.pairW[k] - 2*axis
		ry := o.ps.Y(o.pairA[k]) - o.ps.Y(o.pairB[k])
		sum += rx*rx + ry*ry
	}
	for k := range o.selfCell {
		r := o.ps.X(o.selfCell[k]) + o.selfHalfW[k] - axis
		sum += r * r
	}
	return o.lambda * sum
}

func (o *asymOp) ComputePartials() *Partials {
	o.partials.reset()
	axis := o.ps.Axis(o.group)
	axisIdx := o.ps.Idx(o.group, OrientAxis)
	for k := range o.pairA {
		a, b := o.pairA[k], o.pairB[k]
		rx := o.ps.X(a) + o.ps.X(b) + o.pairW[k] - 2*axis
		ry := o.ps.Y(a) - o.ps.Y(b)
		o.partials.add(o.ps.Idx(a, OrientH), o.lambda*2*rx)
		o.partials.add(o.ps.Idx(b, OrientH), o.lambda*2*rx)
		o.partials.add(axisIdx, o.lambda*-4*rx)
		o.partials.add(o.ps.Idx(a, OrientV), o.lambda*2*ry)
		o.partials.add(o.ps.Idx(b, OrientV), o.lambda*-2*ry)
	}
	for k := range o.selfCell {
		r := o.ps.X(o.selfCell[k]) + o.selfHalfW[k] - axis
		o.partials.add(o.ps.Idx(o.selfCell[k], OrientH), o.lambda*2*r)
		o.partials.add(axisIdx, o.lambda*-2*r)
	}
	return &o.partials
}
