package place

import "math"

// hpwlOp approximates a net's half-perimeter wirelength with the log-sum-exp
// smooth maximum:
//
//	WL_x = alpha * ( ln Σ exp(x_i/alpha) + ln Σ exp(-x_i/alpha) )
//
// summed over x and y and scaled by the net weight. Pin coordinates are the
// owning cell's position plus a fixed offset captured at construction.
type hpwlOp struct {
	ps     *ParamSpace
	weight float64
	alpha  float64
	cells  []int
	offX   []float64
	offY   []float64

	partials Partials
}

func newHpwlOp(ps *ParamSpace, weight, alpha float64) *hpwlOp {
	return &hpwlOp{ps: ps, weight: weight, alpha: alpha}
}

func (o *hpwlOp) addPin(cell int, offX, offY float64) {
	o.cells = append(o.cells, cell)
	o.offX = append(o.offX, offX)
	o.offY = append(o.offY, offY)
}

// lseDim computes alpha*(ln Σ exp(v_i/alpha) + ln Σ exp(-v_i/alpha)) for one
// dimension, shifted by the running min/max so the exponents never overflow
// even for coincident or far-apart pins.
func (o *hpwlOp) lseDim(coord func(k int) float64) float64 {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for k := range o.cells {
		v := coord(k)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var sumHi, sumLo float64
	for k := range o.cells {
		v := coord(k)
		sumHi += math.Exp((v - hi) / o.alpha)
		sumLo += math.Exp((lo - v) / o.alpha)
	}
	return hi - lo + o.alpha*(math.Log(sumHi)+math.Log(sumLo))
}

func (o *hpwlOp) x(k int) float64 { return o.ps.X(o.cells[k]) + o.offX[k] }
func (o *hpwlOp) y(k int) float64 { return o.ps.Y(o.cells[k]) + o.offY[k] }

func (o *hpwlOp) Evaluate() float64 {
	if len(o.cells) < 2 {
		return 0
	}
	return o.weight * (o.lseDim(o.x) + o.lseDim(o.y))
}

// partialsDim accumulates the softmax weights for one dimension:
// d WL/d v_i = weight * (softmax(v/alpha)_i - softmax(-v/alpha)_i).
func (o *hpwlOp) partialsDim(coord func(k int) float64, orient Orient) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for k := range o.cells {
		v := coord(k)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var sumHi, sumLo float64
	expHi := make([]float64, len(o.cells))
	expLo := make([]float64, len(o.cells))
	for k := range o.cells {
		v := coord(k)
		expHi[k] = math.Exp((v - hi) / o.alpha)
		expLo[k] = math.Exp((lo - v) / o.alpha)
		sumHi += expHi[k]
		sumLo += expLo[k]
	}
	for k, cell := range o.cells {
		d := o.weight * (expHi[k]/sumHi - expLo[k]/sumLo)
		o.partials.add(o.ps.Idx(cell, orient), d)
	}
}

func (o *hpwlOp) ComputePartials() *Partials {
	o.partials.reset()
	if len(o.cells) < 2 {
		return &o.partials
	}
	o.partialsDim(o.x, OrientH)
	o.partialsDim(o.y, OrientV)
	return &o.partials
}
