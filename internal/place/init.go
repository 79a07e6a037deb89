package place

import "math/rand"

// InitStrategy seeds the initial cell coordinates before the first
// iteration. Axis variables are seeded separately by the driver (boundary
// midpoint), so strategies only place cells.
type InitStrategy interface {
	Init(ps *ParamSpace, boundary Box, rng *rand.Rand)
}

// UniformScatterInit places cells on a coarse numCells-step grid scattered
// uniformly at random across the boundary.
type UniformScatterInit struct{}

func (UniformScatterInit) Init(ps *ParamSpace, boundary Box, rng *rand.Rand) {
	n := ps.NumCells()
	if n == 0 {
		return
	}
	xStep := boundary.XHi / float64(n)
	yStep := boundary.YHi / float64(n)
	for idx := 0; idx < n; idx++ {
		ps.SetX(idx, float64(rng.Intn(n))*xStep)
		ps.SetY(idx, float64(rng.Intn(n))*yStep)
	}
}

// CenterNormalInit places cells normally distributed around the boundary
// center. SpreadFrac scales the standard deviation as a fraction of the
// boundary extent (defaulting to 1/8 when zero).
type CenterNormalInit struct {
	SpreadFrac float64
}

func (s CenterNormalInit) Init(ps *ParamSpace, boundary Box, rng *rand.Rand) {
	frac := s.SpreadFrac
	if frac <= 0 {
		frac = 0.125
	}
	cx := (boundary.XLo + boundary.XHi) / 2
	cy := (boundary.YLo + boundary.YHi) / 2
	sx := boundary.Width() * frac
	sy := boundary.Height() * frac
	for idx := 0; idx < ps.NumCells(); idx++ {
		x := cx + rng.NormFloat64()*sx
		y := cy + rng.NormFloat64()*sy
		ps.SetX(idx, clamp(x, boundary.XLo, boundary.XHi))
		ps.SetY(idx, clamp(y, boundary.YLo, boundary.YHi))
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
