package place

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GradientDescent is the first-order coordinate-update step applied between
// graph runs. The raw step is scaled down when the gradient's inf-norm
// exceeds MaxStep/Rate, which keeps early iterations from flinging cells
// across the boundary when the overlap term is steep.
type GradientDescent struct {
	Rate    float64 // base learning rate
	MaxStep float64 // largest per-variable move allowed (0 = no cap)
}

// Apply moves the parameter vector one step against the gradient.
func (g *GradientDescent) Apply(ps *ParamSpace, grad []float64) {
	step := g.Rate
	if g.MaxStep > 0 {
		norm := floats.Norm(grad, math.Inf(1))
		if norm*step > g.MaxStep {
			step = g.MaxStep / norm
		}
	}
	floats.AddScaled(ps.Values(), -step, grad)
}
