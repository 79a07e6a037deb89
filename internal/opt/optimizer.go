package opt

// Optimizer is a derivative-free optimization strategy, used by zero-order
// placement runs that probe the objective without gradients.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] in dim dimensions and
	// returns the best parameter vector and its objective value.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
