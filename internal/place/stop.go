package place

import (
	"log/slog"
	"math"
)

// IterState is what stop conditions see: the zero-based index of the outer
// iteration currently finishing, and the objective its graph run produced.
// The driver owns the counter and increments it once per completed
// iteration.
type IterState struct {
	Iter      int
	Objective float64
}

// StopCondition decides when the outer optimization loop terminates.
// Implementations may keep internal state across calls (one call per outer
// iteration, always from the graph's StopCheck node).
type StopCondition interface {
	Stop(st *IterState) bool
}

// FixedIterations stops after exactly Max outer iterations.
type FixedIterations struct {
	Max int
}

func (f *FixedIterations) Stop(st *IterState) bool {
	return st.Iter >= f.Max-1
}

// RelativeImprovement stops once the objective has gone Patience
// consecutive iterations without improving by at least Threshold relative
// to the last significant value. MaxIters is a hard cap so a plateau-free
// run still terminates.
type RelativeImprovement struct {
	Patience  int
	Threshold float64
	MaxIters  int

	lastSignificant float64
	staleCount      int
	started         bool
}

// NewRelativeImprovement returns the tracker with the usual defaults:
// 0.1% improvement required, three stale iterations tolerated.
func NewRelativeImprovement(maxIters int) *RelativeImprovement {
	return &RelativeImprovement{Patience: 3, Threshold: 0.001, MaxIters: maxIters}
}

func (r *RelativeImprovement) Stop(st *IterState) bool {
	if r.MaxIters > 0 && st.Iter >= r.MaxIters-1 {
		return true
	}
	if !r.started {
		r.started = true
		r.lastSignificant = st.Objective
		return false
	}
	rel := 0.0
	if r.lastSignificant != 0 {
		rel = (r.lastSignificant - st.Objective) / math.Abs(r.lastSignificant)
	}
	if rel >= r.Threshold {
		r.lastSignificant = st.Objective
		r.staleCount = 0
		return false
	}
	r.staleCount++
	if r.staleCount >= r.Patience {
		slog.Info("Objective plateau detected, stopping",
			"iteration", st.Iter,
			"stale_count", r.staleCount,
			"objective", st.Objective,
		)
		return true
	}
	return false
}
