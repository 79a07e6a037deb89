package place

import "math"

// Category identifies one of the five penalty families in the objective.
type Category int

const (
	CatHpwl Category = iota
	CatOverlap
	CatBoundary
	CatAsymmetry
	CatPath

	numCategories
)

func (c Category) String() string {
	switch c {
	case CatHpwl:
		return "hpwl"
	case CatOverlap:
		return "overlap"
	case CatBoundary:
		return "boundary"
	case CatAsymmetry:
		return "asymmetry"
	case CatPath:
		return "path"
	}
	return "unknown"
}

// Partials is a sparse set of partial derivatives keyed by flat parameter
// index. An index may appear more than once (e.g. two pins of one net on
// the same cell); AddTo accumulates.
type Partials struct {
	idx []int
	val []float64
}

func (p *Partials) reset() {
	p.idx = p.idx[:0]
	p.val = p.val[:0]
}

func (p *Partials) add(idx int, v float64) {
	p.idx = append(p.idx, idx)
	p.val = append(p.val, v)
}

// AddTo accumulates the partials into a dense gradient vector.
func (p *Partials) AddTo(grad []float64) {
	for k, i := range p.idx {
		grad[i] += p.val[k]
	}
}

// Len returns the number of (index, value) entries.
func (p *Partials) Len() int { return len(p.idx) }

// Operator is one differentiable penalty instance. Evaluate and
// ComputePartials are pure reads of the parameter space plus constants
// captured at construction; they never fail. ComputePartials returns an
// operator-owned buffer that stays valid until the next call.
type Operator interface {
	Evaluate() float64
	ComputePartials() *Partials
}

// OperatorSet groups all operator instances of a problem by category.
type OperatorSet struct {
	ps   *ParamSpace
	cats [numCategories][]Operator
}

// Category returns the operator instances of one category.
func (s *OperatorSet) Category(c Category) []Operator { return s.cats[c] }

// Count returns the total number of operator instances.
func (s *OperatorSet) Count() int {
	n := 0
	for c := range s.cats {
		n += len(s.cats[c])
	}
	return n
}

// Objective evaluates every operator serially at the current parameter
// values and returns the grand total. Used by derivative-free optimization,
// which probes arbitrary points far more often than once per iteration.
func (s *OperatorSet) Objective() float64 {
	var total float64
	for c := range s.cats {
		for _, op := range s.cats[c] {
			total += op.Evaluate()
		}
	}
	return total
}

// ObjectiveAt writes x into the parameter space and evaluates the total.
func (s *OperatorSet) ObjectiveAt(x []float64) float64 {
	s.ps.Restore(x)
	return s.Objective()
}

// expArgMax caps log-sum-exp exponents. Arguments beyond the cap saturate:
// softplus becomes identity above and exactly zero below, which also makes
// penalties vanish identically deep inside their feasible region.
const expArgMax = 30.0

// softplus is the smoothed max(0, v): alpha*ln(1+exp(v/alpha)).
func softplus(v, alpha float64) float64 {
	t := v / alpha
	if t > expArgMax {
		return v
	}
	if t < -expArgMax {
		return 0
	}
	return alpha * math.Log1p(math.Exp(t))
}

// softplusGrad is d/dv softplus(v, alpha), the logistic sigmoid of v/alpha.
func softplusGrad(v, alpha float64) float64 {
	t := v / alpha
	if t > expArgMax {
		return 1
	}
	if t < -expArgMax {
		return 0
	}
	return 1 / (1 + math.Exp(-t))
}
