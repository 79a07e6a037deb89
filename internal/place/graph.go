package place

import "gonum.org/v1/gonum/floats"

// The task graph is built once per problem and re-executed unchanged every
// outer iteration; only the parameter values differ between runs. Node
// bodies are explicit structs holding exactly the handles they touch, so
// data dependencies are auditable: every result slot has one writer, and
// readers are ordered after it by graph edges, never by locks.

type runner interface {
	run()
}

type node struct {
	r     runner
	preds []int
}

// evalTask evaluates one operator instance into its private result slot.
type evalTask struct {
	op  Operator
	out *float64
}

func (t *evalTask) run() { *t.out = t.op.Evaluate() }

// sumTask reduces a slice of finalized inputs into a single output slot.
// Serves both per-category sums (inputs = that category's eval slots) and
// the total objective (inputs = the category sums).
type sumTask struct {
	in  []float64
	out *float64
}

func (t *sumTask) run() { *t.out = floats.Sum(t.in) }

// partialTask computes one operator's partial derivatives and publishes the
// cached set into its private slot.
type partialTask struct {
	op  Operator
	out **Partials
}

func (t *partialTask) run() { *t.out = t.op.ComputePartials() }

// clearTask zeroes a gradient accumulator.
type clearTask struct {
	vec []float64
}

func (t *clearTask) run() {
	for i := range t.vec {
		t.vec[i] = 0
	}
}

// updateTask folds one computed partial set into its category's
// accumulator. Updates within a category are chained by graph edges
// (write-after-write), so the accumulator has a single writer at any time.
type updateTask struct {
	src  **Partials
	grad []float64
}

func (t *updateTask) run() { (*t.src).AddTo(t.grad) }

// sumGradTask combines the finalized category accumulators into the
// combined gradient.
type sumGradTask struct {
	parts [][]float64
	out   []float64
}

func (t *sumGradTask) run() {
	for _, p := range t.parts {
		floats.Add(t.out, p)
	}
}

// stopTask records the stop strategy's verdict for the driver to read after
// the run; the graph itself never aborts mid-iteration.
type stopTask struct {
	strat StopCondition
	st    *IterState
	obj   *float64
	out   *bool
}

func (t *stopTask) run() {
	t.st.Objective = *t.obj
	*t.out = t.strat.Stop(t.st)
}

// Graph is the fixed-shape dependency graph plus the accumulators its nodes
// write. Nodes are stored in topological order (every predecessor id is
// smaller), which is also the deterministic sequential execution order.
type Graph struct {
	nodes []node
	succs [][]int

	evalVals [numCategories][]float64
	catObj   [numCategories]float64
	total    float64

	partialVals [numCategories][]*Partials

	gradCat [numCategories][]float64
	grad    []float64

	stop bool
}

// Objective returns the grand total from the last run.
func (g *Graph) Objective() float64 { return g.total }

// CategoryObjective returns one category's sum from the last run.
func (g *Graph) CategoryObjective(c Category) float64 { return g.catObj[c] }

// Gradient returns the combined gradient from the last run. Nil when the
// graph was built objective-only.
func (g *Graph) Gradient() []float64 { return g.grad }

// StopRequested reports the StopCheck verdict from the last run.
func (g *Graph) StopRequested() bool { return g.stop }

// NumTasks returns the node count.
func (g *Graph) NumTasks() int { return len(g.nodes) }

func (g *Graph) add(r runner, preds ...int) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, node{r: r, preds: preds})
	return id
}

func (g *Graph) buildSuccs() {
	g.succs = make([][]int, len(g.nodes))
	for id := range g.nodes {
		for _, p := range g.nodes[id].preds {
			g.succs[p] = append(g.succs[p], id)
		}
	}
}

// BuildGraph constructs the task graph for one problem instance. When
// withGrad is false only the objective half (evaluate, category sums, total,
// stop check) is emitted, matching a zero-order run.
func BuildGraph(ops *OperatorSet, dim int, strat StopCondition, st *IterState, withGrad bool) *Graph {
	g := &Graph{}

	// ClearGradient tasks come first so every update can depend on them.
	var clearCat [numCategories]int
	clearAll := -1
	if withGrad {
		g.grad = make([]float64, dim)
		clearAll = g.add(&clearTask{vec: g.grad})
		for c := Category(0); c < numCategories; c++ {
			g.gradCat[c] = make([]float64, dim)
			clearCat[c] = g.add(&clearTask{vec: g.gradCat[c]})
		}
	}

	// Evaluate per instance, CategorySum per category, TotalObjective.
	var catSum [numCategories]int
	for c := Category(0); c < numCategories; c++ {
		instances := ops.Category(c)
		g.evalVals[c] = make([]float64, len(instances))
		evalIDs := make([]int, len(instances))
		for i, op := range instances {
			evalIDs[i] = g.add(&evalTask{op: op, out: &g.evalVals[c][i]})
		}
		catSum[c] = g.add(&sumTask{in: g.evalVals[c], out: &g.catObj[c]}, evalIDs...)
	}
	total := g.add(&sumTask{in: g.catObj[:], out: &g.total}, catSum[:]...)

	if withGrad {
		// CalculatePartial per instance, then chained UpdateGradient tasks
		// per category: each update waits for its own partial, the
		// category's clear, and the previous update of the same category.
		sumGradPreds := []int{clearAll}
		for c := Category(0); c < numCategories; c++ {
			instances := ops.Category(c)
			g.partialVals[c] = make([]*Partials, len(instances))
			prev := -1
			for i, op := range instances {
				part := g.add(&partialTask{op: op, out: &g.partialVals[c][i]})
				preds := []int{part, clearCat[c]}
				if prev >= 0 {
					preds = append(preds, prev)
				}
				prev = g.add(&updateTask{src: &g.partialVals[c][i], grad: g.gradCat[c]}, preds...)
			}
			if prev >= 0 {
				sumGradPreds = append(sumGradPreds, prev)
			} else {
				sumGradPreds = append(sumGradPreds, clearCat[c])
			}
		}
		parts := make([][]float64, 0, numCategories)
		for c := Category(0); c < numCategories; c++ {
			parts = append(parts, g.gradCat[c])
		}
		g.add(&sumGradTask{parts: parts, out: g.grad}, sumGradPreds...)
	}

	g.add(&stopTask{strat: strat, st: st, obj: &g.total, out: &g.stop}, total)

	g.buildSuccs()
	return g
}
