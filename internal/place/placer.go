package place

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/cwbudde/analogplace/internal/db"
	"github.com/cwbudde/analogplace/internal/opt"
)

// Phase is the driver's lifecycle state. Transitions are strictly
// sequential; every phase runs exactly once except Iterating, which loops.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseProblemBuilt
	PhasePlacementInitialized
	PhaseOperatorsBuilt
	PhaseTasksBuilt
	PhaseIterating
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseProblemBuilt:
		return "problem-built"
	case PhasePlacementInitialized:
		return "placement-initialized"
	case PhaseOperatorsBuilt:
		return "operators-built"
	case PhaseTasksBuilt:
		return "tasks-built"
	case PhaseIterating:
		return "iterating"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Placement orders.
const (
	OrderFirst = "first" // gradient descent over the task graph
	OrderZero  = "zero"  // derivative-free optimizer over the objective
)

// Nominal scaled problem area and the aspect ratio used when no boundary
// constraint is given.
const (
	nominalArea         = 100.0
	fallbackAspectRatio = 0.85
)

// Progress is handed to the Config.Progress callback once per outer
// iteration, after the graph run and before the coordinate update.
type Progress struct {
	Iteration   int
	Objective   float64
	Hpwl        float64
	Overlap     float64
	OutOfBounds float64
	Asymmetry   float64
	Path        float64
}

// Config collects the placer's tunables and injected strategies.
type Config struct {
	Alpha float64 // LSE/softplus smoothing parameter, must be positive

	// Per-category penalty weights.
	HpwlWeight     float64
	OverlapWeight  float64
	BoundaryWeight float64
	AsymWeight     float64
	PathWeight     float64

	MaxIters int
	Rate     float64 // first-order learning rate
	MaxStep  float64 // per-variable move cap (0 = uncapped)
	Seed     int64

	Order   string   // OrderFirst or OrderZero
	Mode    ExecMode // parallel or sequential graph execution
	Workers int      // worker-pool size, 0 = NumCPU

	// Stop overrides the default fixed-iteration policy.
	Stop StopCondition
	// Init overrides the default uniform-scatter initial placement.
	Init InitStrategy
	// Optimizer drives zero-order runs; required when Order is OrderZero.
	Optimizer opt.Optimizer
	// Progress, when set, is invoked once per outer iteration.
	Progress func(Progress)
}

// DefaultConfig returns the tunables used by the CLI defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:          0.5,
		HpwlWeight:     1,
		OverlapWeight:  1,
		BoundaryWeight: 1,
		AsymWeight:     1,
		PathWeight:     1,
		MaxIters:       300,
		Rate:           0.05,
		MaxStep:        1.0,
		Seed:           6,
		Order:          OrderFirst,
		Mode:           ExecParallel,
	}
}

// Result is the outcome of a placement run. Breakdown values are the
// weighted per-category objective terms at the final point.
type Result struct {
	Objective   float64
	Hpwl        float64
	Overlap     float64
	OutOfBounds float64
	Asymmetry   float64
	Path        float64
	Iterations  int
	Params      []float64
}

// Placer is the optimization driver. It owns the parameter space, operator
// set and task graph, and is the only writer of coordinates between graph
// runs.
type Placer struct {
	cfg   Config
	db    *db.Database
	phase Phase

	scale       float64
	boundary    Box
	defaultAxis float64

	ps    *ParamSpace
	ops   *OperatorSet
	graph *Graph
	exec  *Executor
	stop  StopCondition
	state IterState
	rng   *rand.Rand
}

// New validates the database and configuration and returns an idle placer.
// All input validation happens here: once Solve starts, every task is a
// total function and nothing downstream reports errors.
func New(database *db.Database, cfg Config) (*Placer, error) {
	if err := database.Validate(); err != nil {
		return nil, err
	}
	if database.NumCells() == 0 {
		return nil, fmt.Errorf("nothing to place: database has no cells")
	}
	if cfg.Alpha <= 0 {
		return nil, fmt.Errorf("smoothing parameter must be positive, got %g", cfg.Alpha)
	}
	if cfg.MaxIters <= 0 {
		return nil, fmt.Errorf("iteration limit must be positive, got %d", cfg.MaxIters)
	}
	switch cfg.Order {
	case OrderFirst:
		if cfg.Rate <= 0 {
			return nil, fmt.Errorf("learning rate must be positive, got %g", cfg.Rate)
		}
	case OrderZero:
		if cfg.Optimizer == nil {
			return nil, fmt.Errorf("zero-order placement requires an optimizer")
		}
	default:
		return nil, fmt.Errorf("unknown placement order %q", cfg.Order)
	}
	return &Placer{cfg: cfg, db: database, phase: PhaseUninitialized}, nil
}

// Phase returns the driver's current lifecycle state.
func (p *Placer) Phase() Phase { return p.phase }

func (p *Placer) expectPhase(want Phase) error {
	if p.phase != want {
		return fmt.Errorf("placer in phase %s, expected %s", p.phase, want)
	}
	return nil
}

// Solve runs the full pipeline: problem construction, initial placement,
// operator and task construction, the iteration loop, and coordinate
// write-back into the database.
func (p *Placer) Solve() (*Result, error) {
	if err := p.buildProblem(); err != nil {
		return nil, err
	}
	if err := p.initPlacement(); err != nil {
		return nil, err
	}
	if err := p.buildOperators(); err != nil {
		return nil, err
	}

	var res *Result
	var err error
	switch p.cfg.Order {
	case OrderZero:
		res, err = p.optimizeZeroOrder()
	default:
		if err = p.buildTasks(); err != nil {
			return nil, err
		}
		res, err = p.iterate()
	}
	if err != nil {
		return nil, err
	}

	p.writeBack()
	p.phase = PhaseDone
	return res, nil
}

// buildProblem derives the coordinate scale, the placement boundary and the
// variable buffer from the database snapshot.
func (p *Placer) buildProblem() error {
	if err := p.expectPhase(PhaseUninitialized); err != nil {
		return err
	}

	totalArea := p.db.TotalCellArea()
	p.scale = math.Sqrt(nominalArea / totalArea)

	if b := p.db.Params.Boundary; b != nil {
		p.boundary = Box{
			XLo: float64(b.XLo) * p.scale,
			YLo: float64(b.YLo) * p.scale,
			XHi: float64(b.XHi) * p.scale,
			YHi: float64(b.YHi) * p.scale,
		}
	} else {
		// No constraint set: size a region from total cell area plus the
		// whitespace margin at a fixed aspect ratio.
		tolerantArea := nominalArea * (1 + p.db.Params.MaxWhiteSpace)
		xHi := math.Sqrt(tolerantArea * fallbackAspectRatio)
		p.boundary = Box{XLo: 0, YLo: 0, XHi: xHi, YHi: tolerantArea / xHi}
		slog.Info("Auto-sized placement boundary",
			"x_hi", p.boundary.XHi,
			"y_hi", p.boundary.YHi,
			"max_whitespace", p.db.Params.MaxWhiteSpace,
		)
	}
	p.defaultAxis = (p.boundary.XLo + p.boundary.XHi) / 2

	p.ps = NewParamSpace(p.db.NumCells(), p.db.NumSymGroups())
	p.rng = rand.New(rand.NewSource(p.cfg.Seed))
	p.phase = PhaseProblemBuilt
	return nil
}

func (p *Placer) initPlacement() error {
	if err := p.expectPhase(PhaseProblemBuilt); err != nil {
		return err
	}
	strat := p.cfg.Init
	if strat == nil {
		strat = UniformScatterInit{}
	}
	strat.Init(p.ps, p.boundary, p.rng)
	for g := 0; g < p.ps.NumGroups(); g++ {
		p.ps.SetAxis(g, p.defaultAxis)
	}
	p.phase = PhasePlacementInitialized
	return nil
}

// pinOffset returns a pin's offset from its cell's bbox lower-left corner,
// in scaled coordinates.
func (p *Placer) pinOffset(pinIdx int) (float64, float64) {
	pin := &p.db.Pins[pinIdx]
	cell := &p.db.Cells[pin.Cell]
	return float64(pin.MidX-cell.OriginX) * p.scale, float64(pin.MidY-cell.OriginY) * p.scale
}

// buildOperators instantiates the five operator families over the database
// snapshot, capturing all geometric constants in scaled coordinates.
func (p *Placer) buildOperators() error {
	if err := p.expectPhase(PhasePlacementInitialized); err != nil {
		return err
	}
	cfg := &p.cfg
	ops := &OperatorSet{ps: p.ps}

	// One HPWL instance per net.
	for netIdx := range p.db.Nets {
		net := &p.db.Nets[netIdx]
		op := newHpwlOp(p.ps, net.Weight*cfg.HpwlWeight, cfg.Alpha)
		for _, pinIdx := range net.Pins {
			offX, offY := p.pinOffset(pinIdx)
			op.addPin(p.db.Pins[pinIdx].Cell, offX, offY)
		}
		ops.cats[CatHpwl] = append(ops.cats[CatHpwl], op)
	}

	// One overlap instance per unordered cell pair. Dominates the instance
	// count at O(numCells^2).
	for i := 0; i < p.db.NumCells(); i++ {
		ci := &p.db.Cells[i]
		for j := i + 1; j < p.db.NumCells(); j++ {
			cj := &p.db.Cells[j]
			ops.cats[CatOverlap] = append(ops.cats[CatOverlap], newOverlapOp(
				p.ps,
				i, float64(ci.Width)*p.scale, float64(ci.Height)*p.scale,
				j, float64(cj.Width)*p.scale, float64(cj.Height)*p.scale,
				cfg.Alpha, cfg.OverlapWeight,
			))
		}
	}

	// One out-of-boundary instance per cell.
	for i := 0; i < p.db.NumCells(); i++ {
		c := &p.db.Cells[i]
		ops.cats[CatBoundary] = append(ops.cats[CatBoundary], newBoundaryOp(
			p.ps, i,
			float64(c.Width)*p.scale, float64(c.Height)*p.scale,
			&p.boundary, cfg.Alpha, cfg.BoundaryWeight,
		))
	}

	// One asymmetry instance per symmetry group.
	for grpIdx := range p.db.SymGroups {
		grp := &p.db.SymGroups[grpIdx]
		op := newAsymOp(p.ps, grpIdx, cfg.AsymWeight)
		for _, pair := range grp.Pairs {
			width := float64(p.db.Cells[pair.CellA].Width) * p.scale
			op.addSymPair(pair.CellA, pair.CellB, width)
		}
		for _, cellIdx := range grp.SelfSym {
			op.addSelfSym(cellIdx, float64(p.db.Cells[cellIdx].Width)*p.scale)
		}
		ops.cats[CatAsymmetry] = append(ops.cats[CatAsymmetry], op)
	}

	// One cosine instance per decomposed signal-path segment.
	for _, seg := range DecomposeSignalPaths(p.db) {
		op := &cosineOp{
			ps:        p.ps,
			lambda:    cfg.PathWeight,
			startCell: p.db.Pins[seg.SPin].Cell,
			midCell:   p.db.Pins[seg.MidPinA].Cell,
			endCell:   p.db.Pins[seg.TPin].Cell,
		}
		op.offSX, op.offSY = p.pinOffset(seg.SPin)
		op.offMAX, op.offMAY = p.pinOffset(seg.MidPinA)
		op.offMBX, op.offMBY = p.pinOffset(seg.MidPinB)
		op.offTX, op.offTY = p.pinOffset(seg.TPin)
		ops.cats[CatPath] = append(ops.cats[CatPath], op)
	}

	p.ops = ops
	p.phase = PhaseOperatorsBuilt
	slog.Debug("Operators built",
		"hpwl", len(ops.cats[CatHpwl]),
		"overlap", len(ops.cats[CatOverlap]),
		"boundary", len(ops.cats[CatBoundary]),
		"asymmetry", len(ops.cats[CatAsymmetry]),
		"path", len(ops.cats[CatPath]),
	)
	return nil
}

func (p *Placer) buildTasks() error {
	if err := p.expectPhase(PhaseOperatorsBuilt); err != nil {
		return err
	}
	p.stop = p.cfg.Stop
	if p.stop == nil {
		p.stop = &FixedIterations{Max: p.cfg.MaxIters}
	}
	p.graph = BuildGraph(p.ops, p.ps.Len(), p.stop, &p.state, true)
	p.exec = NewExecutor(p.cfg.Mode, p.cfg.Workers)
	p.phase = PhaseTasksBuilt
	slog.Debug("Task graph built", "tasks", p.graph.NumTasks())
	return nil
}

// iterate runs the outer loop: graph run, coordinate update, stop check.
// The graph run is atomic; coordinate updates happen strictly between runs.
func (p *Placer) iterate() (*Result, error) {
	if err := p.expectPhase(PhaseTasksBuilt); err != nil {
		return nil, err
	}
	p.phase = PhaseIterating

	gd := &GradientDescent{Rate: p.cfg.Rate, MaxStep: p.cfg.MaxStep}
	for {
		p.exec.Run(p.graph)

		slog.Debug("Iteration objective",
			"iteration", p.state.Iter,
			"total", p.graph.Objective(),
			"hpwl", p.graph.CategoryObjective(CatHpwl),
			"overlap", p.graph.CategoryObjective(CatOverlap),
			"boundary", p.graph.CategoryObjective(CatBoundary),
			"asymmetry", p.graph.CategoryObjective(CatAsymmetry),
			"path", p.graph.CategoryObjective(CatPath),
		)
		if p.cfg.Progress != nil {
			p.cfg.Progress(Progress{
				Iteration:   p.state.Iter,
				Objective:   p.graph.Objective(),
				Hpwl:        p.graph.CategoryObjective(CatHpwl),
				Overlap:     p.graph.CategoryObjective(CatOverlap),
				OutOfBounds: p.graph.CategoryObjective(CatBoundary),
				Asymmetry:   p.graph.CategoryObjective(CatAsymmetry),
				Path:        p.graph.CategoryObjective(CatPath),
			})
		}

		if p.graph.StopRequested() {
			p.state.Iter++
			break
		}
		gd.Apply(p.ps, p.graph.Gradient())
		p.state.Iter++
	}

	return &Result{
		Objective:   p.graph.Objective(),
		Hpwl:        p.graph.CategoryObjective(CatHpwl),
		Overlap:     p.graph.CategoryObjective(CatOverlap),
		OutOfBounds: p.graph.CategoryObjective(CatBoundary),
		Asymmetry:   p.graph.CategoryObjective(CatAsymmetry),
		Path:        p.graph.CategoryObjective(CatPath),
		Iterations:  p.state.Iter,
		Params:      p.ps.Snapshot(),
	}, nil
}

// optimizeZeroOrder hands the serial objective to a derivative-free
// optimizer over boundary-derived bounds, then restores the best point.
func (p *Placer) optimizeZeroOrder() (*Result, error) {
	if err := p.expectPhase(PhaseOperatorsBuilt); err != nil {
		return nil, err
	}
	p.phase = PhaseIterating

	dim := p.ps.Len()
	hi := math.Max(p.boundary.XHi, p.boundary.YHi)
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := range upper {
		upper[i] = hi
	}

	best, cost := p.cfg.Optimizer.Run(p.ops.ObjectiveAt, lower, upper, dim)
	p.ps.Restore(best)
	slog.Info("Zero-order optimization complete", "objective", cost)

	res := &Result{
		Objective:  cost,
		Iterations: p.cfg.MaxIters,
		Params:     p.ps.Snapshot(),
	}
	for c := Category(0); c < numCategories; c++ {
		var sum float64
		for _, op := range p.ops.Category(c) {
			sum += op.Evaluate()
		}
		switch c {
		case CatHpwl:
			res.Hpwl = sum
		case CatOverlap:
			res.Overlap = sum
		case CatBoundary:
			res.OutOfBounds = sum
		case CatAsymmetry:
			res.Asymmetry = sum
		case CatPath:
			res.Path = sum
		}
	}
	return res, nil
}

// writeBack normalizes the solution (shift to non-negative, undo the scale,
// apply the layout offset, correct for each cell's bbox origin) and stores
// integer lower-left coordinates in the database.
func (p *Placer) writeBack() {
	minX := math.Inf(1)
	minY := math.Inf(1)
	for i := 0; i < p.db.NumCells(); i++ {
		minX = math.Min(minX, p.ps.X(i))
		minY = math.Min(minY, p.ps.Y(i))
	}
	offset := p.db.Params.LayoutOffset
	for i := 0; i < p.db.NumCells(); i++ {
		cell := &p.db.Cells[i]
		xLo := int(math.Round((p.ps.X(i)-minX)/p.scale)) + offset
		yLo := int(math.Round((p.ps.Y(i)-minY)/p.scale)) + offset
		cell.X = xLo - cell.OriginX
		cell.Y = yLo - cell.OriginY
	}
}
