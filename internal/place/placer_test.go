package place

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/cwbudde/analogplace/internal/db"
	"github.com/cwbudde/analogplace/internal/opt"
)

// cornersInit pins the two cells of the wirelength scenario to opposite
// boundary corners so gradient descent has ground to cover.
type cornersInit struct{}

func (cornersInit) Init(ps *ParamSpace, boundary Box, rng *rand.Rand) {
	ps.SetX(0, boundary.XLo)
	ps.SetY(0, boundary.YLo)
	ps.SetX(1, boundary.XHi*0.7)
	ps.SetY(1, boundary.YHi*0.7)
}

func twoCellDatabase() *db.Database {
	return &db.Database{
		Cells: []db.Cell{
			{Name: "a", Width: 10, Height: 10},
			{Name: "b", Width: 10, Height: 10},
		},
		Pins: []db.Pin{
			{Cell: 0, MidX: 5, MidY: 5},
			{Cell: 1, MidX: 5, MidY: 5},
		},
		Nets: []db.Net{
			{Name: "n0", Weight: 1, Pins: []int{0, 1}},
		},
		Params: db.Parameters{
			Boundary: &db.Boundary{XLo: 0, YLo: 0, XHi: 100, YHi: 100},
		},
	}
}

func TestSolveReducesWirelength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIters = 20
	cfg.Init = cornersInit{}

	var hpwl []float64
	cfg.Progress = func(pr Progress) { hpwl = append(hpwl, pr.Hpwl) }

	p, err := New(twoCellDatabase(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if res.Iterations != cfg.MaxIters {
		t.Errorf("Expected exactly %d iterations, got %d", cfg.MaxIters, res.Iterations)
	}
	if len(hpwl) != cfg.MaxIters {
		t.Fatalf("Expected %d progress callbacks, got %d", cfg.MaxIters, len(hpwl))
	}
	for i := 1; i < len(hpwl); i++ {
		if hpwl[i] >= hpwl[i-1] {
			t.Errorf("HPWL did not decrease at iteration %d: %g -> %g", i, hpwl[i-1], hpwl[i])
		}
	}
	if p.Phase() != PhaseDone {
		t.Errorf("Expected phase done after Solve, got %s", p.Phase())
	}
}

func TestSolveWritesBackNonNegativeCoordinates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIters = 10
	cfg.Init = cornersInit{}

	database := twoCellDatabase()
	database.Params.LayoutOffset = 3

	p, err := New(database, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := p.Solve(); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// After the shift-to-origin normalization at least one cell sits at the
	// layout offset on each axis, and none sits below it.
	minX, minY := database.Cells[0].X, database.Cells[0].Y
	for _, c := range database.Cells {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}
	if minX != 3 || minY != 3 {
		t.Errorf("Expected minimum written coordinates (3, 3), got (%d, %d)", minX, minY)
	}
}

func TestSolveIsDeterministicForSeed(t *testing.T) {
	run := func() []float64 {
		cfg := DefaultConfig()
		cfg.MaxIters = 15
		p, err := New(testDatabase(), cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		res, err := p.Solve()
		if err != nil {
			t.Fatalf("Solve failed: %v", err)
		}
		return res.Params
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Params[%d] differ across identical runs: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestSolveStopsEarlyOnPlateau(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIters = 200
	cfg.Rate = 1e-12 // effectively frozen, objective plateaus immediately
	cfg.Stop = NewRelativeImprovement(cfg.MaxIters)

	p, err := New(twoCellDatabase(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Iterations >= cfg.MaxIters {
		t.Errorf("Expected early stop on plateau, ran all %d iterations", res.Iterations)
	}
}

func TestSolveZeroOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Order = OrderZero
	cfg.MaxIters = 40
	cfg.Optimizer = opt.NewMayfly(40, 20, 6)

	p, err := New(twoCellDatabase(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := p.Solve()
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Objective <= 0 {
		t.Errorf("Expected a positive objective (smoothed wirelength floor), got %g", res.Objective)
	}
	if len(res.Params) != 4 {
		t.Errorf("Expected 4 parameters for 2 cells, got %d", len(res.Params))
	}
}

func TestBoundaryAutoSize(t *testing.T) {
	database := twoCellDatabase()
	database.Params.Boundary = nil
	database.Params.MaxWhiteSpace = 0.5

	p, err := New(database, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.buildProblem(); err != nil {
		t.Fatalf("buildProblem failed: %v", err)
	}

	area := p.boundary.Width() * p.boundary.Height()
	want := nominalArea * 1.5
	if area < want*0.999 || area > want*1.001 {
		t.Errorf("Auto-sized boundary area %g, expected %g", area, want)
	}
	ratio := p.boundary.Width() / p.boundary.Height()
	if ratio < fallbackAspectRatio*0.999 || ratio > fallbackAspectRatio*1.001 {
		t.Errorf("Auto-sized aspect ratio %g, expected %g", ratio, fallbackAspectRatio)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	database := twoCellDatabase()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero alpha", func(c *Config) { c.Alpha = 0 }, "smoothing"},
		{"zero iterations", func(c *Config) { c.MaxIters = 0 }, "iteration limit"},
		{"zero rate", func(c *Config) { c.Rate = 0 }, "learning rate"},
		{"missing optimizer", func(c *Config) { c.Order = OrderZero }, "optimizer"},
		{"bad order", func(c *Config) { c.Order = "second" }, "placement order"},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if _, err := New(database, cfg); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		} else if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestNewRejectsEmptyDatabase(t *testing.T) {
	if _, err := New(&db.Database{}, DefaultConfig()); err == nil {
		t.Errorf("Expected an error for an empty database")
	}
}

func TestPhaseOrderEnforced(t *testing.T) {
	p, err := New(twoCellDatabase(), DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := p.buildOperators(); err == nil {
		t.Errorf("Expected buildOperators to fail before problem construction")
	}
	if err := p.buildProblem(); err != nil {
		t.Fatalf("buildProblem failed: %v", err)
	}
	if err := p.buildProblem(); err == nil {
		t.Errorf("Expected a second buildProblem to fail")
	}
}
