package db

import "fmt"

// Cell is a placeable circuit instance. Width/Height describe its bounding
// box in layout units; OriginX/OriginY locate the bounding box within the
// cell's local coordinate frame (usually zero). X/Y hold the placed
// lower-left corner and are written by the placer at the end of a run.
type Cell struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	OriginX int    `json:"originX,omitempty"`
	OriginY int    `json:"originY,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Pin is a connection point on a cell. MidX/MidY give the pin center in the
// cell's local coordinate frame.
type Pin struct {
	Name string `json:"name,omitempty"`
	Cell int    `json:"cell"`
	MidX int    `json:"midX"`
	MidY int    `json:"midY"`
}

// Net connects an ordered list of pins with a non-negative weight.
type Net struct {
	Name   string  `json:"name,omitempty"`
	Weight float64 `json:"weight"`
	Pins   []int   `json:"pins"`
}

// SymPair is a pair of cells constrained to mirror about their group's axis.
type SymPair struct {
	CellA int `json:"cellA"`
	CellB int `json:"cellB"`
}

// SymGroup is a set of symmetric pairs and self-symmetric cells sharing one
// vertical mirror axis.
type SymGroup struct {
	Pairs   []SymPair `json:"pairs,omitempty"`
	SelfSym []int     `json:"selfSym,omitempty"`
}

// Boundary is an optional placement region constraint in layout units.
type Boundary struct {
	XLo int `json:"xLo"`
	YLo int `json:"yLo"`
	XHi int `json:"xHi"`
	YHi int `json:"yHi"`
}

// Parameters holds layout-level placement settings.
type Parameters struct {
	// Boundary constrains the placement region. When nil the placer derives
	// a region from total cell area and MaxWhiteSpace.
	Boundary *Boundary `json:"boundary,omitempty"`

	// MaxWhiteSpace is the allowed whitespace ratio when the placer derives
	// its own boundary (0.5 means 50% slack over total cell area).
	MaxWhiteSpace float64 `json:"maxWhiteSpace,omitempty"`

	// LayoutOffset is added to every placed coordinate at write-back.
	LayoutOffset int `json:"layoutOffset,omitempty"`
}

// Database is the read-only circuit snapshot the placer works from. It is
// structurally immutable after Validate; only cell X/Y are written back.
type Database struct {
	Cells     []Cell     `json:"cells"`
	Pins      []Pin      `json:"pins"`
	Nets      []Net      `json:"nets"`
	SymGroups []SymGroup `json:"symGroups,omitempty"`
	Params    Parameters `json:"params"`
}

func (d *Database) NumCells() int     { return len(d.Cells) }
func (d *Database) NumPins() int      { return len(d.Pins) }
func (d *Database) NumNets() int      { return len(d.Nets) }
func (d *Database) NumSymGroups() int { return len(d.SymGroups) }

// TotalCellArea returns the summed bounding-box area of all cells.
func (d *Database) TotalCellArea() float64 {
	var area float64
	for i := range d.Cells {
		area += float64(d.Cells[i].Width) * float64(d.Cells[i].Height)
	}
	return area
}

// ValidationError reports which entity violated the construction contract.
type ValidationError struct {
	Entity string // "cell", "pin", "net", "symgroup", "params"
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s %d: %s", e.Entity, e.Index, e.Reason)
}

// Validate checks the construction-time contract. It must pass before any
// placement problem is built from this database; the placer assumes a
// validated snapshot and never re-checks these conditions.
func (d *Database) Validate() error {
	for i := range d.Cells {
		c := &d.Cells[i]
		if c.Width <= 0 || c.Height <= 0 {
			return &ValidationError{Entity: "cell", Index: i, Reason: fmt.Sprintf("non-positive dimensions %dx%d", c.Width, c.Height)}
		}
	}
	for i := range d.Pins {
		p := &d.Pins[i]
		if p.Cell < 0 || p.Cell >= len(d.Cells) {
			return &ValidationError{Entity: "pin", Index: i, Reason: fmt.Sprintf("references cell %d out of range", p.Cell)}
		}
	}
	for i := range d.Nets {
		n := &d.Nets[i]
		if n.Weight < 0 {
			return &ValidationError{Entity: "net", Index: i, Reason: fmt.Sprintf("negative weight %g", n.Weight)}
		}
		for _, pinIdx := range n.Pins {
			if pinIdx < 0 || pinIdx >= len(d.Pins) {
				return &ValidationError{Entity: "net", Index: i, Reason: fmt.Sprintf("references pin %d out of range", pinIdx)}
			}
		}
	}
	for i := range d.SymGroups {
		g := &d.SymGroups[i]
		for _, pair := range g.Pairs {
			if pair.CellA < 0 || pair.CellA >= len(d.Cells) {
				return &ValidationError{Entity: "symgroup", Index: i, Reason: fmt.Sprintf("pair references cell %d out of range", pair.CellA)}
			}
			if pair.CellB < 0 || pair.CellB >= len(d.Cells) {
				return &ValidationError{Entity: "symgroup", Index: i, Reason: fmt.Sprintf("pair references cell %d out of range", pair.CellB)}
			}
			if pair.CellA == pair.CellB {
				return &ValidationError{Entity: "symgroup", Index: i, Reason: fmt.Sprintf("pair references cell %d twice", pair.CellA)}
			}
		}
		for _, cellIdx := range g.SelfSym {
			if cellIdx < 0 || cellIdx >= len(d.Cells) {
				return &ValidationError{Entity: "symgroup", Index: i, Reason: fmt.Sprintf("self-symmetric cell %d out of range", cellIdx)}
			}
		}
	}
	if b := d.Params.Boundary; b != nil {
		if b.XHi <= b.XLo || b.YHi <= b.YLo {
			return &ValidationError{Entity: "params", Index: -1, Reason: "degenerate boundary box"}
		}
	}
	if d.Params.MaxWhiteSpace < 0 {
		return &ValidationError{Entity: "params", Index: -1, Reason: fmt.Sprintf("negative max whitespace %g", d.Params.MaxWhiteSpace)}
	}
	return nil
}
