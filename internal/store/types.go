package store

import (
	"fmt"
	"time"
)

// JobConfig holds the configuration a placement run was started with
// (solution copy). Kept alongside the solution so a run is reproducible
// from its artifacts alone.
type JobConfig struct {
	NetlistPath string  `json:"netlistPath"`
	Order       string  `json:"order"` // first, zero
	MaxIters    int     `json:"maxIters"`
	Seed        int64   `json:"seed"`
	Alpha       float64 `json:"alpha"`
	Rate        float64 `json:"rate,omitempty"`
}

// Solution is a persisted placement result: the final variable vector, the
// rounded integer cell coordinates, and the per-category objective
// breakdown at the final point. All fields serialize to JSON.
type Solution struct {
	// JobID is the unique identifier for this placement run.
	JobID string `json:"jobId"`

	// Params is the final raw variable vector (x block, y block, axes).
	Params []float64 `json:"params"`

	// Cells maps cell names to their placed integer lower-left corners.
	Cells []PlacedCell `json:"cells"`

	// Objective is the total penalty at the final point, with the
	// per-category terms alongside.
	Objective   float64 `json:"objective"`
	Hpwl        float64 `json:"hpwl"`
	Overlap     float64 `json:"overlap"`
	OutOfBounds float64 `json:"outOfBounds"`
	Asymmetry   float64 `json:"asymmetry"`
	Path        float64 `json:"path"`

	// Iterations is the number of outer iterations the run executed.
	Iterations int `json:"iterations"`

	// Timestamp records when this solution was saved.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration.
	Config JobConfig `json:"config"`
}

// PlacedCell is one cell's final placement.
type PlacedCell struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// SolutionInfo contains metadata about a solution without the full
// parameter data. Used for listing runs without loading large vectors.
type SolutionInfo struct {
	JobID       string    `json:"jobId"`
	Objective   float64   `json:"objective"`
	Iterations  int       `json:"iterations"`
	Timestamp   time.Time `json:"timestamp"`
	Order       string    `json:"order"`
	NumCells    int       `json:"numCells"`
	NetlistPath string    `json:"netlistPath"`
}

// ToInfo converts a full Solution to its metadata.
func (s *Solution) ToInfo() SolutionInfo {
	return SolutionInfo{
		JobID:       s.JobID,
		Objective:   s.Objective,
		Iterations:  s.Iterations,
		Timestamp:   s.Timestamp,
		Order:       s.Config.Order,
		NumCells:    len(s.Cells),
		NetlistPath: s.Config.NetlistPath,
	}
}

// Validate checks that the solution has coherent data before it is saved or
// after it is loaded.
func (s *Solution) Validate() error {
	if s.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(s.Params) == 0 {
		return &ValidationError{Field: "Params", Reason: "cannot be empty"}
	}
	if len(s.Cells) == 0 {
		return &ValidationError{Field: "Cells", Reason: "cannot be empty"}
	}
	// Params layout is x block + y block + axes, so it has at least two
	// variables per placed cell.
	if len(s.Params) < 2*len(s.Cells) {
		return &ValidationError{
			Field:  "Params",
			Reason: fmt.Sprintf("length %d too short for %d cells", len(s.Params), len(s.Cells)),
		}
	}
	if s.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if s.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if s.Config.NetlistPath == "" {
		return &ValidationError{Field: "Config.NetlistPath", Reason: "cannot be empty"}
	}
	if s.Config.Order == "" {
		return &ValidationError{Field: "Config.Order", Reason: "cannot be empty"}
	}
	if s.Config.MaxIters <= 0 {
		return &ValidationError{Field: "Config.MaxIters", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a solution validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
