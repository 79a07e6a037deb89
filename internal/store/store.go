package store

// Store defines the interface for placement-solution persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a solution doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveSolution atomically saves a solution for the given job,
	// overwriting any previous one. Implementations should use atomic
	// write strategies (temp file + rename) so a failed write never
	// corrupts an existing solution.
	SaveSolution(jobID string, sol *Solution) error

	// LoadSolution retrieves the solution for the given job.
	// Returns ErrNotFound if none exists.
	LoadSolution(jobID string) (*Solution, error)

	// ListSolutions returns metadata for all persisted runs.
	ListSolutions() ([]SolutionInfo, error)

	// DeleteSolution removes the solution and all associated artifacts
	// (solution.json, trace.jsonl) for the given job.
	// Returns ErrNotFound if none exists.
	DeleteSolution(jobID string) error
}

// ErrNotFound is returned when a requested solution does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing solution error.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	if e.JobID != "" {
		return "solution not found: " + e.JobID
	}
	return "solution not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
