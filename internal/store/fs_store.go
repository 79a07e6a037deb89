package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements the Store interface using filesystem-based
// persistence. Solutions live in <baseDir>/jobs/<jobID>/.
//
// Thread-safety: atomic file operations (rename) only, no locks. Multiple
// goroutines can safely call methods concurrently.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) jobDir(jobID string) string {
	return filepath.Join(fs.baseDir, "jobs", jobID)
}

func (fs *FSStore) solutionPath(jobID string) string {
	return filepath.Join(fs.jobDir(jobID), "solution.json")
}

// SaveSolution atomically saves a solution for the given job.
// Uses temp file + rename pattern to ensure atomicity.
func (fs *FSStore) SaveSolution(jobID string, sol *Solution) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}
	if sol == nil {
		return fmt.Errorf("solution cannot be nil")
	}

	jobDir := fs.jobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize solution: %w", err)
	}

	tempPath := fs.solutionPath(jobID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp solution file: %w", err)
	}

	finalPath := fs.solutionPath(jobID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename solution file: %w", err)
	}

	slog.Debug("Solution saved", "jobID", jobID, "path", finalPath)
	return nil
}

// LoadSolution retrieves the solution for the given job.
func (fs *FSStore) LoadSolution(jobID string) (*Solution, error) {
	if jobID == "" {
		return nil, fmt.Errorf("jobID cannot be empty")
	}

	path := fs.solutionPath(jobID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{JobID: jobID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat solution file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution file: %w", err)
	}

	var sol Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("failed to deserialize solution: %w", err)
	}

	slog.Debug("Solution loaded", "jobID", jobID, "path", path)
	return &sol, nil
}

// ListSolutions returns metadata for all persisted runs.
func (fs *FSStore) ListSolutions() ([]SolutionInfo, error) {
	jobsDir := filepath.Join(fs.baseDir, "jobs")

	if _, err := os.Stat(jobsDir); os.IsNotExist(err) {
		return []SolutionInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat jobs directory: %w", err)
	}

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs directory: %w", err)
	}

	var infos []SolutionInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		jobID := entry.Name()
		if _, err := os.Stat(fs.solutionPath(jobID)); os.IsNotExist(err) {
			continue
		}

		sol, err := fs.LoadSolution(jobID)
		if err != nil {
			slog.Warn("Failed to load solution for listing", "jobID", jobID, "error", err)
			continue
		}

		infos = append(infos, sol.ToInfo())
	}

	slog.Debug("Listed solutions", "count", len(infos))
	return infos, nil
}

// DeleteSolution removes the solution and all associated artifacts.
func (fs *FSStore) DeleteSolution(jobID string) error {
	if jobID == "" {
		return fmt.Errorf("jobID cannot be empty")
	}

	jobDir := fs.jobDir(jobID)

	if _, err := os.Stat(jobDir); os.IsNotExist(err) {
		return &NotFoundError{JobID: jobID}
	} else if err != nil {
		return fmt.Errorf("failed to stat job directory: %w", err)
	}

	if err := os.RemoveAll(jobDir); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}

	slog.Debug("Solution deleted", "jobID", jobID, "path", jobDir)
	return nil
}
