// Package state persists simulation run history using SQLite.
// It tracks runs of wrapped models and the per-update steps within them,
// so past runs can be inspected after the fact.
package state

import "time"

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded simulation run.
type Run struct {
	ID         string
	Model      string
	ConfigPath string
	Engine     string
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Step is one recorded adapter update within a run.
type Step struct {
	RunID      string
	Seq        int
	ModelTime  time.Time
	Iterations int
	WallMS     int64
}

// Store records simulation runs and their steps.
type Store interface {
	// Open opens the store at path; ":memory:" for an in-memory store.
	Open(path string) error

	// InitSchema brings the schema up to date.
	InitSchema() error

	// CreateRun records the start of a run and returns it.
	CreateRun(model, configPath, engine string) (*Run, error)

	// FinishRun marks a run completed or failed.
	FinishRun(id string, status RunStatus, errMsg string) error

	// RecordStep appends one update record to a run.
	RecordStep(runID string, seq int, modelTime time.Time, iterations int, wall time.Duration) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// ListSteps returns a run's steps in sequence order.
	ListSteps(runID string) ([]*Step, error)

	// Close releases the underlying database.
	Close() error
}
