package store

import (
	"time"

	"chmatch/internal/matching"
)

// RunStatus tracks the lifecycle of a batch run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is one invocation of the batch runner.
type Run struct {
	ID           string         `json:"id"`
	InputPath    string         `json:"input_path"`
	Sheet        string         `json:"sheet"`
	OutputPath   string         `json:"output_path,omitempty"`
	Status       RunStatus      `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at,omitzero"`
	Total        int            `json:"total"`
	Processed    int            `json:"processed"`
	NeedsReview  int            `json:"needs_review"`
	Errors       int            `json:"errors"`
	Counts       map[string]int `json:"counts,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Duration is the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// OutcomeRecord is a stored per-row outcome.
type OutcomeRecord struct {
	RunID     string           `json:"run_id"`
	Row       int              `json:"row"`
	Outcome   matching.Outcome `json:"outcome"`
	CreatedAt time.Time        `json:"created_at"`
}
