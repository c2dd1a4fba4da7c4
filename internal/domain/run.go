package domain

import "time"

// Run outcome values.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusPartial = "partial" // at least one resource failed
	RunStatusFailed  = "failed"  // nothing converged
)

// Per-resource outcome values.
const (
	OutcomeCreated   = "created"
	OutcomeModified  = "modified"
	OutcomeUnchanged = "unchanged"
	OutcomeRemoved   = "removed"
	OutcomeDeferred  = "deferred" // parent topology not provisioned yet
	OutcomeFailed    = "failed"
)

// Run is the audit record of one reconciliation pass over the manifest
// set. Remote state itself is never stored; every pass re-reads the
// configuration documents.
type Run struct {
	ID         string     `json:"id" db:"id"`
	Trigger    string     `json:"trigger" db:"run_trigger"` // "api", "watch", "cli"
	Status     string     `json:"status" db:"status"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// RunResult is the outcome for one resource within a run. Script holds
// the rendered mutation script when one was executed, empty otherwise.
type RunResult struct {
	ID          string    `json:"id" db:"id"`
	RunID       string    `json:"run_id" db:"run_id"`
	ResourceKey string    `json:"resource" db:"resource_key"`
	Outcome     string    `json:"outcome" db:"outcome"`
	Script      string    `json:"script,omitempty" db:"script"`
	Error       string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RunDetail is a run together with its per-resource results, as returned
// by the API.
type RunDetail struct {
	Run     `json:"run"`
	Results []RunResult `json:"results"`
}
