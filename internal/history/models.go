package history

import "time"

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeCompleted marks a run that reached the workload; the exit
	// code is the workload's own.
	OutcomeCompleted Outcome = "completed"
	// OutcomeSetupFailed marks a run aborted before the workload launched.
	OutcomeSetupFailed Outcome = "setup_failed"
)

// Run is one ledger entry.
type Run struct {
	ID              int64
	RunID           string
	Outcome         Outcome
	ExitCode        int
	Workload        string
	ServiceStarted  bool
	ServiceReady    bool
	PrepareFailures int
	ErrorMessage    string
	StartedAt       time.Time
	Duration        time.Duration
}
