package service

import "errors"

var (
	// ErrStageNotReady rejects advancement past an unmet human-review gate.
	ErrStageNotReady = errors.New("stage not ready: approval required")

	// ErrJobConflict rejects a second active job for the same (project, stage).
	ErrJobConflict = errors.New("active job already exists for this stage")

	// ErrInvalidProgress rejects a decreasing or out-of-range progress update.
	ErrInvalidProgress = errors.New("progress update rejected")

	// ErrProjectTerminal rejects mutation of a completed or failed project.
	ErrProjectTerminal = errors.New("project is in a terminal state")

	// ErrNotReopenable rejects administrative retry of a project that is not
	// failed or has no failed job to retry from.
	ErrNotReopenable = errors.New("project cannot be reopened")
)

// FailureKind is the normalized classification workers report for a stage
// failure. Retryable failures go through the backoff policy; fatal ones fail
// the project immediately.
type FailureKind int

const (
	FailureRetryable FailureKind = iota
	FailureFatal
)

func (k FailureKind) String() string {
	if k == FailureFatal {
		return "fatal"
	}
	return "retryable"
}
