package orchestrator

import "errors"

var (
	// ErrDetectionInProgress is returned by Start while a run is active.
	// Runs are never queued or merged; the caller must wait or Reset.
	ErrDetectionInProgress = errors.New("detection already in progress")

	// ErrResetRequired is returned by Start after a run has completed or
	// failed. Reset must be called before starting again.
	ErrResetRequired = errors.New("previous detection must be reset before starting again")

	// ErrRunReset is returned by Run.Wait when the run was abandoned by Reset.
	ErrRunReset = errors.New("detection run was reset")

	// ErrUnexpectedResult is returned when a probe value does not match its
	// category's result type.
	ErrUnexpectedResult = errors.New("unexpected probe result type")
)

// OrchestrationError wraps a fatal error raised by the orchestrator's own
// logic during a run.
type OrchestrationError struct {
	RunID string
	Err   error
}

// Error implements the error interface.
func (e *OrchestrationError) Error() string {
	return "detection run " + e.RunID + " failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *OrchestrationError) Unwrap() error {
	return e.Err
}
