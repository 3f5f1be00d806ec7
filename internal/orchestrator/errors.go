package orchestrator

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the scheduler and the status/result facade.
var (
	ErrNotFound  = errors.New("analysis job not found")
	ErrNotReady  = errors.New("analysis results not ready")
	ErrConflict  = errors.New("request id already registered")
	ErrQueueFull = errors.New("analysis queue is full")
)

// ValidationError reports a malformed submission. It is surfaced to the client
// immediately and never enters job state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// StepExecutionError is the terminal failure of one pipeline step after the
// retry policy exhausted all attempts. Err carries the last attempt's cause.
type StepExecutionError struct {
	Step     string
	Attempts int
	Err      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempts: %v", e.Step, e.Attempts, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// JobFailedError is returned by the result facade for a job in the error
// state, carrying the stored failure reason so clients can render it.
type JobFailedError struct {
	RequestID string
	Reason    string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("analysis %s failed: %s", e.RequestID, e.Reason)
}
