package orchestrator

import (
	"context"
	"time"
)

const (
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
)

// RetryPolicy wraps a step call with bounded retries, capped-exponential
// backoff and a per-attempt timeout. A timed-out attempt counts as a failed
// attempt, not a distinct error class.
type RetryPolicy struct {
	MaxRetries     int           // additional attempts beyond the first
	AttemptTimeout time.Duration // per-attempt deadline; 0 disables
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
}

// Do runs fn until it succeeds or attempts are exhausted, then returns a
// StepExecutionError carrying the last failure. Backoff between attempts
// respects ctx cancellation.
func (p RetryPolicy) Do(ctx context.Context, step string, fn func(context.Context) error) error {
	attempts := p.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.BaseBackoff
	if backoff <= 0 {
		backoff = defaultBaseBackoff
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		cancel := func() {}
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return &StepExecutionError{Step: step, Attempts: attempt, Err: ctx.Err()}
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return &StepExecutionError{Step: step, Attempts: attempts, Err: lastErr}
}
