// Package retry provides a bounded, iterative retry executor for the
// post-processing stages.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Executor invokes an operation up to MaxRetries+1 times, waiting
// BaseDelay*attemptNumber between attempts. With MaxRetries=2 and
// BaseDelay=400ms the delays are 400ms then 800ms.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func New(maxRetries int, baseDelay time.Duration) *Executor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Executor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      sleepContext,
	}
}

// ExhaustedError wraps the final underlying failure with the attempt count.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Do runs op until it succeeds or the retry budget is exhausted. On
// exhaustion the last underlying failure propagates, wrapped with the
// attempt count. A context cancellation during backoff returns the
// context error wrapping the last failure.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt > e.maxRetries {
			return &ExhaustedError{Attempts: attempt, Err: lastErr}
		}
		if err := e.sleep(ctx, e.baseDelay*time.Duration(attempt)); err != nil {
			return fmt.Errorf("%v: %w", err, lastErr)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
