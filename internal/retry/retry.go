// Package retry provides a small bounded-retry policy used around
// external calls instead of ad hoc sleep loops.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Delay is the pause before each retry.
	Delay time.Duration
	// Retryable decides whether an error is worth retrying.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Do runs op until it succeeds, the attempts are exhausted, the error
// is not retryable, or the context is cancelled. The last error is
// returned.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = op(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}
