package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. The fetcher wraps network
// failures, 429s, and 5xx statuses with it; anything else aborts the
// retry loop on the first attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, doubling the delay after each
// failure. Only errors wrapped in [RetryableError] are retried. The
// last error is returned when every attempt fails; a cancelled context
// cuts the wait short and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.As(err, new(*RetryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
