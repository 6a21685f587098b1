// Package retry provides a bounded retry policy with pluggable backoff.
package retry

import (
	"context"
	"time"
)

// Backoff returns the delay to sleep after a failed attempt (0-indexed).
type Backoff func(attempt int) time.Duration

// Exponential returns 2^attempt units.
func Exponential(unit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(1<<uint(attempt)) * unit
	}
}

// Do runs op up to attempts times, sleeping backoff(i) between failures.
// No sleep happens after the final attempt. The last error is returned when
// all attempts fail. Context cancellation interrupts the sleep and wins.
func Do(ctx context.Context, attempts int, backoff Backoff, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		delay := time.Duration(0)
		if backoff != nil {
			delay = backoff(attempt)
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return lastErr
}
