// Package retry provides a bounded retry wrapper with linear backoff for
// flaky message round-trips.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs op up to attempts times, sleeping backoff*attempt between tries.
// It returns the first successful result, or the last error wrapped with
// the attempt count once all attempts are exhausted. Context cancellation
// stops the wait early.
func Do[T any](ctx context.Context, attempts int, backoff time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
