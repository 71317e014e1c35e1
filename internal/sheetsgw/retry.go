package sheetsgw

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	minAttempts     = 3
	perAttemptCap   = 10 * time.Second
	baseBackoff     = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// withRetry wraps one logical Sheet Gateway operation with a bounded,
// exponential-backoff retry (spec §4.2: "≥3 attempts, exponential backoff,
// capped per-attempt timeout ≤10s"). fn is called with a per-attempt
// context; classify turns the last error into one of the gateway's typed
// sentinels.
func withRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts < minAttempts {
		attempts = minAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttemptCap)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return classify(err)
		}

		if attempt == attempts-1 {
			break
		}

		delay := backoffDelay(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if isRetryable(lastErr) {
		return ErrTransientExhausted
	}
	return classify(lastErr)
}

func backoffDelay(attempt int) time.Duration {
	d := time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d/2 + jitter
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 403, 404:
			return false
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return true
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 403:
			return ErrPermissionDenied
		case 404:
			return ErrNotFound
		}
	}
	return ErrTransientExhausted
}
