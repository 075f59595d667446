package client

import (
	"context"
	"math"
	"strconv"
	"time"
)

// RetryConfig holds the knobs for the backoff schedule.
type RetryConfig struct {
	// MaxRetries is the retry budget R; up to R+1 total tries are made.
	MaxRetries int

	// BackoffBase is the base of the exponential wait formula.
	BackoffBase float64

	// BackoffCap is the upper bound for any computed wait.
	BackoffCap time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  4,
		BackoffBase: 0.8,
		BackoffCap:  8 * time.Second,
	}
}

// statusWait computes the wait before retrying a 429/503 response without a
// usable Retry-After header: min(base^attempt * 2, cap), attempt zero-indexed.
func (rc RetryConfig) statusWait(attempt int) time.Duration {
	return clampWait(math.Pow(rc.BackoffBase, float64(attempt))*2, rc.BackoffCap)
}

// transportWait computes the wait before retrying a transport failure:
// min(base^(attempt+1) * 2, cap).
func (rc RetryConfig) transportWait(attempt int) time.Duration {
	return clampWait(math.Pow(rc.BackoffBase, float64(attempt+1))*2, rc.BackoffCap)
}

// retryAfterWait computes the wait for a 429/503 response. A Retry-After
// header that parses as a number takes priority over the exponential formula;
// either way the result is capped.
func (rc RetryConfig) retryAfterWait(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.ParseFloat(retryAfter, 64); err == nil {
			return clampWait(secs, rc.BackoffCap)
		}
	}
	return rc.statusWait(attempt)
}

// clampWait converts seconds to a duration bounded by [0, cap]. Negative and
// NaN inputs clamp to zero so a bad wait can never fail a sleep. The cap
// comparison happens in float space: converting first would overflow the
// int64 nanosecond range for very large inputs (Inf included) and come out
// negative.
func clampWait(seconds float64, cap time.Duration) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if seconds >= cap.Seconds() {
		return cap
	}
	return time.Duration(seconds * float64(time.Second))
}

// sleep waits for d while remaining responsive to context cancellation. The
// wait itself never fails; only cancellation surfaces an error.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ErrContextCancelled
	case <-time.After(d):
		return nil
	}
}
