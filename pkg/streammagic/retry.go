package streammagic

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultRetryAttempts is the attempt cap used by DefaultRetryPolicy
	DefaultRetryAttempts = 5

	// DefaultRetryDelay is the delay before the second attempt
	DefaultRetryDelay = 250 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second
)

// RetryPolicy controls the optional retry layer. Only retryable connection
// errors are retried: timeouts, refused or reset connections, unreachable
// hosts and 5xx responses. Protocol and validation errors, DNS failures, 4xx
// responses and caller cancellation are returned immediately.
type RetryPolicy struct {
	// Attempts is the total number of attempts. Values below 2 disable retries.
	Attempts int

	// InitialDelay is the delay before the second attempt; it doubles after each
	// further attempt.
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts (0 = uncapped)
	MaxDelay time.Duration

	// AttemptTimeout bounds each attempt on its own (0 = only the client
	// timeout, which always covers the whole call).
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy returns 5 attempts with exponential backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:     DefaultRetryAttempts,
		InitialDelay: DefaultRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// NoRetry returns a policy with a single attempt. This is the client default.
func NoRetry() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

// Enabled reports whether the policy makes more than one attempt
func (p RetryPolicy) Enabled() bool {
	return p.Attempts > 1
}

// withRetry runs op until it succeeds, fails with a non-retryable error, or
// the attempt cap is reached.
func (c *Client) withRetry(ctx context.Context, op func(attempt int) (any, error)) (any, error) {
	attempts := c.retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	currentDelay := c.retry.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.log.Warn("Retrying request",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("delay", currentDelay),
				zap.Error(lastErr),
			)

			if err := sleepContext(ctx, currentDelay); err != nil {
				return nil, ClassifyNetworkError(err, c.host)
			}

			// Exponential backoff
			currentDelay *= 2
			if c.retry.MaxDelay > 0 && currentDelay > c.retry.MaxDelay {
				currentDelay = c.retry.MaxDelay
			}
		}

		result, err := op(attempt)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
