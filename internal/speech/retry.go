package speech

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy caps retries of transient service failures with exponential
// backoff plus random jitter. Permanent errors are never retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the service's published rate-limit guidance.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy().MaxDelay
	}
	return p
}

// Do runs op until it succeeds, fails permanently, or attempts run out.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	p = p.withDefaults()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.backoff(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf(
		"giving up after %d attempts: %w",
		p.MaxAttempts, lastErr,
	)
}

// backoff returns base<<attempt capped at MaxDelay, with the upper half
// randomized so synchronized clients spread out.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << attempt
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
