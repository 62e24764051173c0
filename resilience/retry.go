package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of calls including the first (default: 3).
	Attempts int
	// Backoff is the delay before the second attempt, doubled after each
	// further failure (default: 50ms).
	Backoff time.Duration
	// MaxBackoff caps the delay (default: 2s).
	MaxBackoff time.Duration
	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64
	// Retryable reports whether err is worth another attempt
	// (default: Retryable).
	Retryable func(error) bool
	// OnRetry, when set, is called before sleeping.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (c *RetryConfig) applyDefaults() {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 50 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	if c.Retryable == nil {
		c.Retryable = Retryable
	}
}

// Retryable rejects context cancellation and an open breaker.
func Retryable(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, ErrOpen)
}

// Retry calls fn until it succeeds, returns a non-retryable error, ctx is
// done, or the attempts run out. It returns the last error from fn.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	cfg.applyDefaults()

	var zero T
	wait := cfg.Backoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= cfg.Attempts || !cfg.Retryable(err) {
			return zero, err
		}

		d := jitter(wait, cfg.Jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, d)
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
		wait = min(wait*2, cfg.MaxBackoff)
	}
}

// Do is Retry for calls without a result.
func Do(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	spread := float64(d) * frac
	return time.Duration(float64(d) + (rand.Float64()*2-1)*spread)
}
