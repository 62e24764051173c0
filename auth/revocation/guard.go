package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/resilience"
)

// GuardConfig tunes the breaker around a remote registry.
type GuardConfig struct {
	MaxFailures int
	Cooldown    time.Duration
}

// Guarded wraps a Registry whose backend can fail. Every call reaches the
// backend at most once and its error is returned as is; once MaxFailures
// calls in a row have failed the breaker rejects calls with
// resilience.ErrOpen until Cooldown passes.
type Guarded struct {
	inner   Registry
	breaker *resilience.Breaker
}

var _ Registry = (*Guarded)(nil)

// NewGuarded wraps inner. Breaker transitions are logged at warn level.
func NewGuarded(inner Registry, cfg GuardConfig, log *logger.Logger) *Guarded {
	log = log.WithComponent("revocation")
	return &Guarded{
		inner: inner,
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			Name:        "revocation-registry",
			MaxFailures: cfg.MaxFailures,
			Cooldown:    cfg.Cooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn("registry breaker state changed", logger.Fields(
					"breaker", name, "from", from.String(), "to", to.String()))
			},
		}),
	}
}

// Revoke implements Registry.
func (g *Guarded) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	err := g.breaker.Do(func() error {
		return g.inner.Revoke(ctx, token, expiresAt)
	})
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}

// IsRevoked implements Registry.
func (g *Guarded) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := g.breaker.Do(func() error {
		var err error
		revoked, err = g.inner.IsRevoked(ctx, token)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return revoked, nil
}

// BreakerState reports the breaker position.
func (g *Guarded) BreakerState() resilience.State { return g.breaker.State() }

// Unwrap returns the wrapped registry.
func (g *Guarded) Unwrap() Registry { return g.inner }
