package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/logger"
)

// Sweeper periodically purges expired revocations.
type Sweeper struct {
	purger   Purger
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	lastErr error
	stop    chan struct{}
	done    chan struct{}
}

var (
	_ component.Component   = (*Sweeper)(nil)
	_ component.Describable = (*Sweeper)(nil)
)

// NewSweeper creates a sweeper for purger. An interval of zero disables it.
func NewSweeper(purger Purger, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{purger: purger, interval: interval, log: log.WithComponent("revocation-sweeper")}
}

// NewSweeperFromConfig returns a sweeper for reg when it needs one, or nil
// when reg expires entries natively.
func NewSweeperFromConfig(cfg Config, reg Registry, log *logger.Logger) (*Sweeper, error) {
	cfg.ApplyDefaults()
	interval, err := cfg.sweepInterval()
	if err != nil {
		return nil, err
	}
	if g, ok := reg.(*Guarded); ok {
		reg = g.Unwrap()
	}
	p, ok := reg.(Purger)
	if !ok {
		return nil, nil
	}
	return NewSweeper(p, interval, log), nil
}

// Name implements component.Component.
func (s *Sweeper) Name() string { return "revocation-sweeper" }

// Start launches the purge loop. Starting a running sweeper is a no-op.
func (s *Sweeper) Start(_ context.Context) error {
	if s.interval <= 0 {
		s.log.Info("Revocation sweeping disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	return nil
}

func (s *Sweeper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep runs one purge and records its outcome.
func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.purger.Purge(ctx)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("Revocation purge failed", logger.ErrorFields("purge", err))
		return
	}
	if n > 0 {
		s.log.Debug("Purged expired revocations", map[string]interface{}{"count": n})
	}
}

// Stop ends the purge loop and waits for it to exit. It is safe to call
// more than once and concurrently.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health reports degraded when the last purge failed.
func (s *Sweeper) Health(_ context.Context) component.Health {
	s.mu.Lock()
	err := s.lastErr
	s.mu.Unlock()

	if err != nil {
		return component.Health{Name: s.Name(), Status: component.StatusDegraded, Message: err.Error()}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (s *Sweeper) Describe() component.Description {
	details := "disabled"
	if s.interval > 0 {
		details = fmt.Sprintf("every %s", s.interval)
	}
	return component.Description{Name: "Revocation sweeper", Type: "worker", Details: details}
}
