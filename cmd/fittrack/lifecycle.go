package main

import (
	"context"
	"time"

	"github.com/kbukum/fittrack/auth/revocation"
	"github.com/kbukum/fittrack/logger"
)

// lifecycle holds what the ready and stop hooks act on. Fields are filled
// in while the app is configured.
type lifecycle struct {
	log         *logger.Logger
	started     time.Time
	revocations revocation.Registry
	sweeper     *revocation.Sweeper
}

// ready clears revocations that expired while the service was down, so the
// first sweep does not wait a full interval.
func (l *lifecycle) ready(ctx context.Context) error {
	if l.sweeper != nil {
		l.sweeper.Sweep(ctx)
	}
	return nil
}

// stop logs the uptime and, for a remote registry, the breaker position at
// shutdown.
func (l *lifecycle) stop(context.Context) error {
	fields := map[string]interface{}{"uptime": time.Since(l.started).Round(time.Second).String()}
	if g, ok := l.revocations.(*revocation.Guarded); ok {
		fields["revocation_breaker"] = g.BreakerState().String()
	}
	l.log.Info("Stopping fittrack", fields)
	return nil
}
