package revocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/fittrack/component"
	"github.com/kbukum/fittrack/database/dbtest"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/redis"
)

// fakeClock is a settable time source shared by a registry and its test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type backend struct {
	name    string
	reg     Registry
	advance func(time.Duration)
}

func newBackends(t *testing.T) []backend {
	t.Helper()

	memClock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	dbClock := &fakeClock{now: memClock.now}
	redisClock := &fakeClock{now: memClock.now}

	db := dbtest.Open(t, &RevokedToken{})

	mini := miniredis.RunT(t)
	rc, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	return []backend{
		{"memory", NewMemoryRegistry(WithClock(memClock.Now)), memClock.Advance},
		{"database", NewDatabaseRegistry(db, WithClock(dbClock.Now)), dbClock.Advance},
		{"redis", NewRedisRegistry(rc, "", WithClock(redisClock.Now)), func(d time.Duration) {
			redisClock.Advance(d)
			mini.FastForward(d)
		}},
	}
}

func TestRegistry_RevokeThenLookup(t *testing.T) {
	for _, b := range newBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			exp := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

			revoked, err := b.reg.IsRevoked(ctx, "tok-a")
			if err != nil || revoked {
				t.Fatalf("expected not revoked, got %v, %v", revoked, err)
			}

			if err := b.reg.Revoke(ctx, "tok-a", exp); err != nil {
				t.Fatalf("Revoke: %v", err)
			}
			revoked, err = b.reg.IsRevoked(ctx, "tok-a")
			if err != nil || !revoked {
				t.Fatalf("expected revoked, got %v, %v", revoked, err)
			}

			if revoked, _ := b.reg.IsRevoked(ctx, "tok-b"); revoked {
				t.Fatal("unrelated token must not be revoked")
			}
		})
	}
}

func TestRegistry_RevokeIsIdempotent(t *testing.T) {
	for _, b := range newBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			exp := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

			for i := 0; i < 3; i++ {
				if err := b.reg.Revoke(ctx, "tok-a", exp); err != nil {
					t.Fatalf("Revoke #%d: %v", i+1, err)
				}
			}
			// A later expiry must not extend the first entry.
			if err := b.reg.Revoke(ctx, "tok-a", exp.Add(24*time.Hour)); err != nil {
				t.Fatalf("Revoke with later expiry: %v", err)
			}

			if revoked, _ := b.reg.IsRevoked(ctx, "tok-a"); !revoked {
				t.Fatal("expected revoked")
			}
			b.advance(61 * time.Minute)
			if revoked, _ := b.reg.IsRevoked(ctx, "tok-a"); revoked {
				t.Fatal("entry should expire at the first recorded expiry")
			}
		})
	}
}

func TestRegistry_ExpiredRevokeIsNoop(t *testing.T) {
	for _, b := range newBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			past := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

			if err := b.reg.Revoke(ctx, "tok-old", past); err != nil {
				t.Fatalf("Revoke: %v", err)
			}
			if revoked, _ := b.reg.IsRevoked(ctx, "tok-old"); revoked {
				t.Fatal("expired token should not be recorded")
			}
		})
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	db := dbtest.Open(t, &RevokedToken{})

	purgers := map[string]interface {
		Registry
		Purger
	}{
		"memory":   NewMemoryRegistry(WithClock(clock.Now)),
		"database": NewDatabaseRegistry(db, WithClock(clock.Now)),
	}

	for name, reg := range purgers {
		t.Run(name, func(t *testing.T) {
			_ = reg.Revoke(ctx, name+"-short", clock.Now().Add(time.Minute))
			_ = reg.Revoke(ctx, name+"-long", clock.Now().Add(time.Hour))

			n, err := reg.Purge(ctx)
			if err != nil || n != 0 {
				t.Fatalf("expected nothing to purge, got %d, %v", n, err)
			}

			clock.Advance(2 * time.Minute)
			n, err = reg.Purge(ctx)
			if err != nil {
				t.Fatalf("Purge: %v", err)
			}
			if n != 1 {
				t.Fatalf("expected 1 purged, got %d", n)
			}
			if revoked, _ := reg.IsRevoked(ctx, name+"-long"); !revoked {
				t.Fatal("unexpired entry must survive purge")
			}
			clock.Advance(-2 * time.Minute)
		})
	}
}

func TestKey_HidesToken(t *testing.T) {
	k := Key("header.payload.signature")
	if len(k) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(k))
	}
	if k == Key("header.payload.signaturf") {
		t.Fatal("distinct tokens must have distinct keys")
	}
}

func TestDatabaseRegistry_StoresDigest(t *testing.T) {
	db := dbtest.Open(t, &RevokedToken{})
	reg := NewDatabaseRegistry(db)
	ctx := context.Background()

	if err := reg.Revoke(ctx, "raw-token", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	var row RevokedToken
	if err := db.WithContext(ctx).First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.TokenHash != Key("raw-token") {
		t.Fatalf("expected digest key, got %q", row.TokenHash)
	}
}

func TestDatabaseRegistry_ClosedStore(t *testing.T) {
	db := dbtest.Open(t, &RevokedToken{})
	reg := NewDatabaseRegistry(db)
	_ = db.Close()

	ctx := context.Background()
	if _, err := reg.IsRevoked(ctx, "tok"); err == nil {
		t.Fatal("expected lookup error on closed store")
	}
	if err := reg.Revoke(ctx, "tok", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected revoke error on closed store")
	}
}

func TestMemoryRegistry_Concurrent(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := fmt.Sprintf("tok-%d", i%10)
			_ = reg.Revoke(ctx, tok, exp)
			if revoked, _ := reg.IsRevoked(ctx, tok); !revoked {
				t.Errorf("expected %s revoked", tok)
			}
		}(i)
	}
	wg.Wait()

	if reg.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", reg.Len())
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	db := dbtest.Open(t, &RevokedToken{})

	reg, err := New(Config{}, db, nil, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g, ok := reg.(*Guarded)
	if !ok {
		t.Fatalf("expected guarded backend by default, got %T", reg)
	}
	if _, ok := g.Unwrap().(*DatabaseRegistry); !ok {
		t.Fatalf("expected database backend by default, got %T", g.Unwrap())
	}

	reg, err = New(Config{Backend: BackendMemory}, nil, nil, logger.Nop())
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	if _, ok := reg.(*MemoryRegistry); !ok {
		t.Fatalf("expected memory backend, got %T", reg)
	}

	if _, err := New(Config{Backend: BackendRedis}, db, nil, logger.Nop()); err == nil {
		t.Fatal("expected error for redis backend without client")
	}
	if _, err := New(Config{Backend: "etcd"}, db, nil, logger.Nop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := New(Config{BreakerCooldown: "later"}, db, nil, logger.Nop()); err == nil {
		t.Fatal("expected error for invalid breaker cooldown")
	}
}

type failingPurger struct{ err error }

func (f failingPurger) Purge(context.Context) (int64, error) { return 0, f.err }

func TestSweeper(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	reg := NewMemoryRegistry(WithClock(clock.Now))
	_ = reg.Revoke(ctx, "tok", clock.Now().Add(time.Second*2))
	clock.Advance(time.Minute)

	s := NewSweeper(reg, 10*time.Millisecond, logger.Nop())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if reg.Len() != 0 {
		t.Fatal("expected sweeper to purge expired entry")
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSweeper_ConcurrentStartStop(t *testing.T) {
	ctx := context.Background()
	s := NewSweeper(NewMemoryRegistry(), time.Hour, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Start(ctx); err != nil {
				t.Errorf("Start: %v", err)
			}
		}()
	}
	wg.Wait()

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Stop(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Stop: %v", err)
		}
	}
}

func TestSweeper_HealthDegradesOnFailure(t *testing.T) {
	s := NewSweeper(failingPurger{err: errors.New("db down")}, 0, logger.Nop())
	ctx := context.Background()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := s.Health(ctx); h.Status != component.StatusHealthy {
		t.Fatalf("expected healthy, got %s", h.Status)
	}
	s.Sweep(ctx)
	if h := s.Health(ctx); h.Status != component.StatusDegraded {
		t.Fatalf("expected degraded, got %s", h.Status)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNewSweeperFromConfig(t *testing.T) {
	s, err := NewSweeperFromConfig(Config{SweepInterval: "0"}, NewMemoryRegistry(), logger.Nop())
	if err != nil || s == nil {
		t.Fatalf("expected sweeper, got %v, %v", s, err)
	}
	if s.Describe().Details != "disabled" {
		t.Fatalf("expected disabled sweeper, got %q", s.Describe().Details)
	}

	mini := miniredis.RunT(t)
	rc, _ := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	t.Cleanup(func() { _ = rc.Close() })
	s, err = NewSweeperFromConfig(Config{}, NewRedisRegistry(rc, ""), logger.Nop())
	if err != nil || s != nil {
		t.Fatalf("redis needs no sweeper, got %v, %v", s, err)
	}

	db := dbtest.Open(t, &RevokedToken{})
	guarded := NewGuarded(NewDatabaseRegistry(db), GuardConfig{}, logger.Nop())
	s, err = NewSweeperFromConfig(Config{}, guarded, logger.Nop())
	if err != nil || s == nil {
		t.Fatalf("guarded database registry needs a sweeper, got %v, %v", s, err)
	}

	if _, err := NewSweeperFromConfig(Config{SweepInterval: "soon"}, NewMemoryRegistry(), logger.Nop()); err == nil {
		t.Fatal("expected invalid interval error")
	}
}
