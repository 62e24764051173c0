package revocation

import (
	"fmt"
	"time"

	"github.com/kbukum/fittrack/database"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/redis"
)

// Backend names a Registry implementation.
type Backend string

const (
	BackendDatabase Backend = "database"
	BackendRedis    Backend = "redis"
	BackendMemory   Backend = "memory"
)

// Config selects and tunes the revocation backend.
type Config struct {
	// Backend is database, redis or memory (default: database).
	Backend Backend `yaml:"backend" mapstructure:"backend"`

	// RedisPrefix namespaces keys for the redis backend.
	RedisPrefix string `yaml:"redis_prefix" mapstructure:"redis_prefix"`

	// SweepInterval is how often expired entries are purged (default: "1h").
	// "0" disables sweeping.
	SweepInterval string `yaml:"sweep_interval" mapstructure:"sweep_interval"`

	// BreakerFailures is how many failed calls in a row stop further calls
	// until BreakerCooldown passes (default: 5).
	BreakerFailures int `yaml:"breaker_failures" mapstructure:"breaker_failures"`

	// BreakerCooldown is how long the breaker stays open (default: "30s").
	BreakerCooldown string `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendDatabase
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = DefaultRedisPrefix
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1h"
	}
	if c.BreakerFailures <= 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerCooldown == "" {
		c.BreakerCooldown = "30s"
	}
}

// Validate checks the backend name and durations.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDatabase, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("auth.revocation.backend must be database, redis or memory (got: %q)", c.Backend)
	}
	if _, err := c.sweepInterval(); err != nil {
		return err
	}
	if _, err := c.guard(); err != nil {
		return err
	}
	return nil
}

func (c *Config) guard() (GuardConfig, error) {
	d, err := time.ParseDuration(c.BreakerCooldown)
	if err != nil {
		return GuardConfig{}, fmt.Errorf("auth.revocation.breaker_cooldown: invalid duration %q: %w", c.BreakerCooldown, err)
	}
	if d <= 0 {
		return GuardConfig{}, fmt.Errorf("auth.revocation.breaker_cooldown must be positive (got: %s)", d)
	}
	return GuardConfig{MaxFailures: c.BreakerFailures, Cooldown: d}, nil
}

func (c *Config) sweepInterval() (time.Duration, error) {
	if c.SweepInterval == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("auth.revocation.sweep_interval: invalid duration %q: %w", c.SweepInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("auth.revocation.sweep_interval must not be negative (got: %s)", d)
	}
	return d, nil
}

// New builds the configured registry. db is required for the database
// backend and rc for the redis backend; both are wrapped in a Guarded.
func New(cfg Config, db *database.DB, rc *redis.Client, log *logger.Logger, opts ...Option) (Registry, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	guard, _ := cfg.guard()

	switch cfg.Backend {
	case BackendRedis:
		if rc == nil {
			return nil, fmt.Errorf("revocation backend redis requires redis.enabled")
		}
		return NewGuarded(NewRedisRegistry(rc, cfg.RedisPrefix, opts...), guard, log), nil
	case BackendMemory:
		return NewMemoryRegistry(opts...), nil
	default:
		if db == nil {
			return nil, fmt.Errorf("revocation backend database requires a database connection")
		}
		return NewGuarded(NewDatabaseRegistry(db, opts...), guard, log), nil
	}
}
