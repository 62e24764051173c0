package redis

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	// Enabled turns the component on. Only the redis revocation backend needs it.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	PoolSize     int `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`

	// Timeouts are Go durations such as "3s".
	DialTimeout  string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  string `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
}

// Validate checks an enabled config. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("redis.pool_size must be > 0")
	}
	_, err := c.options()
	return err
}

// options translates the config into go-redis options. Command retries
// are off: a failed command is reported to the caller once.
func (c *Config) options() (*goredis.Options, error) {
	opts := &goredis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		MaxRetries:   -1,
	}
	for _, t := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dial_timeout", c.DialTimeout, &opts.DialTimeout},
		{"read_timeout", c.ReadTimeout, &opts.ReadTimeout},
		{"write_timeout", c.WriteTimeout, &opts.WriteTimeout},
	} {
		d, err := time.ParseDuration(t.raw)
		if err != nil {
			return nil, fmt.Errorf("redis.%s: invalid duration %q: %w", t.key, t.raw, err)
		}
		*t.dst = d
	}
	return opts, nil
}
