package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/fittrack/logger"
)

// Client is a pooled go-redis connection. Key-level operations go through
// TypedStore.
type Client struct {
	rdb *goredis.Client
	log *logger.Logger

	closeOnce sync.Once
	closeErr  error
}

// New opens a client for an enabled config. It does not dial; call Ping to
// check connectivity.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	opts, _ := cfg.options()

	log.Debug("redis client configured", logger.Fields(
		"addr", cfg.Addr, "db", cfg.DB, "pool_size", cfg.PoolSize))
	return &Client{rdb: goredis.NewClient(opts), log: log}, nil
}

// Ping round-trips a PING.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the pool. Later calls return the first result.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.log.Debug("closing redis connection")
		c.closeErr = c.rdb.Close()
	})
	return c.closeErr
}

// Unwrap returns the go-redis client.
func (c *Client) Unwrap() *goredis.Client { return c.rdb }
