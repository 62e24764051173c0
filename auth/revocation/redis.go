package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/fittrack/redis"
)

// DefaultRedisPrefix namespaces revocation keys.
const DefaultRedisPrefix = "fittrack:revoked"

type redisEntry struct {
	ExpiresAt int64 `json:"exp"`
}

// RedisRegistry stores one key per revoked token. Redis expires the key
// when the token would have expired, so no sweeping is needed.
type RedisRegistry struct {
	store *redis.TypedStore[redisEntry]
	now   func() time.Time
}

var _ Registry = (*RedisRegistry)(nil)

// NewRedisRegistry creates a registry on client with keys under prefix.
func NewRedisRegistry(client *redis.Client, prefix string, opts ...Option) *RedisRegistry {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	o := buildOptions(opts)
	return &RedisRegistry{
		store: redis.NewTypedStore[redisEntry](client, prefix),
		now:   o.now,
	}
}

// Revoke implements Registry. SET NX keeps the first entry and its TTL.
func (r *RedisRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	expiresAt = normalize(expiresAt)
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	if _, err := r.store.SaveIfAbsent(ctx, Key(token), &redisEntry{ExpiresAt: expiresAt.Unix()}, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements Registry.
func (r *RedisRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := r.store.Exists(ctx, Key(token))
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return ok, nil
}
