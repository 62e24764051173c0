package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Registry is the set of revoked tokens.
type Registry interface {
	// Revoke records token as revoked until expiresAt. Revoking a token that
	// is already revoked, or already expired, succeeds without change.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports whether token is revoked and not yet expired.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Purger is implemented by registries whose storage does not expire
// entries on its own.
type Purger interface {
	// Purge deletes expired entries and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}

// Key returns the storage key for a raw token.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Option configures a registry.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to judge expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// normalize returns t in UTC truncated to whole seconds, matching the
// resolution of a JWT exp claim.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
