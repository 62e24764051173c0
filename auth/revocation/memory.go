package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry keeps revocations in process memory.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

var (
	_ Registry = (*MemoryRegistry)(nil)
	_ Purger   = (*MemoryRegistry)(nil)
)

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry(opts ...Option) *MemoryRegistry {
	o := buildOptions(opts)
	return &MemoryRegistry{entries: make(map[string]time.Time), now: o.now}
}

// Revoke implements Registry.
func (r *MemoryRegistry) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	expiresAt = normalize(expiresAt)
	if !expiresAt.After(r.now()) {
		return nil
	}

	key := Key(token)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		r.entries[key] = expiresAt
	}
	return nil
}

// IsRevoked implements Registry.
func (r *MemoryRegistry) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	exp, ok := r.entries[Key(token)]
	r.mu.RUnlock()
	return ok && r.now().Before(exp), nil
}

// Purge implements Purger.
func (r *MemoryRegistry) Purge(_ context.Context) (int64, error) {
	now := r.now()
	var n int64

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, exp := range r.entries {
		if !now.Before(exp) {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired or not.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
