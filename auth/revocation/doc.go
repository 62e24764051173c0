// Package revocation records session tokens invalidated by logout until
// their own expiry.
//
// Entries are keyed by the SHA-256 digest of the raw token, so the registry
// never stores a usable credential. Three backends implement Registry:
//
//   - DatabaseRegistry: the revoked_tokens table, purged by a Sweeper
//   - RedisRegistry: one key per token with native expiry
//   - MemoryRegistry: a guarded map, for tests and single-node development
//
// New wraps the database and redis backends in a Guarded, which trips a
// circuit breaker while the store stays down. No call is retried: a failed
// write or lookup reaches the caller as an error.
//
// Revoke is idempotent and never extends an existing entry. IsRevoked treats
// entries past their expiry as absent whether or not they were purged yet.
package revocation
