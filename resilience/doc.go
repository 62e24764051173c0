// Package resilience guards calls to an unreliable dependency.
//
// A Breaker fails fast once a dependency has failed MaxFailures times in a
// row, then lets a single probe through after Cooldown. Retry repeats a call
// with doubling backoff while its error is retryable; it suits idempotent
// startup work such as opening a connection:
//
//	db, err := resilience.Retry(ctx, resilience.RetryConfig{Attempts: 5}, func(ctx context.Context) (*gorm.DB, error) {
//		return connect(ctx)
//	})
package resilience
