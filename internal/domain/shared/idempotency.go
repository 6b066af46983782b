package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed keys to prevent duplicate side effects.
// The billing jobs use it to make same-day re-runs of notification dispatch
// no-ops.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already set.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a previously marked key so the work can be retried.
	// Callers use it to back out a mark when the guarded side effect failed.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
