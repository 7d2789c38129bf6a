package shared

import (
	"context"
	"time"
)

// IdempotencyStore records processed keys (event IDs, Idempotency-Key headers)
// so that a unit of work is applied at most once within the TTL.
type IdempotencyStore interface {
	// MarkProcessed atomically claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the work can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// ResponseStore keeps the serialized outcome of a claimed key so a repeated
// submission can be answered without re-executing it.
type ResponseStore interface {
	SaveResponse(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// GetResponse returns (nil, false, nil) when nothing has been stored yet
	GetResponse(ctx context.Context, key string) ([]byte, bool, error)
}
