package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which order reference a client-supplied
// Idempotency-Key produced, so a retried submission returns the original
// order instead of creating a second one.
type IdempotencyStore interface {
	// Remember stores the reference under the key unless the key is already
	// taken. It returns the reference that ended up stored and whether this
	// call stored it.
	Remember(ctx context.Context, key, ref string, ttl time.Duration) (string, bool, error)

	// Lookup returns the reference stored under the key, if any
	Lookup(ctx context.Context, key string) (string, bool, error)

	// Close releases resources held by the store
	Close() error
}

// DefaultIdempotencyTTL is how long a processed key shields against replays
const DefaultIdempotencyTTL = 24 * time.Hour
