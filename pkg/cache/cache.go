// Package cache stores rendered artifacts so repeated renders of the same
// tree skip the narration pass.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys come from a [Keyer]. [DefaultKeyer] derives artifact keys from the
// content hash of the input tree and every option that changes the output,
// so a key never maps to a stale artifact. [ScopedKeyer] adds a namespace
// prefix, which the CLI uses to separate artifacts produced by different
// releases.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts are kept by default.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
