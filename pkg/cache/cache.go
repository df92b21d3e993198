// Package cache stores solve results keyed by graph content and solver options.
//
// # Overview
//
// A solve is a pure function of the graph and the solver options, so results
// can be reused across runs and across processes. The [Cache] interface is a
// plain byte store with per-entry TTLs; the [Keyer] decides what a key is.
//
// # Backends
//
//   - [NullCache]: stores nothing (--no-cache, tests)
//   - [FileCache]: JSON files under the XDG cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//
// Backend errors are never fatal to callers: the pipeline logs them and
// treats the lookup as a miss.
//
// # Keys
//
// [DefaultKeyer] hashes the canonical graph text and the options that affect
// the result. Wrap it in a [ScopedKeyer] to give a deployment its own
// namespace in a shared backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is how long solve results are kept when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour
