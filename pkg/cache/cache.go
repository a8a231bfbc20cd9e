// Package cache provides the scratch storage backends behind the chunk store.
//
// A dump that chunks its output writes each rendered subtree fragment to a
// [Cache] and keeps only a short handle in memory until final assembly. The
// backends are interchangeable:
//
//   - [FileCache]: a scratch directory on local disk (the CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [MemoryCache]: process memory, for tests and embedding
//   - [NullCache]: stores nothing; a chunk store over it degrades to
//     keeping everything in memory
//
// Keys are produced by a [Keyer] so every dump writes into its own namespace
// and entries from concurrent dumps never collide.
package cache

import (
	"context"
	"time"
)

// TTLChunk bounds how long an orphaned chunk survives if a dump dies before
// cleaning up after itself.
const TTLChunk = 30 * time.Minute

// Cache is the interface every scratch backend implements. Implementations
// must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for chunks.
type Keyer interface {
	// ChunkKey returns the key of one chunk within one dump.
	ChunkKey(dumpID, chunkID string) string
}

// DefaultKeyer lays keys out as "chunk:<dump>:<chunk>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ChunkKey implements Keyer.
func (DefaultKeyer) ChunkKey(dumpID, chunkID string) string {
	return "chunk:" + dumpID + ":" + chunkID
}

// ScopedKeyer wraps a Keyer with a prefix so several hosts can share one
// Redis or Mongo backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "host:web-1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ChunkKey implements Keyer.
func (k *ScopedKeyer) ChunkKey(dumpID, chunkID string) string {
	return k.prefix + k.inner.ChunkKey(dumpID, chunkID)
}
