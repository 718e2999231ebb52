// Package cache provides byte-oriented cache backends for registry responses.
//
// Backends share the [Cache] interface so the HTTP client in
// pkg/integrations can store proxy and GitHub responses without knowing
// where they live:
//
//   - [NullCache] stores nothing (--no-cache)
//   - [MemoryCache] keeps entries in process memory
//   - [FileCache] keeps entries on disk (CLI default, ~/.cache/gomodwatch)
//   - [RedisCache] shares entries between API server instances
//
// Keys are produced by a [Keyer] so that responses from different proxies
// never collide.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with a per-entry time-to-live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached registry response.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
