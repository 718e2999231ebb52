package resolve

import (
	"sync"
	"time"
)

// Entry is one memoized resolution. Found is false for the "no data"
// outcome, which is cached like any other so repeated misses stay off the
// network until the entry expires.
type Entry struct {
	Value     string    // Latest version, for latest lookups
	Versions  []string  // Newest first, for version-list lookups
	Found     bool      // Whether any source produced a usable result
	FetchedAt time.Time // When the sources were queried
}

// Cache is a TTL map from package key to Entry. It is safe for concurrent
// use; concurrent writers for the same key race and the last one wins.
//
// Liveness is checked on every read, so an expired entry is never served
// even before [Cache.Sweep] removes it.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates an empty cache. A non-positive ttl means DefaultTTL.
// now may be nil to use time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: make(map[string]Entry)}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the live entry for key.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		return Entry{}, false
	}
	return e, true
}

// Put stores e under key. A zero FetchedAt is set to the current time.
func (c *Cache) Put(key string, e Entry) {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = c.now()
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(e Entry) bool {
	return c.now().Sub(e.FetchedAt) >= c.ttl
}
