package token

import (
	"sync"
	"time"
)

// entry is a cached signed token with its expiry instant.
type entry struct {
	token     string
	expiresAt time.Time
}

// Cache is a thread-safe map from identity key to a signed token and its
// expiry. Concurrent operations on different keys do not interfere;
// concurrent writes to the same key are last-writer-wins, which is
// acceptable because tokens for the same identity within a validity window
// are interchangeable artifacts of the same claim recipe.
type Cache struct {
	// entries maps identity keys to cached tokens.
	entries map[string]entry

	// now returns the current time. Overridable for tests.
	now func() time.Time

	// mu protects concurrent access to entries.
	mu sync.RWMutex
}

// NewCache creates an empty token cache using the real clock.
func NewCache() *Cache {
	return NewCacheWithClock(time.Now)
}

// NewCacheWithClock creates an empty token cache with an injected clock.
// Tests use this to control expiry without sleeping.
func NewCacheWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get retrieves a cached token.
// Returns (token, true) only if the entry exists and the current time is
// strictly before its expiry. An expired entry is reported as absent; it is
// not removed here, that is the sweeper's job.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expiresAt) {
		return "", false
	}
	return e.token, true
}

// Set stores a token with its expiry, overwriting any previous entry for
// the key. Only one token per identity is cached at a time.
func (c *Cache) Set(key, token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{token: token, expiresAt: expiresAt}
}

// Evict removes exactly one cache entry if present. It is an idempotent
// no-op when the key is absent.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Size returns the current number of entries, including expired entries
// that have not yet been swept.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// PurgeExpired removes all entries whose expiry is at or before the current
// time and returns the number removed. Correctness never depends on this:
// Get already refuses expired entries. Purging only bounds cache occupancy.
func (c *Cache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
