package coingecko

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// responseCache is a process-wide TTL cache for API responses. Entries
// are replaced on each successful fetch and invalidated only by age;
// the key space is small and enumerable, so unbounded growth over the
// process lifetime is accepted.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// get returns the cached value for key, or false if absent or expired.
func (c *responseCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// set stores value under key, replacing any previous entry.
func (c *responseCache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}
