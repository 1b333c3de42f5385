package spaceweather

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ttlCache keeps raw upstream payloads with explicit timestamps. Entries
// younger than fresh are served directly; entries younger than stale are
// served only when a refetch fails.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	fresh   time.Duration
	stale   time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

func newTTLCache(fresh, stale time.Duration, clock clockwork.Clock) *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		fresh:   fresh,
		stale:   stale,
		clock:   clock,
	}
}

func (c *ttlCache) getFresh(key string) ([]byte, bool) {
	return c.get(key, c.fresh)
}

func (c *ttlCache) getStale(key string) ([]byte, bool) {
	return c.get(key, c.stale)
}

func (c *ttlCache) get(key string, maxAge time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) >= maxAge {
		return nil, false
	}
	return e.data, true
}

func (c *ttlCache) put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, fetchedAt: c.clock.Now()}
}

// evictExpired drops entries past the stale horizon.
func (c *ttlCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if c.clock.Since(e.fetchedAt) >= c.stale {
			delete(c.entries, key)
		}
	}
}
