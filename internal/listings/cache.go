package listings

import (
	"sync"
	"time"

	"github.com/wavemarine/deckworth/internal/models"
)

// DefaultCacheTTL bounds load on the upstream listings source: identical
// filter tuples within the window are served from memory.
const DefaultCacheTTL = 3 * time.Minute

// searchCache caches ranked comparable sets by filter tuple. Entries are
// never served past their TTL. A check-then-fetch race between concurrent
// callers can cause a duplicate upstream fetch; that costs a request, not
// correctness.
type searchCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	comps     []models.Comparable
	timestamp time.Time
}

func newSearchCache(ttl time.Duration) *searchCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &searchCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *searchCache) get(key string) ([]models.Comparable, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.comps, true
}

func (c *searchCache) set(key string, comps []models.Comparable) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{comps: comps, timestamp: time.Now()}
	c.mu.Unlock()
}
