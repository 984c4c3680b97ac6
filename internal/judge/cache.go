package judge

import (
	"sync"

	"dealdesk/internal/logging"
)

// DefaultCacheSize bounds the in-memory judgment cache.
const DefaultCacheSize = 256

// MemoryCache is a bounded in-memory judgment cache keyed by
// (definitionID, submissionID). When full it evicts the oldest entry.
// Safe for concurrent use by all runner goroutines.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
	order   []string
	max     int
}

// NewMemoryCache creates a cache holding at most max raw judgments.
func NewMemoryCache(max int) *MemoryCache {
	if max < 1 {
		max = DefaultCacheSize
	}
	return &MemoryCache{
		entries: make(map[string]string),
		max:     max,
	}
}

func cacheKey(definitionID, submissionID string) string {
	return definitionID + "|" + submissionID
}

// Get implements types.JudgmentCache.
func (c *MemoryCache) Get(definitionID, submissionID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.entries[cacheKey(definitionID, submissionID)]
	return raw, ok
}

// Put implements types.JudgmentCache. Overwriting an existing key does
// not refresh its eviction position.
func (c *MemoryCache) Put(definitionID, submissionID, raw string) error {
	key := cacheKey(definitionID, submissionID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.max {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			logging.Cache("evicted %s", oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = raw
	return nil
}

// Len returns the current entry count.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
