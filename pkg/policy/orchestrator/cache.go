package orchestrator

import (
	"sync"
	"time"
)

// cacheKey identifies a cached batch result.
type cacheKey struct {
	nodeID  string
	batchID string
}

// CacheEntry holds one aggregated result with its expiration. Entries are
// replaced wholesale on write and never mutated in place, so a reader
// holding an entry is unaffected by concurrent refreshes.
type CacheEntry struct {
	Result    *AggregatedResult
	CachedAt  time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the entry's TTL has elapsed.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// resultCache is a thread-safe TTL cache of aggregated results keyed by
// (nodeID, batchID).
type resultCache struct {
	ttl     time.Duration
	enabled bool
	entries map[cacheKey]*CacheEntry
	mu      sync.RWMutex
}

func newResultCache(ttl time.Duration, enabled bool) *resultCache {
	return &resultCache{
		ttl:     ttl,
		enabled: enabled,
		entries: make(map[cacheKey]*CacheEntry),
	}
}

// get retrieves a non-expired cached result.
func (c *resultCache) get(nodeID, batchID string) (*AggregatedResult, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey{nodeID, batchID}]
	if !ok || entry.IsExpired() {
		return nil, false
	}
	return entry.Result, true
}

// set stores a result, replacing any existing entry for the same key.
func (c *resultCache) set(nodeID, batchID string, result *AggregatedResult) {
	if !c.enabled {
		return
	}

	now := time.Now()
	entry := &CacheEntry{
		Result:    result,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{nodeID, batchID}] = entry
}

// prune removes expired entries and returns how many were dropped.
func (c *resultCache) prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for k, e := range c.entries {
		if e.IsExpired() {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

// size returns the number of entries, expired ones included.
func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
