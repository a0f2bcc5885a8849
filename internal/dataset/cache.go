package dataset

import (
	"sync"
	"time"

	"demandcli/internal/config"
)

// Cache is an in-memory TTL cache for load results, keyed by dataset.
// Entries expire lazily: an expired entry is treated as absent on the next
// Get and recomputed by the caller, there is no background eviction.
type Cache struct {
	mu      sync.RWMutex
	entries map[config.DatasetKey]cacheEntry
	hits    uint64
	misses  uint64
}

type cacheEntry struct {
	result    LoadResult
	expiresAt time.Time
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[config.DatasetKey]cacheEntry),
	}
}

// Get returns the cached result for key if present and not expired.
func (c *Cache) Get(key config.DatasetKey) (LoadResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return LoadResult{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return LoadResult{}, false
	}

	c.hits++
	return entry.result, true
}

// Peek returns the cached result for key without touching the hit and miss
// counters. Used to recheck for a concurrent fill after taking a load lock,
// where the preceding Get already counted the miss.
func (c *Cache) Peek(key config.DatasetKey) (LoadResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return LoadResult{}, false
	}
	return entry.result, true
}

// Set stores a result under key with the given time to live.
func (c *Cache) Set(key config.DatasetKey, result LoadResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
}

// Clear unconditionally removes every entry and returns how many were held.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleared := len(c.entries)
	c.entries = make(map[config.DatasetKey]cacheEntry)
	return cleared
}

// Len returns the number of live entries, counting expired ones until they
// are observed by Get.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
