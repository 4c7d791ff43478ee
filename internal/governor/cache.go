package governor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is an in-memory TTL cache bounded by entry count.
// Expired entries are dropped on lookup, on capacity pressure and by the janitor.
type Cache struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	entries    map[string]*cacheEntry
	maxEntries int
	enabled    bool
	seq        uint64

	hits   int64
	misses int64
	sets   int64
}

type cacheEntry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
	seq      uint64 // insertion order, breaks storedAt ties
}

func (e *cacheEntry) olderThan(o *cacheEntry) bool {
	if e.storedAt.Equal(o.storedAt) {
		return e.seq < o.seq
	}
	return e.storedAt.Before(o.storedAt)
}

func (e *cacheEntry) fresh(now time.Time) bool {
	return now.Before(e.storedAt.Add(e.ttl))
}

// CacheStats is a point-in-time view of the cache counters.
type CacheStats struct {
	Enabled    bool    `json:"enabled"`
	Size       int     `json:"size"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Sets       int64   `json:"sets"`
	HitRate    float64 `json:"hit_rate"`
}

// NewCache creates a cache holding at most maxEntries live entries.
func NewCache(clock clockwork.Clock, maxEntries int, enabled bool) *Cache {
	return &Cache{
		clock:      clock,
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		enabled:    enabled,
	}
}

// Get returns the value stored under key if it is still fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return nil, false
	}
	e, ok := c.entries[key]
	if ok && e.fresh(c.clock.Now()) {
		c.hits++
		return e.value, true
	}
	if ok {
		delete(c.entries, key) // expired
	}
	c.misses++
	return nil, false
}

// Put stores value under key for ttl, replacing any previous entry.
func (c *Cache) Put(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	now := c.clock.Now()
	if _, exists := c.entries[key]; !exists {
		c.evictIfNeeded(now)
	}
	c.seq++
	c.entries[key] = &cacheEntry{value: value, storedAt: now, ttl: ttl, seq: c.seq}
	c.sets++
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear drops every entry and zeroes the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.hits, c.misses, c.sets = 0, 0, 0
}

// SetEnabled switches caching on or off. Disabling keeps stored entries.
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Stats returns current size and hit/miss counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := CacheStats{
		Enabled:    c.enabled,
		Size:       len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
		Sets:       c.sets,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictIfNeeded makes room for one new entry.
// Removes expired entries first, then the oldest by storedAt. Caller holds c.mu.
func (c *Cache) evictIfNeeded(now time.Time) {
	if c.maxEntries <= 0 || len(c.entries) < c.maxEntries {
		return
	}

	// Phase 1: remove expired
	for k, e := range c.entries {
		if !e.fresh(now) {
			delete(c.entries, k)
		}
	}

	// Phase 2: remove oldest entries until under limit
	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldest *cacheEntry
		for k, e := range c.entries {
			if oldest == nil || e.olderThan(oldest) {
				oldestKey, oldest = k, e
			}
		}
		if oldest == nil {
			break
		}
		delete(c.entries, oldestKey)
	}
}

// sweep removes expired entries and returns how many were dropped.
func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	n := 0
	for k, e := range c.entries {
		if !e.fresh(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// RunJanitor periodically removes expired entries until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := c.sweep(); n > 0 {
				slog.Debug("cache: swept expired entries", slog.Int("count", n))
			}
		}
	}
}
