package cache

import (
	"sync"
	"time"
)

type entry struct {
	payload   any
	expiresAt time.Time
}

// Cache is an in-process key/value store with per-entry TTL. Entries expire
// lazily on Get and eagerly via Sweep. The store is unbounded: the expected
// key space is one entry per merchant/region/year for holidays and one per
// merchant/location/day for weather, so no LRU bound is applied.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the payload for key, or false on a miss. An entry whose TTL
// has elapsed counts as a miss and is deleted immediately.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key, overwriting any existing entry and
// recomputing its expiry from now.
func (c *Cache) Set(key string, payload any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{payload: payload, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval on a background goroutine and
// returns a function that stops it.
func (c *Cache) StartSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
