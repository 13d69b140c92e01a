// Package cache provides the single TTL cache abstraction shared by all
// analytics components. Entries are key -> (value, timestamp); reads check TTL
// validity, writes are last-write-wins. Recomputation is idempotent and cheap
// relative to I/O, so no per-key locking is needed beyond the map guard.
package cache

import (
	"sync"
	"time"
)

// Common TTLs, ordered by volatility of the underlying signal.
const (
	TTLVolatile = 2 * time.Minute
	TTLDefault  = 5 * time.Minute
	TTLStable   = 15 * time.Minute
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Cache is a process-wide TTL cache for one value type.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache with the given TTL. Non-positive TTLs fall back to the
// default.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is still within its TTL.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) > c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate removes a single key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
