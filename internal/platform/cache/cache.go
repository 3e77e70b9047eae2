// Package cache provides a small in-memory LRU cache with per-entry TTL.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	element   *list.Element
}

// MemoryCache is a fixed-capacity LRU cache. Entries expire after their
// TTL; an entry with ttl 0 never expires. Safe for concurrent use.
type MemoryCache[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry[V]
	lru      *list.List
}

// New creates a cache holding at most capacity entries. When full, the
// least recently used entry is evicted.
func New[V any](capacity int) *MemoryCache[V] {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryCache[V]{
		capacity: capacity,
		items:    make(map[string]*entry[V]),
		lru:      list.New(),
	}
}

// Get returns the value for key and marks it recently used. Expired
// entries are removed on access.
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.remove(e)
		return zero, false
	}
	c.lru.MoveToFront(e.element)
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *MemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.lru.MoveToFront(e.element)
		return
	}

	if len(c.items) >= c.capacity {
		if back := c.lru.Back(); back != nil {
			c.remove(back.Value.(*entry[V]))
		}
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	e.element = c.lru.PushFront(e)
	c.items[key] = e
}

// Delete removes key from the cache if present.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.remove(e)
	}
}

// Clear drops every entry.
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry[V])
	c.lru.Init()
}

// Size returns the current number of entries.
func (c *MemoryCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *MemoryCache[V]) Capacity() int {
	return c.capacity
}

// CleanExpired removes every expired entry and reports how many were
// dropped.
func (c *MemoryCache[V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, e := range c.items {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			c.remove(e)
			removed++
		}
	}
	return removed
}

// remove deletes an entry. Caller holds c.mu.
func (c *MemoryCache[V]) remove(e *entry[V]) {
	delete(c.items, e.key)
	c.lru.Remove(e.element)
}
