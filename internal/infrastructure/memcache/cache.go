// Package memcache is the in-process implementation of ports.Cache.
//
// Entries are valid while now-storedAt < ttl. Expired entries are removed when they
// are next read; there is no background sweeper. Without a capacity the cache grows
// with the number of distinct keys for the lifetime of the process.
package memcache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry struct {
	key      string
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Cache implements ports.Cache in process memory.
// The mutex guards the map only; it does not coalesce concurrent misses.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the time source used for storedAt and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithCapacity bounds the cache to n entries, evicting the least recently used. n <= 0 is unbounded.
func WithCapacity(n int) Option {
	return func(c *Cache) { c.capacity = n }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		items: make(map[string]*list.Element),
		order: list.New(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Cache.Get. A stale entry is evicted and reported as absent.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*entry)
	if e.ttl > 0 && c.now().Sub(e.storedAt) >= e.ttl {
		c.removeElement(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return e.value, true, nil
}

// Set implements Cache.Set. The previous entry for key, if any, is replaced wholesale.
// ttl <= 0 stores without expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &entry{key: key, value: value, storedAt: c.now(), ttl: ttl}
	if el, ok := c.items[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return nil
	}
	c.items[key] = c.order.PushFront(e)
	for c.capacity > 0 && c.order.Len() > c.capacity {
		c.removeElement(c.order.Back())
	}
	return nil
}

// Delete implements Cache.Delete.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	return nil
}

// Len reports the number of stored entries, including stale ones not yet read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
