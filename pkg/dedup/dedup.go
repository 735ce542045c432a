// Package dedup provides bounded recently-seen collections with FIFO
// eviction. They back duplicate suppression on both ends of the realtime
// channel: the gateway recognizes replayed send fingerprints after a
// reconnect, and the client session drops the second copy of a message
// delivered twice (confirm echo plus receive, or replay).
package dedup

import (
	"container/list"
	"sync"
)

type Set struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	keys     map[string]*list.Element
}

func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = 1
	}
	return &Set{
		capacity: capacity,
		order:    list.New(),
		keys:     make(map[string]*list.Element, capacity),
	}
}

// Seen records key and reports whether it was already present. When the set
// is full the oldest key is evicted first.
func (s *Set) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return true
	}

	if s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.keys, oldest.Value.(string))
	}

	s.keys[key] = s.order.PushBack(key)
	return false
}

// Contains reports whether key is present without recording it.
func (s *Set) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Cache is a bounded map from recently seen keys to a value, with FIFO
// eviction by insertion order. Unlike Set it lets the caller answer a
// recognized duplicate with the result of the first occurrence.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value interface{}
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Put records key with its value. An existing key keeps its insertion slot
// and only the value is replaced. When the cache is full the oldest key is
// evicted first.
func (c *Cache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*cacheEntry).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, value: value})
}

// Get returns the value recorded for key, if still present.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return elem.Value.(*cacheEntry).value, true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
