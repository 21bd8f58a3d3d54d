// Package lru implements the LRU cache of heavy per-package compiler
// instances (spec.md 4.9). Eviction releases the instance but leaves the
// PkgInfo, interface blob, and symbol-index shard intact elsewhere.
package lru

import (
	"container/list"
	"sync"
)

// DefaultCapacity matches the spec's "order of 10 packages".
const DefaultCapacity = 10

type entryValue struct {
	key      string
	instance interface{}
}

// Cache is a fixed-capacity, thread-safe LRU keyed by package full-name
// (or directory, for loose packages).
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element
}

// New returns a Cache with the given capacity (DefaultCapacity if <= 0).
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get returns the package's heavy instance and whether it was present,
// promoting it to most-recently-used.
func (c *Cache) Get(pkg string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[pkg]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entryValue).instance, true
}

// Set inserts or promotes pkg's instance and returns the full-name of any
// package evicted to make room (empty string if none).
func (c *Cache) Set(pkg string, instance interface{}) (evicted string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[pkg]; ok {
		el.Value.(*entryValue).instance = instance
		c.ll.MoveToFront(el)
		return ""
	}

	el := c.ll.PushFront(&entryValue{key: pkg, instance: instance})
	c.index[pkg] = el

	if c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		if tail != nil {
			ev := tail.Value.(*entryValue)
			c.ll.Remove(tail)
			delete(c.index, ev.key)
			evicted = ev.key
		}
	}
	return evicted
}

// Erase removes pkg outright, used when a package is deleted.
func (c *Cache) Erase(pkg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[pkg]; ok {
		c.ll.Remove(el)
		delete(c.index, pkg)
	}
}

// Len reports the number of resident heavy instances.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Has reports whether pkg currently has a resident heavy instance, without
// affecting recency order.
func (c *Cache) Has(pkg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[pkg]
	return ok
}
