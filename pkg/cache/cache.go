// Package cache provides a thread-safe LRU cache for compiled programs.
//
// The evaluator uses it when caching is enabled. Programs computed at runtime
// by `$` tend to repeat (the same code string is produced for every input), so
// caching skips re-tokenizing and re-parsing them.
//
// Entries are keyed by the source together with the parser options it was
// compiled with: the same source parsed under a different depth limit may
// fail where the cached program succeeded, so the two never share an entry.
//
// # Example
//
//	c := cache.New(1024)
//	prog, err := c.Compile(`_[0:3]`, parser.WithMaxDepth(64))
//	fmt.Println(c.Stats().Misses) // 1
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/gostringed/pkg/parser"
	"github.com/sandrolain/gostringed/pkg/types"
)

// DefaultCapacity is the capacity used when New is given a non-positive one.
const DefaultCapacity = 256

// Key identifies a compiled program.
type Key struct {
	Source   string
	MaxDepth int
}

// KeyFor returns the key of source compiled with opts.
func KeyFor(source string, opts ...parser.CompileOption) Key {
	resolved := parser.ResolveOptions(opts...)
	return Key{Source: source, MaxDepth: resolved.MaxDepth}
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Len       int    `json:"len"`
	Capacity  int    `json:"capacity"`
}

// HitRate returns the share of lookups that found a program, or 0 before the
// first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key  Key
	prog *types.Program
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled programs.
// Once the capacity is reached, the least recently accessed entry is evicted.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[Key]*list.Element

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a new LRU cache with the given capacity.
// If capacity <= 0, DefaultCapacity is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[Key]*list.Element, capacity),
	}
}

// Get retrieves a compiled program and marks it most recently used.
// Every call counts as a hit or a miss.
func (c *Cache) Get(key Key) (*types.Program, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()

	if ok && !alreadyFront {
		// The entry may have been evicted between the two locks.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()
	}

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return el.Value.(*entry).prog, true
}

// Set inserts or replaces a program.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key Key, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	c.items[key] = c.ll.PushFront(&entry{key: key, prog: prog})
}

// GetOrCompile returns the program for key, calling compile on a miss.
// Errors are not cached.
func (c *Cache) GetOrCompile(key Key, compile func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(key); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, prog)
	return prog, nil
}

// Compile parses source with opts, reusing the program cached under the same
// source and resolved options.
func (c *Cache) Compile(source string, opts ...parser.CompileOption) (*types.Program, error) {
	return c.GetOrCompile(KeyFor(source, opts...), func() (*types.Program, error) {
		return parser.Compile(source, opts...)
	})
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns the current counters. Clear does not reset them.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
		Capacity:  c.capacity,
	}
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// InvalidateSource removes every entry compiled from source, whatever the
// options.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, el := range c.items {
		if key.Source == source {
			c.ll.Remove(el)
			delete(c.items, key)
			n++
		}
	}
	return n
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[Key]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
	c.evictions.Add(1)
}
