// Package cache implements a thread-safe, content-addressed LRU+TTL
// cache for compiled pipeline artifacts (spec.md §4.10). It is generic
// over the stored value so internal/compiler can hold *CompilationOutput
// without an import cycle back into this package.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config bounds a Cache's size and entry lifetime.
type Config struct {
	MaxEntries int
	MaxAge     time.Duration
}

// DefaultConfig mirrors the teacher's modest default pool sizes:
// bounded enough to avoid unbounded growth, generous enough that a
// typical edit-compile-edit loop stays warm.
var DefaultConfig = Config{MaxEntries: 256, MaxAge: 10 * time.Minute}

// Stats is a point-in-time snapshot of cache activity (spec.md §4.10).
type Stats struct {
	Hits      int64
	Misses    int64
	Entries   int
	Evictions int64
}

// HitRate is Hits / (Hits + Misses), or 0 when nothing has been looked
// up yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key      string
	value    any
	storedAt time.Time
}

// Cache is a thread-safe LRU cache with a per-entry TTL. Entries are
// looked up by an opaque string key; callers (internal/compiler) own
// key construction from (dagName, sourceHash, registryHash).
type Cache struct {
	mu    sync.Mutex
	cfg   Config
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	hits, misses, evictions int64
}

// New returns an empty Cache bounded by cfg.
func New(cfg Config) *Cache {
	return &Cache{cfg: cfg, ll: list.New(), items: map[string]*list.Element{}}
}

// Get returns the cached value for key if present and not expired. A
// hit moves the entry to the front of the recency list.
func (c *Cache) Get(key string, now time.Time) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if c.cfg.MaxAge > 0 && now.Sub(e.storedAt) > c.cfg.MaxAge {
		c.removeElement(el)
		c.misses++
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Put stores value under key, evicting the least-recently-used entry if
// the cache is at capacity. Compilation errors must never be passed
// here: the caller only calls Put on a successful compile (spec.md
// §4.10: "a failed compilation is never cached").
func (c *Cache) Put(key string, value any, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).value = value
		el.Value.(*entry).storedAt = now
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: key, value: value, storedAt: now})
	c.items[key] = el

	if c.cfg.MaxEntries > 0 {
		for c.ll.Len() > c.cfg.MaxEntries {
			c.evictOldest()
		}
	}
}

// Invalidate removes every entry whose key matches pred, e.g. every
// entry for one DAG name regardless of source/registry hash.
func (c *Cache) Invalidate(pred func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		if pred(el.Value.(*entry).key) {
			c.removeElement(el)
			removed++
		}
		el = next
	}
	return removed
}

// InvalidateAll clears the cache entirely.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = map[string]*list.Element{}
}

// Stats returns a snapshot of cumulative hit/miss/eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: c.ll.Len(), Evictions: c.evictions}
}

func (c *Cache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.removeElement(el)
	c.evictions++
}

// removeElement removes el from both the list and the index. Callers
// must hold c.mu.
func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
