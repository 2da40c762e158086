package compiler

import (
	"time"

	"github.com/vledicfranco/constellation-compiler/internal/cache"
)

// CacheConfig re-exports cache.Config under the facade's vocabulary, so
// a Builder caller never needs to import internal/cache directly.
type CacheConfig = cache.Config

// DefaultCacheConfig re-exports the cache package's default bounds.
var DefaultCacheConfig = cache.DefaultConfig

// Cache wraps a cache.Cache specialized to *CompilationOutput and owns
// the (dagName, sourceHash, registryHash) -> key construction (spec.md
// §4.10).
type Cache struct {
	inner *cache.Cache
}

// NewCache returns an empty Cache bounded by cfg.
func NewCache(cfg cache.Config) *Cache {
	return &Cache{inner: cache.New(cfg)}
}

func cacheKey(dagName, sourceHash, registryHash string) string {
	return dagName + "\x00" + sourceHash + "\x00" + registryHash
}

// Get looks up a previously compiled output for the given identity
// triple.
func (c *Cache) Get(dagName, sourceHash, registryHash string) (*CompilationOutput, bool) {
	v, ok := c.inner.Get(cacheKey(dagName, sourceHash, registryHash), time.Now())
	if !ok {
		return nil, false
	}
	return v.(*CompilationOutput), true
}

// Put stores output under the given identity triple. Compile only ever
// calls this on its success path: a CompileError result is never
// cached.
func (c *Cache) Put(dagName, sourceHash, registryHash string, output *CompilationOutput) {
	c.inner.Put(cacheKey(dagName, sourceHash, registryHash), output, time.Now())
}

// Invalidate drops every cached entry for one DAG name.
func (c *Cache) Invalidate(dagName string) int {
	prefix := dagName + "\x00"
	return c.inner.Invalidate(func(key string) bool {
		return len(key) >= len(prefix) && key[:len(prefix)] == prefix
	})
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() { c.inner.InvalidateAll() }

// Stats returns cumulative hit/miss/eviction counters.
func (c *Cache) Stats() cache.Stats { return c.inner.Stats() }
