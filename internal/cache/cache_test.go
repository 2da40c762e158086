package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxAge: time.Hour})
	now := time.Now()

	c.Put("a", 42, now)
	v, ok := c.Get("a", now)
	require.True(t, ok, "expected a hit")
	assert.Equal(t, 42, v.(int))

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 0, stats.Misses)
}

func TestGetMissIncrementsMisses(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxAge: time.Hour})
	_, ok := c.Get("missing", time.Now())
	assert.False(t, ok, "expected a miss")
	assert.EqualValues(t, 1, c.Stats().Misses)
}

func TestEntryExpiresAfterMaxAge(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxAge: time.Minute})
	start := time.Now()
	c.Put("a", 1, start)

	_, ok := c.Get("a", start.Add(30*time.Second))
	assert.True(t, ok, "expected a hit within max age")

	_, ok = c.Get("a", start.Add(2*time.Minute))
	assert.False(t, ok, "expected a miss once the entry has expired")
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(Config{MaxEntries: 2, MaxAge: 0})
	now := time.Now()

	c.Put("a", 1, now)
	c.Put("b", 2, now)
	// touch "a" so "b" becomes the least-recently-used entry
	c.Get("a", now)
	c.Put("c", 3, now)

	_, ok := c.Get("b", now)
	assert.False(t, ok, "expected b to have been evicted")
	_, ok = c.Get("a", now)
	assert.True(t, ok, "expected a to survive eviction")
	_, ok = c.Get("c", now)
	assert.True(t, ok, "expected c to survive eviction")
	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestInvalidateRemovesMatchingKeysOnly(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxAge: 0})
	now := time.Now()
	c.Put("dagA\x00src1", 1, now)
	c.Put("dagA\x00src2", 2, now)
	c.Put("dagB\x00src1", 3, now)

	removed := c.Invalidate(func(key string) bool {
		return len(key) >= 5 && key[:5] == "dagA\x00"
	})
	assert.Equal(t, 2, removed)

	_, ok := c.Get("dagB\x00src1", now)
	assert.True(t, ok, "expected dagB's entry to survive")
}

func TestInvalidateAllClearsEverything(t *testing.T) {
	c := New(Config{MaxEntries: 10, MaxAge: 0})
	now := time.Now()
	c.Put("a", 1, now)
	c.Put("b", 2, now)
	c.InvalidateAll()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestPutOverwritesAndRefreshesRecency(t *testing.T) {
	c := New(Config{MaxEntries: 1, MaxAge: 0})
	now := time.Now()
	c.Put("a", 1, now)
	c.Put("a", 2, now)
	v, ok := c.Get("a", now)
	require.True(t, ok)
	assert.Equal(t, 2, v.(int))
	assert.Equal(t, 1, c.Stats().Entries)
}
