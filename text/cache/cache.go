package cache

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/easel/text"
)

// Key identifies shaped text. Attrs are the attributes the font set
// resolved, not the requested ones, so two requests that fall back to
// the same face share an entry.
type Key struct {
	// SizeBits and LineHeightBits are IEEE 754 bit patterns, which
	// compare exactly.
	SizeBits       uint32
	LineHeightBits uint32

	Attrs text.Attrs
	Align text.Align
	Text  string
}

// NewKey creates a Key from shaping parameters.
func NewKey(s string, m text.Metrics, attrs text.Attrs, align text.Align) Key {
	return Key{
		SizeBits:       math.Float32bits(m.FontSize),
		LineHeightBits: math.Float32bits(m.LineHeight),
		Attrs:          attrs,
		Align:          align,
		Text:           s,
	}
}

// Metrics returns the metrics encoded in k.
func (k Key) Metrics() text.Metrics {
	return text.Metrics{
		FontSize:   math.Float32frombits(k.SizeBits),
		LineHeight: math.Float32frombits(k.LineHeightBits),
	}
}

type entry struct {
	buf   *text.Buffer
	inUse bool
}

// Cache maps keys to shaped buffers. It is safe for concurrent use, but
// the buffers it returns are not.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// Get returns the buffer for key, calling shape on a miss. Either way
// the entry is marked in use for the current frame. shape runs with the
// cache locked; a nil result is not stored.
func (c *Cache) Get(key Key, shape func() *text.Buffer) *text.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.inUse = true
		c.hits.Add(1)
		return e.buf
	}
	c.misses.Add(1)
	buf := shape()
	if buf == nil {
		return nil
	}
	c.entries[key] = &entry{buf: buf, inUse: true}
	return buf
}

// Contains reports whether key is cached, without marking it.
func (c *Cache) Contains(key Key) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	c.mu.Unlock()
	return ok
}

// BeginFrame drops every entry not requested since the previous
// BeginFrame and clears the marks of the rest. It returns the number of
// entries dropped.
func (c *Cache) BeginFrame() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if !e.inUse {
			delete(c.entries, k)
			n++
			continue
		}
		e.inUse = false
	}
	if n > 0 {
		c.evictions.Add(uint64(n))
	}
	return n
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats contains cache statistics for monitoring.
type CacheStats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	// HitRate is in [0, 1].
	HitRate float64
}

// LogValue implements slog.LogValuer.
func (s CacheStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("len", s.Len),
		slog.Uint64("hits", s.Hits),
		slog.Uint64("misses", s.Misses),
		slog.Uint64("evictions", s.Evictions),
		slog.Float64("hit_rate", s.HitRate),
	)
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Len:       c.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   hitRate,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
