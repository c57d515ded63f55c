package atlas

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/image/math/fixed"
)

// GlyphKey identifies one rasterized glyph image.
type GlyphKey struct {
	// FontID identifies the face the glyph belongs to.
	FontID uint64

	// GlyphID is the glyph index within the face.
	GlyphID uint32

	// Size is the font size in pixels per em.
	Size fixed.Int26_6

	// SubpixelX is the horizontal subpixel bin of the pen position.
	SubpixelX uint8
}

// Bitmap is the output of a Rasterizer.
type Bitmap struct {
	Content ContentType

	// Width and Height are the image dimensions in pixels. A zero
	// dimension means the glyph has no ink.
	Width, Height int

	// Left is the offset from the pen position to the left edge; Top is
	// the distance from the baseline up to the top edge.
	Left, Top int

	// Pix holds Height rows of Width pixels, tightly packed.
	Pix []byte
}

// Rasterizer renders glyph bitmaps on cache misses.
type Rasterizer interface {
	Rasterize(key GlyphKey) (Bitmap, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(key GlyphKey) (Bitmap, error)

// Rasterize calls f(key).
func (f RasterizerFunc) Rasterize(key GlyphKey) (Bitmap, error) { return f(key) }

// Status tells whether an entry has pixels.
type Status uint8

const (
	// InAtlas entries occupy a rectangle of their page.
	InAtlas Status = iota
	// ZeroSized entries have no ink and emit no geometry.
	ZeroSized
)

// Entry is the cached placement of a glyph.
type Entry struct {
	Status  Status
	Content ContentType

	// Rect is the glyph location in its page.
	Rect Rect

	// Left and Top position the bitmap relative to the pen; see Bitmap.
	Left, Top int
}

// UV returns the encoded glyph UV of the point (dx, dy) relative to the
// entry's top-left corner.
func (e Entry) UV(dx, dy int) [2]float32 {
	return EncodeUV(e.Content, float32(e.Rect.X+dx), float32(e.Rect.Y+dy))
}

// Handle addresses an entry in the cache arena. Handles survive page
// growth and are reused after eviction.
type Handle uint32

type record struct {
	key   GlyphKey
	entry Entry
	live  bool
	inUse bool
}

// Stats holds cache statistics.
type Stats struct {
	Hits      atomic.Uint64
	Misses    atomic.Uint64
	Evictions atomic.Uint64
	Growths   atomic.Uint64
	Overflows atomic.Uint64
}

// CacheStats is a snapshot of cache statistics for monitoring.
type CacheStats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
	Growths   uint64
	Overflows uint64
	MaskSize  int
	ColorSize int
}

// Cache maps glyph keys to atlas placements.
//
// Cache is not safe for concurrent use; the statistics counters may be
// read from any goroutine.
type Cache struct {
	config Config
	pages  [2]*Page

	index map[GlyphKey]Handle
	arena []record
	free  []Handle

	onGrow func(*Page)

	stats Stats
}

// New creates a cache with both pages at config.InitialSize.
func New(config Config) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Cache{
		config: config,
		pages: [2]*Page{
			Mask:  newPage(Mask, config.InitialSize, config.Padding),
			Color: newPage(Color, config.InitialSize, config.Padding),
		},
		index: make(map[GlyphKey]Handle),
	}, nil
}

// Page returns the page for a content class.
func (c *Cache) Page(content ContentType) *Page { return c.pages[content] }

// OnGrow registers fn to be called synchronously after a page grows,
// before the glyph that triggered the growth is written.
func (c *Cache) OnGrow(fn func(*Page)) { c.onGrow = fn }

// Get returns the placement of key, rasterizing and packing it on a miss.
// It marks the entry as used in the current frame. It reports false when
// the glyph cannot be provided: the rasterizer failed, or the page cannot
// grow enough to hold it.
func (c *Cache) Get(key GlyphKey, r Rasterizer) (Entry, bool) {
	if h, ok := c.index[key]; ok {
		rec := &c.arena[h]
		rec.inUse = true
		c.stats.Hits.Add(1)
		return rec.entry, true
	}
	c.stats.Misses.Add(1)

	bm, err := r.Rasterize(key)
	if err != nil {
		slogger().Debug("atlas: rasterize failed", "glyph", key.GlyphID, "err", err)
		return Entry{}, false
	}
	if bm.Width <= 0 || bm.Height <= 0 {
		e := Entry{Status: ZeroSized, Content: bm.Content, Left: bm.Left, Top: bm.Top}
		c.insert(key, e)
		return e, true
	}
	if bm.Content > Color {
		slogger().Debug("atlas: unknown content type", "content", bm.Content)
		return Entry{}, false
	}
	if need := bm.Width * bm.Height * bm.Content.BytesPerPixel(); len(bm.Pix) < need {
		slogger().Debug("atlas: short bitmap", "glyph", key.GlyphID, "len", len(bm.Pix), "want", need)
		return Entry{}, false
	}

	page := c.pages[bm.Content]
	rect, ok := c.allocate(page, bm.Width, bm.Height)
	if !ok {
		c.stats.Overflows.Add(1)
		slogger().Debug("atlas: page full, glyph skipped",
			"content", page.content, "size", page.size,
			"w", bm.Width, "h", bm.Height)
		return Entry{}, false
	}
	page.write(rect, bm.Pix)

	e := Entry{Status: InAtlas, Content: bm.Content, Rect: rect, Left: bm.Left, Top: bm.Top}
	c.insert(key, e)
	return e, true
}

func (c *Cache) allocate(p *Page, w, h int) (Rect, bool) {
	for {
		if r, ok := p.alloc.Allocate(w, h); ok {
			return r, true
		}
		if !c.grow(p) {
			return Rect{}, false
		}
	}
}

func (c *Cache) grow(p *Page) bool {
	if p.size >= c.config.MaxSize {
		return false
	}
	size := min(p.size*2, c.config.MaxSize)
	p.grow(size)
	c.stats.Growths.Add(1)
	slogger().Debug("atlas: page grown", "content", p.content, "size", size, "generation", p.generation)
	if c.onGrow != nil {
		c.onGrow(p)
	}
	return true
}

func (c *Cache) insert(key GlyphKey, e Entry) {
	rec := record{key: key, entry: e, live: true, inUse: true}
	var h Handle
	if n := len(c.free); n > 0 {
		h = c.free[n-1]
		c.free = c.free[:n-1]
		c.arena[h] = rec
	} else {
		h = Handle(len(c.arena))
		c.arena = append(c.arena, rec)
	}
	c.index[key] = h
}

// BeginFrame evicts every entry that was not requested since the previous
// BeginFrame, then clears the in-use marks of the rest.
func (c *Cache) BeginFrame() {
	var evicted uint64
	for i := range c.arena {
		rec := &c.arena[i]
		if !rec.live {
			continue
		}
		if rec.inUse {
			rec.inUse = false
			continue
		}
		if rec.entry.Status == InAtlas {
			p := c.pages[rec.entry.Content]
			p.erase(rec.entry.Rect)
			p.alloc.Deallocate(rec.entry.Rect)
		}
		delete(c.index, rec.key)
		*rec = record{}
		c.free = append(c.free, Handle(i))
		evicted++
	}
	if evicted > 0 {
		c.stats.Evictions.Add(evicted)
		slogger().Debug("atlas: evicted unused glyphs", "count", evicted, "live", len(c.index))
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.index) }

// Contains reports whether key is cached, without marking it used.
func (c *Cache) Contains(key GlyphKey) bool {
	_, ok := c.index[key]
	return ok
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	hits := c.stats.Hits.Load()
	misses := c.stats.Misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Len:       c.Len(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.stats.Evictions.Load(),
		Growths:   c.stats.Growths.Load(),
		Overflows: c.stats.Overflows.Load(),
		MaskSize:  c.pages[Mask].size,
		ColorSize: c.pages[Color].size,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Cache) ResetStats() {
	c.stats.Hits.Store(0)
	c.stats.Misses.Store(0)
	c.stats.Evictions.Store(0)
	c.stats.Growths.Store(0)
	c.stats.Overflows.Store(0)
}

// LogValue implements slog.LogValuer.
func (s CacheStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("len", s.Len),
		slog.String("hit_rate", fmt.Sprintf("%.2f", s.HitRate)),
		slog.Uint64("evictions", s.Evictions),
		slog.Uint64("growths", s.Growths),
		slog.Uint64("overflows", s.Overflows),
	)
}
