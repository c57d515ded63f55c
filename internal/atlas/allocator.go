package atlas

import (
	"fmt"
	"slices"
)

// Rect is a rectangle in page pixel coordinates.
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// span is a free horizontal run on a shelf.
type span struct {
	x, w int
}

// shelf is a horizontal band of the page. Its height is fixed when the
// shelf is opened; free space is tracked as sorted, non-adjacent spans.
type shelf struct {
	y, height int
	free      []span
	used      int
}

// fit returns the index of the narrowest free span that holds w, or -1.
func (s *shelf) fit(w int) int {
	best := -1
	for i, sp := range s.free {
		if sp.w >= w && (best < 0 || sp.w < s.free[best].w) {
			best = i
		}
	}
	return best
}

// release returns a span to the shelf, merging it with its neighbours.
func (s *shelf) release(x, w int) {
	i, _ := slices.BinarySearchFunc(s.free, x, func(sp span, x int) int { return sp.x - x })
	s.free = slices.Insert(s.free, i, span{x: x, w: w})
	if i+1 < len(s.free) && s.free[i].x+s.free[i].w == s.free[i+1].x {
		s.free[i].w += s.free[i+1].w
		s.free = slices.Delete(s.free, i+1, i+2)
	}
	if i > 0 && s.free[i-1].x+s.free[i-1].w == s.free[i].x {
		s.free[i-1].w += s.free[i].w
		s.free = slices.Delete(s.free, i, i+1)
	}
}

// Allocator packs rectangles into shelves. Unlike a pure bump allocator
// it supports freeing individual rectangles, and it can grow in place:
// existing allocations keep their coordinates when the area is enlarged.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	width   int
	height  int
	padding int

	shelves []*shelf

	allocCount int
	usedArea   int
}

// NewAllocator creates an allocator for a width×height area. Padding is
// reserved to the right of and below every rectangle.
func NewAllocator(width, height, padding int) *Allocator {
	return &Allocator{
		width:   width,
		height:  height,
		padding: max(padding, 0),
		shelves: make([]*shelf, 0, 16),
	}
}

// Size returns the current allocator dimensions.
func (a *Allocator) Size() (width, height int) { return a.width, a.height }

// Allocate reserves a w×h rectangle. It reports false when no shelf has
// room and no new shelf fits below the last one.
func (a *Allocator) Allocate(w, h int) (Rect, bool) {
	if w <= 0 || h <= 0 {
		return Rect{}, false
	}
	pw, ph := w+a.padding, h+a.padding
	if pw > a.width || ph > a.height {
		return Rect{}, false
	}

	// Best fit by wasted height among existing shelves.
	bestShelf, bestSpan := -1, -1
	for i, s := range a.shelves {
		if s.height < ph {
			continue
		}
		if bestShelf >= 0 && s.height >= a.shelves[bestShelf].height {
			continue
		}
		if j := s.fit(pw); j >= 0 {
			bestShelf, bestSpan = i, j
		}
	}

	// A shelf much taller than the request wastes space; prefer opening a
	// new one while there is room.
	if sh := shelfHeight(ph); bestShelf >= 0 && a.shelves[bestShelf].height <= sh+sh/2 {
		return a.take(a.shelves[bestShelf], bestSpan, w, h, pw), true
	}
	if s := a.openShelf(ph); s != nil {
		return a.take(s, 0, w, h, pw), true
	}
	if bestShelf >= 0 {
		return a.take(a.shelves[bestShelf], bestSpan, w, h, pw), true
	}
	return Rect{}, false
}

func (a *Allocator) take(s *shelf, i, w, h, pw int) Rect {
	sp := s.free[i]
	r := Rect{X: sp.x, Y: s.y, W: w, H: h}
	if sp.w == pw {
		s.free = slices.Delete(s.free, i, i+1)
	} else {
		s.free[i] = span{x: sp.x + pw, w: sp.w - pw}
	}
	s.used++
	a.allocCount++
	a.usedArea += w * h
	return r
}

// shelfHeight rounds a padded height up to a multiple of 4 so glyphs of
// similar size share shelves.
func shelfHeight(ph int) int {
	return (ph + 3) &^ 3
}

func (a *Allocator) bottom() int {
	if len(a.shelves) == 0 {
		return 0
	}
	last := a.shelves[len(a.shelves)-1]
	return last.y + last.height
}

func (a *Allocator) openShelf(ph int) *shelf {
	y := a.bottom()
	h := shelfHeight(ph)
	if y+h > a.height {
		h = ph
	}
	if y+h > a.height {
		return nil
	}
	s := &shelf{y: y, height: h, free: []span{{x: 0, w: a.width}}}
	a.shelves = append(a.shelves, s)
	return s
}

// Deallocate frees a rectangle previously returned by Allocate. It reports
// false if r does not lie on a known shelf.
func (a *Allocator) Deallocate(r Rect) bool {
	i, found := slices.BinarySearchFunc(a.shelves, r.Y, func(s *shelf, y int) int { return s.y - y })
	if !found || a.shelves[i].used == 0 {
		return false
	}
	s := a.shelves[i]
	s.release(r.X, r.W+a.padding)
	s.used--
	a.allocCount--
	a.usedArea -= r.W * r.H

	// Trailing empty shelves are dropped so their height can be reused.
	for n := len(a.shelves); n > 0 && a.shelves[n-1].used == 0; n-- {
		a.shelves = a.shelves[:n-1]
	}
	return true
}

// Grow enlarges the area to width×height. Existing rectangles keep their
// coordinates; the new columns are added to every shelf's free space.
func (a *Allocator) Grow(width, height int) {
	if width > a.width {
		for _, s := range a.shelves {
			s.release(a.width, width-a.width)
		}
		a.width = width
	}
	if height > a.height {
		a.height = height
	}
}

// Reset frees every rectangle.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

// AllocCount returns the number of live allocations.
func (a *Allocator) AllocCount() int { return a.allocCount }

// UsedArea returns the total area of live allocations.
func (a *Allocator) UsedArea() int { return a.usedArea }

// Utilization returns the fraction of area in use (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	total := a.width * a.height
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}
