package atlas

import (
	"fmt"
	"image"
)

// ContentType is the pixel class of a glyph bitmap.
type ContentType uint8

const (
	// Mask is 8-bit coverage, tinted by the vertex color.
	Mask ContentType = iota
	// Color is premultiplied RGBA, drawn as is.
	Color
)

// BytesPerPixel returns the pixel size of the content class.
func (c ContentType) BytesPerPixel() int {
	if c == Color {
		return 4
	}
	return 1
}

func (c ContentType) String() string {
	switch c {
	case Mask:
		return "mask"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("ContentType(%d)", uint8(c))
	}
}

// EncodeUV returns the glyph UV for page pixel (x, y). Mask pixels encode
// as (x, y); color pixels as (x, -(y+1)), so the sign of v selects the
// page and the encoding is independent of page size.
func EncodeUV(c ContentType, x, y float32) [2]float32 {
	if c == Color {
		return [2]float32{x, -(y + 1)}
	}
	return [2]float32{x, y}
}

// maxDirty bounds the dirty list; beyond it the rectangles collapse
// into their union.
const maxDirty = 64

// Page is the CPU backing of one square atlas texture.
type Page struct {
	content    ContentType
	size       int
	pix        []byte
	alloc      *Allocator
	dirty      []Rect
	generation uint64
}

func newPage(content ContentType, size, padding int) *Page {
	return &Page{
		content: content,
		size:    size,
		pix:     make([]byte, size*size*content.BytesPerPixel()),
		alloc:   NewAllocator(size, size, padding),
	}
}

// Content returns the page's content class.
func (p *Page) Content() ContentType { return p.content }

// Size returns the page side length in pixels.
func (p *Page) Size() int { return p.size }

// Stride returns the byte length of one pixel row.
func (p *Page) Stride() int { return p.size * p.content.BytesPerPixel() }

// Pix returns the page pixels, row-major with Stride bytes per row.
func (p *Page) Pix() []byte { return p.pix }

// Generation increases every time the page grows. A GPU texture created
// for an older generation must be recreated.
func (p *Page) Generation() uint64 { return p.generation }

// Dirty returns the rectangles written since the last ClearDirty.
func (p *Page) Dirty() []Rect { return p.dirty }

// ClearDirty forgets the dirty rectangles after an upload.
func (p *Page) ClearDirty() { p.dirty = p.dirty[:0] }

// Allocator exposes the page allocator for statistics.
func (p *Page) Allocator() *Allocator { return p.alloc }

// Image returns a view of the page pixels.
func (p *Page) Image() image.Image {
	r := image.Rect(0, 0, p.size, p.size)
	if p.content == Color {
		return &image.RGBA{Pix: p.pix, Stride: p.Stride(), Rect: r}
	}
	return &image.Alpha{Pix: p.pix, Stride: p.Stride(), Rect: r}
}

func (p *Page) markDirty(r Rect) {
	if len(p.dirty) >= maxDirty {
		u := r
		for _, d := range p.dirty {
			u = u.Union(d)
		}
		p.dirty = append(p.dirty[:0], u)
		return
	}
	p.dirty = append(p.dirty, r)
}

// write copies src, tightly packed with r.W pixels per row, into r.
func (p *Page) write(r Rect, src []byte) {
	bpp := p.content.BytesPerPixel()
	row := r.W * bpp
	stride := p.Stride()
	for y := 0; y < r.H; y++ {
		dst := (r.Y+y)*stride + r.X*bpp
		copy(p.pix[dst:dst+row], src[y*row:(y+1)*row])
	}
	p.markDirty(r)
}

// erase zeroes r so a later allocation starts from empty pixels.
func (p *Page) erase(r Rect) {
	bpp := p.content.BytesPerPixel()
	row := r.W * bpp
	stride := p.Stride()
	for y := 0; y < r.H; y++ {
		dst := (r.Y+y)*stride + r.X*bpp
		clear(p.pix[dst : dst+row])
	}
	p.markDirty(r)
}

// grow re-copies the pixels into a size×size backing at the same
// coordinates and extends the allocator.
func (p *Page) grow(size int) {
	bpp := p.content.BytesPerPixel()
	pix := make([]byte, size*size*bpp)
	oldStride, newStride := p.Stride(), size*bpp
	for y := 0; y < p.size; y++ {
		copy(pix[y*newStride:y*newStride+oldStride], p.pix[y*oldStride:(y+1)*oldStride])
	}
	p.pix = pix
	p.size = size
	p.alloc.Grow(size, size)
	p.generation++
	p.dirty = append(p.dirty[:0], Rect{W: size, H: size})
}
