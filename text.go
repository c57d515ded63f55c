package easel

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/text"
	textcache "github.com/gogpu/easel/text/cache"
)

// Default text style of a TextBuilder.
const (
	DefaultFontSize   = 16
	DefaultLineHeight = 1.3
)

// TextBuilder lays out and draws a string. Shaped text is cached per
// string and style and reused across frames while it keeps being drawn.
type TextBuilder struct {
	c          *Canvas
	s          string
	x, y       float32
	w, h       float32
	size       float32
	lineHeight float32
	attrs      text.Attrs
	align      text.Align
}

// Text starts drawing s with the default style at the origin.
func (c *Canvas) Text(s string) TextBuilder {
	return TextBuilder{
		c:          c,
		s:          s,
		size:       DefaultFontSize,
		lineHeight: DefaultLineHeight,
		attrs:      text.DefaultAttrs(),
	}
}

// X sets the left edge of the layout box.
func (t TextBuilder) X(x float32) TextBuilder { t.x = x; return t }

// Y sets the top edge of the layout box.
func (t TextBuilder) Y(y float32) TextBuilder { t.y = y; return t }

// XY sets the top-left corner of the layout box.
func (t TextBuilder) XY(x, y float32) TextBuilder { t.x, t.y = x, y; return t }

// W sets the wrap width. Zero disables wrapping.
func (t TextBuilder) W(w float32) TextBuilder { t.w = w; return t }

// H sets the box height. Lines below it are dropped; zero keeps all.
func (t TextBuilder) H(h float32) TextBuilder { t.h = h; return t }

// WH sets the box size.
func (t TextBuilder) WH(w, h float32) TextBuilder { t.w, t.h = w, h; return t }

// Size sets the font size in pixels.
func (t TextBuilder) Size(px float32) TextBuilder { t.size = px; return t }

// LineHeight sets the line height relative to the font size.
func (t TextBuilder) LineHeight(rel float32) TextBuilder { t.lineHeight = rel; return t }

// Family sets the font family.
func (t TextBuilder) Family(f text.Family) TextBuilder { t.attrs.Family = f; return t }

// Weight sets the font weight.
func (t TextBuilder) Weight(w text.Weight) TextBuilder { t.attrs.Weight = w; return t }

// Style sets upright or italic.
func (t TextBuilder) Style(s text.Style) TextBuilder { t.attrs.Style = s; return t }

// Stretch sets the font width.
func (t TextBuilder) Stretch(s text.Stretch) TextBuilder { t.attrs.Stretch = s; return t }

// Attrs replaces family, weight, style and stretch at once.
func (t TextBuilder) Attrs(a text.Attrs) TextBuilder { t.attrs = a; return t }

// Align sets the horizontal alignment of wrapped lines.
func (t TextBuilder) Align(a text.Align) TextBuilder { t.align = a; return t }

// buffer returns the cached layout of the text in its box.
func (t TextBuilder) buffer() *text.Buffer {
	e := t.c.e
	attrs := e.resolveAttrs(t.attrs)
	m := text.Metrics{FontSize: t.size, LineHeight: t.size * t.lineHeight}
	key := textcache.NewKey(t.s, m, attrs, t.align)
	buf := e.shaped.Get(key, func() *text.Buffer {
		return e.shaper.Shape(t.s, m, attrs, t.align)
	})
	if buf != nil {
		buf.SetSize(t.w, t.h)
	}
	return buf
}

// Measure returns the width of the widest line and the height of all
// lines, laid out in the builder's box.
func (t TextBuilder) Measure() (width, height float32) {
	if t.s == "" {
		return 0, 0
	}
	buf := t.buffer()
	if buf == nil {
		return 0, 0
	}
	return buf.Dimensions()
}

// Draw emits one textured quad per visible glyph in the fill color.
// Glyphs that do not fit in the atlas are left out.
func (t TextBuilder) Draw() {
	if t.s == "" || t.size <= 0 {
		return
	}
	buf := t.buffer()
	if buf == nil {
		return
	}
	e, c := t.c.e, t.c
	col := c.fill
	for _, line := range buf.Lines() {
		baseline := math32.Round(line.Baseline) + t.y
		for _, g := range line.Glyphs {
			key, px, py := g.Physical(t.x, baseline)
			entry, ok := e.glyphs.Get(key, e.raster)
			if !ok || entry.Status == atlas.ZeroSized {
				continue
			}
			x0 := float32(px + entry.Left)
			y0 := float32(py - entry.Top)
			w, h := entry.Rect.W, entry.Rect.H
			x1, y1 := x0+float32(w), y0+float32(h)

			a, b, cc, d := Pt(x0, y0), Pt(x1, y0), Pt(x1, y1), Pt(x0, y1)
			ga, gb := uvPoint(entry.UV(0, 0)), uvPoint(entry.UV(w, 0))
			gc, gd := uvPoint(entry.UV(w, h)), uvPoint(entry.UV(0, h))
			c.RawTriangle(a, b, cc, col, col, col, noUV, noUV, noUV, ga, gb, gc)
			c.RawTriangle(a, cc, d, col, col, col, noUV, noUV, noUV, ga, gc, gd)
		}
	}
}

func uvPoint(v [2]float32) Point { return Point{X: v[0], Y: v[1]} }

// resolveAttrs resolves a against the font set. Resolutions not used for
// a whole frame are dropped.
func (e *Engine) resolveAttrs(a text.Attrs) text.Attrs {
	if r, ok := e.resolved[a]; ok {
		return r
	}
	r, ok := e.resolvedPrev[a]
	if !ok {
		r, _ = e.fonts.Resolve(a)
	}
	e.resolved[a] = r
	return r
}
