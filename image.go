package easel

// TextureBuilder draws the bound texture, or a region of it, as a quad.
//
// Texture UVs are in texture pixels with v growing from the bottom row
// upward: the quad's top edge samples the bottom of the region's v range
// and the draw shader flips v when it samples. Without a bound texture
// the quad samples nothing and is drawn in its color.
type TextureBuilder struct {
	c        *Canvas
	x, y     float32
	w, h     float32
	hasW     bool
	hasH     bool
	centered bool
	tint     bool

	region    [4]float32
	hasRegion bool
}

// Image starts a texture quad at the origin.
func (c *Canvas) Image() TextureBuilder { return TextureBuilder{c: c} }

// X sets the left edge.
func (t TextureBuilder) X(x float32) TextureBuilder { t.x = x; return t }

// Y sets the top edge.
func (t TextureBuilder) Y(y float32) TextureBuilder { t.y = y; return t }

// XY sets the top-left corner, or the center when Centered is set.
func (t TextureBuilder) XY(x, y float32) TextureBuilder { t.x, t.y = x, y; return t }

// W overrides the drawn width.
func (t TextureBuilder) W(w float32) TextureBuilder { t.w, t.hasW = w, true; return t }

// H overrides the drawn height.
func (t TextureBuilder) H(h float32) TextureBuilder { t.h, t.hasH = h, true; return t }

// WH overrides the drawn size.
func (t TextureBuilder) WH(w, h float32) TextureBuilder { return t.W(w).H(h) }

// XYWH sets position and size.
func (t TextureBuilder) XYWH(x, y, w, h float32) TextureBuilder { return t.XY(x, y).WH(w, h) }

// Centered positions the quad by its center.
func (t TextureBuilder) Centered() TextureBuilder { t.centered = true; return t }

// Region selects the part of the texture to draw, in texture pixels. The
// drawn size defaults to the region size.
func (t TextureBuilder) Region(x, y, w, h float32) TextureBuilder {
	t.region, t.hasRegion = [4]float32{x, y, w, h}, true
	return t
}

// Tint multiplies the texture with the fill color instead of white.
func (t TextureBuilder) Tint() TextureBuilder { t.tint = true; return t }

// Draw emits the quad.
func (t TextureBuilder) Draw() {
	texW, texH := float32(2), float32(2)
	if key, ok := t.c.Texture(); ok {
		w, h := t.c.e.TextureDimensions(key)
		texW, texH = float32(w), float32(h)
	}

	width, height := texW, texH
	if t.hasRegion {
		width, height = t.region[2], t.region[3]
	}
	if t.hasW {
		width = t.w
	}
	if t.hasH {
		height = t.h
	}
	if width == 0 || height == 0 {
		return
	}

	x, y := t.x, t.y
	if t.centered {
		x -= width / 2
		y -= height / 2
	}
	a := Pt(x, y)
	b := Pt(x+width, y)
	c := Pt(x+width, y+height)
	d := Pt(x, y+height)

	left, right, top, bottom := float32(0), texW, float32(0), texH
	if t.hasRegion {
		left, top = t.region[0], t.region[1]
		right, bottom = left+t.region[2], top+t.region[3]
	}
	uvA := Pt(left, bottom)
	uvB := Pt(right, bottom)
	uvC := Pt(right, top)
	uvD := Pt(left, top)

	col := White
	if t.tint {
		col = t.c.fill
	}
	t.c.RawTriangle(a, b, c, col, col, col, uvA, uvB, uvC, noUV, noUV, noUV)
	t.c.RawTriangle(a, c, d, col, col, col, uvA, uvC, uvD, noUV, noUV, noUV)
}
