package easel

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/easel/internal/slot"
)

// Default drawing state of a fresh Canvas.
var (
	DefaultFillColor   = RGB(0.25, 0.25, 0.25)
	DefaultStrokeColor = RGB(0.75, 0.75, 0.75)
)

const (
	// DefaultStrokeWeight is the stroke width of a fresh Canvas.
	DefaultStrokeWeight = 2
	// DefaultArcSegments is the number of segments per ellipse quadrant.
	DefaultArcSegments = 8
)

// Canvas accumulates geometry for one open canvas. It is only valid
// inside the draw callback it was passed to.
//
// Every position handed to a Canvas is transformed by the current
// transform before it is stored.
type Canvas struct {
	e   *Engine
	key CanvasKey

	fill        Color
	stroke      Color
	weight      float32
	drawFill    bool
	drawStroke  bool
	arcSegments int
	transform   Matrix
}

func newCanvas(e *Engine, key CanvasKey) *Canvas {
	return &Canvas{
		e:           e,
		key:         key,
		fill:        DefaultFillColor,
		stroke:      DefaultStrokeColor,
		weight:      DefaultStrokeWeight,
		drawFill:    true,
		drawStroke:  true,
		arcSegments: DefaultArcSegments,
		transform:   Identity(),
	}
}

// Engine returns the engine the canvas belongs to.
func (c *Canvas) Engine() *Engine { return c.e }

// Key returns the canvas key.
func (c *Canvas) Key() CanvasKey { return c.key }

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (width, height float32) {
	w, h := c.e.CanvasSize(c.key)
	return float32(w), float32(h)
}

func (c *Canvas) builder() *batch.Builder {
	b := &c.e.builder
	if b.Depth() == 0 || b.Canvas() != slot.Key(c.key) {
		panic(fmt.Sprintf("easel: %v used outside its draw callback", c.key))
	}
	return b
}

// SetTexture binds key for subsequent geometry. Binding the current
// texture again does not start a new draw call.
func (c *Canvas) SetTexture(key TextureKey) {
	c.e.texture(key)
	c.builder().SetTexture(slot.Key(key))
}

// ClearTexture unbinds the current texture.
func (c *Canvas) ClearTexture() {
	c.builder().ClearTexture()
}

// Texture returns the bound texture.
func (c *Canvas) Texture() (TextureKey, bool) {
	k, ok := c.builder().Texture()
	return TextureKey(k), ok
}

// SetTransform replaces the current transform.
func (c *Canvas) SetTransform(m Matrix) { c.transform = m }

// AddTransform composes m after the current transform: m is applied to
// positions first.
func (c *Canvas) AddTransform(m Matrix) { c.transform = c.transform.Multiply(m) }

// Transform returns the current transform.
func (c *Canvas) Transform() Matrix { return c.transform }

// ResetTransform restores the identity transform.
func (c *Canvas) ResetTransform() { c.transform = Identity() }

// Translate adds a translation.
func (c *Canvas) Translate(x, y float32) { c.AddTransform(Translate(x, y)) }

// Rotate adds a rotation by angle radians.
func (c *Canvas) Rotate(angle float32) { c.AddTransform(Rotate(angle)) }

// RotateXY adds a rotation with separate angles for the x and y axes.
func (c *Canvas) RotateXY(x, y float32) { c.AddTransform(RotateXY(x, y)) }

// Scale adds a scale.
func (c *Canvas) Scale(x, y float32) { c.AddTransform(Scale(x, y)) }

// Skew adds a shear.
func (c *Canvas) Skew(x, y float32) { c.AddTransform(Skew(x, y)) }

// SetFillColor sets the fill color and enables filling.
func (c *Canvas) SetFillColor(col Color) {
	c.fill = col
	c.drawFill = true
}

// FillColor returns the fill color.
func (c *Canvas) FillColor() Color { return c.fill }

// SetStrokeColor sets the stroke color and enables stroking.
func (c *Canvas) SetStrokeColor(col Color) {
	c.stroke = col
	c.drawStroke = true
}

// StrokeColor returns the stroke color.
func (c *Canvas) StrokeColor() Color { return c.stroke }

// SetStrokeWeight sets the stroke width.
func (c *Canvas) SetStrokeWeight(w float32) { c.weight = w }

// StrokeWeight returns the stroke width.
func (c *Canvas) StrokeWeight() float32 { return c.weight }

// SetFill toggles filling.
func (c *Canvas) SetFill(on bool) { c.drawFill = on }

// Fill reports whether shapes are filled.
func (c *Canvas) Fill() bool { return c.drawFill }

// NoFill disables filling.
func (c *Canvas) NoFill() { c.drawFill = false }

// SetStroke toggles stroking.
func (c *Canvas) SetStroke(on bool) { c.drawStroke = on }

// Stroke reports whether shapes are stroked.
func (c *Canvas) Stroke() bool { return c.drawStroke }

// NoStroke disables stroking.
func (c *Canvas) NoStroke() { c.drawStroke = false }

// SetArcSegments sets the number of segments per ellipse quadrant. Values
// below 1 are raised to 1.
func (c *Canvas) SetArcSegments(n int) { c.arcSegments = max(n, 1) }

// ArcSegments returns the number of segments per ellipse quadrant.
func (c *Canvas) ArcSegments() int { return c.arcSegments }

// RawTriangle emits one triangle with per-vertex colors, texture UVs and
// glyph UVs. Positions are transformed; UVs are not.
func (c *Canvas) RawTriangle(a, b, cc Point, ca, cb, ccol Color, uva, uvb, uvc, ga, gb, gc Point) {
	m := c.transform
	c.builder().Push(
		batch.Vertex{Pos: m.TransformPoint(a).array(), Color: ca.array(), UV: uva.array(), GlyphUV: ga.array()},
		batch.Vertex{Pos: m.TransformPoint(b).array(), Color: cb.array(), UV: uvb.array(), GlyphUV: gb.array()},
		batch.Vertex{Pos: m.TransformPoint(cc).array(), Color: ccol.array(), UV: uvc.array(), GlyphUV: gc.array()},
	)
}

// noUV is the sentinel for vertices that sample nothing.
var noUV = Point{X: batch.NoUV[0], Y: batch.NoUV[1]}

// solid emits an untextured triangle in one color.
func (c *Canvas) solid(b *batch.Builder, a, p, q Point, col Color) {
	m := c.transform
	rgba := col.array()
	b.Push(
		batch.Vertex{Pos: m.TransformPoint(a).array(), Color: rgba, UV: batch.NoUV, GlyphUV: batch.NoUV},
		batch.Vertex{Pos: m.TransformPoint(p).array(), Color: rgba, UV: batch.NoUV, GlyphUV: batch.NoUV},
		batch.Vertex{Pos: m.TransformPoint(q).array(), Color: rgba, UV: batch.NoUV, GlyphUV: batch.NoUV},
	)
}

// fan fills the convex polygon pts with triangles sharing pts[0].
func (c *Canvas) fan(pts []Point) {
	if len(pts) < 3 {
		return
	}
	b := c.builder()
	for i := 1; i+1 < len(pts); i++ {
		c.solid(b, pts[0], pts[i], pts[i+1], c.fill)
	}
}

// StrokeRing strokes the closed outline pts with mitered joints in the
// stroke color. It emits 2·len(pts) triangles.
func (c *Canvas) StrokeRing(pts []Point) {
	n := len(pts)
	if n < 2 {
		return
	}
	ring := make([]Point, 0, 2*n)
	half := c.weight / 2
	for i, cur := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		anglePrev := prev.Sub(cur).Angle()
		angleNext := next.Sub(cur).Angle()
		angle := (anglePrev + angleNext) / 2
		scale := 1 / math32.Cos((math32.Pi-(angleNext-anglePrev))/2)
		sin, cos := math32.Sincos(angle)
		off := Pt(cos, sin).Mul(half * scale)
		ring = append(ring, cur.Sub(off), cur.Add(off))
	}

	b := c.builder()
	m := len(ring)
	for i := range m {
		c.solid(b, ring[i], ring[(i+1)%m], ring[(i+2)%m], c.stroke)
	}
}

// shape fills and strokes a closed convex outline according to the
// current style.
func (c *Canvas) shape(pts []Point) {
	if c.drawFill {
		c.fan(pts)
	}
	if c.drawStroke {
		c.StrokeRing(pts)
	}
}

// Clip draws shape into the stencil, then runs draw with everything
// outside the shape masked out. Clips nest; the inner clip is the
// intersection of both shapes.
//
// The shape callback only updates the stencil: its colors are ignored and
// texture changes made there apply once draw starts.
func (c *Canvas) Clip(shape, draw func(*Canvas)) {
	b := c.builder()
	b.ClipStart()
	shape(c)
	b.ClipBegin()
	draw(c)
	b.ClipEnd()
}

// DrawCanvas draws into another canvas from inside this one. It panics
// inside a clip shape callback.
func (c *Canvas) DrawCanvas(key CanvasKey, draw func(*Canvas)) {
	c.builder()
	c.e.DrawCanvas(key, draw)
}
