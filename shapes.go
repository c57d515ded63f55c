package easel

import "github.com/chewxy/math32"

// RectBuilder draws an axis-aligned rectangle (before transformation).
// The zero size draws nothing.
type RectBuilder struct {
	c          *Canvas
	x, y, w, h float32
}

// Rect starts a rectangle at the origin with zero size.
func (c *Canvas) Rect() RectBuilder { return RectBuilder{c: c} }

// X sets the left edge.
func (r RectBuilder) X(x float32) RectBuilder { r.x = x; return r }

// Y sets the top edge.
func (r RectBuilder) Y(y float32) RectBuilder { r.y = y; return r }

// W sets the width.
func (r RectBuilder) W(w float32) RectBuilder { r.w = w; return r }

// H sets the height.
func (r RectBuilder) H(h float32) RectBuilder { r.h = h; return r }

// XY sets the top-left corner.
func (r RectBuilder) XY(x, y float32) RectBuilder { r.x, r.y = x, y; return r }

// WH sets the size.
func (r RectBuilder) WH(w, h float32) RectBuilder { r.w, r.h = w, h; return r }

// XYWH sets corner and size.
func (r RectBuilder) XYWH(x, y, w, h float32) RectBuilder {
	r.x, r.y, r.w, r.h = x, y, w, h
	return r
}

// Draw emits the rectangle.
func (r RectBuilder) Draw() {
	if r.w == 0 || r.h == 0 {
		return
	}
	pts := [4]Point{
		{r.x, r.y},
		{r.x + r.w, r.y},
		{r.x + r.w, r.y + r.h},
		{r.x, r.y + r.h},
	}
	r.c.shape(pts[:])
}

// EllipseBuilder draws an ellipse given its center and diameters.
type EllipseBuilder struct {
	c          *Canvas
	x, y, w, h float32
}

// Ellipse starts an ellipse centered on the origin with zero size.
func (c *Canvas) Ellipse() EllipseBuilder { return EllipseBuilder{c: c} }

// X sets the center x.
func (e EllipseBuilder) X(x float32) EllipseBuilder { e.x = x; return e }

// Y sets the center y.
func (e EllipseBuilder) Y(y float32) EllipseBuilder { e.y = y; return e }

// W sets the horizontal diameter.
func (e EllipseBuilder) W(w float32) EllipseBuilder { e.w = w; return e }

// H sets the vertical diameter.
func (e EllipseBuilder) H(h float32) EllipseBuilder { e.h = h; return e }

// XY sets the center.
func (e EllipseBuilder) XY(x, y float32) EllipseBuilder { e.x, e.y = x, y; return e }

// WH sets both diameters.
func (e EllipseBuilder) WH(w, h float32) EllipseBuilder { e.w, e.h = w, h; return e }

// XYWH sets center and diameters.
func (e EllipseBuilder) XYWH(x, y, w, h float32) EllipseBuilder {
	e.x, e.y, e.w, e.h = x, y, w, h
	return e
}

// Draw emits the ellipse as a polygon with four times the canvas arc
// segments.
func (e EllipseBuilder) Draw() {
	if e.w == 0 || e.h == 0 {
		return
	}
	count := e.c.arcSegments * 4
	pts := make([]Point, count)
	step := 2 * math32.Pi / float32(count)
	for i := range pts {
		sin, cos := math32.Sincos(step * float32(i))
		pts[i] = Pt(e.x+e.w*cos/2, e.y+e.h*sin/2)
	}
	e.c.shape(pts)
}

// TriangleBuilder draws a triangle from three corners.
type TriangleBuilder struct {
	c       *Canvas
	a, b, d Point
}

// Triangle starts a triangle with all corners at the origin.
func (c *Canvas) Triangle() TriangleBuilder { return TriangleBuilder{c: c} }

// A sets the first corner.
func (t TriangleBuilder) A(x, y float32) TriangleBuilder { t.a = Pt(x, y); return t }

// B sets the second corner.
func (t TriangleBuilder) B(x, y float32) TriangleBuilder { t.b = Pt(x, y); return t }

// C sets the third corner.
func (t TriangleBuilder) C(x, y float32) TriangleBuilder { t.d = Pt(x, y); return t }

// XYABC sets all three corners.
func (t TriangleBuilder) XYABC(ax, ay, bx, by, cx, cy float32) TriangleBuilder {
	t.a, t.b, t.d = Pt(ax, ay), Pt(bx, by), Pt(cx, cy)
	return t
}

// Draw emits the triangle.
func (t TriangleBuilder) Draw() {
	pts := [3]Point{t.a, t.b, t.d}
	t.c.shape(pts[:])
}
