package batch

import (
	"fmt"

	"github.com/gogpu/easel/internal/slot"
)

// scope is the drawing state of one open canvas.
type scope struct {
	canvas    slot.Key
	reference uint32
	texture   slot.Key
	textured  bool

	// inShape is set between ClipStart and ClipBegin.
	inShape   bool
	clipDepth int
}

// Builder constructs a Frame while canvases are opened, drawn into and
// closed. Nested canvases are kept on an explicit stack; closing a nested
// canvas resumes the parent with a fresh pass that carries the parent's
// stencil reference and bound texture.
//
// Builder is not safe for concurrent use.
type Builder struct {
	Frame

	stack []scope
}

// Reset clears the frame and emits the full-canvas cover triangle sized
// for a w×h canvas. The triangle spans (0,0), (2w,0), (0,2h).
func (b *Builder) Reset(w, h float32) {
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("batch: reset with %d open canvases", len(b.stack)))
	}
	b.Vertices = b.Vertices[:0]
	for i := range b.Passes {
		b.Passes[i].Calls = b.Passes[i].Calls[:0]
	}
	b.Passes = b.Passes[:0]

	white := [4]float32{1, 1, 1, 1}
	b.Vertices = append(b.Vertices,
		Vertex{Pos: [2]float32{0, 0}, Color: white, UV: NoUV, GlyphUV: NoUV},
		Vertex{Pos: [2]float32{2 * w, 0}, Color: white, UV: NoUV, GlyphUV: NoUV},
		Vertex{Pos: [2]float32{0, 2 * h}, Color: white, UV: NoUV, GlyphUV: NoUV},
	)
}

// Push appends vertices to the current call.
func (b *Builder) Push(v ...Vertex) {
	b.Vertices = append(b.Vertices, v...)
}

func (b *Builder) top() *scope {
	if len(b.stack) == 0 {
		panic("batch: no canvas is open")
	}
	return &b.stack[len(b.stack)-1]
}

// pushPass appends a pass, reusing call storage left over from a
// previous frame.
func (b *Builder) pushPass(canvas slot.Key, first DrawCall) {
	n := len(b.Passes)
	if n < cap(b.Passes) {
		b.Passes = b.Passes[:n+1]
		p := &b.Passes[n]
		p.Canvas = canvas
		p.Calls = append(p.Calls[:0], first)
		return
	}
	b.Passes = append(b.Passes, RenderPass{Canvas: canvas, Calls: []DrawCall{first}})
}

func (b *Builder) pushCall(c DrawCall) {
	p := &b.Passes[len(b.Passes)-1]
	p.Calls = append(p.Calls, c)
}

// OpenCanvas starts drawing into canvas. If another canvas is open it is
// suspended until the matching CloseCanvas.
func (b *Builder) OpenCanvas(canvas slot.Key) {
	if len(b.stack) > 0 && b.top().inShape {
		panic("batch: started sub-canvas draw during clip draw")
	}
	b.stack = append(b.stack, scope{canvas: canvas})
	b.pushPass(canvas, DrawCall{StartVertex: b.VertexCount(), Kind: KindDraw})
}

// CloseCanvas finishes the innermost canvas and resumes its parent.
func (b *Builder) CloseCanvas() {
	s := b.top()
	if s.inShape || s.clipDepth != 0 {
		panic(fmt.Sprintf("batch: canvas %v closed with %d open clips", s.canvas, s.clipDepth))
	}
	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		return
	}
	parent := b.top()
	b.pushPass(parent.canvas, DrawCall{
		StartVertex: b.VertexCount(),
		Kind:        KindDraw,
		Texture:     parent.texture,
		Textured:    parent.textured,
		Reference:   parent.reference,
	})
}

// Canvas returns the innermost open canvas.
func (b *Builder) Canvas() slot.Key { return b.top().canvas }

// Depth returns the number of open canvases.
func (b *Builder) Depth() int { return len(b.stack) }

// Reference returns the stencil reference of the innermost canvas.
func (b *Builder) Reference() uint32 { return b.top().reference }

// ClipDepth returns the number of open clips on the innermost canvas.
func (b *Builder) ClipDepth() int { return b.top().clipDepth }

// Texture returns the texture bound on the innermost canvas.
func (b *Builder) Texture() (slot.Key, bool) {
	s := b.top()
	return s.texture, s.textured
}

// SetTexture binds key for subsequent vertices. Binding the texture that
// is already bound does nothing.
func (b *Builder) SetTexture(key slot.Key) {
	b.bind(key, true)
}

// ClearTexture unbinds the current texture.
func (b *Builder) ClearTexture() {
	b.bind(slot.Key{}, false)
}

func (b *Builder) bind(key slot.Key, textured bool) {
	s := b.top()
	if s.textured == textured && s.texture == key {
		return
	}
	s.texture, s.textured = key, textured
	if s.inShape {
		// Clip shapes only touch the stencil; the binding takes effect at
		// ClipBegin.
		return
	}

	calls := b.Passes[len(b.Passes)-1].Calls
	last := &calls[len(calls)-1]
	if last.Kind == KindDraw && last.StartVertex == b.VertexCount() {
		last.Texture, last.Textured = key, textured
		return
	}
	b.pushCall(DrawCall{
		StartVertex: b.VertexCount(),
		Kind:        KindDraw,
		Texture:     key,
		Textured:    textured,
		Reference:   s.reference,
	})
}

// ClipStart begins a clip shape. Vertices pushed until ClipBegin mark the
// stencil instead of drawing color.
func (b *Builder) ClipStart() {
	s := b.top()
	if s.inShape {
		panic("batch: clip started inside clip shape")
	}
	s.inShape = true
	b.pushCall(DrawCall{
		StartVertex: b.VertexCount(),
		Kind:        KindClipStart,
		Reference:   s.reference,
	})
}

// ClipBegin ends the clip shape. Subsequent vertices draw only inside it.
func (b *Builder) ClipBegin() {
	s := b.top()
	if !s.inShape {
		panic("batch: ClipBegin without ClipStart")
	}
	s.inShape = false
	s.clipDepth++
	s.reference++
	b.pushCall(DrawCall{
		StartVertex: b.VertexCount(),
		Kind:        KindDraw,
		Texture:     s.texture,
		Textured:    s.textured,
		Reference:   s.reference,
	})
}

// ClipEnd removes the innermost clip from the stencil and restores the
// enclosing reference.
func (b *Builder) ClipEnd() {
	s := b.top()
	if s.inShape || s.clipDepth == 0 {
		panic("batch: ClipEnd without matching ClipBegin")
	}
	s.clipDepth--
	s.reference--
	b.pushCall(DrawCall{
		StartVertex:      b.VertexCount(),
		Kind:             KindDraw,
		Texture:          s.texture,
		Textured:         s.textured,
		Reference:        s.reference,
		EndsClip:         true,
		EndClipReference: s.reference + 1,
	})
}

// Finish checks that every canvas has been closed and returns the frame.
func (b *Builder) Finish() *Frame {
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("batch: frame finished with %d open canvases", len(b.stack)))
	}
	return &b.Frame
}
