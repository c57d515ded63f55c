package batch

import (
	"fmt"

	"github.com/gogpu/easel/internal/slot"
)

// Vertex is the GPU vertex layout shared by every pipeline.
type Vertex struct {
	Pos     [2]float32
	Color   [4]float32
	UV      [2]float32
	GlyphUV [2]float32
}

// VertexSize is the byte size of a Vertex in the vertex buffer.
const VertexSize = 40

// NoUV marks a vertex that samples neither the bound texture nor the
// glyph atlas. The shader treats any negative u as "not sampled".
var NoUV = [2]float32{-1, 0}

// CoverVertices is the number of vertices reserved at the start of every
// frame for the full-canvas triangle used by clip-end draws.
const CoverVertices = 3

// Kind distinguishes the two draw call variants.
type Kind uint8

const (
	// KindDraw draws its range with the color pipeline.
	KindDraw Kind = iota
	// KindClipStart writes its range into the stencil buffer only.
	KindClipStart
)

func (k Kind) String() string {
	switch k {
	case KindDraw:
		return "Draw"
	case KindClipStart:
		return "ClipStart"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// DrawCall is one state change within a render pass. It covers vertices
// from StartVertex up to the start of the next call in the pass, or the
// end of the pass for the last call.
type DrawCall struct {
	StartVertex uint32
	Kind        Kind

	// Texture is bound for the call when Textured is set.
	Texture  slot.Key
	Textured bool

	// Reference is the stencil reference value. Fragments pass only where
	// the stencil equals it.
	Reference uint32

	// EndsClip requests a full-canvas stencil decrement at
	// EndClipReference before the call's own range is drawn.
	EndsClip         bool
	EndClipReference uint32
}

// RenderPass is a run of draw calls targeting one canvas.
type RenderPass struct {
	Canvas slot.Key
	Calls  []DrawCall
}

// Start returns the first vertex of the pass.
func (p *RenderPass) Start() uint32 {
	if len(p.Calls) == 0 {
		return 0
	}
	return p.Calls[0].StartVertex
}

// Frame holds everything submitted for one rendered frame.
type Frame struct {
	Vertices []Vertex
	Passes   []RenderPass
}

// VertexCount returns the number of vertices emitted so far.
func (f *Frame) VertexCount() uint32 { return uint32(len(f.Vertices)) }

// PassEnd returns the end vertex (exclusive) of pass i.
func (f *Frame) PassEnd(i int) uint32 {
	if i+1 < len(f.Passes) {
		return f.Passes[i+1].Start()
	}
	return f.VertexCount()
}

// CallRange returns the vertex range [start, end) of call c in pass p.
func (f *Frame) CallRange(p, c int) (start, end uint32) {
	calls := f.Passes[p].Calls
	start = calls[c].StartVertex
	if c+1 < len(calls) {
		return start, calls[c+1].StartVertex
	}
	return start, f.PassEnd(p)
}

// DrawCallCount returns the total number of calls across all passes.
func (f *Frame) DrawCallCount() int {
	n := 0
	for i := range f.Passes {
		n += len(f.Passes[i].Calls)
	}
	return n
}
