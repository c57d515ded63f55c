package easel

import (
	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/easel/internal/slot"
)

// CanvasKey identifies a canvas. Keys of deleted canvases never resolve
// again.
type CanvasKey slot.Key

// IsZero reports whether k is the zero key, which names no canvas.
func (k CanvasKey) IsZero() bool { return slot.Key(k).IsZero() }

func (k CanvasKey) String() string { return "canvas " + slot.Key(k).String() }

// TextureKey identifies a texture. Keys of removed textures never resolve
// again.
type TextureKey slot.Key

// IsZero reports whether k is the zero key, which names no texture.
func (k TextureKey) IsZero() bool { return slot.Key(k).IsZero() }

func (k TextureKey) String() string { return "texture " + slot.Key(k).String() }

// TextureFilter selects texture sampling.
type TextureFilter uint8

const (
	// FilterLinear samples bilinearly.
	FilterLinear TextureFilter = iota
	// FilterNearest samples the nearest texel.
	FilterNearest
)

func (f TextureFilter) String() string {
	if f == FilterNearest {
		return "nearest"
	}
	return "linear"
}

// Backend executes frames on a GPU. The engine calls it from its owning
// goroutine only. Keys passed in are allocated by the engine.
type Backend interface {
	// Init is called once by NewEngine with the glyph cache whose pages
	// frames sample.
	Init(glyphs *atlas.Cache) error

	// CreateCanvas allocates the render targets of a canvas. The screen
	// canvas resolves to the surface; other canvases resolve to their
	// own texture.
	CreateCanvas(key CanvasKey, width, height int, screen bool) error
	ResizeCanvas(key CanvasKey, width, height int) error
	DeleteCanvas(key CanvasKey)

	// CreateTexture uploads tightly packed RGBA8 pixels.
	CreateTexture(key TextureKey, pix []byte, width, height int, filter TextureFilter) error

	// CanvasTexture makes the output of canvas sampleable as key.
	CanvasTexture(key TextureKey, canvas CanvasKey) error
	DeleteTexture(key TextureKey)

	// AtlasGrown is called synchronously when a glyph page has been
	// reallocated at a larger size.
	AtlasGrown(page *atlas.Page)

	// Render uploads the vertices and dirty atlas regions and replays
	// the frame. It returns ErrFrameSkipped when no surface texture
	// could be acquired.
	Render(frame *batch.Frame) error

	Close() error
}
