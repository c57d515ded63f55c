package easel

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/internal/batch"
)

// recordBackend is a Backend that keeps copies of everything it is given.
type recordBackend struct {
	glyphs   *atlas.Cache
	canvases map[CanvasKey][2]int
	textures map[TextureKey][]byte
	sizes    map[TextureKey][2]int
	frames   []batch.Frame
	grown    int
	logger   *slog.Logger
	closed   bool

	// renderErr is returned by the next Render.
	renderErr error
}

func newRecordBackend() *recordBackend {
	return &recordBackend{
		canvases: make(map[CanvasKey][2]int),
		textures: make(map[TextureKey][]byte),
		sizes:    make(map[TextureKey][2]int),
	}
}

func (b *recordBackend) Init(glyphs *atlas.Cache) error {
	b.glyphs = glyphs
	return nil
}

func (b *recordBackend) CreateCanvas(key CanvasKey, w, h int, _ bool) error {
	b.canvases[key] = [2]int{w, h}
	return nil
}

func (b *recordBackend) ResizeCanvas(key CanvasKey, w, h int) error {
	b.canvases[key] = [2]int{w, h}
	return nil
}

func (b *recordBackend) DeleteCanvas(key CanvasKey) { delete(b.canvases, key) }

func (b *recordBackend) CreateTexture(key TextureKey, pix []byte, w, h int, _ TextureFilter) error {
	b.textures[key] = slices.Clone(pix)
	b.sizes[key] = [2]int{w, h}
	return nil
}

func (b *recordBackend) CanvasTexture(key TextureKey, canvas CanvasKey) error {
	b.textures[key] = nil
	b.sizes[key] = b.canvases[canvas]
	return nil
}

func (b *recordBackend) DeleteTexture(key TextureKey) {
	delete(b.textures, key)
	delete(b.sizes, key)
}

func (b *recordBackend) AtlasGrown(*atlas.Page) { b.grown++ }

func (b *recordBackend) Render(f *batch.Frame) error {
	cp := batch.Frame{Vertices: slices.Clone(f.Vertices)}
	for _, p := range f.Passes {
		cp.Passes = append(cp.Passes, batch.RenderPass{Canvas: p.Canvas, Calls: slices.Clone(p.Calls)})
	}
	b.frames = append(b.frames, cp)
	err := b.renderErr
	b.renderErr = nil
	return err
}

func (b *recordBackend) Close() error {
	b.closed = true
	return nil
}

func (b *recordBackend) SetLogger(l *slog.Logger) { b.logger = l }

// last returns the most recently rendered frame.
func (b *recordBackend) last(t *testing.T) *batch.Frame {
	t.Helper()
	if len(b.frames) == 0 {
		t.Fatal("no frame rendered")
	}
	return &b.frames[len(b.frames)-1]
}

func newTestEngine(t *testing.T, b Backend, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(b, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// drawFrame renders one frame of the screen canvas and returns it.
func drawFrame(t *testing.T, e *Engine, b *recordBackend, draw func(*Canvas)) *batch.Frame {
	t.Helper()
	if err := e.Frame(draw); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	return b.last(t)
}

// drawCalls flattens the calls of all passes of f.
func drawCalls(f *batch.Frame) []batch.DrawCall {
	var calls []batch.DrawCall
	for _, p := range f.Passes {
		calls = append(calls, p.Calls...)
	}
	return calls
}

func TestTextureKey_String(t *testing.T) {
	var k TextureKey
	if !k.IsZero() {
		t.Error("zero TextureKey.IsZero() = false")
	}
	if got := (CanvasKey{}).String(); got == "" {
		t.Error("CanvasKey.String() is empty")
	}
	if FilterNearest.String() != "nearest" || FilterLinear.String() != "linear" {
		t.Errorf("TextureFilter.String() = %q, %q", FilterNearest, FilterLinear)
	}
}
