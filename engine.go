package easel

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/easel/internal/slot"
	"github.com/gogpu/easel/text"
	textcache "github.com/gogpu/easel/text/cache"
)

// RunMode tells which clock the engine is currently advancing. Input
// "just pressed" queries compare against the counter of this clock.
type RunMode uint8

const (
	// RunModeNone is the mode outside frames and ticks.
	RunModeNone RunMode = iota
	// RunModeRender is active between BeginFrame and Render.
	RunModeRender
	// RunModeFixed is active during Tick.
	RunModeFixed
)

func (m RunMode) String() string {
	switch m {
	case RunModeRender:
		return "render"
	case RunModeFixed:
		return "fixed"
	default:
		return "none"
	}
}

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Frame     uint64
	Vertices  int
	Passes    int
	DrawCalls int
	Skipped   bool
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frame", s.Frame),
		slog.Int("vertices", s.Vertices),
		slog.Int("passes", s.Passes),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Bool("skipped", s.Skipped),
	)
}

type canvasInfo struct {
	width, height int
	screen        bool

	// texture is set once the canvas output is registered as a texture.
	texture  TextureKey
	textured bool
}

type textureInfo struct {
	width, height int
	filter        TextureFilter

	// path is the absolute source path of textures loaded from a file.
	path string

	// canvas is set for canvas outputs; their size follows the canvas.
	canvas     CanvasKey
	fromCanvas bool
}

// Engine owns the per-frame draw state, the canvas and texture tables,
// the glyph atlas and the shaped-text cache.
//
// Engine is not safe for concurrent use. Run drives it from a single
// goroutine.
type Engine struct {
	config  EngineConfig
	backend Backend

	builder  batch.Builder
	inFrame  bool
	canvases slot.Map[canvasInfo]
	textures slot.Map[textureInfo]
	screen   CanvasKey

	fonts    *text.FontSet
	shaper   *text.Shaper
	raster   *text.Rasterizer
	glyphs   *atlas.Cache
	shaped   *textcache.Cache

	// resolved holds the font resolutions of the current frame;
	// resolvedPrev those of the previous one.
	resolved     map[text.Attrs]text.Attrs
	resolvedPrev map[text.Attrs]text.Attrs

	renderFrame uint64
	fixedTick   uint64
	mode        RunMode
	skipped     uint64
	last        FrameStats

	input  inputState
	states map[stateKey]any

	watcher      *TextureWatcher
	texturePaths map[string][]TextureKey

	closed bool
}

// NewEngine creates an engine drawing through b. The screen canvas is
// created with the configured screen size.
func NewEngine(b Backend, opts ...Option) (*Engine, error) {
	cfg := DefaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	glyphs, err := atlas.New(cfg.Atlas.atlas())
	if err != nil {
		return nil, err
	}
	fonts, err := loadFonts(cfg.Fonts)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:       cfg,
		backend:      b,
		fonts:        fonts,
		shaper:       text.NewShaper(fonts),
		raster:       text.NewRasterizer(fonts),
		resolved:     make(map[text.Attrs]text.Attrs),
		resolvedPrev: make(map[text.Attrs]text.Attrs),
		glyphs:       glyphs,
		shaped:       textcache.New(),
		input:        newInputState(),
		states:       make(map[stateKey]any),
		texturePaths: make(map[string][]TextureKey),
	}

	registerBackend(b)
	if err := b.Init(glyphs); err != nil {
		return nil, fmt.Errorf("easel: init backend: %w", err)
	}
	glyphs.OnGrow(b.AtlasGrown)

	e.screen, err = e.createCanvas(cfg.ScreenWidth, cfg.ScreenHeight, true)
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	if cfg.WatchTextures {
		e.watcher, err = NewTextureWatcher(0)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("easel: texture watcher: %w", err)
		}
	}

	Logger().Info("easel: engine ready",
		"screen_width", cfg.ScreenWidth,
		"screen_height", cfg.ScreenHeight,
		"atlas_size", cfg.Atlas.InitialSize)
	return e, nil
}

func loadFonts(cfg FontConfig) (*text.FontSet, error) {
	fonts, err := text.NewFontSet()
	if err != nil {
		return nil, err
	}
	for _, path := range cfg.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("easel: load font: %w", err)
		}
		if err := fonts.AddFont(data, path, ""); err != nil {
			return nil, fmt.Errorf("easel: load font %s: %w", path, err)
		}
	}
	if cfg.SystemFonts {
		dir := cfg.CacheDir
		if dir == "" {
			if dir, err = os.UserCacheDir(); err != nil {
				return nil, fmt.Errorf("easel: font cache dir: %w", err)
			}
		}
		if err := fonts.UseSystemFonts(dir); err != nil {
			return nil, fmt.Errorf("easel: system fonts: %w", err)
		}
	}
	return fonts, nil
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() EngineConfig { return e.config }

// Fonts returns the engine's font set.
func (e *Engine) Fonts() *text.FontSet { return e.fonts }

// RenderFrame returns the number of frames rendered so far, which is also
// the number of the frame being drawn.
func (e *Engine) RenderFrame() uint64 { return e.renderFrame }

// FixedTick returns the number of fixed ticks run so far.
func (e *Engine) FixedTick() uint64 { return e.fixedTick }

// Mode returns the clock currently being advanced.
func (e *Engine) Mode() RunMode { return e.mode }

// LastFrame returns statistics of the most recent Render.
func (e *Engine) LastFrame() FrameStats { return e.last }

// SkippedFrames returns the number of frames the backend dropped.
func (e *Engine) SkippedFrames() uint64 { return e.skipped }

// GlyphStats returns glyph atlas statistics.
func (e *Engine) GlyphStats() atlas.CacheStats { return e.glyphs.Stats() }

// TextStats returns shaped-text cache statistics.
func (e *Engine) TextStats() textcache.CacheStats { return e.shaped.Stats() }

func (e *Engine) checkOpen() {
	if e.closed {
		panic(ErrClosed)
	}
}

// BeginFrame starts a frame: it clears the vertices and passes, emits
// the cover triangle, evicts glyphs and shaped text that the previous
// frame did not use. The cover triangle is shared by every canvas, so it
// is sized for the largest canvas rather than the screen.
func (e *Engine) BeginFrame() {
	e.checkOpen()
	if e.inFrame {
		panic("easel: BeginFrame inside a frame")
	}
	e.inFrame = true
	e.mode = RunModeRender

	e.builder.Reset(MaxCanvasSize, MaxCanvasSize)
	e.glyphs.BeginFrame()
	e.shaped.BeginFrame()
	e.resolvedPrev, e.resolved = e.resolved, e.resolvedPrev
	clear(e.resolved)
}

// DrawCanvas opens the canvas key and calls draw with a fresh drawing
// state. It must be called inside a frame; calling it from a draw
// callback nests the canvas.
func (e *Engine) DrawCanvas(key CanvasKey, draw func(*Canvas)) {
	if !e.inFrame {
		panic("easel: DrawCanvas outside a frame")
	}
	e.canvas(key)
	e.builder.OpenCanvas(slot.Key(key))
	draw(newCanvas(e, key))
	e.builder.CloseCanvas()
}

// Render finishes the frame and submits it. A frame the backend skipped
// is logged and counted, not returned as an error.
func (e *Engine) Render() error {
	if !e.inFrame {
		panic("easel: Render outside a frame")
	}
	f := e.builder.Finish()
	e.inFrame = false
	e.mode = RunModeNone

	stats := FrameStats{
		Frame:     e.renderFrame,
		Vertices:  len(f.Vertices),
		Passes:    len(f.Passes),
		DrawCalls: f.DrawCallCount(),
	}
	err := e.backend.Render(f)
	e.renderFrame++
	if errors.Is(err, ErrFrameSkipped) {
		e.skipped++
		stats.Skipped = true
		Logger().Debug("easel: frame skipped", "frame", stats.Frame, "err", err)
		err = nil
	}
	e.last = stats
	if err != nil {
		return fmt.Errorf("easel: render frame %d: %w", stats.Frame, err)
	}
	return nil
}

// Frame draws one frame into the screen canvas and renders it.
func (e *Engine) Frame(draw func(*Canvas)) error {
	e.BeginFrame()
	e.DrawCanvas(e.screen, draw)
	return e.Render()
}

// Tick runs fn as one fixed tick.
func (e *Engine) Tick(fn func(*Engine)) {
	e.checkOpen()
	if e.inFrame {
		panic("easel: Tick inside a frame")
	}
	e.mode = RunModeFixed
	if fn != nil {
		fn(e)
	}
	e.fixedTick++
	e.mode = RunModeNone
}

// Close releases the backend and the texture watcher.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	errs = append(errs, e.backend.Close())
	return errors.Join(errs...)
}

// ScreenCanvas returns the key of the screen canvas.
func (e *Engine) ScreenCanvas() CanvasKey { return e.screen }

// canvas returns the info of key, panicking on stale keys.
func (e *Engine) canvas(key CanvasKey) *canvasInfo {
	info := e.canvases.Ptr(slot.Key(key))
	if info == nil {
		panic(fmt.Sprintf("easel: unknown %v", key))
	}
	return info
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxCanvasSize || height > MaxCanvasSize {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

func (e *Engine) createCanvas(width, height int, screen bool) (CanvasKey, error) {
	if err := checkSize(width, height); err != nil {
		return CanvasKey{}, err
	}
	key := CanvasKey(e.canvases.Insert(canvasInfo{width: width, height: height, screen: screen}))
	if err := e.backend.CreateCanvas(key, width, height, screen); err != nil {
		e.canvases.Remove(slot.Key(key))
		return CanvasKey{}, fmt.Errorf("easel: create canvas: %w", err)
	}
	Logger().Debug("easel: canvas created", "canvas", key, "width", width, "height", height, "screen", screen)
	return key, nil
}

// CreateCanvas creates an offscreen canvas.
func (e *Engine) CreateCanvas(width, height int) (CanvasKey, error) {
	e.checkOpen()
	return e.createCanvas(width, height, false)
}

// DeleteCanvas deletes an offscreen canvas and the texture registered
// for its output. It reports false for unknown keys and for the screen
// canvas.
func (e *Engine) DeleteCanvas(key CanvasKey) bool {
	info, ok := e.canvases.Get(slot.Key(key))
	if !ok || info.screen {
		return false
	}
	if e.inFrame {
		panic("easel: DeleteCanvas inside a frame")
	}
	if info.textured {
		e.removeTexture(info.texture)
	}
	e.canvases.Remove(slot.Key(key))
	e.backend.DeleteCanvas(key)
	return true
}

// ResizeCanvas resizes a canvas. A zero width or height is ignored.
func (e *Engine) ResizeCanvas(key CanvasKey, width, height int) error {
	info := e.canvas(key)
	if width == 0 || height == 0 {
		return nil
	}
	if err := checkSize(width, height); err != nil {
		return err
	}
	if info.width == width && info.height == height {
		return nil
	}
	if err := e.backend.ResizeCanvas(key, width, height); err != nil {
		return fmt.Errorf("easel: resize canvas: %w", err)
	}
	info.width, info.height = width, height
	return nil
}

// CanvasSize returns the size of a canvas.
func (e *Engine) CanvasSize(key CanvasKey) (width, height int) {
	info := e.canvas(key)
	return info.width, info.height
}

// CanvasTexture returns a texture key sampling the output of the
// offscreen canvas key. The same key is returned on every call.
func (e *Engine) CanvasTexture(key CanvasKey) (TextureKey, error) {
	info := e.canvas(key)
	if info.screen {
		return TextureKey{}, fmt.Errorf("easel: screen canvas cannot be sampled")
	}
	if info.textured {
		return info.texture, nil
	}
	tex := TextureKey(e.textures.Insert(textureInfo{canvas: key, fromCanvas: true}))
	if err := e.backend.CanvasTexture(tex, key); err != nil {
		e.textures.Remove(slot.Key(tex))
		return TextureKey{}, fmt.Errorf("easel: canvas texture: %w", err)
	}
	info.texture, info.textured = tex, true
	return tex, nil
}
