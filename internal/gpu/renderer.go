//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Renderer errors.
var (
	// ErrUnknownCanvas reports a canvas key the renderer holds no targets for.
	ErrUnknownCanvas = errors.New("gpu: unknown canvas")

	// ErrUnknownTexture reports a draw binding a texture that was never
	// created or was deleted.
	ErrUnknownTexture = errors.New("gpu: unknown texture")

	// ErrSurfaceCanvas reports a canvas that renders into the surface and
	// has no sampleable output.
	ErrSurfaceCanvas = errors.New("gpu: canvas renders to the surface")

	// ErrNotInitialized is returned by Render before Init.
	ErrNotInitialized = errors.New("gpu: renderer not initialized")

	// ErrClosed is returned by operations on a closed renderer.
	ErrClosed = errors.New("gpu: renderer closed")

	// ErrInvalidConfig is wrapped by Config.Validate errors.
	ErrInvalidConfig = errors.New("gpu: invalid config")
)

// Config selects the render target format and sampling.
type Config struct {
	// Format of the surface and of every canvas output texture.
	Format gputypes.TextureFormat

	// SampleCount is 4 for MSAA targets or 1 to render directly into the
	// outputs.
	SampleCount uint32

	// SPIRV hands the device SPIR-V compiled with naga instead of WGSL.
	SPIRV bool

	// PresentMode configures the surface, when there is one.
	PresentMode gputypes.PresentMode
}

// DefaultConfig returns BGRA8 targets with 4x MSAA and FIFO presentation.
func DefaultConfig() Config {
	return Config{
		Format:      gputypes.TextureFormatBGRA8Unorm,
		SampleCount: 4,
		PresentMode: gputypes.PresentModeFifo,
	}
}

// Validate reports an unusable configuration.
func (c Config) Validate() error {
	if c.Format == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: format is undefined", ErrInvalidConfig)
	}
	if c.SampleCount != 1 && c.SampleCount != 4 {
		return fmt.Errorf("%w: sample count %d, want 1 or 4", ErrInvalidConfig, c.SampleCount)
	}
	return nil
}

// Stats counts renderer work since creation.
type Stats struct {
	Frames       uint64
	Skipped      uint64
	Passes       uint64
	Draws        uint64
	AtlasUploads uint64
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("frames", s.Frames),
		slog.Uint64("skipped", s.Skipped),
		slog.Uint64("passes", s.Passes),
		slog.Uint64("draws", s.Draws),
		slog.Uint64("atlas_uploads", s.AtlasUploads),
	)
}

// submission is a frame the GPU may still be executing.
type submission struct {
	index   uint64
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer
	view    hal.TextureView
}

// Renderer implements easel.Backend on a HAL device. Like the engine it
// serves, it is used from one goroutine.
type Renderer struct {
	device  hal.Device
	queue   hal.Queue
	surface hal.Surface
	cfg     Config

	pipelines *pipelineSet
	samplers  [2]hal.Sampler
	dummy     *textureEntry
	atlas     atlasTextures
	vertices  vertexBuffer

	canvases map[easel.CanvasKey]*canvasTarget
	textures map[easel.TextureKey]*textureEntry
	screen   easel.CanvasKey
	reconfig bool
	inFlight []submission
	stats    Stats
	ready    bool
	closed   bool
}

var _ easel.Backend = (*Renderer)(nil)

// New creates a renderer on device and queue. surface may be nil, in which
// case the screen canvas renders into an offscreen texture.
func New(device hal.Device, queue hal.Queue, surface hal.Surface, cfg Config) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, errors.New("gpu: nil device or queue")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		device:   device,
		queue:    queue,
		surface:  surface,
		cfg:      cfg,
		canvases: make(map[easel.CanvasKey]*canvasTarget),
		textures: make(map[easel.TextureKey]*textureEntry),
	}

	var err error
	if r.pipelines, err = newPipelineSet(device, cfg); err != nil {
		return nil, err
	}
	if err := r.createSamplers(); err != nil {
		r.release()
		return nil, err
	}
	if err := r.createDummy(); err != nil {
		r.release()
		return nil, err
	}
	return r, nil
}

// Config returns the configuration the renderer was created with.
func (r *Renderer) Config() Config { return r.cfg }

// Stats returns the work counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Headless reports whether the screen canvas renders offscreen.
func (r *Renderer) Headless() bool { return r.surface == nil }

// SetLogger routes the package logs to l.
func (r *Renderer) SetLogger(l *slog.Logger) { setLogger(l) }

// Init creates the atlas textures mirroring the pages of glyphs.
func (r *Renderer) Init(glyphs *atlas.Cache) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.initAtlas(glyphs); err != nil {
		return err
	}
	r.ready = true
	slogger().Info("gpu: renderer ready",
		"format", r.cfg.Format,
		"samples", r.cfg.SampleCount,
		"headless", r.Headless(),
		"spirv", r.cfg.SPIRV)
	return nil
}

// CreateCanvas allocates the targets of a canvas. With a surface attached
// the screen canvas resolves into the surface texture.
func (r *Renderer) CreateCanvas(key easel.CanvasKey, width, height int, screen bool) error {
	if r.closed {
		return ErrClosed
	}
	t := &canvasTarget{label: "easel_" + key.String(), screen: screen}
	if err := t.ensure(r, uint32(width), uint32(height), screen && r.surface != nil); err != nil {
		t.destroy(r.device)
		return err
	}
	if screen {
		r.screen = key
		if err := r.configureSurface(t); err != nil {
			t.destroy(r.device)
			return err
		}
	}
	r.canvases[key] = t
	return nil
}

// ResizeCanvas recreates the targets of a canvas at the new size and
// rebinds the textures sampling it.
func (r *Renderer) ResizeCanvas(key easel.CanvasKey, width, height int) error {
	t, ok := r.canvases[key]
	if !ok {
		return fmt.Errorf("gpu: resize: %v: %w", key, ErrUnknownCanvas)
	}
	r.waitIdle()
	if err := t.ensure(r, uint32(width), uint32(height), t.screen && r.surface != nil); err != nil {
		return err
	}
	if t.screen {
		if err := r.configureSurface(t); err != nil {
			return err
		}
	}
	return r.rebindCanvasTextures(key)
}

// DeleteCanvas releases the targets of a canvas and the textures
// sampling it.
func (r *Renderer) DeleteCanvas(key easel.CanvasKey) {
	t, ok := r.canvases[key]
	if !ok {
		return
	}
	for tk, e := range r.textures {
		if e.fromCanvas && e.canvas == key {
			r.DeleteTexture(tk)
		}
	}
	delete(r.canvases, key)
	r.waitIdle()
	t.destroy(r.device)
}

func (r *Renderer) configureSurface(t *canvasTarget) error {
	if r.surface == nil {
		return nil
	}
	err := r.surface.Configure(r.device, &hal.SurfaceConfiguration{
		Width:       t.width,
		Height:      t.height,
		Format:      r.cfg.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: r.cfg.PresentMode,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return fmt.Errorf("gpu: configure surface %dx%d: %w", t.width, t.height, err)
	}
	r.reconfig = false
	return nil
}

// Render uploads the dirty atlas regions and the vertices, replays the
// frame and presents. It returns an error wrapping easel.ErrFrameSkipped
// when no surface texture could be acquired.
func (r *Renderer) Render(frame *batch.Frame) error {
	if r.closed {
		return ErrClosed
	}
	if !r.ready {
		return ErrNotInitialized
	}
	r.reclaim()

	if err := r.uploadDirty(); err != nil {
		return err
	}
	if err := r.vertices.upload(r.device, r.queue, frame.Vertices); err != nil {
		return err
	}

	acquired, view, err := r.acquire()
	if err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "easel_frame"})
	if err != nil {
		r.discard(acquired, view)
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("easel_frame"); err != nil {
		encoder.Destroy()
		r.discard(acquired, view)
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	fe := frameEncoder{r: r, encoder: encoder, surface: view}
	if err := batch.Walk(frame, &fe); err != nil {
		fe.end()
		encoder.DiscardEncoding()
		encoder.Destroy()
		r.discard(acquired, view)
		return err
	}
	fe.resolveScreen()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.Destroy()
		r.discard(acquired, view)
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	index, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.device.FreeCommandBuffer(cmd)
		encoder.Destroy()
		r.discard(acquired, view)
		return fmt.Errorf("gpu: submit: %w", err)
	}
	r.inFlight = append(r.inFlight, submission{index: index, encoder: encoder, cmd: cmd, view: view})

	r.stats.Frames++
	r.stats.Passes += uint64(fe.passes)
	r.stats.Draws += uint64(fe.draws)

	if acquired != nil {
		if err := r.queue.Present(r.surface, acquired.Texture, nil); err != nil {
			return fmt.Errorf("gpu: present: %w", err)
		}
		if acquired.Suboptimal {
			r.reconfig = true
		}
	}
	return nil
}

// acquire returns the surface texture and a view of it for this frame, or
// nils when rendering headless.
func (r *Renderer) acquire() (*hal.AcquiredSurfaceTexture, hal.TextureView, error) {
	if r.surface == nil {
		return nil, nil, nil
	}
	if t, ok := r.canvases[r.screen]; ok && r.reconfig {
		if err := r.configureSurface(t); err != nil {
			return nil, nil, err
		}
	}

	acquired, err := r.surface.AcquireTexture(nil)
	if err != nil {
		if errors.Is(err, hal.ErrSurfaceOutdated) || errors.Is(err, hal.ErrSurfaceLost) {
			r.reconfig = true
		}
		r.stats.Skipped++
		slogger().Debug("gpu: surface texture unavailable", "err", err)
		return nil, nil, fmt.Errorf("%w: %w", easel.ErrFrameSkipped, err)
	}
	view, err := r.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label: "easel_surface_view",
	})
	if err != nil {
		r.surface.DiscardTexture(acquired.Texture)
		return nil, nil, fmt.Errorf("gpu: create surface view: %w", err)
	}
	if t, ok := r.canvases[r.screen]; ok && r.cfg.SampleCount == 1 {
		// Without an MSAA target nothing holds the screen between frames.
		t.fresh = true
	}
	return acquired, view, nil
}

func (r *Renderer) discard(acquired *hal.AcquiredSurfaceTexture, view hal.TextureView) {
	if view != nil {
		r.device.DestroyTextureView(view)
	}
	if acquired != nil {
		r.surface.DiscardTexture(acquired.Texture)
	}
}

// reclaim frees the command buffers of completed submissions.
func (r *Renderer) reclaim() {
	if len(r.inFlight) == 0 {
		return
	}
	done := r.queue.PollCompleted()
	n := 0
	for _, s := range r.inFlight {
		if s.index > done {
			r.inFlight[n] = s
			n++
			continue
		}
		r.free(s)
	}
	clear(r.inFlight[n:])
	r.inFlight = r.inFlight[:n]
}

func (r *Renderer) free(s submission) {
	r.device.FreeCommandBuffer(s.cmd)
	s.encoder.Destroy()
	if s.view != nil {
		r.device.DestroyTextureView(s.view)
	}
}

// waitIdle blocks until every submission completed and frees them.
func (r *Renderer) waitIdle() {
	if len(r.inFlight) == 0 {
		return
	}
	if err := r.device.WaitIdle(); err != nil {
		slogger().Warn("gpu: wait idle", "err", err)
	}
	for _, s := range r.inFlight {
		r.free(s)
	}
	clear(r.inFlight)
	r.inFlight = r.inFlight[:0]
}

// Close waits for in-flight frames and releases every GPU resource the
// renderer created. The device, queue and surface stay with the caller.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.waitIdle()
	r.release()
	if r.surface != nil {
		r.surface.Unconfigure(r.device)
	}
	slogger().Debug("gpu: renderer closed", "stats", r.stats)
	return nil
}

func (r *Renderer) release() {
	for key, e := range r.textures {
		e.destroy(r.device)
		delete(r.textures, key)
	}
	for key, t := range r.canvases {
		t.destroy(r.device)
		delete(r.canvases, key)
	}
	if r.dummy != nil {
		r.dummy.destroy(r.device)
		r.dummy = nil
	}
	r.atlas.destroy(r.device)
	r.vertices.destroy(r.device)
	for i, s := range r.samplers {
		if s != nil {
			r.device.DestroySampler(s)
			r.samplers[i] = nil
		}
	}
	if r.pipelines != nil {
		r.pipelines.destroy(r.device)
		r.pipelines = nil
	}
}
