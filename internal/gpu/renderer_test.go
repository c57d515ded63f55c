//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/easel/internal/slot"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t testing.TB) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// createNoopSurface returns a noop surface that always acquires.
func createNoopSurface(t testing.TB) hal.Surface {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	surface, err := instance.CreateSurface(0, 0)
	if err != nil {
		t.Fatalf("CreateSurface failed: %v", err)
	}
	return surface
}

// recorder collects the render pass commands of recordDevice.
type recorder struct {
	events []string
	passes []hal.RenderPassDescriptor
}

func (rec *recorder) reset() {
	rec.events = rec.events[:0]
	rec.passes = rec.passes[:0]
}

// filter returns the events starting with prefix.
func (rec *recorder) filter(prefix string) []string {
	var out []string
	for _, e := range rec.events {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// recordDevice wraps a device so that pipelines and bind groups carry
// their labels and every render pass command is recorded.
type recordDevice struct {
	hal.Device
	rec *recorder
}

type namedPipeline struct {
	hal.RenderPipeline
	name string
}

type namedGroup struct {
	hal.BindGroup
	name string
}

func (d *recordDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	p, err := d.Device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, err
	}
	return &namedPipeline{RenderPipeline: p, name: desc.Label}, nil
}

func (d *recordDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	g, err := d.Device.CreateBindGroup(desc)
	if err != nil {
		return nil, err
	}
	if d.rec != nil {
		d.rec.events = append(d.rec.events, "create_group "+desc.Label)
	}
	return &namedGroup{BindGroup: g, name: desc.Label}, nil
}

func (d *recordDevice) DestroyBindGroup(g hal.BindGroup) {
	if n, ok := g.(*namedGroup); ok {
		if d.rec != nil {
			d.rec.events = append(d.rec.events, "destroy_group "+n.name)
		}
		g = n.BindGroup
	}
	d.Device.DestroyBindGroup(g)
}

func (d *recordDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordEncoder{CommandEncoder: enc, rec: d.rec}, nil
}

type recordEncoder struct {
	hal.CommandEncoder
	rec *recorder
}

func (e *recordEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.passes = append(e.rec.passes, *desc)
	e.rec.events = append(e.rec.events, "pass "+desc.Label)
	return &recordPass{RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc), rec: e.rec}
}

type recordPass struct {
	hal.RenderPassEncoder
	rec *recorder
}

func (p *recordPass) SetPipeline(pipeline hal.RenderPipeline) {
	name := "?"
	if np, ok := pipeline.(*namedPipeline); ok {
		name = np.name
	}
	p.rec.events = append(p.rec.events, "pipeline "+name)
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *recordPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	name := "?"
	if ng, ok := group.(*namedGroup); ok {
		name = ng.name
	}
	p.rec.events = append(p.rec.events, fmt.Sprintf("group%d %s", index, name))
	p.RenderPassEncoder.SetBindGroup(index, group, offsets)
}

func (p *recordPass) SetStencilReference(reference uint32) {
	p.rec.events = append(p.rec.events, fmt.Sprintf("ref %d", reference))
	p.RenderPassEncoder.SetStencilReference(reference)
}

func (p *recordPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rec.events = append(p.rec.events, fmt.Sprintf("draw %d %d", firstVertex, vertexCount))
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// flakySurface fails AcquireTexture with err while it is set.
type flakySurface struct {
	hal.Surface
	err        error
	configured int
}

func (s *flakySurface) Configure(device hal.Device, config *hal.SurfaceConfiguration) error {
	s.configured++
	return s.Surface.Configure(device, config)
}

func (s *flakySurface) AcquireTexture(fence hal.Fence) (*hal.AcquiredSurfaceTexture, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.Surface.AcquireTexture(fence)
}

// countQueue counts presented frames.
type countQueue struct {
	hal.Queue
	presented int
}

func (q *countQueue) Present(surface hal.Surface, texture hal.SurfaceTexture, damage []image.Rectangle) error {
	q.presented++
	return q.Queue.Present(surface, texture, damage)
}

func newTestRenderer(t *testing.T, device hal.Device, queue hal.Queue, surface hal.Surface, cfg Config) *Renderer {
	t.Helper()
	r, err := New(device, queue, surface, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func newTestEngine(t *testing.T, r *Renderer, opts ...easel.Option) *easel.Engine {
	t.Helper()
	opts = append([]easel.Option{easel.WithScreenSize(64, 48)}, opts...)
	e, err := easel.NewEngine(r, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func newRecordingEngine(t *testing.T, cfg Config) (*easel.Engine, *Renderer, *recorder) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	rec := &recorder{}
	r := newTestRenderer(t, &recordDevice{Device: device, rec: rec}, queue, nil, cfg)
	e := newTestEngine(t, r)
	rec.reset()
	return e, r, rec
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no msaa", func(c *Config) { c.SampleCount = 1 }, false},
		{"rgba", func(c *Config) { c.Format = gputypes.TextureFormatRGBA8Unorm }, false},
		{"undefined format", func(c *Config) { c.Format = gputypes.TextureFormatUndefined }, true},
		{"zero samples", func(c *Config) { c.SampleCount = 0 }, true},
		{"eight samples", func(c *Config) { c.SampleCount = 8 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want wrapping ErrInvalidConfig", err)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := New(nil, queue, nil, DefaultConfig()); err == nil {
		t.Error("New(nil device) error = nil")
	}
	if _, err := New(device, nil, nil, DefaultConfig()); err == nil {
		t.Error("New(nil queue) error = nil")
	}
	bad := DefaultConfig()
	bad.SampleCount = 2
	if _, err := New(device, queue, nil, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(sample count 2) error = %v, want ErrInvalidConfig", err)
	}
}

func TestRenderer_RenderBeforeInit(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := newTestRenderer(t, device, queue, nil, DefaultConfig())
	defer r.Close()

	var b batch.Builder
	b.Reset(8, 8)
	if err := r.Render(b.Finish()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render() error = %v, want ErrNotInitialized", err)
	}
}

func TestRenderer_Init(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := newTestRenderer(t, device, queue, nil, DefaultConfig())
	defer r.Close()

	glyphs, err := atlas.New(atlas.DefaultConfig())
	if err != nil {
		t.Fatalf("atlas.New() error = %v", err)
	}
	if err := r.Init(glyphs); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !r.Headless() {
		t.Error("Headless() = false without a surface")
	}
	if got := r.Stats().AtlasUploads; got != 2 {
		t.Errorf("AtlasUploads = %d, want 2", got)
	}
	for _, pt := range []*pageTexture{&r.atlas.mask, &r.atlas.color} {
		if pt.size != atlas.DefaultInitialSize {
			t.Errorf("%s page texture size = %d, want %d", pt.page.Content(), pt.size, atlas.DefaultInitialSize)
		}
	}
	if r.atlas.group == nil {
		t.Error("atlas bind group not created")
	}
}

func TestRenderer_FrameThroughEngine(t *testing.T) {
	e, r, rec := newRecordingEngine(t, DefaultConfig())

	err := e.Frame(func(c *easel.Canvas) {
		c.NoStroke()
		c.Rect().XYWH(4, 4, 16, 16).Draw()
	})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	stats := r.Stats()
	if stats.Frames != 1 || stats.Passes != 1 || stats.Draws != 1 {
		t.Errorf("Stats() = %+v, want 1 frame, 1 pass, 1 draw", stats)
	}
	if got := rec.filter("draw"); !equalStrings(got, []string{"draw 3 6"}) {
		t.Errorf("draws = %v, want [draw 3 6]", got)
	}
	if got := rec.filter("pipeline"); !equalStrings(got, []string{"pipeline easel_draw_pipeline"}) {
		t.Errorf("pipelines = %v, want the draw pipeline", got)
	}
}

func TestRenderer_ClipSequence(t *testing.T) {
	e, _, rec := newRecordingEngine(t, DefaultConfig())

	err := e.Frame(func(c *easel.Canvas) {
		c.NoStroke()
		c.Clip(func(c *easel.Canvas) {
			c.Rect().XYWH(0, 0, 10, 10).Draw()
		}, func(c *easel.Canvas) {
			c.Rect().XYWH(0, 0, 20, 20).Draw()
		})
	})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	wantPipelines := []string{
		"pipeline easel_clip_start_pipeline",
		"pipeline easel_draw_pipeline",
		"pipeline easel_clip_end_pipeline",
	}
	if got := rec.filter("pipeline"); !equalStrings(got, wantPipelines) {
		t.Errorf("pipelines = %v, want %v", got, wantPipelines)
	}
	// The clip end runs at the clip's own reference, so it is not set again.
	if got := rec.filter("ref"); !equalStrings(got, []string{"ref 0", "ref 1"}) {
		t.Errorf("references = %v, want [ref 0 ref 1]", got)
	}
	wantDraws := []string{"draw 3 6", "draw 9 6", "draw 0 3"}
	if got := rec.filter("draw"); !equalStrings(got, wantDraws) {
		t.Errorf("draws = %v, want %v", got, wantDraws)
	}
}

func TestRenderer_TextureBinding(t *testing.T) {
	e, _, rec := newRecordingEngine(t, DefaultConfig())

	pix := make([]byte, 2*2*4)
	for i := range pix {
		pix[i] = 0xFF
	}
	key, err := e.LoadTextureRGBA(pix, 2, 2, easel.FilterNearest)
	if err != nil {
		t.Fatalf("LoadTextureRGBA() error = %v", err)
	}

	err = e.Frame(func(c *easel.Canvas) {
		c.NoStroke()
		c.SetTexture(key)
		c.Image().XY(0, 0).Draw()
		c.ClearTexture()
		c.Rect().XYWH(0, 0, 4, 4).Draw()
	})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	want := []string{
		"group1 easel_dummy_group",
		"group1 easel_" + key.String() + "_group",
		"group1 easel_dummy_group",
	}
	if got := rec.filter("group1"); !equalStrings(got, want) {
		t.Errorf("texture bindings = %v, want %v", got, want)
	}
}

func TestRenderer_UnknownTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := newTestRenderer(t, device, queue, nil, DefaultConfig())
	defer r.Close()
	glyphs, _ := atlas.New(atlas.DefaultConfig())
	if err := r.Init(glyphs); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	var keys slot.Map[struct{}]
	canvas := keys.Insert(struct{}{})
	missing := keys.Insert(struct{}{})
	if err := r.CreateCanvas(easel.CanvasKey(canvas), 16, 16, true); err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}

	var b batch.Builder
	b.Reset(16, 16)
	b.OpenCanvas(canvas)
	b.SetTexture(missing)
	b.Push(batch.Vertex{}, batch.Vertex{}, batch.Vertex{})
	b.CloseCanvas()

	if err := r.Render(b.Finish()); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("Render() error = %v, want ErrUnknownTexture", err)
	}
}

func TestRenderer_CanvasClearedOnce(t *testing.T) {
	e, _, rec := newRecordingEngine(t, DefaultConfig())

	draw := func(c *easel.Canvas) { c.Rect().XYWH(0, 0, 8, 8).Draw() }
	for i := 0; i < 2; i++ {
		if err := e.Frame(draw); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	if len(rec.passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(rec.passes))
	}

	first, second := rec.passes[0], rec.passes[1]
	if got := first.ColorAttachments[0].LoadOp; got != gputypes.LoadOpClear {
		t.Errorf("first pass LoadOp = %v, want Clear", got)
	}
	if got := second.ColorAttachments[0].LoadOp; got != gputypes.LoadOpLoad {
		t.Errorf("second pass LoadOp = %v, want Load", got)
	}
	if got := second.DepthStencilAttachment.StencilLoadOp; got != gputypes.LoadOpLoad {
		t.Errorf("second pass StencilLoadOp = %v, want Load", got)
	}
	if first.ColorAttachments[0].ResolveTarget == nil {
		t.Error("MSAA pass has no resolve target")
	}
}

func TestRenderer_NestedCanvas(t *testing.T) {
	e, r, rec := newRecordingEngine(t, DefaultConfig())

	off, err := e.CreateCanvas(32, 32)
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	err = e.Frame(func(c *easel.Canvas) {
		c.Rect().XYWH(0, 0, 8, 8).Draw()
		c.DrawCanvas(off, func(c *easel.Canvas) {
			c.Rect().XYWH(0, 0, 8, 8).Draw()
		})
		c.Rect().XYWH(8, 8, 8, 8).Draw()
	})
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}

	if got := r.Stats().Passes; got != 3 {
		t.Errorf("Passes = %d, want 3", got)
	}
	screen := "pass easel_" + e.ScreenCanvas().String() + "_pass"
	nested := "pass easel_" + off.String() + "_pass"
	want := []string{screen, nested, screen}
	if got := rec.filter("pass"); !equalStrings(got, want) {
		t.Errorf("passes = %v, want %v", got, want)
	}
}

func TestRenderer_CanvasTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := newTestRenderer(t, device, queue, createNoopSurface(t), DefaultConfig())
	e := newTestEngine(t, r)

	var keys slot.Map[struct{}]
	screenTex := easel.TextureKey(keys.Insert(struct{}{}))
	if err := r.CanvasTexture(screenTex, e.ScreenCanvas()); !errors.Is(err, ErrSurfaceCanvas) {
		t.Errorf("CanvasTexture(screen) error = %v, want ErrSurfaceCanvas", err)
	}

	off, err := e.CreateCanvas(16, 16)
	if err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	key, err := e.CanvasTexture(off)
	if err != nil {
		t.Fatalf("CanvasTexture(offscreen) error = %v", err)
	}
	if err := e.ResizeCanvas(off, 24, 24); err != nil {
		t.Fatalf("ResizeCanvas() error = %v", err)
	}
	if r.textures[key].group == nil {
		t.Fatal("canvas texture lost its bind group after resize")
	}

	e.DeleteCanvas(off)
	if _, ok := r.textures[key]; ok {
		t.Error("canvas texture survived DeleteCanvas")
	}
}

func TestRenderer_SurfacePresent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	q := &countQueue{Queue: queue}
	surface := &flakySurface{Surface: createNoopSurface(t)}
	r := newTestRenderer(t, device, q, surface, DefaultConfig())
	e := newTestEngine(t, r)

	if r.Headless() {
		t.Fatal("Headless() = true with a surface")
	}
	if surface.configured != 1 {
		t.Errorf("surface configured %d times, want 1", surface.configured)
	}

	// A frame that draws nothing still presents the screen.
	e.BeginFrame()
	if err := e.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if q.presented != 1 {
		t.Errorf("presented = %d, want 1", q.presented)
	}
	if got := r.Stats().Passes; got != 1 {
		t.Errorf("Passes = %d, want 1 resolve pass", got)
	}
}

func TestRenderer_FrameSkipped(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	surface := &flakySurface{Surface: createNoopSurface(t)}
	r := newTestRenderer(t, device, queue, surface, DefaultConfig())
	e := newTestEngine(t, r)

	surface.err = hal.ErrSurfaceOutdated
	var b batch.Builder
	b.Reset(64, 48)
	err := r.Render(b.Finish())
	if !errors.Is(err, easel.ErrFrameSkipped) {
		t.Errorf("Render() error = %v, want ErrFrameSkipped", err)
	}
	if !errors.Is(err, hal.ErrSurfaceOutdated) {
		t.Errorf("Render() error = %v, want wrapping ErrSurfaceOutdated", err)
	}

	// Through the engine the skip is counted, not returned.
	if err := e.Frame(func(*easel.Canvas) {}); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if got := e.SkippedFrames(); got != 1 {
		t.Errorf("SkippedFrames() = %d, want 1", got)
	}

	// An outdated surface is reconfigured before the next acquire.
	configured := surface.configured
	surface.err = nil
	if err := e.Frame(func(*easel.Canvas) {}); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if surface.configured != configured+1 {
		t.Errorf("surface configured %d times, want %d", surface.configured, configured+1)
	}
	if got := r.Stats().Skipped; got != 2 {
		t.Errorf("Stats().Skipped = %d, want 2", got)
	}
}

func TestRenderer_AtlasGrown(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	rec := &recorder{}
	r := newTestRenderer(t, &recordDevice{Device: device, rec: rec}, queue, nil, DefaultConfig())
	defer r.Close()

	glyphs, err := atlas.New(atlas.Config{InitialSize: 16, MaxSize: 64, Padding: 1})
	if err != nil {
		t.Fatalf("atlas.New() error = %v", err)
	}
	if err := r.Init(glyphs); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	glyphs.OnGrow(r.AtlasGrown)
	oldGroup := r.atlas.group
	rec.reset()

	big := atlas.RasterizerFunc(func(atlas.GlyphKey) (atlas.Bitmap, error) {
		return atlas.Bitmap{Content: atlas.Mask, Width: 20, Height: 20, Pix: make([]byte, 400)}, nil
	})
	if _, ok := glyphs.Get(atlas.GlyphKey{GlyphID: 1}, big); !ok {
		t.Fatal("Get() = false, want the page to grow")
	}

	mask := glyphs.Page(atlas.Mask)
	if mask.Size() <= 16 {
		t.Fatalf("mask page size = %d, want growth", mask.Size())
	}
	if r.atlas.mask.size != mask.Size() {
		t.Errorf("mask texture size = %d, want %d", r.atlas.mask.size, mask.Size())
	}
	if r.atlas.color.size != 16 {
		t.Errorf("color texture size = %d, want 16", r.atlas.color.size)
	}
	if got := rec.filter("create_group easel_atlas_group"); len(got) != 1 {
		t.Errorf("atlas bind groups created on growth = %d, want 1", len(got))
	}
	if got := rec.filter("destroy_group easel_atlas_group"); len(got) != 1 {
		t.Errorf("atlas bind groups destroyed on growth = %d, want 1", len(got))
	}
	if r.atlas.group == oldGroup {
		t.Error("renderer still binds the old atlas group")
	}

	uploads := r.Stats().AtlasUploads
	var keys slot.Map[struct{}]
	canvas := keys.Insert(struct{}{})
	if err := r.CreateCanvas(easel.CanvasKey(canvas), 8, 8, true); err != nil {
		t.Fatalf("CreateCanvas() error = %v", err)
	}
	var b batch.Builder
	b.Reset(8, 8)
	if err := r.Render(b.Finish()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if r.Stats().AtlasUploads <= uploads {
		t.Error("grown page was not uploaded")
	}
	if len(mask.Dirty()) != 0 {
		t.Errorf("mask page still has %d dirty regions", len(mask.Dirty()))
	}
}

func TestRenderer_Close(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := newTestRenderer(t, device, queue, createNoopSurface(t), DefaultConfig())
	glyphs, _ := atlas.New(atlas.DefaultConfig())
	if err := r.Init(glyphs); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if r.pipelines != nil || r.dummy != nil {
		t.Error("Close() left pipelines or the dummy texture")
	}

	var b batch.Builder
	b.Reset(8, 8)
	if err := r.Render(b.Finish()); !errors.Is(err, ErrClosed) {
		t.Errorf("Render() after Close error = %v, want ErrClosed", err)
	}
	var keys slot.Map[struct{}]
	if err := r.CreateCanvas(easel.CanvasKey(keys.Insert(struct{}{})), 8, 8, false); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateCanvas() after Close error = %v, want ErrClosed", err)
	}
}

func BenchmarkRenderer_Frame(b *testing.B) {
	device, queue, cleanup := createNoopDevice(b)
	defer cleanup()

	r, err := New(device, queue, nil, DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	e, err := easel.NewEngine(r, easel.WithScreenSize(256, 256))
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	draw := func(c *easel.Canvas) {
		for i := 0; i < 100; i++ {
			c.Rect().XYWH(float32(i), float32(i), 10, 10).Draw()
		}
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := e.Frame(draw); err != nil {
			b.Fatal(err)
		}
	}
}
