//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/easel"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// halOnlyProvider hides the device behind HalDevice and HalQueue, the way
// windowing providers expose it.
type halOnlyProvider struct {
	*Headless
	format  gputypes.TextureFormat
	surface hal.Surface
}

func (p *halOnlyProvider) Device() gpucontext.Device             { return nil }
func (p *halOnlyProvider) Queue() gpucontext.Queue               { return nil }
func (p *halOnlyProvider) HalDevice() any                        { return p.Headless.device }
func (p *halOnlyProvider) HalQueue() any                         { return p.Headless.queue }
func (p *halOnlyProvider) HalSurface() any                       { return p.surface }
func (p *halOnlyProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// bareProvider exposes nothing usable.
type bareProvider struct{ *Headless }

func (bareProvider) Device() gpucontext.Device { return nil }
func (bareProvider) Queue() gpucontext.Queue   { return nil }

func newHeadless(t *testing.T) *Headless {
	t.Helper()
	h, err := NewHeadless()
	if err != nil {
		t.Fatalf("NewHeadless() error = %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

func noopSurface(t *testing.T) hal.Surface {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance() error = %v", err)
	}
	s, err := instance.CreateSurface(0, 0)
	if err != nil {
		t.Fatalf("CreateSurface() error = %v", err)
	}
	return s
}

func TestNew_Headless(t *testing.T) {
	h := newHeadless(t)
	r, err := New(h)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	if !r.Headless() {
		t.Error("Headless() = false for a provider without surface")
	}
	cfg := r.Config()
	if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format = %v, want BGRA8Unorm default", cfg.Format)
	}
	if cfg.SampleCount != 4 {
		t.Errorf("SampleCount = %d, want 4", cfg.SampleCount)
	}
}

func TestNew_HalProvider(t *testing.T) {
	p := &halOnlyProvider{
		Headless: newHeadless(t),
		format:   gputypes.TextureFormatRGBA8Unorm,
		surface:  noopSurface(t),
	}
	r, err := New(p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	if r.Headless() {
		t.Error("Headless() = true, want the provider surface")
	}
	if got := r.Config().Format; got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want the provider surface format", got)
	}
}

func TestNew_Options(t *testing.T) {
	p := &halOnlyProvider{
		Headless: newHeadless(t),
		format:   gputypes.TextureFormatRGBA8Unorm,
		surface:  noopSurface(t),
	}
	r, err := New(p,
		Offscreen(),
		WithSampleCount(1),
		WithFormat(gputypes.TextureFormatBGRA8Unorm),
		WithPresentMode(gputypes.PresentModeMailbox),
		WithSPIRV(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	cfg := r.Config()
	if !r.Headless() {
		t.Error("Offscreen() kept the provider surface")
	}
	if cfg.SampleCount != 1 || !cfg.SPIRV {
		t.Errorf("Config() = %+v, want 1 sample and SPIR-V", cfg)
	}
	if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format = %v, want the WithFormat override", cfg.Format)
	}
	if cfg.PresentMode != gputypes.PresentModeMailbox {
		t.Errorf("PresentMode = %v, want Mailbox", cfg.PresentMode)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("New(nil) error = %v, want ErrNoDevice", err)
	}
	if _, err := New(bareProvider{newHeadless(t)}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("New(bare) error = %v, want ErrNoDevice", err)
	}
	if _, err := New(newHeadless(t), WithSampleCount(3)); err == nil {
		t.Error("New(WithSampleCount(3)) error = nil")
	}
}

func TestNew_DrivesEngine(t *testing.T) {
	h := newHeadless(t)
	r, err := New(h)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e, err := easel.NewEngine(r, easel.WithScreenSize(32, 32))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()

	for i := 0; i < 3; i++ {
		err := e.Frame(func(c *easel.Canvas) {
			c.Rect().XYWH(2, 2, 10, 10).Draw()
		})
		if err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	if got := r.Stats().Frames; got != 3 {
		t.Errorf("Frames = %d, want 3", got)
	}
}
