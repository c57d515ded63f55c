//go:build !nogpu

// Package gpu creates the wgpu HAL backend of an easel engine.
//
// The backend draws on a device shared by an external provider (e.g.,
// gogpu). The provider returns the HAL device and queue either directly
// from Device and Queue, or through HalDevice() any and HalQueue() any.
// A provider that also implements HalSurface() any gets its screen canvas
// presented to that surface; otherwise the screen renders offscreen.
//
// Usage:
//
//	backend, err := gpu.New(app)
//	if err != nil {
//		return err
//	}
//	engine, err := easel.NewEngine(backend)
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/easel"
	gpuimpl "github.com/gogpu/easel/internal/gpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// ErrNoDevice is returned when a provider exposes no HAL device or queue.
var ErrNoDevice = errors.New("gpu: provider does not expose a HAL device and queue")

// Renderer is the backend returned by New.
type Renderer = gpuimpl.Renderer

// Config selects the target format and sampling of a Renderer.
type Config = gpuimpl.Config

// Option configures New.
type Option func(*options)

type options struct {
	cfg       Config
	surface   hal.Surface
	noSurface bool
	formatSet bool
}

// WithSampleCount sets the MSAA sample count, 1 or 4.
func WithSampleCount(n uint32) Option {
	return func(o *options) { o.cfg.SampleCount = n }
}

// WithFormat overrides the surface format reported by the provider.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.cfg.Format, o.formatSet = f, true }
}

// WithPresentMode sets the surface present mode.
func WithPresentMode(m gputypes.PresentMode) Option {
	return func(o *options) { o.cfg.PresentMode = m }
}

// WithSPIRV hands the device SPIR-V compiled with naga instead of WGSL.
func WithSPIRV() Option {
	return func(o *options) { o.cfg.SPIRV = true }
}

// WithSurface presents the screen canvas to s instead of the provider's
// surface.
func WithSurface(s hal.Surface) Option {
	return func(o *options) { o.surface = s }
}

// Offscreen renders the screen canvas into a texture even when the
// provider has a surface.
func Offscreen() Option {
	return func(o *options) { o.noSurface = true }
}

type halProvider interface {
	HalDevice() any
	HalQueue() any
}

type halSurfaceProvider interface {
	HalSurface() any
}

// New creates a renderer on the device of provider.
func New(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, ErrNoDevice
	}
	o := options{cfg: gpuimpl.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	device, queue, err := resolveDevice(provider)
	if err != nil {
		return nil, err
	}
	if !o.formatSet {
		if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			o.cfg.Format = f
		}
	}
	surface := o.surface
	if surface == nil && !o.noSurface {
		if sp, ok := provider.(halSurfaceProvider); ok {
			surface, _ = sp.HalSurface().(hal.Surface)
		}
	}

	info := provider.AdapterInfo()
	if info.Type == gpucontext.AdapterTypeSoftware {
		easel.Logger().Warn("gpu: software adapter, expect slow frames", "adapter", info.Name)
	}

	r, err := gpuimpl.New(device, queue, surface, o.cfg)
	if err != nil {
		return nil, err
	}
	easel.Logger().Debug("gpu: backend created",
		"adapter", info.Name,
		"adapter_type", info.Type,
		"format", o.cfg.Format,
		"samples", o.cfg.SampleCount,
		"surface", surface != nil)
	return r, nil
}

func resolveDevice(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	device, _ := provider.Device().(hal.Device)
	queue, _ := provider.Queue().(hal.Queue)
	if device != nil && queue != nil {
		return device, queue, nil
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoDevice
	}
	device, ok = hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is %T", ErrNoDevice, hp.HalDevice())
	}
	queue, ok = hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is %T", ErrNoDevice, hp.HalQueue())
	}
	return device, queue, nil
}

// Headless is a DeviceProvider backed by the HAL noop device. Rendering
// through it records nothing; it drives an engine without a GPU, e.g. in
// tests and in the demo.
type Headless struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     gpucontext.AdapterInfo
}

var _ gpucontext.DeviceProvider = (*Headless)(nil)

// NewHeadless opens the noop device.
func NewHeadless() (*Headless, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("gpu: noop instance has no adapter")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open noop device: %w", err)
	}
	return &Headless{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		info:     gpucontext.AdapterInfo{Name: adapters[0].Info.Name, Type: gpucontext.AdapterTypeUnknown},
	}, nil
}

// Device returns the noop hal.Device.
func (h *Headless) Device() gpucontext.Device { return h.device }

// Queue returns the noop hal.Queue.
func (h *Headless) Queue() gpucontext.Queue { return h.queue }

// SurfaceFormat reports no surface.
func (h *Headless) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Adapter returns nil; the noop adapter is not exposed.
func (h *Headless) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo describes the noop adapter.
func (h *Headless) AdapterInfo() gpucontext.AdapterInfo { return h.info }

// Close destroys the device and instance. Close the engine first.
func (h *Headless) Close() {
	if h.device != nil {
		h.device.Destroy()
		h.device = nil
	}
	if h.instance != nil {
		h.instance.Destroy()
		h.instance = nil
	}
}
