//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// canvasTarget holds the render targets of one canvas:
//   - MSAA color: SampleCount samples, Config.Format, RenderAttachment
//     (absent when SampleCount is 1)
//   - Depth/stencil: SampleCount samples, Depth24PlusStencil8
//   - Output: 1x sample, Config.Format, RenderAttachment | TextureBinding |
//     CopySrc (absent for a surface-backed screen canvas)
//
// and the uniform buffer and bind group carrying the canvas size.
type canvasTarget struct {
	label  string
	screen bool
	width  uint32
	height uint32

	msaaTex     hal.Texture
	msaaView    hal.TextureView
	stencilTex  hal.Texture
	stencilView hal.TextureView
	outTex      hal.Texture
	outView     hal.TextureView

	globals      hal.Buffer
	globalsGroup hal.BindGroup

	// fresh is set while the targets hold undefined contents; the next
	// pass clears instead of loading.
	fresh bool
}

// ensure creates or recreates the textures if the requested dimensions
// differ from the current size. surfaceBacked omits the output texture:
// the acquired surface texture is resolved into instead.
func (t *canvasTarget) ensure(r *Renderer, w, h uint32, surfaceBacked bool) error {
	if t.width == w && t.height == h && t.stencilTex != nil {
		return nil
	}
	t.destroyTextures(r.device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	samples := r.cfg.SampleCount

	var err error
	if samples > 1 {
		t.msaaTex, t.msaaView, err = createTarget(r.device, t.label+"_msaa_color", size, samples,
			r.cfg.Format, gputypes.TextureUsageRenderAttachment)
		if err != nil {
			t.destroyTextures(r.device)
			return err
		}
	}

	t.stencilTex, t.stencilView, err = createTarget(r.device, t.label+"_depth_stencil", size, samples,
		gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureUsageRenderAttachment)
	if err != nil {
		t.destroyTextures(r.device)
		return err
	}

	if !surfaceBacked {
		t.outTex, t.outView, err = createTarget(r.device, t.label+"_output", size, 1, r.cfg.Format,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopySrc)
		if err != nil {
			t.destroyTextures(r.device)
			return err
		}
	}

	if err := t.writeGlobals(r, w, h); err != nil {
		t.destroyTextures(r.device)
		return err
	}

	t.width = w
	t.height = h
	t.fresh = true
	return nil
}

func (t *canvasTarget) writeGlobals(r *Renderer, w, h uint32) error {
	if t.globals == nil {
		buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
			Label: t.label + "_globals",
			Size:  globalsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create globals buffer: %w", err)
		}
		t.globals = buf

		group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  t.label + "_globals_group",
			Layout: r.pipelines.globalsLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(), Offset: 0, Size: globalsSize,
				}},
			},
		})
		if err != nil {
			return fmt.Errorf("gpu: create globals bind group: %w", err)
		}
		t.globalsGroup = group
	}

	var data [globalsSize]byte
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(float32(h)))
	if err := r.queue.WriteBuffer(t.globals, 0, data[:]); err != nil {
		return fmt.Errorf("gpu: write globals: %w", err)
	}
	return nil
}

// attachments returns the color attachment resolving into surface when
// the canvas has no output texture, and the depth/stencil attachment.
func (t *canvasTarget) attachments(samples uint32, surface hal.TextureView) (hal.RenderPassColorAttachment, *hal.RenderPassDepthStencilAttachment) {
	out := t.outView
	if out == nil {
		out = surface
	}

	load := gputypes.LoadOpLoad
	if t.fresh {
		load = gputypes.LoadOpClear
	}

	color := hal.RenderPassColorAttachment{
		View:       out,
		LoadOp:     load,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{},
	}
	if samples > 1 {
		color.View = t.msaaView
		color.ResolveTarget = out
	}
	depth := &hal.RenderPassDepthStencilAttachment{
		View:              t.stencilView,
		DepthLoadOp:       gputypes.LoadOpClear,
		DepthStoreOp:      gputypes.StoreOpDiscard,
		DepthClearValue:   1,
		StencilLoadOp:     load,
		StencilStoreOp:    gputypes.StoreOpStore,
		StencilClearValue: 0,
	}
	return color, depth
}

// destroy releases the textures and the globals.
func (t *canvasTarget) destroy(device hal.Device) {
	t.destroyTextures(device)
	if t.globalsGroup != nil {
		device.DestroyBindGroup(t.globalsGroup)
		t.globalsGroup = nil
	}
	if t.globals != nil {
		device.DestroyBuffer(t.globals)
		t.globals = nil
	}
}

// destroyTextures releases all texture resources and resets dimensions.
func (t *canvasTarget) destroyTextures(device hal.Device) {
	destroyTarget(device, &t.outTex, &t.outView)
	destroyTarget(device, &t.stencilTex, &t.stencilView)
	destroyTarget(device, &t.msaaTex, &t.msaaView)
	t.width = 0
	t.height = 0
}

func createTarget(device hal.Device, label string, size hal.Extent3D, samples uint32,
	format gputypes.TextureFormat, usage gputypes.TextureUsage,
) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("gpu: create %s view: %w", label, err)
	}
	return tex, view, nil
}

func destroyTarget(device hal.Device, tex *hal.Texture, view *hal.TextureView) {
	if *view != nil {
		device.DestroyTextureView(*view)
		*view = nil
	}
	if *tex != nil {
		device.DestroyTexture(*tex)
		*tex = nil
	}
}
