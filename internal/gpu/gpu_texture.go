//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/easel"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// textureEntry is a sampleable texture and the group-1 bind group binding
// it with its sampler. Canvas textures borrow the canvas output view and
// own only the bind group.
type textureEntry struct {
	tex    hal.Texture
	view   hal.TextureView
	group  hal.BindGroup
	filter easel.TextureFilter

	canvas     easel.CanvasKey
	fromCanvas bool
}

func (r *Renderer) createSamplers() error {
	for _, f := range []easel.TextureFilter{easel.FilterLinear, easel.FilterNearest} {
		mode := gputypes.FilterModeLinear
		if f == easel.FilterNearest {
			mode = gputypes.FilterModeNearest
		}
		s, err := r.device.CreateSampler(&hal.SamplerDescriptor{
			Label:        "easel_sampler_" + f.String(),
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    mode,
			MinFilter:    mode,
			MipmapFilter: gputypes.FilterModeNearest,
			LodMaxClamp:  32,
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s sampler: %w", f, err)
		}
		r.samplers[f] = s
	}
	return nil
}

// uploadTexture creates an RGBA8 texture holding pix.
func (r *Renderer) uploadTexture(label string, pix []byte, width, height int) (hal.Texture, hal.TextureView, error) {
	size := hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
	tex, view, err := createTarget(r.device, label, size, 1, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, nil, err
	}
	err = r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(width * 4), RowsPerImage: uint32(height)},
		&size,
	)
	if err != nil {
		destroyTarget(r.device, &tex, &view)
		return nil, nil, fmt.Errorf("gpu: upload %s: %w", label, err)
	}
	return tex, view, nil
}

func (r *Renderer) textureGroup(label string, view hal.TextureView, filter easel.TextureFilter) (hal.BindGroup, error) {
	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_group",
		Layout: r.pipelines.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: r.samplers[filter].NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s bind group: %w", label, err)
	}
	return group, nil
}

// createDummy creates the 1x1 white texture bound while a draw samples
// nothing.
func (r *Renderer) createDummy() error {
	tex, view, err := r.uploadTexture("easel_dummy", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 1, 1)
	if err != nil {
		return err
	}
	group, err := r.textureGroup("easel_dummy", view, easel.FilterNearest)
	if err != nil {
		destroyTarget(r.device, &tex, &view)
		return err
	}
	r.dummy = &textureEntry{tex: tex, view: view, group: group, filter: easel.FilterNearest}
	return nil
}

// CreateTexture uploads tightly packed RGBA8 pixels as key.
func (r *Renderer) CreateTexture(key easel.TextureKey, pix []byte, width, height int, filter easel.TextureFilter) error {
	if len(pix) != width*height*4 {
		return fmt.Errorf("gpu: %v: %d bytes for %dx%d pixels", key, len(pix), width, height)
	}
	label := "easel_" + key.String()
	tex, view, err := r.uploadTexture(label, pix, width, height)
	if err != nil {
		return err
	}
	group, err := r.textureGroup(label, view, filter)
	if err != nil {
		destroyTarget(r.device, &tex, &view)
		return err
	}
	r.DeleteTexture(key)
	r.textures[key] = &textureEntry{tex: tex, view: view, group: group, filter: filter}
	return nil
}

// CanvasTexture makes the output of canvas sampleable as key.
func (r *Renderer) CanvasTexture(key easel.TextureKey, canvas easel.CanvasKey) error {
	t, ok := r.canvases[canvas]
	if !ok {
		return fmt.Errorf("gpu: %v: %w", canvas, ErrUnknownCanvas)
	}
	if t.outView == nil {
		return fmt.Errorf("gpu: %v: %w", canvas, ErrSurfaceCanvas)
	}
	group, err := r.textureGroup("easel_"+key.String(), t.outView, easel.FilterLinear)
	if err != nil {
		return err
	}
	r.DeleteTexture(key)
	r.textures[key] = &textureEntry{group: group, filter: easel.FilterLinear, canvas: canvas, fromCanvas: true}
	return nil
}

// rebindCanvasTextures recreates the bind groups sampling canvas after
// its output texture was replaced.
func (r *Renderer) rebindCanvasTextures(canvas easel.CanvasKey) error {
	t := r.canvases[canvas]
	for key, e := range r.textures {
		if !e.fromCanvas || e.canvas != canvas {
			continue
		}
		group, err := r.textureGroup("easel_"+key.String(), t.outView, e.filter)
		if err != nil {
			return err
		}
		r.waitIdle()
		r.device.DestroyBindGroup(e.group)
		e.group = group
	}
	return nil
}

// DeleteTexture releases key. Unknown keys are ignored.
func (r *Renderer) DeleteTexture(key easel.TextureKey) {
	e, ok := r.textures[key]
	if !ok {
		return
	}
	delete(r.textures, key)
	r.waitIdle()
	e.destroy(r.device)
}

func (e *textureEntry) destroy(device hal.Device) {
	if e.group != nil {
		device.DestroyBindGroup(e.group)
		e.group = nil
	}
	if !e.fromCanvas {
		destroyTarget(device, &e.tex, &e.view)
	}
}
