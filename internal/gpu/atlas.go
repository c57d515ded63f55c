//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pageTexture mirrors one glyph cache page on the GPU.
type pageTexture struct {
	page *atlas.Page
	tex  hal.Texture
	view hal.TextureView
	size int
}

// atlasTextures holds the mask (R8) and color (RGBA8) page textures and
// the group-2 bind group sampling both.
type atlasTextures struct {
	mask    pageTexture
	color   pageTexture
	sampler hal.Sampler
	group   hal.BindGroup
}

func pageFormat(c atlas.ContentType) gputypes.TextureFormat {
	if c == atlas.Color {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatR8Unorm
}

func (r *Renderer) initAtlas(glyphs *atlas.Cache) error {
	a := &r.atlas
	a.mask.page = glyphs.Page(atlas.Mask)
	a.color.page = glyphs.Page(atlas.Color)

	s, err := r.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "easel_atlas_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return fmt.Errorf("gpu: create atlas sampler: %w", err)
	}
	a.sampler = s

	for _, pt := range []*pageTexture{&a.mask, &a.color} {
		if err := r.createPage(pt); err != nil {
			return err
		}
		// Pages start zeroed, not dirty; upload them whole once.
		if err := r.writePage(pt, atlas.Rect{W: pt.size, H: pt.size}); err != nil {
			return err
		}
	}
	return r.bindAtlas()
}

func (r *Renderer) createPage(pt *pageTexture) error {
	size := pt.page.Size()
	extent := hal.Extent3D{Width: uint32(size), Height: uint32(size), DepthOrArrayLayers: 1}
	tex, view, err := createTarget(r.device, "easel_atlas_"+pt.page.Content().String(), extent, 1,
		pageFormat(pt.page.Content()), gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	pt.tex, pt.view, pt.size = tex, view, size
	return nil
}

func (r *Renderer) bindAtlas() error {
	a := &r.atlas
	group, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "easel_atlas_group",
		Layout: r.pipelines.atlasLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: a.mask.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: a.color.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: a.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create atlas bind group: %w", err)
	}
	if a.group != nil {
		r.waitIdle()
		r.device.DestroyBindGroup(a.group)
	}
	a.group = group
	return nil
}

// writePage uploads rect of the page pixels.
func (r *Renderer) writePage(pt *pageTexture, rect atlas.Rect) error {
	p := pt.page
	bpp := p.Content().BytesPerPixel()
	offset := rect.Y*p.Stride() + rect.X*bpp
	err := r.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: pt.tex,
			Origin:  hal.Origin3D{X: uint32(rect.X), Y: uint32(rect.Y)},
			Aspect:  gputypes.TextureAspectAll,
		},
		p.Pix()[offset:],
		&hal.ImageDataLayout{BytesPerRow: uint32(p.Stride()), RowsPerImage: uint32(rect.H)},
		&hal.Extent3D{Width: uint32(rect.W), Height: uint32(rect.H), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: upload %s atlas region %v: %w", p.Content(), rect, err)
	}
	r.stats.AtlasUploads++
	return nil
}

// uploadDirty writes the regions glyphs touched since the last frame.
func (r *Renderer) uploadDirty() error {
	for _, pt := range []*pageTexture{&r.atlas.mask, &r.atlas.color} {
		if pt.size != pt.page.Size() {
			return fmt.Errorf("gpu: %s atlas texture is %d pixels, page is %d",
				pt.page.Content(), pt.size, pt.page.Size())
		}
		for _, rect := range pt.page.Dirty() {
			if err := r.writePage(pt, rect); err != nil {
				return err
			}
		}
		pt.page.ClearDirty()
	}
	return nil
}

// AtlasGrown replaces the texture of a page reallocated at a larger size.
// The page is entirely dirty after growth, so the next frame uploads it.
func (r *Renderer) AtlasGrown(page *atlas.Page) {
	pt := &r.atlas.mask
	if page.Content() == atlas.Color {
		pt = &r.atlas.color
	}
	pt.page = page
	if pt.size == page.Size() {
		return
	}

	old, oldView, oldSize := pt.tex, pt.view, pt.size
	if err := r.createPage(pt); err != nil {
		slogger().Warn("gpu: atlas texture not grown", "content", page.Content(), "size", page.Size(), "err", err)
		return
	}
	if err := r.bindAtlas(); err != nil {
		destroyTarget(r.device, &pt.tex, &pt.view)
		pt.tex, pt.view, pt.size = old, oldView, oldSize
		slogger().Warn("gpu: atlas not rebound", "content", page.Content(), "err", err)
		return
	}
	r.waitIdle()
	destroyTarget(r.device, &old, &oldView)
	slogger().Debug("gpu: atlas texture grown", "content", page.Content(), "size", pt.size)
}

func (a *atlasTextures) destroy(device hal.Device) {
	if a.group != nil {
		device.DestroyBindGroup(a.group)
		a.group = nil
	}
	destroyTarget(device, &a.mask.tex, &a.mask.view)
	destroyTarget(device, &a.color.tex, &a.color.view)
	if a.sampler != nil {
		device.DestroySampler(a.sampler)
		a.sampler = nil
	}
}
