//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// globalsSize is the byte size of the canvas uniform buffer.
// Layout: size (vec2<f32>) + padding (vec2<f32>) = 16 bytes.
const globalsSize = 16

// Bind group indices.
const (
	groupGlobals = 0
	groupTexture = 1
	groupAtlas   = 2
)

// pipelineSet holds the shader module, layouts and the three pipelines
// sharing them. All pipelines read the same vertex layout and differ only
// in stencil operation and color writes.
type pipelineSet struct {
	shader hal.ShaderModule

	globalsLayout hal.BindGroupLayout
	textureLayout hal.BindGroupLayout
	atlasLayout   hal.BindGroupLayout
	layout        hal.PipelineLayout

	draw      hal.RenderPipeline
	clipStart hal.RenderPipeline
	clipEnd   hal.RenderPipeline
}

// vertexLayout mirrors batch.Vertex.
var vertexLayout = []gputypes.VertexBufferLayout{
	{
		ArrayStride: batch.VertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 32, ShaderLocation: 3},
		},
	},
}

func newPipelineSet(device hal.Device, cfg Config) (*pipelineSet, error) {
	ps := &pipelineSet{}
	if err := ps.create(device, cfg); err != nil {
		ps.destroy(device)
		return nil, err
	}
	return ps, nil
}

func (ps *pipelineSet) create(device hal.Device, cfg Config) error { //nolint:funlen // GPU pipeline descriptors are inherently verbose
	src, err := shaderSource(cfg.SPIRV)
	if err != nil {
		return err
	}
	ps.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "easel_draw_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}

	fragment := gputypes.ShaderStageFragment
	ps.globalsLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "easel_globals_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | fragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create globals layout: %w", err)
	}

	ps.textureLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "easel_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: fragment, Texture: sampledTexture()},
			{Binding: 1, Visibility: fragment, Sampler: filtering()},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create texture layout: %w", err)
	}

	ps.atlasLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "easel_atlas_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: fragment, Texture: sampledTexture()},
			{Binding: 1, Visibility: fragment, Texture: sampledTexture()},
			{Binding: 2, Visibility: fragment, Sampler: filtering()},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create atlas layout: %w", err)
	}

	ps.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "easel_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{ps.globalsLayout, ps.textureLayout, ps.atlasLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	blend := gputypes.BlendStatePremultiplied()
	ps.draw, err = ps.pipeline(device, cfg, "easel_draw_pipeline", drawEntry,
		gputypes.ColorTargetState{Format: cfg.Format, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
		hal.StencilOperationKeep)
	if err != nil {
		return err
	}

	// The clip pipelines touch the stencil buffer only.
	noColor := gputypes.ColorTargetState{Format: cfg.Format, WriteMask: gputypes.ColorWriteMaskNone}
	ps.clipStart, err = ps.pipeline(device, cfg, "easel_clip_start_pipeline", stencilEntry,
		noColor, hal.StencilOperationIncrementClamp)
	if err != nil {
		return err
	}
	ps.clipEnd, err = ps.pipeline(device, cfg, "easel_clip_end_pipeline", stencilEntry,
		noColor, hal.StencilOperationDecrementClamp)
	return err
}

// pipeline creates a pipeline passing fragments where the stencil equals
// the reference and applying pass to the stencil value there.
func (ps *pipelineSet) pipeline(device hal.Device, cfg Config, label, entry string,
	target gputypes.ColorTargetState, pass hal.StencilOperation,
) (hal.RenderPipeline, error) {
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      pass,
	}
	p, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: ps.layout,
		Vertex: hal.VertexState{
			Module:     ps.shader,
			EntryPoint: vertexEntry,
			Buffers:    vertexLayout,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		},
		Multisample: gputypes.MultisampleState{
			Count: cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &hal.FragmentState{
			Module:     ps.shader,
			EntryPoint: entry,
			Targets:    []gputypes.ColorTargetState{target},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s: %w", label, err)
	}
	return p, nil
}

// forCommand returns the pipeline a walked command runs with.
func (ps *pipelineSet) forCommand(p batch.Pipeline) hal.RenderPipeline {
	switch p {
	case batch.PipelineClipStart:
		return ps.clipStart
	case batch.PipelineClipEnd:
		return ps.clipEnd
	default:
		return ps.draw
	}
}

func (ps *pipelineSet) destroy(device hal.Device) {
	for _, p := range []*hal.RenderPipeline{&ps.draw, &ps.clipStart, &ps.clipEnd} {
		if *p != nil {
			device.DestroyRenderPipeline(*p)
			*p = nil
		}
	}
	if ps.layout != nil {
		device.DestroyPipelineLayout(ps.layout)
		ps.layout = nil
	}
	for _, l := range []*hal.BindGroupLayout{&ps.globalsLayout, &ps.textureLayout, &ps.atlasLayout} {
		if *l != nil {
			device.DestroyBindGroupLayout(*l)
			*l = nil
		}
	}
	if ps.shader != nil {
		device.DestroyShaderModule(ps.shader)
		ps.shader = nil
	}
}

func sampledTexture() *gputypes.TextureBindingLayout {
	return &gputypes.TextureBindingLayout{
		SampleType:    gputypes.TextureSampleTypeFloat,
		ViewDimension: gputypes.TextureViewDimension2D,
	}
}

func filtering() *gputypes.SamplerBindingLayout {
	return &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
}
