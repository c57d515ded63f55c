//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/internal/batch"
	"github.com/gogpu/easel/internal/slot"
	"github.com/gogpu/wgpu/hal"
)

// frameEncoder records one frame into a command encoder. It implements
// batch.Visitor: every walked pass becomes a render pass on the canvas
// targets, and redundant pipeline, bind group and stencil reference
// changes between commands are dropped.
type frameEncoder struct {
	r       *Renderer
	encoder hal.CommandEncoder
	surface hal.TextureView

	pass      hal.RenderPassEncoder
	pipeline  hal.RenderPipeline
	group     hal.BindGroup
	reference uint32
	refSet    bool

	screenDrawn bool
	passes      int
	draws       int
}

var _ batch.Visitor = (*frameEncoder)(nil)

// BeginPass starts a render pass on canvas.
func (fe *frameEncoder) BeginPass(canvas slot.Key, _, _ uint32) error {
	key := easel.CanvasKey(canvas)
	t, ok := fe.r.canvases[key]
	if !ok {
		return fmt.Errorf("gpu: begin pass: %v: %w", key, ErrUnknownCanvas)
	}
	if t.outView == nil && fe.surface == nil {
		return fmt.Errorf("gpu: begin pass: %v: %w", key, ErrSurfaceCanvas)
	}
	fe.begin(t)
	if t.screen {
		fe.screenDrawn = true
	}
	return nil
}

func (fe *frameEncoder) begin(t *canvasTarget) {
	color, depth := t.attachments(fe.r.cfg.SampleCount, fe.surface)
	t.fresh = false

	fe.pass = fe.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:                  t.label + "_pass",
		ColorAttachments:       []hal.RenderPassColorAttachment{color},
		DepthStencilAttachment: depth,
	})
	fe.pass.SetViewport(0, 0, float32(t.width), float32(t.height), 0, 1)
	fe.pass.SetBindGroup(groupGlobals, t.globalsGroup, nil)
	fe.pass.SetBindGroup(groupTexture, fe.r.dummy.group, nil)
	fe.pass.SetBindGroup(groupAtlas, fe.r.atlas.group, nil)
	fe.pass.SetVertexBuffer(0, fe.r.vertices.buf, 0)

	fe.pipeline = nil
	fe.group = fe.r.dummy.group
	fe.refSet = false
	fe.passes++
}

// Draw issues one walked command.
func (fe *frameEncoder) Draw(cmd batch.Command) error {
	if p := fe.r.pipelines.forCommand(cmd.Pipeline); p != fe.pipeline {
		fe.pass.SetPipeline(p)
		fe.pipeline = p
	}

	if cmd.Pipeline == batch.PipelineDraw {
		group := fe.r.dummy.group
		if cmd.Textured {
			key := easel.TextureKey(cmd.Texture)
			e, ok := fe.r.textures[key]
			if !ok {
				return fmt.Errorf("gpu: draw: %v: %w", key, ErrUnknownTexture)
			}
			group = e.group
		}
		if group != fe.group {
			fe.pass.SetBindGroup(groupTexture, group, nil)
			fe.group = group
		}
	}

	if !fe.refSet || cmd.Reference != fe.reference {
		fe.pass.SetStencilReference(cmd.Reference)
		fe.reference = cmd.Reference
		fe.refSet = true
	}
	fe.pass.Draw(cmd.Count, 1, cmd.First, 0)
	fe.draws++
	return nil
}

// EndPass ends the current render pass.
func (fe *frameEncoder) EndPass() error {
	fe.end()
	return nil
}

func (fe *frameEncoder) end() {
	if fe.pass != nil {
		fe.pass.End()
		fe.pass = nil
	}
}

// resolveScreen runs an empty pass on the screen canvas so the surface
// receives its contents in frames that did not draw to it.
func (fe *frameEncoder) resolveScreen() {
	t, ok := fe.r.canvases[fe.r.screen]
	if !ok || fe.screenDrawn || fe.surface == nil {
		return
	}
	fe.begin(t)
	fe.end()
}
