package batch

import "github.com/gogpu/easel/internal/slot"

// Pipeline selects the GPU pipeline for a command.
type Pipeline uint8

const (
	// PipelineDraw draws color where the stencil equals the reference.
	PipelineDraw Pipeline = iota
	// PipelineClipStart increments the stencil where it equals the reference.
	PipelineClipStart
	// PipelineClipEnd decrements the stencil where it equals the reference.
	PipelineClipEnd
)

func (p Pipeline) String() string {
	switch p {
	case PipelineDraw:
		return "draw"
	case PipelineClipStart:
		return "clip-start"
	case PipelineClipEnd:
		return "clip-end"
	default:
		return "unknown"
	}
}

// Command is one GPU draw derived from a DrawCall.
type Command struct {
	Pipeline  Pipeline
	Reference uint32
	Texture   slot.Key
	Textured  bool
	First     uint32
	Count     uint32
}

// Visitor receives the replay of a frame.
type Visitor interface {
	BeginPass(canvas slot.Key, first, count uint32) error
	Draw(cmd Command) error
	EndPass() error
}

// Walk replays f pass by pass. Passes without vertices are skipped unless
// they end a clip, and draw calls without vertices issue no draw. A call
// that ends a clip first issues a clip-end over the cover triangle.
func Walk(f *Frame, v Visitor) error {
	for p := range f.Passes {
		pass := &f.Passes[p]
		start, end := pass.Start(), f.PassEnd(p)
		if end <= start && !endsClip(pass) {
			continue
		}
		if err := v.BeginPass(pass.Canvas, start, end-start); err != nil {
			return err
		}
		for c := range pass.Calls {
			call := &pass.Calls[c]
			first, last := f.CallRange(p, c)
			if err := walkCall(v, call, first, last); err != nil {
				return err
			}
		}
		if err := v.EndPass(); err != nil {
			return err
		}
	}
	return nil
}

func walkCall(v Visitor, call *DrawCall, first, last uint32) error {
	if call.Kind == KindClipStart {
		if last <= first {
			return nil
		}
		return v.Draw(Command{
			Pipeline:  PipelineClipStart,
			Reference: call.Reference,
			First:     first,
			Count:     last - first,
		})
	}

	if call.EndsClip {
		err := v.Draw(Command{
			Pipeline:  PipelineClipEnd,
			Reference: call.EndClipReference,
			First:     0,
			Count:     CoverVertices,
		})
		if err != nil {
			return err
		}
	}
	if last <= first {
		return nil
	}
	return v.Draw(Command{
		Pipeline:  PipelineDraw,
		Reference: call.Reference,
		Texture:   call.Texture,
		Textured:  call.Textured,
		First:     first,
		Count:     last - first,
	})
}

func endsClip(p *RenderPass) bool {
	for i := range p.Calls {
		if p.Calls[i].EndsClip {
			return true
		}
	}
	return false
}
