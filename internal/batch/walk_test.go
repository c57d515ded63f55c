package batch

import (
	"errors"
	"testing"

	"github.com/gogpu/easel/internal/slot"
)

type recorder struct {
	passes []slot.Key
	cmds   []Command
	ends   int
	failAt int
}

var errStop = errors.New("stop")

func (r *recorder) BeginPass(canvas slot.Key, _, _ uint32) error {
	r.passes = append(r.passes, canvas)
	return nil
}

func (r *recorder) Draw(cmd Command) error {
	r.cmds = append(r.cmds, cmd)
	if r.failAt > 0 && len(r.cmds) == r.failAt {
		return errStop
	}
	return nil
}

func (r *recorder) EndPass() error {
	r.ends++
	return nil
}

func TestWalk_SkipsEmptyPasses(t *testing.T) {
	ks := keys(2)
	var b Builder
	b.Reset(10, 10)
	b.OpenCanvas(ks[0])
	b.OpenCanvas(ks[1])
	tri(&b)
	b.CloseCanvas()
	b.CloseCanvas()

	var r recorder
	if err := Walk(b.Finish(), &r); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	// outer pass and resume pass have no vertices
	if len(r.passes) != 1 || r.passes[0] != ks[1] {
		t.Errorf("visited passes = %v, want [%v]", r.passes, ks[1])
	}
	if r.ends != 1 {
		t.Errorf("EndPass calls = %d, want 1", r.ends)
	}
}

func TestWalk_ClipCommands(t *testing.T) {
	ks := keys(2)
	canvas, tex := ks[0], ks[1]
	var b Builder
	b.Reset(10, 10)
	b.OpenCanvas(canvas)
	tri(&b) // 3..6
	b.ClipStart()
	tri(&b) // 6..9
	b.ClipBegin()
	b.SetTexture(tex)
	tri(&b) // 9..12
	b.ClipEnd()
	tri(&b) // 12..15
	b.CloseCanvas()

	var r recorder
	if err := Walk(b.Finish(), &r); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []Command{
		{Pipeline: PipelineDraw, Reference: 0, First: 3, Count: 3},
		{Pipeline: PipelineClipStart, Reference: 0, First: 6, Count: 3},
		{Pipeline: PipelineDraw, Reference: 1, Texture: tex, Textured: true, First: 9, Count: 3},
		{Pipeline: PipelineClipEnd, Reference: 1, First: 0, Count: CoverVertices},
		{Pipeline: PipelineDraw, Reference: 0, Texture: tex, Textured: true, First: 12, Count: 3},
	}
	if len(r.cmds) != len(want) {
		t.Fatalf("Walk() issued %d commands, want %d: %+v", len(r.cmds), len(want), r.cmds)
	}
	for i := range want {
		if r.cmds[i] != want[i] {
			t.Errorf("command %d = %+v, want %+v", i, r.cmds[i], want[i])
		}
	}
}

func TestWalk_ClipEndInEmptyPass(t *testing.T) {
	ks := keys(2)
	var b Builder
	b.Reset(10, 10)
	b.OpenCanvas(ks[0])
	b.ClipStart()
	tri(&b)
	b.ClipBegin()
	b.OpenCanvas(ks[1])
	tri(&b)
	b.CloseCanvas()
	b.ClipEnd()
	b.CloseCanvas()

	var r recorder
	if err := Walk(b.Finish(), &r); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	last := r.cmds[len(r.cmds)-1]
	if last.Pipeline != PipelineClipEnd || last.Reference != 1 {
		t.Errorf("last command = %+v, want clip-end at reference 1", last)
	}
	if len(r.passes) != 3 {
		t.Errorf("visited %d passes, want 3", len(r.passes))
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	k := keys(1)[0]
	var b Builder
	b.Reset(10, 10)
	b.OpenCanvas(k)
	tri(&b)
	b.ClipStart()
	tri(&b)
	b.ClipBegin()
	tri(&b)
	b.ClipEnd()
	b.CloseCanvas()

	r := recorder{failAt: 2}
	if err := Walk(b.Finish(), &r); !errors.Is(err, errStop) {
		t.Errorf("Walk() error = %v, want %v", err, errStop)
	}
	if len(r.cmds) != 2 {
		t.Errorf("commands after error = %d, want 2", len(r.cmds))
	}
}
