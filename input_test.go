package easel

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

func TestInput_KeyJustPressedInFrame(t *testing.T) {
	b := newRecordBackend()
	e := newTestEngine(t, b)

	e.HandleKeyPress(gpucontext.KeySpace)
	if e.IsKeyJustPressed(gpucontext.KeySpace) {
		t.Error("IsKeyJustPressed() = true outside a frame")
	}

	var first, second bool
	drawFrame(t, e, b, func(c *Canvas) { first = c.Engine().IsKeyJustPressed(gpucontext.KeySpace) })
	drawFrame(t, e, b, func(c *Canvas) { second = c.Engine().IsKeyJustPressed(gpucontext.KeySpace) })
	if !first || second {
		t.Errorf("IsKeyJustPressed() in frames = %v, %v, want true, false", first, second)
	}
	if !e.IsKeyPressed(gpucontext.KeySpace) {
		t.Error("IsKeyPressed() = false while held")
	}
	if f, ok := e.KeyInfo(gpucontext.KeySpace).PressedFrame(); !ok || f != 0 {
		t.Errorf("PressedFrame() = %d, %v, want 0, true", f, ok)
	}

	e.HandleKeyRelease(gpucontext.KeySpace)
	var released bool
	drawFrame(t, e, b, func(c *Canvas) { released = c.Engine().IsKeyJustReleased(gpucontext.KeySpace) })
	if !released || e.IsKeyPressed(gpucontext.KeySpace) {
		t.Errorf("IsKeyJustReleased() = %v, IsKeyPressed() = %v", released, e.IsKeyPressed(gpucontext.KeySpace))
	}
}

func TestInput_JustPressedInTick(t *testing.T) {
	b := newRecordBackend()
	e := newTestEngine(t, b)

	e.Tick(nil)
	e.HandleMousePress(gpucontext.MouseButtonLeft)

	var inTick, nextTick bool
	e.Tick(func(e *Engine) { inTick = e.IsMouseJustPressed(gpucontext.MouseButtonLeft) })
	e.Tick(func(e *Engine) { nextTick = e.IsMouseJustPressed(gpucontext.MouseButtonLeft) })
	if !inTick || nextTick {
		t.Errorf("IsMouseJustPressed() in ticks = %v, %v, want true, false", inTick, nextTick)
	}

	// The render clock saw no frame since the press.
	var inFrame bool
	drawFrame(t, e, b, func(c *Canvas) { inFrame = c.Engine().IsMouseJustPressed(gpucontext.MouseButtonLeft) })
	if !inFrame {
		t.Error("IsMouseJustPressed() = false in the first frame after the press")
	}
}

func TestInput_KeyRepeatKeepsStamp(t *testing.T) {
	b := newRecordBackend()
	e := newTestEngine(t, b)
	e.HandleKeyPress(gpucontext.KeyA)
	drawFrame(t, e, b, func(*Canvas) {})
	e.HandleKeyPress(gpucontext.KeyA)

	var just bool
	drawFrame(t, e, b, func(c *Canvas) { just = c.Engine().IsKeyJustPressed(gpucontext.KeyA) })
	if just {
		t.Error("key repeat reported as a new press")
	}
}

func TestInput_MouseReleased(t *testing.T) {
	e := newTestEngine(t, newRecordBackend())
	if !e.IsMouseReleased(gpucontext.MouseButtonRight) {
		t.Error("IsMouseReleased() = false for an untouched button")
	}
	e.HandleMousePress(gpucontext.MouseButtonRight)
	e.HandleMouseRelease(gpucontext.MouseButtonRight)

	var just bool
	e.Tick(func(e *Engine) { just = e.IsMouseJustReleased(gpucontext.MouseButtonRight) })
	if !just {
		t.Error("IsMouseJustReleased() = false in the next tick")
	}
}

func TestInput_MousePosition(t *testing.T) {
	e := newTestEngine(t, newRecordBackend())
	e.HandleMouseMove(12.5, 40)
	if got := e.MousePos(); got != Pt(12.5, 40) {
		t.Errorf("MousePos() = %v, want (12.5, 40)", got)
	}
}

func TestInput_WheelValidForOneFrame(t *testing.T) {
	b := newRecordBackend()
	e := newTestEngine(t, b)
	e.HandleScroll(0, 1)
	e.HandleScroll(0, 2)

	var first, second Point
	drawFrame(t, e, b, func(c *Canvas) { first = c.Engine().MouseWheelDelta() })
	drawFrame(t, e, b, func(c *Canvas) { second = c.Engine().MouseWheelDelta() })
	if first != Pt(0, 3) {
		t.Errorf("MouseWheelDelta() = %v, want accumulated (0, 3)", first)
	}
	if second != (Point{}) {
		t.Errorf("MouseWheelDelta() next frame = %v, want zero", second)
	}
	if got := e.MouseWheelDelta(); got != (Point{}) {
		t.Errorf("MouseWheelDelta() outside frames = %v, want zero", got)
	}
}

func TestInput_ResizeScreen(t *testing.T) {
	b := newRecordBackend()
	e := newTestEngine(t, b, WithScreenSize(100, 100))
	if err := e.HandleResize(300, 150); err != nil {
		t.Fatal(err)
	}
	if w, h := e.CanvasSize(e.ScreenCanvas()); w != 300 || h != 150 {
		t.Errorf("screen size = %dx%d, want 300x150", w, h)
	}
	if err := e.HandleResize(0, 0); err != nil {
		t.Fatal(err)
	}
	if w, _ := e.CanvasSize(e.ScreenCanvas()); w != 300 {
		t.Errorf("minimized resize changed the width to %d", w)
	}
}

// ============================================================================
// Named state
// ============================================================================

func TestState(t *testing.T) {
	e := newTestEngine(t, newRecordBackend())

	calls := 0
	mk := func() int { calls++; return 41 }
	p := State(e, "score", mk)
	*p++
	if got := *State(e, "score", mk); got != 42 {
		t.Errorf("State() = %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("init called %d times, want 1", calls)
	}

	// Same name, different type: distinct values.
	s := State(e, "score", func() string { return "high" })
	if *s != "high" {
		t.Errorf("State[string]() = %q, want %q", *s, "high")
	}

	if !DeleteState[int](e, "score") {
		t.Error("DeleteState() = false")
	}
	if DeleteState[int](e, "score") {
		t.Error("DeleteState() twice = true")
	}
	if got := *State[int](e, "score", nil); got != 0 {
		t.Errorf("State() after delete = %d, want zero value", got)
	}
	if *State(e, "score", func() string { return "" }) != "high" {
		t.Error("deleting the int state removed the string state")
	}
}
