package easel

import "github.com/gogpu/gpucontext"

// stamp records the counter value at which an event happened. The zero
// stamp means the event never happened; otherwise it holds counter+1.
type stamp uint64

func stampOf(counter uint64) stamp { return stamp(counter + 1) }

func (s stamp) at(counter uint64) bool { return s != 0 && uint64(s) == counter+1 }

// value returns the counter and whether the event happened at all.
func (s stamp) value() (uint64, bool) {
	if s == 0 {
		return 0, false
	}
	return uint64(s) - 1, true
}

// PressInfo is the state of a key or mouse button together with the
// render frame and fixed tick of its last press and release.
type PressInfo struct {
	Pressed bool

	pressedFrame  stamp
	releasedFrame stamp
	pressedTick   stamp
	releasedTick  stamp
}

// PressedFrame returns the render frame of the last press.
func (p PressInfo) PressedFrame() (uint64, bool) { return p.pressedFrame.value() }

// ReleasedFrame returns the render frame of the last release.
func (p PressInfo) ReleasedFrame() (uint64, bool) { return p.releasedFrame.value() }

// PressedTick returns the fixed tick of the last press.
func (p PressInfo) PressedTick() (uint64, bool) { return p.pressedTick.value() }

// ReleasedTick returns the fixed tick of the last release.
func (p PressInfo) ReleasedTick() (uint64, bool) { return p.releasedTick.value() }

func (p *PressInfo) press(frame, tick uint64) {
	if p.Pressed {
		// Key repeat.
		return
	}
	p.Pressed = true
	p.pressedFrame, p.pressedTick = stampOf(frame), stampOf(tick)
}

func (p *PressInfo) release(frame, tick uint64) {
	if !p.Pressed {
		return
	}
	p.Pressed = false
	p.releasedFrame, p.releasedTick = stampOf(frame), stampOf(tick)
}

type wheel struct {
	dx, dy float32
	frame  stamp
	tick   stamp
}

type inputState struct {
	keys    map[gpucontext.Key]*PressInfo
	buttons map[gpucontext.MouseButton]*PressInfo
	mouse   Point
	wheel   wheel
}

func newInputState() inputState {
	return inputState{
		keys:    make(map[gpucontext.Key]*PressInfo),
		buttons: make(map[gpucontext.MouseButton]*PressInfo),
	}
}

func pressInfo[K comparable](m map[K]*PressInfo, k K) *PressInfo {
	p, ok := m[k]
	if !ok {
		p = new(PressInfo)
		m[k] = p
	}
	return p
}

// current reports whether s marks the frame or tick being run.
func (e *Engine) current(frame, tick stamp) bool {
	switch e.mode {
	case RunModeRender:
		return frame.at(e.renderFrame)
	case RunModeFixed:
		return tick.at(e.fixedTick)
	default:
		return false
	}
}

// HandleKeyPress records a key press. Events are stamped with the frame
// and tick that will observe them next.
func (e *Engine) HandleKeyPress(k gpucontext.Key) {
	pressInfo(e.input.keys, k).press(e.renderFrame, e.fixedTick)
}

// HandleKeyRelease records a key release.
func (e *Engine) HandleKeyRelease(k gpucontext.Key) {
	pressInfo(e.input.keys, k).release(e.renderFrame, e.fixedTick)
}

// HandleMouseMove records the pointer position in screen pixels.
func (e *Engine) HandleMouseMove(x, y float32) {
	e.input.mouse = Pt(x, y)
}

// HandleMousePress records a mouse button press.
func (e *Engine) HandleMousePress(b gpucontext.MouseButton) {
	pressInfo(e.input.buttons, b).press(e.renderFrame, e.fixedTick)
}

// HandleMouseRelease records a mouse button release.
func (e *Engine) HandleMouseRelease(b gpucontext.MouseButton) {
	pressInfo(e.input.buttons, b).release(e.renderFrame, e.fixedTick)
}

// HandleScroll accumulates wheel movement for the next frame and tick.
func (e *Engine) HandleScroll(dx, dy float32) {
	f, t := stampOf(e.renderFrame), stampOf(e.fixedTick)
	w := &e.input.wheel
	if w.frame != f || w.tick != t {
		*w = wheel{frame: f, tick: t}
	}
	w.dx += dx
	w.dy += dy
}

// HandleResize resizes the screen canvas. Zero sizes, as sent for
// minimized windows, are ignored.
func (e *Engine) HandleResize(width, height int) error {
	return e.ResizeCanvas(e.screen, width, height)
}

// KeyInfo returns the press state of k.
func (e *Engine) KeyInfo(k gpucontext.Key) PressInfo {
	if p, ok := e.input.keys[k]; ok {
		return *p
	}
	return PressInfo{}
}

// IsKeyPressed reports whether k is held down.
func (e *Engine) IsKeyPressed(k gpucontext.Key) bool { return e.KeyInfo(k).Pressed }

// IsKeyReleased reports whether k is up.
func (e *Engine) IsKeyReleased(k gpucontext.Key) bool { return !e.KeyInfo(k).Pressed }

// IsKeyJustPressed reports whether k went down right before the current
// frame or tick. It is false outside frames and ticks.
func (e *Engine) IsKeyJustPressed(k gpucontext.Key) bool {
	p := e.KeyInfo(k)
	return p.Pressed && e.current(p.pressedFrame, p.pressedTick)
}

// IsKeyJustReleased reports whether k went up right before the current
// frame or tick.
func (e *Engine) IsKeyJustReleased(k gpucontext.Key) bool {
	p := e.KeyInfo(k)
	return !p.Pressed && e.current(p.releasedFrame, p.releasedTick)
}

// MouseInfo returns the press state of b.
func (e *Engine) MouseInfo(b gpucontext.MouseButton) PressInfo {
	if p, ok := e.input.buttons[b]; ok {
		return *p
	}
	return PressInfo{}
}

// IsMousePressed reports whether b is held down.
func (e *Engine) IsMousePressed(b gpucontext.MouseButton) bool { return e.MouseInfo(b).Pressed }

// IsMouseReleased reports whether b is up.
func (e *Engine) IsMouseReleased(b gpucontext.MouseButton) bool { return !e.MouseInfo(b).Pressed }

// IsMouseJustPressed reports whether b went down right before the
// current frame or tick.
func (e *Engine) IsMouseJustPressed(b gpucontext.MouseButton) bool {
	p := e.MouseInfo(b)
	return p.Pressed && e.current(p.pressedFrame, p.pressedTick)
}

// IsMouseJustReleased reports whether b went up right before the current
// frame or tick.
func (e *Engine) IsMouseJustReleased(b gpucontext.MouseButton) bool {
	p := e.MouseInfo(b)
	return !p.Pressed && e.current(p.releasedFrame, p.releasedTick)
}

// MousePos returns the last pointer position in screen pixels.
func (e *Engine) MousePos() Point { return e.input.mouse }

// MouseWheelDelta returns the wheel movement that arrived before the
// current frame or tick, or zero.
func (e *Engine) MouseWheelDelta() Point {
	w := e.input.wheel
	if !e.current(w.frame, w.tick) {
		return Point{}
	}
	return Pt(w.dx, w.dy)
}
