package easel

import (
	"context"
	"time"

	"github.com/gogpu/gpucontext"
	"golang.org/x/sync/errgroup"
)

// App draws one frame into the screen canvas.
type App interface {
	Draw(c *Canvas)
}

// Setupper is implemented by apps that load resources before the first
// frame.
type Setupper interface {
	Setup(e *Engine) error
}

// FixedUpdater is implemented by apps that advance on the fixed clock.
type FixedUpdater interface {
	FixedUpdate(e *Engine)
}

// AppFunc adapts a draw function to App.
type AppFunc func(c *Canvas)

// Draw calls f(c).
func (f AppFunc) Draw(c *Canvas) { f(c) }

// RunConfig controls Run.
type RunConfig struct {
	// Events delivers window input. Nil runs without input.
	Events gpucontext.EventSource

	// Frames paces rendering, one frame per receive, for example from a
	// platform vsync callback. Run returns when it is closed. When nil,
	// frames are paced at EngineConfig.FrameRate.
	Frames <-chan struct{}

	// MaxFrames stops Run after that many frames. Zero runs until ctx is
	// canceled.
	MaxFrames uint64
}

// eventQueueSize bounds input events waiting for the loop goroutine.
const eventQueueSize = 256

// Run drives e: it applies input events, runs fixed ticks at
// EngineConfig.FixedRate for FixedUpdater apps, reloads changed textures
// and draws frames. All engine access happens on one goroutine; the
// caller must not use e until Run returns.
//
// Run returns nil when MaxFrames is reached or Frames is closed, ctx's
// error when ctx is canceled, and the first render error otherwise.
func Run(ctx context.Context, e *Engine, app App, rc RunConfig) error {
	e.checkOpen()
	if s, ok := app.(Setupper); ok {
		if err := s.Setup(e); err != nil {
			return err
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(loopCtx)

	frames := rc.Frames
	if frames == nil {
		ch := make(chan struct{}, 1)
		frames = ch
		g.Go(func() error { return pace(gctx, e.config.FrameRate, ch) })
	}

	var ticks chan struct{}
	fixed, hasFixed := app.(FixedUpdater)
	if hasFixed {
		ticks = make(chan struct{}, 1)
		g.Go(func() error { return pace(gctx, e.config.FixedRate, ticks) })
	}

	queue := make(chan func(*Engine), eventQueueSize)
	if rc.Events != nil {
		subscribe(gctx, rc.Events, queue)
	}

	var changes <-chan string
	if e.watcher != nil {
		changes = e.watcher.Changes()
		g.Go(func() error { return e.watcher.Run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		var drawn uint64
		for {
			select {
			case <-gctx.Done():
				return nil
			case fn := <-queue:
				fn(e)
			case <-ticks:
				e.Tick(fixed.FixedUpdate)
			case path := <-changes:
				if err := e.ReloadTexture(path); err != nil {
					Logger().Warn("easel: texture reload failed", "path", path, "err", err)
				}
			case _, ok := <-frames:
				if !ok {
					return nil
				}
				drain(e, queue)
				if err := e.Frame(app.Draw); err != nil {
					return err
				}
				drawn++
				if rc.MaxFrames > 0 && drawn >= rc.MaxFrames {
					return nil
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// drain applies the events already queued, so that input arriving
// before a frame signal is visible to that frame.
func drain(e *Engine, queue <-chan func(*Engine)) {
	for {
		select {
		case fn := <-queue:
			fn(e)
		default:
			return
		}
	}
}

// pace signals out rate times per second, dropping signals the receiver
// is not ready for.
func pace(ctx context.Context, rate int, out chan<- struct{}) error {
	t := time.NewTicker(time.Second / time.Duration(rate))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}

// subscribe forwards window events to the loop goroutine as closures.
func subscribe(ctx context.Context, src gpucontext.EventSource, queue chan<- func(*Engine)) {
	post := func(fn func(*Engine)) {
		select {
		case queue <- fn:
		case <-ctx.Done():
		}
	}
	src.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) {
		post(func(e *Engine) { e.HandleKeyPress(k) })
	})
	src.OnKeyRelease(func(k gpucontext.Key, _ gpucontext.Modifiers) {
		post(func(e *Engine) { e.HandleKeyRelease(k) })
	})
	src.OnMouseMove(func(x, y float64) {
		post(func(e *Engine) { e.HandleMouseMove(float32(x), float32(y)) })
	})
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		post(func(e *Engine) {
			e.HandleMouseMove(float32(x), float32(y))
			e.HandleMousePress(b)
		})
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		post(func(e *Engine) {
			e.HandleMouseMove(float32(x), float32(y))
			e.HandleMouseRelease(b)
		})
	})
	src.OnScroll(func(dx, dy float64) {
		post(func(e *Engine) { e.HandleScroll(float32(dx), float32(dy)) })
	})
	src.OnResize(func(w, h int) {
		post(func(e *Engine) {
			if err := e.HandleResize(w, h); err != nil {
				Logger().Warn("easel: screen resize failed", "width", w, "height", h, "err", err)
			}
		})
	})
}
