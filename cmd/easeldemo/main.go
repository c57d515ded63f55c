// Command easeldemo renders an animated scene on the headless HAL device
// and logs frame statistics.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chewxy/math32"
	"github.com/gogpu/easel"
	"github.com/gogpu/easel/gpu"
)

func main() {
	var (
		configPath = flag.String("config", "", "engine config file (TOML)")
		frames     = flag.Uint64("frames", 120, "frames to render")
		samples    = flag.Uint("samples", 4, "MSAA sample count (1 or 4)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	easel.SetLogger(logger)

	if err := run(*configPath, *frames, uint32(*samples)); err != nil {
		logger.Error("easeldemo failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, frames uint64, samples uint32) error {
	cfg := easel.DefaultEngineConfig()
	if configPath != "" {
		var err error
		if cfg, err = easel.LoadConfig(configPath); err != nil {
			return err
		}
	}

	device, err := gpu.NewHeadless()
	if err != nil {
		return err
	}
	defer device.Close()

	backend, err := gpu.New(device, gpu.WithSampleCount(samples))
	if err != nil {
		return err
	}
	e, err := easel.NewEngine(backend, easel.WithConfig(cfg))
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := &demo{}
	if err := easel.Run(ctx, e, d, easel.RunConfig{MaxFrames: frames}); err != nil {
		return err
	}
	easel.Logger().Info("easeldemo done",
		"frames", e.RenderFrame(),
		"ticks", e.FixedTick(),
		"skipped", e.SkippedFrames(),
		"last", e.LastFrame(),
		"glyphs", e.GlyphStats(),
		"text", e.TextStats(),
		"renderer", backend.Stats())
	return nil
}

// demo draws a clipped, rotating fan of squares into an offscreen canvas
// and composites it onto the screen with a caption.
type demo struct {
	layer easel.CanvasKey
	angle float32
}

func (d *demo) Setup(e *easel.Engine) error {
	var err error
	d.layer, err = e.CreateCanvas(256, 256)
	return err
}

func (d *demo) FixedUpdate(*easel.Engine) {
	d.angle += math32.Pi / 120
}

func (d *demo) Draw(c *easel.Canvas) {
	e := c.Engine()
	w, h := c.Size()

	c.SetFillColor(easel.RGB(0.08, 0.09, 0.12))
	c.NoStroke()
	c.Rect().XYWH(0, 0, w, h).Draw()

	c.DrawCanvas(d.layer, func(c *easel.Canvas) {
		c.NoStroke()
		c.SetFillColor(easel.RGBA(0, 0, 0, 0))
		c.Rect().XYWH(0, 0, 256, 256).Draw()
		c.Clip(func(c *easel.Canvas) {
			c.Ellipse().XY(128, 128).WH(240, 240).Draw()
		}, func(c *easel.Canvas) {
			c.Translate(128, 128)
			c.Rotate(d.angle)
			for i := 0; i < 8; i++ {
				c.Rotate(math32.Pi / 4)
				c.SetFillColor(easel.RGBA(float32(i)/8, 0.5, 1-float32(i)/8, 0.8))
				c.Rect().XYWH(0, -12, 120, 24).Draw()
			}
		})
	})

	if tex, err := e.CanvasTexture(d.layer); err == nil {
		c.SetTexture(tex)
		c.Image().XY(w/2, h/2).Centered().Draw()
		c.ClearTexture()
	}

	c.SetFillColor(easel.RGB(0.9, 0.9, 0.9))
	c.Text("easel").XY(16, 16).Size(24).Draw()
}
