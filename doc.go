// Package easel is an immediate-mode 2D rendering engine.
//
// # Overview
//
// Every frame the application draws into canvases through a *Canvas:
// filled and stroked rectangles, ellipses and triangles, textured quads
// and shaped text. The engine accumulates one vertex list and a sequence
// of render passes for the frame, then hands both to a Backend that
// replays them on the GPU.
//
//	e, err := easel.NewEngine(backend, easel.WithScreenSize(800, 600))
//	if err != nil {
//	    return err
//	}
//	err = e.Frame(func(c *easel.Canvas) {
//	    c.SetFillColor(easel.RGB(0.2, 0.4, 0.8))
//	    c.Rect().XYWH(10, 10, 100, 100).Draw()
//	    c.Text("hello").XY(10, 130).Draw()
//	})
//
// # Canvases
//
// The screen canvas is created with the engine. Offscreen canvases are
// created with CreateCanvas and drawn into with Canvas.DrawCanvas from
// inside another draw; the output of an offscreen canvas can be bound as
// a texture with Engine.CanvasTexture.
//
// # Clipping
//
// Canvas.Clip draws a shape into the stencil buffer and restricts the
// draw callback to it. Clips nest; each level increments the stencil
// reference.
//
// # Threading
//
// An Engine is owned by one goroutine. Run drives the engine from a
// single loop goroutine and feeds it input events, fixed ticks and file
// change notifications over channels.
//
// # Coordinate System
//
// Origin (0,0) is the top-left corner of the canvas, X grows right and Y
// grows down. Angles are in radians.
package easel
