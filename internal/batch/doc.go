// Package batch accumulates vertices and draw calls for one frame.
//
// A Frame is a flat vertex list plus an ordered list of render passes.
// Each pass targets one canvas and holds draw calls whose vertex ranges
// are implied by the start of the following call. Builder appends passes
// while canvases are opened and closed, and Walk replays a finished
// frame as pipeline commands for a GPU backend.
package batch
