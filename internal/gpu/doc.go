//go:build !nogpu

// Package gpu implements the easel Backend on a wgpu HAL device.
//
// A Renderer owns three pipelines built from one WGSL module:
//
//   - draw: color writes where the stencil equals the reference
//   - clip-start: increments the stencil where it equals the reference
//   - clip-end: decrements the stencil where it equals the reference
//
// Every canvas has a multisampled color target and a Depth24PlusStencil8
// buffer that resolve into its output: an offscreen texture, or the
// surface texture for the screen canvas when a surface is attached.
// Glyphs are sampled from two atlas textures mirroring the mask and
// color pages of the glyph cache; dirty page regions are uploaded at the
// start of every frame.
//
// Render replays a batch.Frame through batch.Walk, one render pass per
// canvas pass, then submits and presents.
package gpu
