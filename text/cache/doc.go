// Package cache holds shaped text between frames.
//
// Shaping is the expensive half of drawing text. A Cache keeps every
// shaped buffer that was requested during the last frame; buffers not
// requested again are dropped at the start of the next frame. Wrapping a
// cached buffer to a different box does not reshape it.
package cache
