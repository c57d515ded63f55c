// Package atlas caches rasterized glyphs in growable texture pages.
//
// There is one Page per content class: Mask pages hold 8-bit coverage
// and Color pages hold premultiplied RGBA. A Cache maps glyph keys to
// their location in a page, rasterizing on miss through a Rasterizer.
// Entries not requested during a frame are evicted at the start of the
// next one.
//
// Pages grow by doubling when an allocation fails. Growth keeps every
// existing glyph at its pixel coordinates, so glyph UVs are stable for
// the lifetime of an entry. Glyph UVs are in page pixel units; see
// EncodeUV for the encoding shared with the shader.
package atlas
