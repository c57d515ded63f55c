// Package text shapes, lays out and rasterizes text for easel.
//
// The pipeline is split the same way the engine uses it:
//
//   - FontSet: family and aspect resolution over go-text fontscan, seeded
//     with the Go fonts and optionally the system fonts
//   - Shaper: bidi and script segmentation plus HarfBuzz shaping of each
//     paragraph into a Buffer
//   - Buffer: line wrapping and alignment for a layout box; changing the
//     box re-wraps without re-shaping
//   - Rasterizer: renders glyph bitmaps for the atlas cache, from outlines
//     (golang.org/x/image/vector) or embedded color bitmaps
//
// # Example usage
//
//	fonts, err := text.NewFontSet()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	shaper := text.NewShaper(fonts)
//	buf := shaper.Shape("Hello, easel!", text.Metrics{FontSize: 16, LineHeight: 20.8},
//	    text.DefaultAttrs(), text.AlignLeft)
//	buf.SetSize(200, 0)
//	w, h := buf.Dimensions()
package text
