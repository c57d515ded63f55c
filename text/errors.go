package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownFont is returned when a glyph key names a font that was
	// never resolved by the font set.
	ErrUnknownFont = errors.New("text: unknown font id")

	// ErrUnsupportedGlyph is returned for glyph data the rasterizer cannot
	// draw.
	ErrUnsupportedGlyph = errors.New("text: unsupported glyph data")
)
