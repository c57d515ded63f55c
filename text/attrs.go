package text

import (
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
)

// Family names a font family. The generic families resolve through the
// font set's substitution rules; any other value is matched by name.
type Family string

// Generic families.
const (
	SansSerif Family = fontscan.SansSerif
	Serif     Family = fontscan.Serif
	Monospace Family = fontscan.Monospace
	Cursive   Family = fontscan.Cursive
	Fantasy   Family = fontscan.Fantasy
)

type (
	// Weight is the font weight, 100 to 900 with 400 as normal.
	Weight = font.Weight
	// Style selects upright or italic faces.
	Style = font.Style
	// Stretch is the font width as a fraction of normal.
	Stretch = font.Stretch
)

// Common aspect values.
const (
	WeightNormal  = font.WeightNormal
	WeightMedium  = font.WeightMedium
	WeightBold    = font.WeightBold
	StyleNormal   = font.StyleNormal
	StyleItalic   = font.StyleItalic
	StretchNormal = font.StretchNormal
)

// Attrs selects a face: a family plus its aspect.
type Attrs struct {
	Family  Family
	Weight  Weight
	Style   Style
	Stretch Stretch
}

// DefaultAttrs returns sans-serif with normal weight, style and stretch.
func DefaultAttrs() Attrs {
	return Attrs{
		Family:  SansSerif,
		Weight:  WeightNormal,
		Style:   StyleNormal,
		Stretch: StretchNormal,
	}
}

func (a Attrs) aspect() font.Aspect {
	return font.Aspect{Style: a.Style, Weight: a.Weight, Stretch: a.Stretch}
}

func (a Attrs) String() string {
	return fmt.Sprintf("%s/%v/%v/%v", a.Family, a.Weight, a.Style, a.Stretch)
}

// Metrics are the font size and absolute line height, both in pixels.
type Metrics struct {
	FontSize   float32
	LineHeight float32
}

// Align is the horizontal alignment of wrapped lines.
type Align uint8

const (
	// AlignLeft aligns lines to the left edge.
	AlignLeft Align = iota
	// AlignRight aligns lines to the right edge.
	AlignRight
	// AlignCenter centers lines in the box.
	AlignCenter
	// AlignJustified stretches every line but the last of a paragraph
	// to the box width.
	AlignJustified
	// AlignEnd aligns to the paragraph's end edge: right for
	// left-to-right text, left for right-to-left text.
	AlignEnd
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustified:
		return "justified"
	case AlignEnd:
		return "end"
	default:
		return fmt.Sprintf("Align(%d)", uint8(a))
	}
}
