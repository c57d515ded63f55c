package text

import (
	"strings"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Shaper turns strings into shaped Buffers.
//
// Shaper is not safe for concurrent use: the segmenter and HarfBuzz
// shaper keep internal buffers between calls.
type Shaper struct {
	fonts *FontSet
	seg   shaping.Segmenter
	hb    shaping.HarfbuzzShaper
	lang  language.Language
}

// NewShaper creates a shaper resolving faces from fonts.
func NewShaper(fonts *FontSet) *Shaper {
	return &Shaper{
		fonts: fonts,
		lang:  language.DefaultLanguage(),
	}
}

// Fonts returns the shaper's font set.
func (s *Shaper) Fonts() *FontSet { return s.fonts }

// Shape splits str into paragraphs at '\n', segments each paragraph
// into runs of one direction, script and face, and shapes the runs. The
// returned buffer has no layout box until SetSize is called; it then
// lays out unbounded.
func (s *Shaper) Shape(str string, m Metrics, attrs Attrs, align Align) *Buffer {
	resolved, primary := s.fonts.Resolve(attrs)
	size := floatToFixed(m.FontSize)

	b := &Buffer{
		metrics: m,
		attrs:   resolved,
		align:   align,
		width:   -1,
		height:  -1,
	}
	if primary != nil {
		if ext, ok := primary.FontHExtents(); ok && primary.Upem() > 0 {
			scale := m.FontSize / float32(primary.Upem())
			b.ascent = ext.Ascender * scale
			b.descent = -ext.Descender * scale
		}
	}

	// Resolve re-queried the font map with attrs; segmentation below uses
	// the same query for fallback.
	for _, para := range strings.Split(str, "\n") {
		runes := []rune(strings.TrimSuffix(para, "\r"))
		p := paragraph{runes: runes, dir: paragraphDirection(runes)}
		if len(runes) > 0 {
			in := shaping.Input{
				Text:      runes,
				RunStart:  0,
				RunEnd:    len(runes),
				Direction: p.dir,
				Size:      size,
				Language:  s.lang,
			}
			for _, run := range s.seg.Split(in, s.fonts.fm) {
				out := s.hb.Shape(run)
				p.runs = append(p.runs, out)
				p.fontIDs = append(p.fontIDs, s.fonts.ID(out.Face))
			}
		}
		b.paragraphs = append(b.paragraphs, p)
	}
	return b
}

// paragraphDirection returns the direction of the first strong
// character, left-to-right when there is none.
func paragraphDirection(runes []rune) di.Direction {
	for _, r := range runes {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return di.DirectionLTR
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		}
	}
	return di.DirectionLTR
}

// floatToFixed converts a pixel size to fixed.Int26_6.
func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
