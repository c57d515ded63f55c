package text

import (
	"math"
	"slices"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/easel/internal/atlas"
)

// SubpixelBins is the number of horizontal subpixel positions a glyph
// is rasterized at.
const SubpixelBins = 4

type paragraph struct {
	runes   []rune
	dir     di.Direction
	runs    []shaping.Output
	fontIDs []uint64
}

// Glyph is a positioned glyph of a laid out line.
type Glyph struct {
	FontID  uint64
	GlyphID uint32
	Size    fixed.Int26_6

	// X is the pen position from the line's left edge after alignment;
	// Y is the offset below the baseline.
	X, Y float32

	// Advance is the horizontal space the glyph takes.
	Advance float32
}

// Physical returns the atlas key of g and its integer pixel position when
// the line's origin is at (x, y). The fractional x part selects one of
// SubpixelBins rasterizations.
func (g Glyph) Physical(x, y float32) (key atlas.GlyphKey, px, py int) {
	fx := x + g.X
	ix := float32(math.Floor(float64(fx)))
	bin := uint8((fx - ix) * SubpixelBins)
	if bin >= SubpixelBins {
		bin = SubpixelBins - 1
	}
	key = atlas.GlyphKey{
		FontID:    g.FontID,
		GlyphID:   g.GlyphID,
		Size:      g.Size,
		SubpixelX: bin,
	}
	return key, int(ix), int(math.Round(float64(y + g.Y)))
}

// Line is one laid out line.
type Line struct {
	Glyphs []Glyph

	// Top is the top of the line box; Baseline is the baseline y. Both
	// are relative to the buffer origin, growing down.
	Top      float32
	Baseline float32

	// Width is the advance width of the line content.
	Width float32
	RTL   bool
}

// Buffer is shaped text plus its layout in a box. Changing the box with
// SetSize re-wraps the shaped runs without shaping again.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	metrics    Metrics
	attrs      Attrs
	align      Align
	paragraphs []paragraph

	// ascent and descent of the primary face, used for empty lines.
	ascent, descent float32

	width, height float32
	lines         []Line
	maxWidth      float32

	wrapper shaping.LineWrapper
}

// Metrics returns the metrics the buffer was shaped with.
func (b *Buffer) Metrics() Metrics { return b.metrics }

// Attrs returns the resolved attributes of the buffer's primary face.
func (b *Buffer) Attrs() Attrs { return b.attrs }

// Align returns the buffer alignment.
func (b *Buffer) Align() Align { return b.align }

// SetSize sets the layout box. A width <= 0 disables wrapping and a
// height <= 0 disables vertical clipping. Setting the current size is a
// no-op.
func (b *Buffer) SetSize(width, height float32) {
	width, height = max(width, 0), max(height, 0)
	if b.width == width && b.height == height {
		return
	}
	b.width, b.height = width, height
	b.layout()
}

// Lines returns the laid out lines. The slice is replaced by the next
// SetSize that changes the box.
func (b *Buffer) Lines() []Line {
	b.ensureLayout()
	return b.lines
}

// Dimensions returns the width of the widest line and the total height
// of the laid out lines.
func (b *Buffer) Dimensions() (width, height float32) {
	b.ensureLayout()
	return b.maxWidth, float32(len(b.lines)) * b.metrics.LineHeight
}

func (b *Buffer) ensureLayout() {
	if b.width < 0 {
		b.SetSize(0, 0)
	}
}

type wrapped struct {
	line     shaping.Line
	dir      di.Direction
	runes    []rune
	fontIDs  []uint64
	runStart []int
	last     bool
}

func (b *Buffer) layout() {
	b.lines = b.lines[:0]
	b.maxWidth = 0

	maxWidth := math.MaxInt32
	if b.width > 0 {
		maxWidth = int(math.Ceil(float64(b.width)))
	}
	cfg := shaping.WrapConfig{BreakPolicy: shaping.WhenNecessary}

	var all []wrapped
	for pi := range b.paragraphs {
		p := &b.paragraphs[pi]
		if len(p.runs) == 0 {
			all = append(all, wrapped{dir: p.dir, last: true})
			continue
		}
		cfg.Direction = p.dir
		// The wrapper trims trailing whitespace in place, so it gets its
		// own copy of the glyphs.
		runs := cloneRuns(p.runs)
		lines, _ := b.wrapper.WrapParagraph(cfg, maxWidth, p.runes, shaping.NewSliceIterator(runs))
		for li, line := range lines {
			all = append(all, wrapped{
				line:     slices.Clone(line),
				dir:      p.dir,
				runes:    p.runes,
				fontIDs:  p.fontIDs,
				runStart: runOffsets(p.runs),
				last:     li == len(lines)-1,
			})
		}
	}

	for _, w := range all {
		l := b.buildLine(w)
		b.maxWidth = max(b.maxWidth, l.Width)
		b.lines = append(b.lines, l)
	}

	boxWidth := b.width
	if boxWidth <= 0 {
		boxWidth = b.maxWidth
	}
	lh := b.metrics.LineHeight
	kept := b.lines[:0]
	for i := range b.lines {
		top := float32(i) * lh
		if b.height > 0 && top+lh > b.height {
			break
		}
		l := b.lines[i]
		b.position(&l, all[i], top, boxWidth)
		kept = append(kept, l)
	}
	b.lines = kept
}

// runOffsets returns the first rune of every shaped run, used to find the
// font id of a wrapped run.
func runOffsets(runs []shaping.Output) []int {
	out := make([]int, len(runs))
	for i := range runs {
		out[i] = runs[i].Runes.Offset
	}
	return out
}

func cloneRuns(runs []shaping.Output) []shaping.Output {
	out := make([]shaping.Output, len(runs))
	for i, r := range runs {
		r.Glyphs = slices.Clone(r.Glyphs)
		out[i] = r
	}
	return out
}

// buildLine places the glyphs of a wrapped line in visual order starting
// at x = 0.
func (b *Buffer) buildLine(w wrapped) Line {
	l := Line{RTL: w.dir.Progression() == di.TowardTopLeft}
	var pen fixed.Int26_6
	for _, run := range sortedRuns(w.line) {
		id := fontIDFor(w, run.Runes.Offset)
		for _, g := range run.Glyphs {
			l.Glyphs = append(l.Glyphs, Glyph{
				FontID:  id,
				GlyphID: uint32(g.GlyphID),
				Size:    run.Size,
				X:       fixedToFloat(pen + g.XOffset),
				Y:       -fixedToFloat(g.YOffset),
				Advance: fixedToFloat(g.Advance),
			})
			pen += g.Advance
		}
	}
	l.Width = fixedToFloat(pen)
	return l
}

// fontIDFor finds the shaped run containing rune offset off.
func fontIDFor(w wrapped, off int) uint64 {
	i, found := slices.BinarySearch(w.runStart, off)
	if !found {
		i--
	}
	if i < 0 || i >= len(w.fontIDs) {
		return 0
	}
	return w.fontIDs[i]
}

// position applies alignment and computes the vertical metrics of l.
func (b *Buffer) position(l *Line, w wrapped, top, boxWidth float32) {
	ascent, descent := b.ascent, b.descent
	for _, run := range w.line {
		ascent = max(ascent, fixedToFloat(run.LineBounds.Ascent))
		descent = max(descent, -fixedToFloat(run.LineBounds.Descent))
	}
	lh := b.metrics.LineHeight
	l.Top = top
	l.Baseline = top + (lh-(ascent+descent))/2 + ascent

	free := boxWidth - l.Width
	if free <= 0 {
		return
	}
	var offset float32
	switch b.align {
	case AlignRight:
		offset = free
	case AlignCenter:
		offset = free / 2
	case AlignEnd:
		if !l.RTL {
			offset = free
		}
	case AlignJustified:
		if w.last {
			if l.RTL {
				offset = free
			}
			break
		}
		b.justify(l, w, free)
	}
	if offset != 0 {
		for i := range l.Glyphs {
			l.Glyphs[i].X += offset
		}
	}
}

// justify spreads free space over the inner whitespace glyphs of l.
func (b *Buffer) justify(l *Line, w wrapped, free float32) {
	var spaces []bool
	n := 0
	for _, run := range sortedRuns(w.line) {
		for _, g := range run.Glyphs {
			ti := g.TextIndex()
			sp := ti < len(w.runes) && unicode.IsSpace(w.runes[ti])
			spaces = append(spaces, sp)
		}
	}
	// trailing whitespace does not stretch
	last := len(spaces) - 1
	for last >= 0 && spaces[last] {
		spaces[last] = false
		last--
	}
	for _, sp := range spaces {
		if sp {
			n++
		}
	}
	if n == 0 || len(spaces) != len(l.Glyphs) {
		return
	}
	extra := free / float32(n)
	var shift float32
	for i := range l.Glyphs {
		l.Glyphs[i].X += shift
		if spaces[i] {
			shift += extra
		}
	}
	l.Width += shift
}

func sortedRuns(line shaping.Line) []shaping.Output {
	runs := slices.Clone(line)
	slices.SortFunc(runs, func(a, b shaping.Output) int { return int(a.VisualIndex - b.VisualIndex) })
	return runs
}
