package text

import (
	"bytes"
	"fmt"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// goFonts are registered by NewFontSet so text renders without any
// system font access.
var goFonts = []struct {
	id     string
	family Family
	data   []byte
}{
	{"go-regular", SansSerif, goregular.TTF},
	{"go-bold", SansSerif, gobold.TTF},
	{"go-italic", SansSerif, goitalic.TTF},
	{"go-bold-italic", SansSerif, gobolditalic.TTF},
	{"go-medium", SansSerif, gomedium.TTF},
	{"go-medium-italic", SansSerif, gomediumitalic.TTF},
	{"go-mono", Monospace, gomono.TTF},
	{"go-mono-bold", Monospace, gomonobold.TTF},
	{"go-mono-italic", Monospace, gomonoitalic.TTF},
	{"go-mono-bold-italic", Monospace, gomonobolditalic.TTF},
}

// FontSet resolves Attrs to faces and hands out stable numeric ids for
// the fonts it has resolved. The ids key the glyph atlas.
//
// FontSet is not safe for concurrent use.
type FontSet struct {
	fm    *fontscan.FontMap
	ids   map[*font.Font]uint64
	faces []*font.Face
}

// NewFontSet returns a font set holding the Go fonts under the
// sans-serif and monospace families.
func NewFontSet() (*FontSet, error) {
	s := NewEmptyFontSet()
	for _, f := range goFonts {
		if err := s.AddFont(f.data, f.id, f.family); err != nil {
			return nil, fmt.Errorf("text: load %s: %w", f.id, err)
		}
	}
	return s, nil
}

// NewEmptyFontSet returns a font set without any font.
func NewEmptyFontSet() *FontSet {
	return &FontSet{
		fm:  fontscan.NewFontMap(fontscanLogger{}),
		ids: make(map[*font.Font]uint64),
	}
}

// AddFont registers a TrueType/OpenType font or collection. If family is
// empty the family stored in the font is used. Fonts added first win
// ties during resolution.
func (s *FontSet) AddFont(data []byte, fileID string, family Family) error {
	if len(data) == 0 {
		return ErrEmptyFontData
	}
	return s.fm.AddFont(bytes.NewReader(data), fileID, string(family))
}

// UseSystemFonts indexes the system fonts, caching the index in cacheDir
// (the user cache directory when empty). Manually added fonts keep their
// priority.
func (s *FontSet) UseSystemFonts(cacheDir string) error {
	if err := s.fm.UseSystemFonts(cacheDir); err != nil {
		return fmt.Errorf("text: system fonts: %w", err)
	}
	return nil
}

func (s *FontSet) setQuery(a Attrs) {
	s.fm.SetQuery(fontscan.Query{
		Families: []string{string(a.Family)},
		Aspect:   a.aspect(),
	})
}

// Resolve returns the attributes of the face that a would render with,
// and that face. Two Attrs that resolve to the same face give equal
// resolved Attrs. The face is nil only when the set is empty.
func (s *FontSet) Resolve(a Attrs) (Attrs, *font.Face) {
	s.setQuery(a)
	face := s.fm.ResolveFace(' ')
	if face == nil {
		return a, nil
	}
	family, aspect := s.fm.FontMetadata(face.Font)
	return Attrs{
		Family:  Family(family),
		Weight:  aspect.Weight,
		Style:   aspect.Style,
		Stretch: aspect.Stretch,
	}, face
}

// ID returns the numeric id of the face's font, assigning one on first
// use. Ids start at 1.
func (s *FontSet) ID(face *font.Face) uint64 {
	if id, ok := s.ids[face.Font]; ok {
		return id
	}
	s.faces = append(s.faces, face)
	id := uint64(len(s.faces))
	s.ids[face.Font] = id
	return id
}

// Face returns the face registered under id.
func (s *FontSet) Face(id uint64) (*font.Face, bool) {
	if id == 0 || id > uint64(len(s.faces)) {
		return nil, false
	}
	return s.faces[id-1], true
}
