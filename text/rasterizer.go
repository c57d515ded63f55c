package text

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/vector"

	"github.com/gogpu/easel/internal/atlas"
)

// Rasterizer renders glyph bitmaps for the atlas cache. Outline glyphs
// become coverage masks; embedded bitmap glyphs become color images
// scaled to the requested size.
//
// Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	fonts *FontSet
	vr    *vector.Rasterizer
}

var _ atlas.Rasterizer = (*Rasterizer)(nil)

// NewRasterizer creates a rasterizer for glyphs of fonts.
func NewRasterizer(fonts *FontSet) *Rasterizer {
	return &Rasterizer{fonts: fonts, vr: vector.NewRasterizer(0, 0)}
}

// Rasterize implements atlas.Rasterizer.
func (r *Rasterizer) Rasterize(key atlas.GlyphKey) (atlas.Bitmap, error) {
	face, ok := r.fonts.Face(key.FontID)
	if !ok {
		return atlas.Bitmap{}, fmt.Errorf("%w: %d", ErrUnknownFont, key.FontID)
	}
	size := fixedToFloat(key.Size)
	subpx := float32(key.SubpixelX) / SubpixelBins
	upem := face.Upem()
	if upem == 0 || size <= 0 {
		return atlas.Bitmap{}, nil
	}

	switch data := face.GlyphData(font.GID(key.GlyphID)).(type) {
	case font.GlyphOutline:
		return r.outline(data.Segments, upem, size, subpx), nil
	case font.GlyphSVG:
		return r.outline(data.Outline.Segments, upem, size, subpx), nil
	case font.GlyphColor:
		// Layered COLR glyphs are drawn with their base outline.
		out, _ := face.GlyphDataOutline(tables.GlyphID(key.GlyphID))
		return r.outline(out.Segments, upem, size, subpx), nil
	case font.GlyphBitmap:
		return r.bitmap(face, key, data, size)
	case nil:
		return atlas.Bitmap{}, nil
	default:
		return atlas.Bitmap{}, fmt.Errorf("%w: %T", ErrUnsupportedGlyph, data)
	}
}

// outline fills the glyph path at size pixels per em, shifted right by
// subpx pixels.
func (r *Rasterizer) outline(segs []ot.Segment, upem uint16, size, subpx float32) atlas.Bitmap {
	if len(segs) == 0 {
		return atlas.Bitmap{}
	}
	scale := size / float32(upem)

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	for i := range segs {
		for _, p := range segs[i].ArgsSlice() {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	left := int(math.Floor(float64(minX*scale + subpx)))
	right := int(math.Ceil(float64(maxX*scale + subpx)))
	top := int(math.Ceil(float64(maxY * scale)))
	bottom := int(math.Floor(float64(minY * scale)))
	w, h := right-left, top-bottom
	if w <= 0 || h <= 0 {
		return atlas.Bitmap{}
	}

	ox, oy := subpx-float32(left), float32(top)
	pt := func(p ot.SegmentPoint) (float32, float32) {
		return p.X*scale + ox, oy - p.Y*scale
	}

	vr := r.vr
	vr.Reset(w, h)
	started := false
	for i := range segs {
		s := &segs[i]
		switch s.Op {
		case ot.SegmentOpMoveTo:
			if started {
				vr.ClosePath()
			}
			vr.MoveTo(pt(s.Args[0]))
			started = true
		case ot.SegmentOpLineTo:
			vr.LineTo(pt(s.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			vr.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			dx, dy := pt(s.Args[2])
			vr.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		vr.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	vr.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return atlas.Bitmap{
		Content: atlas.Mask,
		Width:   w,
		Height:  h,
		Left:    left,
		Top:     top,
		Pix:     dst.Pix,
	}
}

// bitmap decodes an embedded bitmap glyph and scales it to the glyph
// extents at size pixels per em.
func (r *Rasterizer) bitmap(face *font.Face, key atlas.GlyphKey, data font.GlyphBitmap, size float32) (atlas.Bitmap, error) {
	src, mask, err := decodeGlyphBitmap(data)
	if err != nil {
		return atlas.Bitmap{}, err
	}
	sb := src.Bounds()
	if sb.Empty() {
		return atlas.Bitmap{}, nil
	}

	var w, h, left, top int
	scale := size / float32(face.Upem())
	if ext, ok := face.GlyphExtents(font.GID(key.GlyphID)); ok && ext.Width > 0 && ext.Height != 0 {
		w = int(math.Ceil(float64(ext.Width * scale)))
		h = int(math.Ceil(float64(-ext.Height * scale)))
		left = int(math.Floor(float64(ext.XBearing * scale)))
		top = int(math.Ceil(float64(ext.YBearing * scale)))
	} else {
		// No extents: fit the em height and sit on the baseline.
		h = int(math.Round(float64(size)))
		w = int(math.Round(float64(size) * float64(sb.Dx()) / float64(sb.Dy())))
		top = h
	}
	if w <= 0 || h <= 0 {
		return atlas.Bitmap{}, nil
	}

	dr := image.Rect(0, 0, w, h)
	if mask {
		dst := image.NewAlpha(dr)
		draw.ApproxBiLinear.Scale(dst, dr, src, sb, draw.Src, nil)
		return atlas.Bitmap{Content: atlas.Mask, Width: w, Height: h, Left: left, Top: top, Pix: dst.Pix}, nil
	}
	dst := image.NewRGBA(dr)
	draw.CatmullRom.Scale(dst, dr, src, sb, draw.Src, nil)
	return atlas.Bitmap{Content: atlas.Color, Width: w, Height: h, Left: left, Top: top, Pix: dst.Pix}, nil
}

// decodeGlyphBitmap decodes the glyph image. It reports whether the
// image is a one-bit mask rather than color.
func decodeGlyphBitmap(data font.GlyphBitmap) (image.Image, bool, error) {
	switch data.Format {
	case font.BlackAndWhite:
		return expandBits(data.Data, data.Width, data.Height), true, nil
	case font.PNG:
		img, err := png.Decode(bytes.NewReader(data.Data))
		return img, false, err
	case font.JPG:
		img, err := jpeg.Decode(bytes.NewReader(data.Data))
		return img, false, err
	case font.TIFF:
		img, err := tiff.Decode(bytes.NewReader(data.Data))
		return img, false, err
	default:
		return nil, false, fmt.Errorf("%w: bitmap format %d", ErrUnsupportedGlyph, data.Format)
	}
}

// expandBits turns a packed, most significant bit first, one-bit image
// into an alpha image.
func expandBits(bits []byte, w, h int) *image.Alpha {
	img := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		if i/8 >= len(bits) {
			break
		}
		if bits[i/8]&(0x80>>(i%8)) != 0 {
			img.Pix[i] = 0xff
		}
	}
	return img
}
