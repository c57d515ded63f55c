package easel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/gogpu/easel/internal/slot"
)

// texture returns the info of key, panicking on stale keys.
func (e *Engine) texture(key TextureKey) *textureInfo {
	info := e.textures.Ptr(slot.Key(key))
	if info == nil {
		panic(fmt.Sprintf("easel: unknown %v", key))
	}
	return info
}

// LoadTextureRGBA uploads width×height tightly packed straight-alpha
// RGBA8 pixels as a texture.
func (e *Engine) LoadTextureRGBA(pix []byte, width, height int, filter TextureFilter) (TextureKey, error) {
	e.checkOpen()
	if err := checkSize(width, height); err != nil {
		return TextureKey{}, err
	}
	if len(pix) != width*height*4 {
		return TextureKey{}, fmt.Errorf("easel: texture data is %d bytes, want %d", len(pix), width*height*4)
	}
	return e.addTexture(pix, width, height, filter, "")
}

func (e *Engine) addTexture(pix []byte, width, height int, filter TextureFilter, path string) (TextureKey, error) {
	key := TextureKey(e.textures.Insert(textureInfo{width: width, height: height, filter: filter, path: path}))
	if err := e.backend.CreateTexture(key, pix, width, height, filter); err != nil {
		e.textures.Remove(slot.Key(key))
		return TextureKey{}, fmt.Errorf("easel: create texture: %w", err)
	}
	return key, nil
}

// LoadTextureImage uploads img as a texture.
func (e *Engine) LoadTextureImage(img image.Image, filter TextureFilter) (TextureKey, error) {
	rgba := toNRGBA(img)
	b := rgba.Bounds()
	return e.LoadTextureRGBA(rgba.Pix, b.Dx(), b.Dy(), filter)
}

// LoadTexturePath decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file. When
// texture watching is enabled the texture is reloaded whenever the file
// changes.
func (e *Engine) LoadTexturePath(path string, filter TextureFilter) (TextureKey, error) {
	e.checkOpen()
	abs, err := filepath.Abs(path)
	if err != nil {
		return TextureKey{}, &TextureLoadError{Op: "load path", Path: path, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	img, err := decodeFile(abs)
	if err != nil {
		return TextureKey{}, &TextureLoadError{Op: "load path", Path: path, Err: err}
	}
	b := img.Bounds()
	if err := checkSize(b.Dx(), b.Dy()); err != nil {
		return TextureKey{}, &TextureLoadError{Op: "load path", Path: path, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}
	key, err := e.addTexture(img.Pix, b.Dx(), b.Dy(), filter, abs)
	if err != nil {
		return TextureKey{}, err
	}
	e.texturePaths[abs] = append(e.texturePaths[abs], key)
	if e.watcher != nil {
		if err := e.watcher.Watch(abs); err != nil {
			Logger().Warn("easel: cannot watch texture", "path", abs, "err", err)
		}
	}
	return key, nil
}

// LoadTextureBytes decodes an encoded image held in memory.
func (e *Engine) LoadTextureBytes(data []byte, filter TextureFilter) (TextureKey, error) {
	return e.LoadTextureReader(bytes.NewReader(data), filter)
}

// LoadTextureReader decodes an encoded image read from r.
func (e *Engine) LoadTextureReader(r io.Reader, filter TextureFilter) (TextureKey, error) {
	e.checkOpen()
	img, err := decode(r)
	if err != nil {
		return TextureKey{}, &TextureLoadError{Op: "load bytes", Err: err}
	}
	b := img.Bounds()
	if err := checkSize(b.Dx(), b.Dy()); err != nil {
		return TextureKey{}, &TextureLoadError{Op: "load bytes", Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}
	return e.addTexture(img.Pix, b.Dx(), b.Dy(), filter, "")
}

// errReader marks read failures so decode can tell them from format
// errors.
type errReader struct {
	r   io.Reader
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return n, err
}

func decode(r io.Reader) (*image.NRGBA, error) {
	er := &errReader{r: r}
	img, _, err := image.Decode(er)
	if er.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, er.err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return toNRGBA(img), nil
}

func decodeFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	return decode(f)
}

// toNRGBA converts img to straight-alpha RGBA at origin (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// RemoveTexture deletes a texture. Removing the texture of a canvas
// output only unregisters it; the canvas survives.
func (e *Engine) RemoveTexture(key TextureKey) {
	e.texture(key)
	if e.inFrame {
		panic("easel: RemoveTexture inside a frame")
	}
	e.removeTexture(key)
}

func (e *Engine) removeTexture(key TextureKey) {
	info, ok := e.textures.Remove(slot.Key(key))
	if !ok {
		return
	}
	if info.fromCanvas {
		if c := e.canvases.Ptr(slot.Key(info.canvas)); c != nil {
			c.texture, c.textured = TextureKey{}, false
		}
	}
	if info.path != "" {
		keys := slices.DeleteFunc(e.texturePaths[info.path], func(k TextureKey) bool { return k == key })
		if len(keys) == 0 {
			delete(e.texturePaths, info.path)
			if e.watcher != nil {
				e.watcher.Unwatch(info.path)
			}
		} else {
			e.texturePaths[info.path] = keys
		}
	}
	e.backend.DeleteTexture(key)
}

// TextureDimensions returns the size of a texture in pixels.
func (e *Engine) TextureDimensions(key TextureKey) (width, height int) {
	info := e.texture(key)
	if info.fromCanvas {
		return e.CanvasSize(info.canvas)
	}
	return info.width, info.height
}

// ReloadTexture decodes the source file of every texture loaded from
// path again and replaces their pixels. Keys stay valid. On failure the
// old pixels are kept.
func (e *Engine) ReloadTexture(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &TextureLoadError{Op: "reload", Path: path, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	keys := e.texturePaths[abs]
	if len(keys) == 0 {
		return nil
	}
	img, err := decodeFile(abs)
	if err != nil {
		return &TextureLoadError{Op: "reload", Path: path, Err: err}
	}
	b := img.Bounds()
	if err := checkSize(b.Dx(), b.Dy()); err != nil {
		return &TextureLoadError{Op: "reload", Path: path, Err: fmt.Errorf("%w: %w", ErrDecode, err)}
	}
	for _, key := range keys {
		info := e.texture(key)
		e.backend.DeleteTexture(key)
		if err := e.backend.CreateTexture(key, img.Pix, b.Dx(), b.Dy(), info.filter); err != nil {
			return fmt.Errorf("easel: reload %s: %w", path, err)
		}
		info.width, info.height = b.Dx(), b.Dy()
	}
	Logger().Debug("easel: texture reloaded", "path", abs, "textures", len(keys))
	return nil
}
