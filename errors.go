package easel

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrFrameSkipped is returned by a Backend that could not acquire its
	// surface texture. The engine drops the frame and continues.
	ErrFrameSkipped = errors.New("easel: frame skipped")

	// ErrFileNotFound reports a texture path that does not exist.
	ErrFileNotFound = errors.New("easel: file not found")

	// ErrDecode reports image data that could not be decoded.
	ErrDecode = errors.New("easel: cannot decode image")

	// ErrIO reports a read failure other than a missing file.
	ErrIO = errors.New("easel: i/o error")

	// ErrClosed is the panic value of operations on a closed engine.
	ErrClosed = errors.New("easel: engine closed")

	// ErrInvalidSize reports a non-positive or oversized dimension.
	ErrInvalidSize = errors.New("easel: invalid size")
)

// TextureLoadError describes a failed texture load. Err is one of
// ErrFileNotFound, ErrDecode or ErrIO, possibly wrapping the cause.
type TextureLoadError struct {
	Op   string // "load path", "load bytes" or "reload"
	Path string // empty for byte loads
	Err  error
}

func (e *TextureLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("easel: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("easel: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TextureLoadError) Unwrap() error { return e.Err }

// ConfigError reports an invalid EngineConfig field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("easel: invalid config %s: %s", e.Field, e.Reason)
}
