package atlas

import "fmt"

// Default page settings.
const (
	// DefaultInitialSize is the side length of a new page.
	DefaultInitialSize = 256

	// DefaultMaxSize is the largest side length a page grows to.
	DefaultMaxSize = 4096

	// DefaultPadding is the gap kept around every glyph.
	DefaultPadding = 1

	// MaxTextureSize matches the default maxTextureDimension2D limit.
	MaxTextureSize = 8192
)

// Config holds configuration for a Cache.
type Config struct {
	// InitialSize is the side length of both pages at creation.
	// Default: 256
	InitialSize int

	// MaxSize bounds page growth. A glyph that does not fit a page of
	// this size is skipped.
	// Default: 4096
	MaxSize int

	// Padding is the number of empty pixels right of and below each glyph.
	// Default: 1
	Padding int
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		InitialSize: DefaultInitialSize,
		MaxSize:     DefaultMaxSize,
		Padding:     DefaultPadding,
	}
}

// ConfigError describes an invalid Config field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atlas: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.InitialSize <= 0:
		return &ConfigError{Field: "InitialSize", Reason: "must be positive"}
	case c.MaxSize < c.InitialSize:
		return &ConfigError{Field: "MaxSize", Reason: fmt.Sprintf("%d is smaller than InitialSize %d", c.MaxSize, c.InitialSize)}
	case c.MaxSize > MaxTextureSize:
		return &ConfigError{Field: "MaxSize", Reason: fmt.Sprintf("exceeds texture limit %d", MaxTextureSize)}
	case c.Padding < 0:
		return &ConfigError{Field: "Padding", Reason: "must not be negative"}
	}
	return nil
}
