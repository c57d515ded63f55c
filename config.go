package easel

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/easel/internal/atlas"
)

// Default engine settings.
const (
	DefaultScreenWidth  = 800
	DefaultScreenHeight = 600
	DefaultFixedRate    = 60
	DefaultFrameRate    = 60

	// MaxCanvasSize bounds canvas and screen dimensions.
	MaxCanvasSize = atlas.MaxTextureSize
)

// AtlasConfig sizes the glyph atlas pages.
type AtlasConfig struct {
	InitialSize int `toml:"initial_size"`
	MaxSize     int `toml:"max_size"`
	Padding     int `toml:"padding"`
}

func (c AtlasConfig) atlas() atlas.Config {
	return atlas.Config{InitialSize: c.InitialSize, MaxSize: c.MaxSize, Padding: c.Padding}
}

// FontConfig selects the fonts available to text drawing. The Go fonts
// are always registered.
type FontConfig struct {
	// Files are extra font files, registered in order.
	Files []string `toml:"files"`

	// SystemFonts indexes the fonts installed on the system. The index
	// is cached in CacheDir, or in the user cache directory when empty.
	SystemFonts bool   `toml:"system_fonts"`
	CacheDir    string `toml:"cache_dir"`
}

// EngineConfig holds the engine settings. The zero value is not valid;
// start from DefaultEngineConfig.
type EngineConfig struct {
	ScreenWidth  int `toml:"screen_width"`
	ScreenHeight int `toml:"screen_height"`

	// FixedRate is the number of fixed ticks per second Run delivers.
	FixedRate int `toml:"fixed_rate"`

	// FrameRate is the number of frames per second Run renders when no
	// external frame source is set.
	FrameRate int `toml:"frame_rate"`

	// WatchTextures reloads textures loaded from paths when their file
	// changes.
	WatchTextures bool `toml:"watch_textures"`

	Atlas AtlasConfig `toml:"atlas"`
	Fonts FontConfig  `toml:"fonts"`
}

// DefaultEngineConfig returns the default configuration.
func DefaultEngineConfig() EngineConfig {
	ac := atlas.DefaultConfig()
	return EngineConfig{
		ScreenWidth:  DefaultScreenWidth,
		ScreenHeight: DefaultScreenHeight,
		FixedRate:    DefaultFixedRate,
		FrameRate:    DefaultFrameRate,
		Atlas: AtlasConfig{
			InitialSize: ac.InitialSize,
			MaxSize:     ac.MaxSize,
			Padding:     ac.Padding,
		},
	}
}

// Validate checks the configuration. It returns a *ConfigError, or the
// *atlas.ConfigError of an invalid atlas section.
func (c EngineConfig) Validate() error {
	switch {
	case c.ScreenWidth <= 0 || c.ScreenWidth > MaxCanvasSize:
		return &ConfigError{Field: "ScreenWidth", Reason: fmt.Sprintf("%d not in [1, %d]", c.ScreenWidth, MaxCanvasSize)}
	case c.ScreenHeight <= 0 || c.ScreenHeight > MaxCanvasSize:
		return &ConfigError{Field: "ScreenHeight", Reason: fmt.Sprintf("%d not in [1, %d]", c.ScreenHeight, MaxCanvasSize)}
	case c.FixedRate <= 0:
		return &ConfigError{Field: "FixedRate", Reason: "must be positive"}
	case c.FrameRate <= 0:
		return &ConfigError{Field: "FrameRate", Reason: "must be positive"}
	}
	return c.Atlas.atlas().Validate()
}

// ParseConfig reads a TOML configuration. Keys that are absent keep
// their default value; unknown keys are an error.
func ParseConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return EngineConfig{}, fmt.Errorf("easel: parse config: %s", strict.String())
		}
		return EngineConfig{}, fmt.Errorf("easel: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("easel: load config: %w", err)
	}
	return ParseConfig(data)
}
