package easel

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := easel.NewEngine(backend,
//	    easel.WithScreenSize(1280, 720),
//	    easel.WithFonts("assets/Inter.ttf"),
//	)
type Option func(*EngineConfig)

// WithConfig replaces the whole configuration. Options after it still
// apply.
func WithConfig(cfg EngineConfig) Option {
	return func(c *EngineConfig) { *c = cfg }
}

// WithScreenSize sets the initial screen canvas size.
func WithScreenSize(width, height int) Option {
	return func(c *EngineConfig) {
		c.ScreenWidth, c.ScreenHeight = width, height
	}
}

// WithAtlasSize sets the initial and maximum glyph atlas page size.
func WithAtlasSize(initial, maxSize int) Option {
	return func(c *EngineConfig) {
		c.Atlas.InitialSize, c.Atlas.MaxSize = initial, maxSize
	}
}

// WithFixedRate sets the number of fixed ticks per second.
func WithFixedRate(hz int) Option {
	return func(c *EngineConfig) { c.FixedRate = hz }
}

// WithFrameRate sets the number of frames per second Run renders.
func WithFrameRate(hz int) Option {
	return func(c *EngineConfig) { c.FrameRate = hz }
}

// WithFonts registers extra font files.
func WithFonts(files ...string) Option {
	return func(c *EngineConfig) {
		c.Fonts.Files = append(c.Fonts.Files, files...)
	}
}

// WithSystemFonts makes the system fonts available, caching their index
// in cacheDir (the user cache directory when empty).
func WithSystemFonts(cacheDir string) Option {
	return func(c *EngineConfig) {
		c.Fonts.SystemFonts = true
		c.Fonts.CacheDir = cacheDir
	}
}

// WithTextureWatch enables reloading of path-loaded textures.
func WithTextureWatch() Option {
	return func(c *EngineConfig) { c.WatchTextures = true }
}
