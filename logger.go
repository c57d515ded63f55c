package easel

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/easel/internal/atlas"
	"github.com/gogpu/easel/text"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// backendPtr is the most recently created engine's backend, so SetLogger
// reaches it.
var backendPtr atomic.Pointer[Backend]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for easel and its sub-packages. By
// default easel produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by easel:
//   - [slog.LevelDebug]: per-frame diagnostics (skipped frames, atlas growth,
//     glyph evictions and overflows)
//   - [slog.LevelInfo]: lifecycle events (engine and backend ready)
//   - [slog.LevelWarn]: recoverable failures (texture reload errors)
//
// Example:
//
//	easel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	atlas.SetLogger(l)
	text.SetLogger(l)

	if b := backendPtr.Load(); b != nil {
		propagateLogger(*b, l)
	}
}

// Logger returns the current logger. Sub-packages such as gpu call this
// to share the same configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(b Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

func registerBackend(b Backend) {
	backendPtr.Store(&b)
	propagateLogger(b, Logger())
}
