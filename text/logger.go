package text

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger sets the package logger. Nil restores silence.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// fontscanLogger routes fontscan's Printf diagnostics to the package
// logger at debug level.
type fontscanLogger struct{}

func (fontscanLogger) Printf(format string, args ...interface{}) {
	l := slogger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("text: fontscan: " + fmt.Sprintf(format, args...))
}
