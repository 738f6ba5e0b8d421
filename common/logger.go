package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discardHandler drops every record. Enabled reports false so callers skip
// formatting entirely while logging is switched off.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// activeLogger is swapped atomically so SetLogger may race with logging from the
// render and tick goroutines.
var activeLogger atomic.Pointer[slog.Logger]

func init() {
	activeLogger.Store(slog.New(discardHandler{}))
}

// SetLogger installs the logger shared by every engine package.
// The engine is silent until SetLogger is called; passing nil silences it again.
//
// Levels used across the engine:
//   - slog.LevelDebug: per-frame diagnostics (rejected remote frames, skipped composites)
//   - slog.LevelInfo: lifecycle events (session start/stop, renderer setup)
//   - slog.LevelWarn: degraded paths (repeated composite failures, render panics)
//
// Parameters:
//   - l: the logger to install, or nil to discard all output
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	activeLogger.Store(l)
}

// Logger returns the logger installed by SetLogger.
//
// Returns:
//   - *slog.Logger: the active logger (never nil)
func Logger() *slog.Logger {
	return activeLogger.Load()
}
