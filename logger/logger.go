// SPDX-License-Identifier: MIT

// Package logger holds the slog.Logger shared by every rigmap package.
//
// By default nothing is logged: the stored logger wraps a handler whose
// Enabled method reports false, so callers skip formatting entirely and the
// per-frame evaluation path pays nothing for its diagnostics.
//
// Log levels used by rigmap:
//   - slog.LevelDebug: load summaries, index cache rebuilds, cache hits/misses
//   - slog.LevelWarn:  dropped outputs, uninitialized features, cycle guard trips
//
// Example:
//
//	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger; accessed atomically so SetLogger may
// race with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs l for all rigmap packages.
// Passing nil restores the default silent logger.
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. It never returns nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps a textual level ("debug", "info", "warn", "error") onto a
// slog.Level. Unknown strings yield slog.LevelInfo and false.
func ParseLevel(s string) (slog.Level, bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}

	return lvl, true
}
