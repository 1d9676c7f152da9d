// Package logger sets up the structured process logger.
//
// Logs always go to stderr: stdout carries either the extraction summary or
// the MCP protocol stream.
package logger

import (
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

// New builds a text logger writing to w at the given level. In stdio mode the
// logger stays silent unless debug logging is requested.
func New(w io.Writer, level string, stdio bool) *slog.Logger {
	lvl := ParseLevel(level)
	if stdio && lvl != slog.LevelDebug {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a config log level to slog, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs l as the global logger and slog default
func Init(l *slog.Logger) {
	current.Store(l)
	slog.SetDefault(l)
}

// L returns the global logger, falling back to slog's default
func L() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Info is a shorthand for L().Info
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Error is a shorthand for L().Error
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// Debug is a shorthand for L().Debug
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Warn is a shorthand for L().Warn
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}
