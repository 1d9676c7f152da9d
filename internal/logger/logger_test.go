package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"WARN":  slog.LevelWarn,
		"":      slog.LevelInfo,
		"trace": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_ExtractMode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", false)

	l.Debug("hidden")
	l.Info("extraction complete", "tickets", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "tickets=3")
}

func TestNew_StdioModeSilentUnlessDebug(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, "info", true).Error("not shown")
	assert.Empty(t, quiet.String())

	var verbose bytes.Buffer
	New(&verbose, "debug", true).Debug("shown")
	assert.Contains(t, verbose.String(), "shown")
}

func TestInitAndShorthands(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		current.Store(nil)
		slog.SetDefault(previous)
	})

	var buf bytes.Buffer
	Init(New(&buf, "debug", false))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e", "code", 1)

	out := buf.String()
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		assert.Contains(t, out, "level="+level)
	}
	assert.Contains(t, out, "code=1")
	assert.Same(t, L(), slog.Default())
}
