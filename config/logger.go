package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger for the server settings.
// Production uses JSON handler; otherwise text handler.
// LogLevel may be: debug, info, warn, error (default: info).
func NewLogger(s ServerConfig) *slog.Logger {
	return newLogger(os.Stdout, s)
}

func newLogger(w io.Writer, s ServerConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}
	if s.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts)).With("env", s.Environment)
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
