package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, ServerConfig{Environment: "production", LogLevel: "info"})
	logger.Debug("hidden")
	logger.Info("broadcast dispatched", "broadcast_id", "b-1")

	line := strings.TrimSpace(buf.String())
	require.NotContains(t, line, "hidden")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "broadcast dispatched", rec["msg"])
	assert.Equal(t, "b-1", rec["broadcast_id"])
	assert.Equal(t, "production", rec["env"])
}

func TestNewLogger_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, ServerConfig{Environment: "development", LogLevel: "debug"})
	logger.Debug("scan resolved", "outcome", "created")
	assert.Contains(t, buf.String(), "outcome=created")
}
