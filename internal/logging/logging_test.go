package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "production")

	logger.Info("proposal approved", "project_id", "p-1")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "proposal approved", line["msg"])
	assert.Equal(t, "p-1", line["project_id"])
}

func TestNewWithWriter_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", "development")

	logger.Debug("listing sessions", "count", 3)

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), `msg="listing sessions"`)
	assert.Contains(t, buf.String(), "count=3")
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelDebug, levelFromString("debug"))
	assert.Equal(t, slog.LevelInfo, levelFromString(""))
	assert.Equal(t, slog.LevelInfo, levelFromString("verbose"))

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "development")
	logger.Info("dropped")
	assert.Empty(t, buf.String())
}
