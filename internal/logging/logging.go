package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a slog.Logger writing to stdout. Production gets JSON lines,
// everything else the console text format.
func New(level, environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, environment)
}

func NewWithWriter(w io.Writer, level, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
