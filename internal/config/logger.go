package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger from LogLevel and LogFormat.
// Validate has already rejected unknown values; anything odd falls back to
// info level text output.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
