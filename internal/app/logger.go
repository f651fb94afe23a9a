package app

import (
	"io"
	"log/slog"
)

// newLogger builds the logger of one App from its config. Unknown levels fall
// back to info. It never touches the global slog logger.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(outW, opts)
	} else {
		handler = slog.NewTextHandler(outW, opts)
	}

	logger := slog.New(handler)
	if cfg.GridPath != "" {
		logger = logger.With("grid", cfg.GridPath)
	}
	return logger
}
