package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"timesheet/backend/internal/config"
)

// New builds the process logger from cfg, writes to stderr and installs it
// as the slog default. Format "text" adds source locations; anything else
// is JSON.
func New(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(cfg, os.Stderr))
	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
// Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
