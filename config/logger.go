package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a slog.Logger configured from GO_ENV and LOG_LEVEL.
// Production logs JSON to stdout; any other environment logs text.
// LOG_LEVEL accepts debug, info, warn, or error in any case and
// defaults to info.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
