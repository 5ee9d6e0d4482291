package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the default structured logger writing to stderr
func Setup(level, env string) *slog.Logger {
	return New(os.Stderr, level, env)
}

// New builds a logger writing to w. JSON is used in production, text otherwise.
func New(w io.Writer, level, env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLevel maps debug, info, warn and error to slog levels; anything else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
