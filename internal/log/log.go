// Package log wraps log/slog with the small leveled-logger shape used
// across the pack (a package-level default logger plus a constructor for
// file-backed loggers), rather than reaching for a third-party logging
// library none of the example repos in this domain actually use.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin alias kept so call sites don't import log/slog
// directly; it exists to give this package one place to change the
// underlying implementation later.
type Logger = slog.Logger

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Default returns the process-wide logger, writing to stderr at Info level.
func Default() *Logger {
	return defaultLogger
}

// New creates a logger writing to w at the given level ("debug", "info",
// "warn", "error"; unrecognized values fall back to "info").
func New(w io.Writer, level string) *Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

// NewFile opens (creating if necessary) a log file and returns a logger
// writing to it, for the CLI host's -l/--log flag.
func NewFile(path string, level string) (*Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f.Close, nil
}

func parseLevel(level string) slog.Level {
	switch level {
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

// SetDefault replaces the package-level default logger, e.g. once the CLI
// host has parsed -l/--log.
func SetDefault(l *Logger) {
	defaultLogger = l
}
