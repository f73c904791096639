// Package logger provides structured logging setup.
package logger

import (
	"io"
	"log/slog"
	"strings"

	"github.com/tgienger/todo/internal/config"
)

// New creates a *slog.Logger from the given Logging config writing to w.
// Callers pass stderr; stdout is reserved for command output and MCP frames.
func New(cfg config.Logging, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a string log level to slog.Level. Unknown values
// fall back to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Verbosity maps a repeated -v count onto a level name: 0 keeps base,
// 1 is info and 2 or more is debug.
func Verbosity(count int, base string) string {
	switch {
	case count >= 2:
		return "debug"
	case count == 1:
		return "info"
	default:
		return base
	}
}
