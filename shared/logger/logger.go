// Package logger holds the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Log is the global logger. Packages log through it with key/value pairs,
// e.g. logger.Log.Error("failed to load user", "user_id", id, "error", err).
var Log *slog.Logger

func init() {
	// usable before main runs and in tests; main reinitializes from config
	Initialize("info", false)
}

// Initialize replaces the global logger (and slog's default) with one writing
// to stdout at the given level, as JSON when useJSON is set and as
// key=value text otherwise. Source file and line are attached to every record.
func Initialize(level string, useJSON bool) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	if useJSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// parseLevel maps a config level name to slog.Level, case-insensitively.
// Unknown or empty names fall back to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
