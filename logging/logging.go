// Package logging provides the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the public logger instance accessible from all packages.
// It discards everything until Initialize is called.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Initialize configures Logger to write records at or above level to w, formatted as
// "text" or "json".
func Initialize(w io.Writer, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		Logger = slog.New(slog.NewTextHandler(w, opts))
	case "json":
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	default:
		return fmt.Errorf("invalid log format %q (expected \"text\" or \"json\")", format)
	}

	return nil
}

// ParseLevel converts a level name (debug, info, warn, error) into an slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var lvl slog.Level

	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return lvl, nil
}
