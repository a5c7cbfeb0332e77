// Package logging configures the process-wide slog logger used by the
// internal packages for diagnostics. User-facing results go through
// internal/output instead.
package logging

import (
	"io"
	"log/slog"
)

// Setup installs a text slog handler writing to w as the default logger.
// Verbose enables debug-level records, which include the per-reference
// trace of the history walk.
func Setup(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
