// internal/cmdutil/log.go
package cmdutil

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier attached to every log line of a run.
func NewRunID() string { return uuid.NewString() }

// NewLogger returns a text logger on dst. quiet keeps warnings and errors
// only; verbose adds debug lines. quiet wins when both are set.
func NewLogger(dst io.Writer, quiet, verbose bool, runID string) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(dst, &slog.HandlerOptions{Level: level})
	l := slog.New(h)
	if runID != "" {
		l = l.With("run_id", runID)
	}
	return l
}
