// Package logging builds the structured logger shared by all components.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout used on console lines.
const TimeFormat = "15:04:05"

// New returns a slog.Logger writing human-readable lines to w at the given
// minimum level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Prefix:          "transcribe-latest",
		Level:           log.Level(level),
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
