package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the handler encoding for New.
type Format string

// Supported log formats.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New builds a slog.Logger for the application. The serve command uses JSON
// for machine-readable output; CLI commands use text. A nil writer defaults
// to stderr.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Default returns a text logger at info level on stderr.
func Default() *slog.Logger {
	return New(nil, FormatText, slog.LevelInfo)
}
