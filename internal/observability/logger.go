package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLoggerTo builds a logger writing to w, for one-shot commands that keep
// stdout for their result. Services use the shared NewLogger, which writes
// to stdout. Levels follow slog names; unknown levels fall back to info and
// unknown formats to JSON.
func NewLoggerTo(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
