package utils

import (
	"io"
	"log/slog"
)

// discardLogger is returned in place of a nil *slog.Logger so call sites
// can log unconditionally instead of nil-checking at every diagnostic
// site. It is deliberately not slog.Default(): a caller that never set a
// logger gets silence, not whatever handler the process happened to
// configure globally.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// LoggerOrDiscard returns logger, or a discarding logger if logger is nil.
func LoggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return discardLogger
}
