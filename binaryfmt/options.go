package binaryfmt

import "log/slog"

// DecodeOptions carries optional, non-fatal diagnostics for decode paths
// that want to report on anomalous-but-valid conditions (an empty slot, a
// pointer-table growth commit, an unrecognized name) without failing the
// decode itself. A nil Logger means silent: diagnostics are discarded
// rather than routed to slog.Default().
type DecodeOptions struct {
	Logger *slog.Logger
}
