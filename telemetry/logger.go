// Package telemetry provides the structured logger used across the
// reconcile module: one zerolog.Logger, configured once, passed down
// through Options rather than reached for via a package-level global.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger writing to w (os.Stderr if nil) at
// the given level. Components that want a logger accept one explicitly
// (e.g. reconcile.Option WithLogger) rather than importing this package
// directly, keeping telemetry an edge concern.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything, the default when no
// logger is configured.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
