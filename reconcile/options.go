package reconcile

import "github.com/rs/zerolog"

// Option customizes a driver run (ReconcileA/ReconcileB/RunBidirectional)
// the same way config.Option customizes a Config: a function mutating a
// settings struct before use, applied left to right.
type Option func(*settings)

type settings struct {
	log zerolog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger attaches a structured logger to the driver loop: iteration
// transitions, peel outcomes, and protocol errors are logged at debug,
// info/warn, and error level respectively (SPEC_FULL.md's ambient-stack
// logging requirement). The default, when no WithLogger is supplied, is
// a no-op logger, matching telemetry.Nop().
func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}
