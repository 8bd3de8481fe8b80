package mpris

import "github.com/rs/zerolog"

// Option configures an Adapter.
type Option func(*options)

type options struct {
	name     string
	identity string
	log      zerolog.Logger
	raise    func()
}

func defaultOptions() options {
	return options{name: "marquee", identity: "Marquee", log: zerolog.Nop()}
}

// WithLogger sets the logger for D-Bus failures.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithName sets the bus name suffix (org.mpris.MediaPlayer2.<name>).
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithRaise makes the player raisable; fn is called on Raise.
func WithRaise(fn func()) Option {
	return func(o *options) { o.raise = fn }
}
