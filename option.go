package sioengine

import hclog "github.com/hashicorp/go-hclog"

type Option func(*Base)

// WithDefaults adds engine specific defaults. They are layered on top of
// DefaultOptions and below the caller's overrides.
func WithDefaults(defaults map[string]interface{}) Option {
	return func(b *Base) { b.defaults = MergeOptions(b.defaults, defaults) }
}

func WithLogger(logger hclog.Logger) Option {
	return func(b *Base) { b.logger = logger }
}

// WithEngine registers the engine that embeds the Base, so errors and logs
// carry its name instead of the family name.
func WithEngine(e Namer) Option {
	return func(b *Base) { b.outer = e }
}
