package executor

import (
	"github.com/wbrown/atomicdb/atomic/annotations"
)

// Options configures query evaluation
type Options struct {
	// MaxDepth bounds how deeply rule calls may nest. A call that would go
	// deeper contributes no solutions. Zero means unlimited.
	MaxDepth int

	// Handler receives annotation events. Nil disables annotations.
	Handler annotations.Handler
}

// Option mutates Options
type Option func(*Options)

// WithMaxDepth bounds rule-invocation depth
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithHandler routes annotation events to h
func WithHandler(h annotations.Handler) Option {
	return func(o *Options) { o.Handler = h }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return o
}
