package listener

import (
	"log/slog"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
)

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	coordinator *checkpoint.Coordinator
	register    bool
}

func defaultOptions() *options {
	return &options{register: true}
}

// WithLogger supplies a logger. If nil, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCoordinator registers the registry with c instead of checkpoint.Global.
func WithCoordinator(c *checkpoint.Coordinator) Option {
	if c == nil {
		panic("WithCoordinator: nil coordinator")
	}
	return func(o *options) {
		o.coordinator = c
		o.register = true
	}
}

// WithoutCoordinator skips registration. The caller is then responsible
// for invoking BeforeCheckpoint and AfterRestore.
func WithoutCoordinator() Option {
	return func(o *options) {
		o.coordinator = nil
		o.register = false
	}
}
