package logging

import (
	"io"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	console     io.Writer
	noConsole   bool
	format      Format
	coordinator *checkpoint.Coordinator
	register    bool
	redirect    bool
	extractors  []logger.ContextExtractor
}

func defaultOptions() *options {
	return &options{format: FormatText, register: true}
}

// WithConsole sets the writer behind the console sink. The writer is never
// closed by the manager. Defaults to the process's stderr at construction.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
		o.noConsole = w == nil
	}
}

// WithFormat sets the encoding of the console sink and of file sinks
// created afterwards.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithCoordinator registers the manager with c instead of checkpoint.Global.
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

// WithStdRedirect routes os.Stdout and os.Stderr into the "stdout" and
// "stderr" loggers. The redirection lasts for the life of the process.
func WithStdRedirect() Option {
	return func(o *options) { o.redirect = true }
}

// WithContextExtractors adds attributes pulled from the record's context,
// such as the checkpoint cycle id.
func WithContextExtractors(extractors ...logger.ContextExtractor) Option {
	return func(o *options) { o.extractors = append(o.extractors, extractors...) }
}
