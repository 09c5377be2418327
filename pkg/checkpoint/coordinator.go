package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/bootkit/pkg/logger"
)

const (
	phaseCheckpoint = "checkpoint"
	phaseRestore    = "restore"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used to report callback progress and failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers cycle and failure counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	if reg == nil {
		panic("WithMetrics: nil registerer")
	}
	return func(c *Coordinator) { c.metrics = newMetrics(reg) }
}

// Coordinator keeps the registration list and drives the two callback
// phases. Phases are serialized: a Checkpoint and a Restore never overlap.
type Coordinator struct {
	cycleMu sync.Mutex // held for the duration of a phase

	mu           sync.Mutex
	resources    []Resource
	checkpointed bool
	cycleID      string

	logger  *slog.Logger
	metrics *metrics
}

// New returns an empty Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{logger: logger.Noop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	global     *Coordinator
	globalOnce sync.Once
)

// Global returns the process-wide coordinator. It reports metrics to the
// default Prometheus registry. Use SetLogger to attach a logger once
// logging is up.
func Global() *Coordinator {
	globalOnce.Do(func() {
		global = New(WithMetrics(prometheus.DefaultRegisterer))
	})
	return global
}

// SetLogger replaces the coordinator's logger.
func (c *Coordinator) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// Register appends r to the registration list. Resources registered while a
// phase is running take part from the next phase on.
func (c *Coordinator) Register(r Resource) {
	if r == nil {
		panic("checkpoint: Register called with nil resource")
	}
	c.mu.Lock()
	c.resources = append(c.resources, r)
	n := len(c.resources)
	c.mu.Unlock()
	c.metrics.setResources(n)
}

// Len reports the number of registered resources.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resources)
}

// Checkpointed reports whether a checkpoint ran without a following restore.
func (c *Coordinator) Checkpointed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkpointed
}

// Checkpoint calls BeforeCheckpoint on every resource in reverse
// registration order. A failing callback is logged and the sequence goes
// on; all failures are returned joined with ErrCheckpoint. The coordinator
// is considered checkpointed afterwards even if some callbacks failed.
func (c *Coordinator) Checkpoint(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	c.mu.Lock()
	if c.checkpointed {
		c.mu.Unlock()
		return ErrAlreadyCheckpointed
	}
	c.checkpointed = true
	c.cycleID = uuid.NewString()
	cycleID := c.cycleID
	resources := make([]Resource, len(c.resources))
	copy(resources, c.resources)
	log := c.logger
	c.mu.Unlock()

	ctx = context.WithValue(ctx, cycleKey{}, cycleID)
	c.metrics.cycle(phaseCheckpoint)

	start := time.Now()
	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].BeforeCheckpoint(ctx); err != nil {
			c.metrics.failure(phaseCheckpoint)
			log.WarnContext(ctx, "checkpoint callback failed",
				logger.CycleID(cycleID),
				logger.Phase(phaseCheckpoint),
				slog.String("resource", fmt.Sprintf("%T", resources[i])),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	log.InfoContext(ctx, "checkpoint callbacks finished",
		logger.CycleID(cycleID),
		logger.Phase(phaseCheckpoint),
		slog.Int("resources", len(resources)),
		slog.Int("failed", len(errs)),
		slog.Duration("duration", time.Since(start)),
	)

	if len(errs) > 0 {
		return errors.Join(ErrCheckpoint, errors.Join(errs...))
	}
	return nil
}

// Restore calls AfterRestore on every resource in registration order.
// Failures are collected the same way as in Checkpoint and joined with
// ErrRestore. What to do about a failed restore is up to the caller.
func (c *Coordinator) Restore(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	c.mu.Lock()
	if !c.checkpointed {
		c.mu.Unlock()
		return ErrNotCheckpointed
	}
	c.checkpointed = false
	cycleID := c.cycleID
	resources := make([]Resource, len(c.resources))
	copy(resources, c.resources)
	log := c.logger
	c.mu.Unlock()

	ctx = context.WithValue(ctx, cycleKey{}, cycleID)
	c.metrics.cycle(phaseRestore)

	start := time.Now()
	var errs []error
	for _, r := range resources {
		if err := r.AfterRestore(ctx); err != nil {
			c.metrics.failure(phaseRestore)
			log.ErrorContext(ctx, "restore callback failed",
				logger.CycleID(cycleID),
				logger.Phase(phaseRestore),
				slog.String("resource", fmt.Sprintf("%T", r)),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	log.InfoContext(ctx, "restore callbacks finished",
		logger.CycleID(cycleID),
		logger.Phase(phaseRestore),
		slog.Int("resources", len(resources)),
		slog.Int("failed", len(errs)),
		slog.Duration("duration", time.Since(start)),
	)

	if len(errs) > 0 {
		return errors.Join(ErrRestore, errors.Join(errs...))
	}
	return nil
}
