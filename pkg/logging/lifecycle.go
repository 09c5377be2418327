package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// BeforeCheckpoint closes every file sink and remembers its spec for
// AfterRestore. The levels-file watcher is stopped as well. The console
// sink stays attached. Close failures are returned joined once every sink
// has been processed.
func (m *Manager) BeforeCheckpoint(ctx context.Context) error {
	m.mu.Lock()
	m.checkpointed = true
	files := m.files
	m.files = nil
	var errs []error
	for _, s := range files {
		m.pending = append(m.pending, s.spec)
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.spec.Path, err))
		}
	}
	m.mu.Unlock()

	if err := m.suspendWatcher(); err != nil {
		errs = append(errs, err)
	}

	attrs := []any{logger.CycleID(checkpoint.CycleID(ctx)), slog.Int("closed", len(files))}
	if err := errors.Join(errs...); err != nil {
		m.log.WarnContext(ctx, "file sinks closed with errors", append(attrs, logger.Error(err))...)
		return err
	}
	if len(files) > 0 {
		m.log.DebugContext(ctx, "file sinks closed", attrs...)
	}
	return nil
}

// AfterRestore reopens the sinks closed by BeforeCheckpoint, each on a
// fresh handle, and restarts the levels-file watcher. Reopened sinks are
// tracked again, so the next checkpoint closes them too. A sink that fails
// to reopen is reported and dropped.
func (m *Manager) AfterRestore(ctx context.Context) error {
	m.mu.Lock()
	m.checkpointed = false
	pending := m.pending
	m.pending = nil
	var errs []error
	reopened := 0
	for _, spec := range pending {
		s, err := openFileSink(spec, m.format)
		if err != nil {
			errs = append(errs, errors.Join(ErrOpenSink, fmt.Errorf("reopen %s: %w", spec.Path, err)))
			continue
		}
		m.files = append(m.files, s)
		reopened++
	}
	m.mu.Unlock()

	if err := m.resumeWatcher(); err != nil {
		errs = append(errs, err)
	}

	attrs := []any{logger.CycleID(checkpoint.CycleID(ctx)), slog.Int("reopened", reopened)}
	if err := errors.Join(errs...); err != nil {
		m.log.ErrorContext(ctx, "file sinks reopened with errors", append(attrs, logger.Error(err))...)
		return err
	}
	if len(pending) > 0 {
		m.log.DebugContext(ctx, "file sinks reopened", attrs...)
	}
	return nil
}

// Close detaches and closes every file sink and stops the levels watcher.
// Loggers keep writing to the console, if it is enabled.
func (m *Manager) Close() error {
	m.mu.Lock()
	files := m.files
	m.files = nil
	m.pending = nil
	m.mu.Unlock()

	var errs []error
	for _, s := range files {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.StopWatching(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
