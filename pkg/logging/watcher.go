package logging

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// levelsWatcher re-applies a levels file whenever it is written or
// replaced. It watches the parent directory so that editors that save by
// rename are picked up too.
type levelsWatcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// WatchLevelsFile applies path whenever it changes. A previous watch is
// replaced. The underlying inotify descriptor is released at checkpoint
// and recreated at restore.
func (m *Manager) WatchLevelsFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	if m.watcher != nil {
		_ = m.watcher.stop()
		m.watcher = nil
	}
	m.watchPath = abs

	m.mu.RLock()
	checkpointed := m.checkpointed
	m.mu.RUnlock()
	if checkpointed {
		return nil
	}

	w, err := m.startWatcher(abs)
	if err != nil {
		return err
	}
	m.watcher = w
	return nil
}

// StopWatching stops the levels-file watcher, if any.
func (m *Manager) StopWatching() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	m.watchPath = ""
	if m.watcher == nil {
		return nil
	}
	err := m.watcher.stop()
	m.watcher = nil
	return err
}

// WatchedFile returns the levels file being watched, or "".
func (m *Manager) WatchedFile() string {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	return m.watchPath
}

func (m *Manager) suspendWatcher() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	if m.watcher == nil {
		return nil
	}
	err := m.watcher.stop()
	m.watcher = nil
	if err != nil {
		return fmt.Errorf("stop levels watcher: %w", err)
	}
	return nil
}

func (m *Manager) resumeWatcher() error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()

	if m.watchPath == "" || m.watcher != nil {
		return nil
	}
	w, err := m.startWatcher(m.watchPath)
	if err != nil {
		return err
	}
	m.watcher = w
	return nil
}

func (m *Manager) startWatcher(path string) (*levelsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create levels watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &levelsWatcher{fsw: fsw, done: make(chan struct{})}
	go m.watch(w, path)
	return w, nil
}

func (m *Manager) watch(w *levelsWatcher, path string) {
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := m.SetLevelsFromFile(path); err != nil {
				m.log.Warn("failed to reload logger levels", logger.Path(path), logger.Error(err))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			m.log.Warn("levels watcher error", logger.Path(path), logger.Error(err))
		}
	}
}

func (w *levelsWatcher) stop() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
