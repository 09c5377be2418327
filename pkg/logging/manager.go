package logging

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// Manager owns the logger hierarchy and the sinks every logger writes to.
// It implements checkpoint.Resource: file sinks are closed before a
// checkpoint and reopened after restore, while loggers handed out earlier
// keep working throughout.
type Manager struct {
	mu           sync.RWMutex
	configured   map[string]*node // loggers with an explicit level
	console      *consoleSink
	files        []*fileSink
	pending      []FileSinkSpec
	checkpointed bool
	format       Format
	gen          atomic.Uint64 // bumped on every level change

	cacheMu sync.Mutex
	cache   map[string]weak.Pointer[node]

	watchMu   sync.Mutex
	watcher   *levelsWatcher
	watchPath string

	extractors []logger.ContextExtractor
	log        *slog.Logger
}

var _ checkpoint.Resource = (*Manager)(nil)

var (
	instance     *Manager
	instanceOnce sync.Once
)

// Initialize sets up process-wide logging once and returns the same Manager
// on every call: root level INFO, a console sink on the current stderr, and
// os.Stdout/os.Stderr redirected into the "stdout" and "stderr" loggers.
// Options are only honoured on the first call.
func Initialize(opts ...Option) *Manager {
	instanceOnce.Do(func() {
		instance = New(append([]Option{WithStdRedirect()}, opts...)...)
	})
	return instance
}

// New builds an independent Manager with root level INFO and a console
// sink. Stdio is only redirected with WithStdRedirect.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Manager{
		configured: make(map[string]*node),
		cache:      make(map[string]weak.Pointer[node]),
		format:     o.format,
		extractors: o.extractors,
	}
	m.setLevel(RootName, LevelInfo)
	m.log = m.Logger("bootkit.logging")

	if !o.noConsole {
		w := o.console
		if w == nil {
			w = os.Stderr
		}
		m.console = newConsoleSink(w, o.format)
		m.log.Info("logging to console")
	}

	if o.redirect {
		if err := m.redirectStdio(); err != nil {
			m.log.Error("failed to redirect stdio", logger.Error(err))
		}
	}

	if o.register {
		c := o.coordinator
		if c == nil {
			c = checkpoint.Global()
		}
		c.Register(m)
	}
	return m
}

// Logger returns the logger with the given name. Names form a hierarchy
// split on dots; "" is the root. A record is emitted only when its level is
// within the logger's effective level.
func (m *Manager) Logger(name string) *slog.Logger {
	return slog.New(logger.NewLogHandlerDecorator(&handler{node: m.node(name)}, m.extractors...))
}

// node returns the node for name, preferring the configured set, then a
// still-referenced cached node, then a new one.
func (m *Manager) node(name string) *node {
	m.mu.RLock()
	n, ok := m.configured[name]
	m.mu.RUnlock()
	if ok {
		return n
	}

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if n := m.cache[name].Value(); n != nil {
		return n
	}
	n = &node{name: name, mgr: m}
	m.cache[name] = weak.Make(n)
	runtime.AddCleanup(n, m.evict, name)
	return n
}

// evict drops a cache entry whose node has been collected.
func (m *Manager) evict(name string) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if m.cache[name].Value() == nil {
		delete(m.cache, name)
	}
}

// SetLevel sets an explicit level on name. The logger is kept alive by the
// manager until ClearLevel.
func (m *Manager) SetLevel(name string, level Level) {
	m.setLevel(name, level)
}

func (m *Manager) setLevel(name string, level Level) {
	n := m.node(name)

	m.mu.Lock()
	m.setLevelLocked(n, level)
	m.mu.Unlock()
}

func (m *Manager) setLevelLocked(n *node, level Level) {
	if existing, ok := m.configured[n.name]; ok {
		n = existing
	}
	n.explicit = &level
	m.configured[n.name] = n
	m.gen.Add(1)
}

// ClearLevel removes the explicit level of name so it inherits again.
// Unknown names are ignored.
func (m *Manager) ClearLevel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.configured[name]
	if !ok {
		return
	}
	n.explicit = nil
	delete(m.configured, name)
	m.gen.Add(1)
}

// Level returns the effective level of name: its explicit level, or that of
// its nearest ancestor with one, or OFF.
func (m *Manager) Level(name string) Level {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.effectiveLocked(name)
}

func (m *Manager) effectiveLocked(name string) Level {
	for {
		if n, ok := m.configured[name]; ok && n.explicit != nil {
			return *n.explicit
		}
		if name == RootName {
			return LevelOff
		}
		name = parent(name)
	}
}

// RootLevel returns the effective level of the root logger.
func (m *Manager) RootLevel() Level {
	return m.Level(RootName)
}

// SetRootLevel sets the root logger's level.
func (m *Manager) SetRootLevel(level Level) {
	m.SetLevel(RootName, level)
}

// Levels returns the explicitly set levels keyed by logger name. Inherited
// levels are not included.
func (m *Manager) Levels() map[string]Level {
	m.mu.RLock()
	defer m.mu.RUnlock()

	levels := make(map[string]Level, len(m.configured))
	for name, n := range m.configured {
		levels[name] = *n.explicit
	}
	return levels
}

// LevelEntry is one explicit level.
type LevelEntry struct {
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// LevelEntries returns the explicit levels ordered by logger name.
func (m *Manager) LevelEntries() []LevelEntry {
	levels := m.Levels()
	entries := make([]LevelEntry, 0, len(levels))
	for name, level := range levels {
		entries = append(entries, LevelEntry{Name: name, Level: level})
	}
	slices.SortFunc(entries, func(a, b LevelEntry) int { return cmp.Compare(a.Name, b.Name) })
	return entries
}

// LogToFile adds a rolling file sink. While the manager is checkpointed the
// sink is only recorded and opened on restore.
func (m *Manager) LogToFile(path string, maxHistory int, maxSize int64) error {
	spec := FileSinkSpec{Path: path, MaxHistory: maxHistory, MaxSize: maxSize}
	m.log.Info("logging to file", logger.Path(path))

	m.mu.Lock()
	if m.checkpointed {
		m.pending = append(m.pending, spec)
		m.mu.Unlock()
		return nil
	}
	s, err := openFileSink(spec, m.format)
	if err == nil {
		m.files = append(m.files, s)
	}
	m.mu.Unlock()

	if err != nil {
		return errors.Join(ErrOpenSink, err)
	}
	return nil
}

// FileSinks returns the specs of the attached file sinks in the order they
// were added.
func (m *Manager) FileSinks() []FileSinkSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()

	specs := make([]FileSinkSpec, len(m.files))
	for i, s := range m.files {
		specs[i] = s.spec
	}
	return specs
}

// PendingFileSinks returns the specs waiting to be reopened on restore.
func (m *Manager) PendingFileSinks() []FileSinkSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.pending)
}

// DisableConsole detaches the console sink. The underlying stream is left
// open. Calling it again is a no-op.
func (m *Manager) DisableConsole() {
	m.mu.RLock()
	enabled := m.console != nil
	m.mu.RUnlock()
	if !enabled {
		return
	}

	m.log.Info("disabling console output")

	m.mu.Lock()
	m.console = nil
	m.mu.Unlock()
}

// ConsoleEnabled reports whether the console sink is attached.
func (m *Manager) ConsoleEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.console != nil
}

// Console returns the console writer, or nil when the console is disabled.
func (m *Manager) Console() io.Writer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.console == nil {
		return nil
	}
	return m.console.w
}

// SetFormat changes the encoding of the console sink and of file sinks
// opened from now on.
func (m *Manager) SetFormat(format Format) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.format = format
	if m.console != nil {
		m.console = newConsoleSink(m.console.w, format)
	}
}

// Configure applies cfg: a log path adds a file sink, a disabled console is
// detached, and a levels file is applied and optionally watched.
func (m *Manager) Configure(cfg Config) error {
	if cfg.Format != "" {
		m.SetFormat(cfg.Format)
	}
	if cfg.LogPath != "" {
		if err := m.LogToFile(cfg.LogPath, cfg.MaxHistory, int64(cfg.MaxSize)); err != nil {
			return err
		}
	}
	if !cfg.ConsoleEnabled {
		m.DisableConsole()
	}
	if cfg.LevelsFile != "" {
		if err := m.SetLevelsFromFile(cfg.LevelsFile); err != nil {
			return err
		}
		if cfg.WatchLevels {
			if err := m.WatchLevelsFile(cfg.LevelsFile); err != nil {
				return err
			}
		}
	}
	return nil
}

// dispatch writes r to every attached sink. The read lock keeps the sink
// list stable for the whole record, so a checkpoint waits for in-flight
// writes before closing files.
func (m *Manager) dispatch(ctx context.Context, name string, ops []handlerOp, r slog.Record) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	emit := func(base slog.Handler) {
		rec := r.Clone()
		h := base
		if len(ops) == 0 {
			rec.AddAttrs(logger.LoggerName(name))
		} else {
			h = replay(base.WithAttrs([]slog.Attr{logger.LoggerName(name)}), ops)
		}
		if err := h.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	if m.console != nil {
		emit(m.console.handler)
	}
	for _, s := range m.files {
		emit(s.handler)
	}
	return errors.Join(errs...)
}
