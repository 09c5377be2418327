package logging

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
)

// RootName is the name of the root logger.
const RootName = ""

// node is one named logger. A node with an explicit level is held by the
// manager's configured set; others live only as long as a caller holds a
// logger built on them.
type node struct {
	name     string
	mgr      *Manager
	explicit *Level // guarded by mgr.mu

	cached atomic.Pointer[cachedLevel]
}

type cachedLevel struct {
	gen   uint64
	level Level
}

// effective returns the node's level, inherited from the nearest ancestor
// with an explicit level when it has none. Results are cached until the
// next level change.
func (n *node) effective() Level {
	if c := n.cached.Load(); c != nil && c.gen == n.mgr.gen.Load() {
		return c.level
	}

	n.mgr.mu.RLock()
	gen := n.mgr.gen.Load()
	level := n.mgr.effectiveLocked(n.name)
	n.mgr.mu.RUnlock()

	n.cached.Store(&cachedLevel{gen: gen, level: level})
	return level
}

// parent returns the name one segment up the dot hierarchy. The parent of a
// top-level name is the root.
func parent(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return RootName
}

// handler is the slog.Handler behind every logger returned by Manager. It
// filters by the node's effective level and fans records out to the
// manager's current sinks, so loggers keep working when sinks are swapped
// across a checkpoint.
type handler struct {
	node *node
	ops  []handlerOp
}

// handlerOp is a deferred WithAttrs or WithGroup call, replayed onto each
// sink's handler at dispatch.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

var _ slog.Handler = (*handler)(nil)

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.node.effective().Enables(level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	return h.node.mgr.dispatch(ctx, h.node.name, h.ops, r)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &handler{node: h.node, ops: append(slices.Clip(h.ops), handlerOp{attrs: slices.Clone(attrs)})}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{node: h.node, ops: append(slices.Clip(h.ops), handlerOp{group: name})}
}

func replay(h slog.Handler, ops []handlerOp) slog.Handler {
	for _, op := range ops {
		if op.group != "" {
			h = h.WithGroup(op.group)
		} else {
			h = h.WithAttrs(op.attrs)
		}
	}
	return h
}
