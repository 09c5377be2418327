package checkpoint

import "context"

// Resource is anything holding OS-level state that must be released before
// a snapshot and re-acquired after the process resumes.
//
// Both callbacks run synchronously on the coordinator's goroutine, one
// resource at a time. A callback must finish all of its work before
// returning, since nothing observes the resource between the callback and
// the next phase.
type Resource interface {
	BeforeCheckpoint(ctx context.Context) error
	AfterRestore(ctx context.Context) error
}

// ResourceFuncs adapts a pair of functions to Resource. Nil functions are
// no-ops.
type ResourceFuncs struct {
	Before func(ctx context.Context) error
	After  func(ctx context.Context) error
}

func (f ResourceFuncs) BeforeCheckpoint(ctx context.Context) error {
	if f.Before == nil {
		return nil
	}
	return f.Before(ctx)
}

func (f ResourceFuncs) AfterRestore(ctx context.Context) error {
	if f.After == nil {
		return nil
	}
	return f.After(ctx)
}

type cycleKey struct{}

// CycleID returns the identifier of the checkpoint cycle the callback is
// running in, or "" when ctx does not come from a Coordinator.
func CycleID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(cycleKey{}).(string)
	return id
}

// CycleIDKey is the context key under which the cycle id is stored. It is
// exposed for logger.ContextValue.
func CycleIDKey() any {
	return cycleKey{}
}
