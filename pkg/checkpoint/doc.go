// Package checkpoint models the external checkpoint/restore agent a process
// registers with before it can be frozen and later resumed from a snapshot.
//
// A process holding sockets, files or other OS descriptors cannot simply be
// snapshotted: those descriptors are revoked by the agent, and after resume
// the process may be running on a different host, with different ports or
// file descriptors. Every component owning such a resource implements
// Resource and registers itself with a Coordinator at construction time.
//
// # Architecture
//
// Coordinator is a plain registration list plus two synchronous phases:
//
//   - Checkpoint calls BeforeCheckpoint on every resource in reverse
//     registration order, so dependents (an HTTP server) release before the
//     resources they depend on (its listening socket).
//   - Restore calls AfterRestore in registration order, so dependencies are
//     re-acquired first.
//
// A failing callback never aborts the phase for unrelated resources. All
// failures are collected and returned joined with ErrCheckpoint or
// ErrRestore. Each checkpoint gets a cycle identifier that callbacks can
// read with CycleID for log correlation.
//
// Global returns the process-wide coordinator; components accept an
// explicit *Coordinator through their options and default to Global.
//
// # Usage
//
//	c := checkpoint.Global()
//	c.Register(registry)
//	c.Register(server)
//
//	// driven by the external agent:
//	if err := c.Checkpoint(ctx); err != nil {
//	    log.Warn("checkpoint finished with errors", logger.Error(err))
//	}
//	// ... snapshot taken, process resumed ...
//	if err := c.Restore(ctx); err != nil {
//	    return err
//	}
//
// # Metrics
//
// When created with WithMetrics the coordinator exports
// bootkit_checkpoint_cycles_total, bootkit_checkpoint_callback_failures_total
// and bootkit_checkpoint_resources.
package checkpoint
