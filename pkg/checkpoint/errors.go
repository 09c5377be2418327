package checkpoint

import "errors"

var (
	// ErrCheckpoint wraps failures reported by BeforeCheckpoint callbacks.
	ErrCheckpoint = errors.New("checkpoint callbacks failed")

	// ErrRestore wraps failures reported by AfterRestore callbacks.
	ErrRestore = errors.New("restore callbacks failed")

	// ErrAlreadyCheckpointed is returned by Checkpoint when the previous
	// checkpoint has not been followed by a restore.
	ErrAlreadyCheckpointed = errors.New("coordinator is already checkpointed")

	// ErrNotCheckpointed is returned by Restore when no checkpoint is pending.
	ErrNotCheckpointed = errors.New("coordinator is not checkpointed")
)
