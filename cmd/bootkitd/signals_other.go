//go:build !unix

package main

import (
	"context"
	"log/slog"
)

// Checkpoint signals need SIGUSR1 and SIGUSR2.
func handleCheckpointSignals(context.Context, *slog.Logger) {}
