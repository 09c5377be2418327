//go:build unix

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// handleCheckpointSignals maps SIGUSR1 to a checkpoint and SIGUSR2 to a
// restore on the global coordinator until ctx is done.
func handleCheckpointSignals(ctx context.Context, log *slog.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			var err error
			switch sig {
			case syscall.SIGUSR1:
				err = checkpoint.Global().Checkpoint(ctx)
			case syscall.SIGUSR2:
				err = checkpoint.Global().Restore(ctx)
			}
			if err != nil {
				log.ErrorContext(ctx, "checkpoint signal failed", slog.String("signal", sig.String()), logger.Error(err))
			}
		}
	}
}
