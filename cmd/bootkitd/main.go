// bootkitd runs the checkpoint-safe bootstrap layer as a standalone
// process: it binds the configured listeners, sets up logging from the
// environment and serves the admin API. SIGUSR1 takes the process through
// a checkpoint, SIGUSR2 restores it, and SIGINT or SIGTERM stop it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/bootkit/pkg/adminapi"
	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/config"
	"github.com/dmitrymomot/bootkit/pkg/httpserver"
	"github.com/dmitrymomot/bootkit/pkg/listener"
	"github.com/dmitrymomot/bootkit/pkg/logger"
	"github.com/dmitrymomot/bootkit/pkg/logging"
)

func main() {
	// Logging redirects os.Stderr into a pipe; errors go to the real one.
	stderr := os.Stderr
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFiles    []string
		levelsFile  string
		logPath     string
		watchLevels bool
	)

	flagSet := pflag.NewFlagSet("bootkitd", pflag.ContinueOnError)
	flagSet.StringSliceVar(&envFiles, "env-file", nil, "load variables from these .env files (default: .env if present)")
	flagSet.StringVar(&levelsFile, "levels-file", "", "apply logger levels from a .properties or .yaml file (overrides LOG_LEVELS_FILE)")
	flagSet.StringVar(&logPath, "log-path", "", "also write logs to this rolling file (overrides LOG_PATH)")
	flagSet.BoolVar(&watchLevels, "watch-levels", false, "re-apply the levels file whenever it changes")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if levelsFile != "" {
		cfg.Logging.LevelsFile = levelsFile
	}
	if logPath != "" {
		cfg.Logging.LogPath = logPath
	}
	if watchLevels {
		cfg.Logging.WatchLevels = true
	}

	// Registration order on the global coordinator matters: logging first,
	// then the listeners, then the server, so a checkpoint stops serving
	// before sockets close and closes log files last.
	mgr := logging.Initialize(logging.WithContextExtractors(
		logger.ContextValue("cycle_id", checkpoint.CycleIDKey()),
		adminapi.RequestIDExtractor(),
	))
	defer mgr.Close()

	if err := mgr.Configure(cfg.Logging); err != nil {
		return err
	}
	log := mgr.Logger("bootkitd")
	checkpoint.Global().SetLogger(mgr.Logger("bootkit.checkpoint"))

	reg, err := listener.New(cfg.Listener, listener.WithLogger(mgr.Logger("bootkit.listener")))
	if err != nil {
		return err
	}
	defer reg.Close()

	for _, name := range listener.Names {
		ep := reg.Endpoint(name)
		if !ep.Enabled() {
			continue
		}
		log.Info("endpoint ready",
			logger.Endpoint(string(name)),
			logger.URI(ep.URI()),
			slog.String("external_uri", ep.ExternalURI().String()),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go handleCheckpointSignals(ctx, log)

	if cfg.Admin.Disabled {
		log.Info("admin api disabled")
		<-ctx.Done()
		return nil
	}

	ep := reg.Endpoint(cfg.Admin.ServeOn)
	if ep == nil || !ep.Enabled() {
		log.Warn("admin endpoint disabled, serving admin api on the plain endpoint",
			logger.Endpoint(string(cfg.Admin.ServeOn)))
		ep = reg.Endpoint(listener.Plain)
	}
	if !ep.Enabled() {
		return errors.New("no enabled endpoint to serve the admin api on")
	}

	httpLog := mgr.Logger("bootkit.http")
	srv := httpserver.NewFromConfig(cfg.Server,
		httpserver.WithCoordinator(checkpoint.Global()),
		httpserver.WithLogger(httpLog),
	)
	router := adminapi.Router(mgr,
		adminapi.WithLogger(mgr.Logger("bootkit.admin")),
		adminapi.WithEndpoints(reg),
		adminapi.WithReadinessChecks(httpserver.ListenerCheck(string(ep.Name()), ep)),
	)
	return srv.Run(ctx, ep, router)
}
