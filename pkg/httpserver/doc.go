// Package httpserver provides a lightweight wrapper around net/http that adds
// graceful shutdown, configurable server timeouts, health-check handlers,
// structured logging via slog, and suspension across checkpoint/restore.
//
// The core type is Server. It does not bind sockets itself: Run serves on
// whatever listener a ListenerSource yields, typically a listener.Endpoint.
//
//   - Graceful Shutdown – Run blocks until the context is cancelled, Shutdown
//     is called or an interrupt/TERM signal is received, then shuts the
//     server down with a configurable deadline.
//
//   - Checkpoint/Restore – registered with WithCoordinator, the server stops
//     its current http.Server generation before a checkpoint and starts a
//     new one on the source's rebound listener after restore. Run keeps
//     blocking in between.
//
//   - Hooks – WithStartHook and WithStopHook let callers execute side-effects
//     around the server life-cycle.
//
//   - Health Checks – HealthCheckHandler returns an http.HandlerFunc that can
//     be mounted as both liveness and readiness probes. ListenerCheck reports
//     not ready while an endpoint is unbound.
//
// # Usage
//
//	reg, _ := listener.New(listener.DefaultConfig())
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//
//	srv := httpserver.New(
//		httpserver.WithCoordinator(checkpoint.Global()),
//		httpserver.WithShutdownTimeout(10*time.Second),
//	)
//	if err := srv.Run(ctx, reg.Endpoint(listener.Plain), r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// The server must be registered after the registry it serves from, so the
// coordinator suspends it before the sockets are closed and resumes it
// after they are rebound.
//
// # Errors
//
// Run wraps all serve errors with ErrStart, while Shutdown wraps underlying
// shutdown errors with ErrShutdown. A source without a bound listener yields
// ErrNoListener. Use errors.Is to distinguish them.
package httpserver
