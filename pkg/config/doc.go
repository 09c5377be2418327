// Package config loads the process configuration from environment variables
// and optional .env files.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`.
// Every subsystem owns its env-tagged struct (listener.Config,
// logging.Config, httpserver.Config); this package only assembles them into
// Config and layers the environment on top of their defaults.
//
// # Usage
//
//	cfg, err := config.Load() // reads ./.env if present
//	if err != nil {
//		return err // errors.Is(err, config.ErrParsingConfig)
//	}
//
//	reg, err := listener.New(cfg.Listener)
//
// # Variables
//
// Listener: BIND_ADDRESS, INTERNAL_ADDRESS, EXTERNAL_ADDRESS and, per
// endpoint prefix HTTP_, HTTPS_ and ADMIN_: ENABLED, BIND_ADDRESS, PORT,
// ACCEPT_QUEUE_SIZE, SCHEME.
//
// Logging: LOG_PATH, LOG_MAX_HISTORY, LOG_MAX_SIZE (e.g. "100MB"),
// LOG_CONSOLE_ENABLED, LOG_FORMAT, LOG_LEVELS_FILE, LOG_LEVELS_WATCH.
//
// Server: HTTP_READ_TIMEOUT, HTTP_READ_HEADER_TIMEOUT, HTTP_WRITE_TIMEOUT,
// HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT.
//
// Admin API: ADMIN_SERVE_ON, ADMIN_API_DISABLED.
//
// LoadFrom parses an explicit map instead of the process environment,
// which keeps tests independent of each other.
package config
