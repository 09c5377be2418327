package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/bootkit/pkg/httpserver"
	"github.com/dmitrymomot/bootkit/pkg/listener"
	"github.com/dmitrymomot/bootkit/pkg/logging"
)

// AdminConfig selects where the administrative API is served.
type AdminConfig struct {
	// ServeOn names the endpoint serving the admin API. When that endpoint
	// is disabled the plain endpoint is used instead.
	ServeOn listener.Name `env:"ADMIN_SERVE_ON" envDefault:"admin"`
	// Disabled turns the admin API off entirely.
	Disabled bool `env:"ADMIN_API_DISABLED"`
}

// Config is the complete process configuration.
type Config struct {
	Listener listener.Config
	Logging  logging.Config
	Server   httpserver.Config
	Admin    AdminConfig
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Listener: listener.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
	}
}

// Load reads the given .env files into the process environment (the
// default .env in the working directory when none are given) and parses
// the environment on top of Default. Variables already set in the process
// take precedence over the files.
//
// Example:
//
//	cfg, err := config.Load(".env", ".env.local")
//	if err != nil {
//		// Handle error
//	}
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrLoadingEnvFile, err)
	}

	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// LoadFrom parses environ instead of the process environment. Unset
// variables keep their Default values.
func LoadFrom(environ map[string]string) (Config, error) {
	cfg := Default()
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// ReadEnvFiles returns the variables defined in files without touching the
// process environment. Later files override earlier ones.
func ReadEnvFiles(files ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, errors.Join(ErrLoadingEnvFile, err)
		}
		for k, v := range vars {
			out[k] = v
		}
	}
	return out, nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}
