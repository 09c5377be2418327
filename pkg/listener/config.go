package listener

import (
	"fmt"
	"strings"
)

// Scheme is the URI scheme advertised for an endpoint.
type Scheme string

const (
	// SchemeHTTP is the plain scheme.
	SchemeHTTP Scheme = "http"
	// SchemeHTTPS is the secure scheme.
	SchemeHTTPS Scheme = "https"
)

// UnmarshalText accepts "http"/"plain" and "https"/"secure" in any case.
func (s *Scheme) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "http", "plain":
		*s = SchemeHTTP
	case "https", "secure":
		*s = SchemeHTTPS
	case "":
		*s = ""
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScheme, text)
	}
	return nil
}

// Spec is the immutable configuration of one endpoint.
type Spec struct {
	Enabled bool `env:"ENABLED"`
	// BindAddress overrides Config.BindAddress for this endpoint.
	BindAddress string `env:"BIND_ADDRESS"`
	// Port is the requested port; 0 asks the OS for an ephemeral port.
	Port int `env:"PORT"`
	// AcceptQueueSize is the listen backlog. Values <= 0 use the OS maximum.
	AcceptQueueSize int `env:"ACCEPT_QUEUE_SIZE"`
	// Scheme is ignored for the admin endpoint, whose scheme follows
	// whether the secure endpoint is enabled.
	Scheme Scheme `env:"SCHEME"`
}

// Config enumerates the three endpoints and the node addresses used to
// build their URIs.
type Config struct {
	// BindAddress is the IP all endpoints bind to unless overridden.
	BindAddress string `env:"BIND_ADDRESS"`
	// InternalAddress is the host placed in internal URIs.
	InternalAddress string `env:"INTERNAL_ADDRESS"`
	// ExternalAddress is the host placed in external URIs. Defaults to
	// InternalAddress.
	ExternalAddress string `env:"EXTERNAL_ADDRESS"`

	HTTP  Spec `envPrefix:"HTTP_"`
	HTTPS Spec `envPrefix:"HTTPS_"`
	Admin Spec `envPrefix:"ADMIN_"`
}

// DefaultConfig returns a plain endpoint on 8080 and disabled secure and
// admin endpoints, all with an accept queue of 8000.
func DefaultConfig() Config {
	return Config{
		BindAddress:     "0.0.0.0",
		InternalAddress: "127.0.0.1",
		HTTP:            Spec{Enabled: true, Port: 8080, AcceptQueueSize: 8000, Scheme: SchemeHTTP},
		HTTPS:           Spec{Port: 8443, AcceptQueueSize: 8000, Scheme: SchemeHTTPS},
		Admin:           Spec{AcceptQueueSize: 8000},
	}
}

func (c Config) spec(name Name) Spec {
	switch name {
	case Secure:
		return c.HTTPS
	case Admin:
		return c.Admin
	default:
		return c.HTTP
	}
}

func (c Config) bindAddress(s Spec) string {
	if s.BindAddress != "" {
		return s.BindAddress
	}
	return c.BindAddress
}

func (c Config) externalAddress() string {
	if c.ExternalAddress != "" {
		return c.ExternalAddress
	}
	return c.InternalAddress
}

// scheme resolves the advertised scheme. The admin endpoint is secure iff
// the secure endpoint is enabled.
func (c Config) scheme(name Name) Scheme {
	switch name {
	case Admin:
		if c.HTTPS.Enabled {
			return SchemeHTTPS
		}
		return SchemeHTTP
	case Secure:
		if c.HTTPS.Scheme != "" {
			return c.HTTPS.Scheme
		}
		return SchemeHTTPS
	default:
		if c.HTTP.Scheme != "" {
			return c.HTTP.Scheme
		}
		return SchemeHTTP
	}
}
