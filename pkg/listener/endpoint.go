package listener

import (
	"net"
	"net/url"
	"sync"
)

// Name identifies one of the three endpoints.
type Name string

const (
	Plain  Name = "http"
	Secure Name = "https"
	Admin  Name = "admin"
)

// Names lists endpoints in construction order.
var Names = []Name{Plain, Secure, Admin}

// Binding is a consistent view of an endpoint: the listening handle and
// the URIs built from its actual port. Listener is nil while the endpoint
// is disabled or checkpointed; the URIs then keep their last known value.
type Binding struct {
	Listener    net.Listener
	URI         *url.URL
	ExternalURI *url.URL
}

// Port returns the port of the internal URI, or 0 if none was ever bound.
func (b Binding) Port() int {
	if b.URI == nil {
		return 0
	}
	return portOf(b.URI)
}

// Endpoint is the runtime state of one configured endpoint. The triple
// (listener, uri, external uri) is replaced as a whole under mu, so a
// reader never sees a live listener next to a URI from a previous bind.
type Endpoint struct {
	name    Name
	enabled bool

	mu sync.RWMutex
	b  Binding
}

func (e *Endpoint) Name() Name { return e.name }

// Enabled reports whether the endpoint is configured to bind.
func (e *Endpoint) Enabled() bool { return e.enabled }

// Snapshot returns the current binding. URIs are copies.
func (e *Endpoint) Snapshot() Binding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Binding{
		Listener:    e.b.Listener,
		URI:         cloneURL(e.b.URI),
		ExternalURI: cloneURL(e.b.ExternalURI),
	}
}

// Listener returns the bound handle, or nil.
func (e *Endpoint) Listener() net.Listener {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.b.Listener
}

// URI returns the internal URI, or nil if the endpoint never bound.
func (e *Endpoint) URI() *url.URL {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneURL(e.b.URI)
}

// ExternalURI returns the external URI, or nil if the endpoint never bound.
func (e *Endpoint) ExternalURI() *url.URL {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneURL(e.b.ExternalURI)
}

func (e *Endpoint) publish(b Binding) {
	e.mu.Lock()
	e.b = b
	e.mu.Unlock()
}

// release detaches the listener, keeping the URIs.
func (e *Endpoint) release() net.Listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	ln := e.b.Listener
	e.b.Listener = nil
	return ln
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
