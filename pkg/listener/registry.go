package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// Registry owns the process's listening sockets and the URIs derived from
// them. It releases every socket before a checkpoint and rebinds from the
// original configuration after a restore.
type Registry struct {
	cfg       Config
	endpoints map[Name]*Endpoint
	logger    *slog.Logger

	mu     sync.Mutex // serializes bind and close cycles
	closed bool
}

var _ checkpoint.Resource = (*Registry)(nil)

// New binds every enabled endpoint and registers the registry with the
// checkpoint coordinator. A bind failure is returned wrapped with ErrBind
// after closing whatever was already bound.
func New(cfg Config, opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Noop()
	}

	r := &Registry{
		cfg:       cfg,
		endpoints: make(map[Name]*Endpoint, len(Names)),
		logger:    o.logger,
	}
	for _, name := range Names {
		r.endpoints[name] = &Endpoint{name: name, enabled: cfg.spec(name).Enabled}
	}

	if err := r.bindAll(context.Background()); err != nil {
		return nil, err
	}

	if o.register {
		c := o.coordinator
		if c == nil {
			c = checkpoint.Global()
		}
		c.Register(r)
	}
	return r, nil
}

// Endpoint returns the endpoint with the given name. Unknown names return
// nil.
func (r *Registry) Endpoint(name Name) *Endpoint {
	return r.endpoints[name]
}

// Config returns the configuration the registry was built with.
func (r *Registry) Config() Config { return r.cfg }

// The accessors below are shorthands for Endpoint(name).URI(),
// ExternalURI() and Listener(). URIs are nil for a disabled endpoint;
// listeners are nil for a disabled endpoint and while checkpointed.

// HTTPURI returns the internal URI of the plain endpoint.
func (r *Registry) HTTPURI() *url.URL { return r.endpoints[Plain].URI() }

// HTTPExternalURI returns the external URI of the plain endpoint.
func (r *Registry) HTTPExternalURI() *url.URL { return r.endpoints[Plain].ExternalURI() }

// HTTPListener returns the plain endpoint's listener.
func (r *Registry) HTTPListener() net.Listener { return r.endpoints[Plain].Listener() }

// HTTPSURI returns the internal URI of the secure endpoint.
func (r *Registry) HTTPSURI() *url.URL { return r.endpoints[Secure].URI() }

// HTTPSExternalURI returns the external URI of the secure endpoint.
func (r *Registry) HTTPSExternalURI() *url.URL { return r.endpoints[Secure].ExternalURI() }

// HTTPSListener returns the secure endpoint's listener.
func (r *Registry) HTTPSListener() net.Listener { return r.endpoints[Secure].Listener() }

// AdminURI returns the internal URI of the admin endpoint.
func (r *Registry) AdminURI() *url.URL { return r.endpoints[Admin].URI() }

// AdminExternalURI returns the external URI of the admin endpoint.
func (r *Registry) AdminExternalURI() *url.URL { return r.endpoints[Admin].ExternalURI() }

// AdminListener returns the admin endpoint's listener.
func (r *Registry) AdminListener() net.Listener { return r.endpoints[Admin].Listener() }

// BeforeCheckpoint closes every open listening socket. URIs keep their
// values so readers see the pre-freeze addresses, but no I/O is possible
// until AfterRestore. Close failures do not stop the remaining closes and
// are returned joined.
func (r *Registry) BeforeCheckpoint(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeAll(ctx)
}

// AfterRestore rebinds every enabled endpoint from the original
// configuration. Fixed ports come back unchanged; an endpoint configured
// with port 0 gets whatever ephemeral port the OS hands out now.
func (r *Registry) AfterRestore(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	// Handles left over from a checkpoint that never ran are dropped first.
	_ = r.closeAll(ctx)
	return r.bindAll(ctx)
}

// Close releases all sockets for good. Later restores are no-ops.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.closeAll(context.Background())
}

// bindAll binds the enabled endpoints concurrently. Nothing is published
// unless every bind succeeded; on failure the fresh sockets are closed.
func (r *Registry) bindAll(ctx context.Context) error {
	bindings := make(map[Name]Binding, len(Names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range Names {
		spec := r.cfg.spec(name)
		if !spec.Enabled {
			continue
		}
		g.Go(func() error {
			b, err := r.bind(gctx, name, spec)
			if err != nil {
				return err
			}
			mu.Lock()
			bindings[name] = b
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, b := range bindings {
			_ = b.Listener.Close()
		}
		return err
	}

	for _, name := range Names {
		b, ok := bindings[name]
		if !ok {
			continue
		}
		r.endpoints[name].publish(b)
		r.logger.InfoContext(ctx, "endpoint bound",
			logger.Endpoint(string(name)),
			logger.URI(b.URI),
			logger.Port(b.Port()),
			slog.String("external_uri", b.ExternalURI.String()),
			logger.CycleID(checkpoint.CycleID(ctx)),
		)
	}
	return nil
}

func (r *Registry) bind(ctx context.Context, name Name, spec Spec) (Binding, error) {
	host := r.cfg.bindAddress(spec)
	ln, err := listen(ctx, host, spec.Port, spec.AcceptQueueSize)
	if err != nil {
		return Binding{}, errors.Join(ErrBind,
			fmt.Errorf("%s endpoint on %s: %w", name, net.JoinHostPort(host, fmt.Sprint(spec.Port)), err))
	}

	port := listenerPort(ln)
	scheme := r.cfg.scheme(name)
	return Binding{
		Listener:    ln,
		URI:         buildURI(scheme, r.cfg.InternalAddress, port),
		ExternalURI: buildURI(scheme, r.cfg.externalAddress(), port),
	}, nil
}

func (r *Registry) closeAll(ctx context.Context) error {
	var errs []error
	for _, name := range Names {
		ln := r.endpoints[name].release()
		if ln == nil {
			continue
		}
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			r.logger.WarnContext(ctx, "failed to close endpoint",
				logger.Endpoint(string(name)),
				logger.Error(err),
				logger.CycleID(checkpoint.CycleID(ctx)),
			)
			errs = append(errs, fmt.Errorf("close %s endpoint: %w", name, err))
			continue
		}
		r.logger.DebugContext(ctx, "endpoint closed", logger.Endpoint(string(name)))
	}
	return errors.Join(errs...)
}
