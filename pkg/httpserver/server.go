package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// ListenerSource yields the listener to serve on. It is consulted on every
// start, so a source whose listener is replaced across a checkpoint (such
// as listener.Endpoint) is picked up again on restore.
type ListenerSource interface {
	Listener() net.Listener
}

// ListenerFunc adapts a function to ListenerSource.
type ListenerFunc func() net.Listener

func (f ListenerFunc) Listener() net.Listener { return f() }

// Static returns a ListenerSource that always yields ln.
func Static(ln net.Listener) ListenerSource {
	return ListenerFunc(func() net.Listener { return ln })
}

type config struct {
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	coordinator       *checkpoint.Coordinator
	startHooks        []func(*slog.Logger)
	stopHooks         []func(*slog.Logger)
}

func defaultConfig() *config {
	return &config{
		shutdownTimeout: 5 * time.Second,
	}
}

// Server serves HTTP on a listener that may be closed and rebound across a
// checkpoint. Each start creates a fresh http.Server generation; Run keeps
// blocking while the server is suspended.
type Server struct {
	cfg *config

	mu        sync.Mutex
	src       ListenerSource
	handler   http.Handler
	srv       *http.Server // current generation, nil while suspended
	running   bool
	suspended bool
	closed    bool

	errCh chan error
	done  chan struct{}
	once  sync.Once
}

var _ checkpoint.Resource = (*Server)(nil)

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Noop()
	}
	s := &Server{
		cfg:   cfg,
		errCh: make(chan error, 1),
		done:  make(chan struct{}),
	}
	if cfg.coordinator != nil {
		cfg.coordinator.Register(s)
	}
	return s
}

// Run serves handler on src's listener and blocks until ctx is cancelled,
// Shutdown is called, or an interrupt/TERM signal arrives. It returns
// ErrStart wrapped with the underlying error if serving fails.
func (s *Server) Run(ctx context.Context, src ListenerSource, handler http.Handler) error {
	if src == nil {
		return errors.Join(ErrStart, ErrNoListener)
	}
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server closed"))
	case s.running:
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	s.src = src
	s.handler = handler
	if err := s.startLocked(); err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	s.running = true
	s.mu.Unlock()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	for _, h := range s.cfg.startHooks {
		h(s.cfg.logger)
	}

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case <-stop:
		return s.Shutdown(context.Background())
	case <-s.done:
		return nil
	case err := <-s.errCh:
		_ = s.Shutdown(context.Background())
		return errors.Join(ErrStart, err)
	}
}

// startLocked begins a new generation on the source's current listener.
func (s *Server) startLocked() error {
	ln := s.src.Listener()
	if ln == nil {
		return ErrNoListener
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.suspended = false

	s.cfg.logger.Info("http server started", slog.String("addr", ln.Addr().String()))
	go func() {
		err := srv.Serve(ln)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
		case errors.Is(err, net.ErrClosed):
			// The listener was closed under us, e.g. by a checkpoint that
			// ran before ours. Wait for restore.
			s.cfg.logger.Warn("http listener closed while serving", logger.Error(err))
		default:
			select {
			case s.errCh <- err:
			default:
			}
		}
	}()
	return nil
}

// BeforeCheckpoint gracefully stops the current generation. In-flight
// requests get up to the shutdown timeout to finish. Run keeps blocking.
func (s *Server) BeforeCheckpoint(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	if s.running && !s.closed {
		s.suspended = true
	}
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := s.shutdown(ctx, srv); err != nil {
		return err
	}
	s.cfg.logger.InfoContext(ctx, "http server suspended", logger.CycleID(checkpoint.CycleID(ctx)))
	return nil
}

// AfterRestore starts a new generation on the source's rebound listener.
func (s *Server) AfterRestore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.suspended || s.closed {
		return nil
	}
	if err := s.startLocked(); err != nil {
		return errors.Join(ErrStart, err)
	}
	s.cfg.logger.InfoContext(ctx, "http server resumed", logger.CycleID(checkpoint.CycleID(ctx)))
	return nil
}

// Shutdown stops the server gracefully and makes Run return.
// It is safe for repeated calls.
// Any error from http.Server.Shutdown is wrapped with ErrShutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.srv = nil
		s.closed = true
		s.suspended = false
		s.mu.Unlock()

		if srv != nil {
			err = s.shutdown(ctx, srv)
		}
		for _, h := range s.cfg.stopHooks {
			h(s.cfg.logger)
		}
		close(s.done)
	})
	return err
}

func (s *Server) shutdown(ctx context.Context, srv *http.Server) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}

// Suspended reports whether the server is between a checkpoint and the
// following restore.
func (s *Server) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}
