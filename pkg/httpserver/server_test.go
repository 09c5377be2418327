package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bootkit/pkg/checkpoint"
	"github.com/dmitrymomot/bootkit/pkg/httpserver"
	"github.com/dmitrymomot/bootkit/pkg/listener"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "unable to listen")
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func get(url string) error {
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(resp.Status)
	}
	return nil
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err, "run")
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()
	ln := listen(t)
	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(start) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, httpserver.Static(ln), http.HandlerFunc(ok)) }()
	<-start

	require.NoError(t, get("http://"+ln.Addr().String()))

	cancel()
	waitDone(t, done)
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown")
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()
	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(start) }),
	)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), httpserver.Static(listen(t)), http.HandlerFunc(ok)) }()
	<-start
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown")
	waitDone(t, done)
}

func TestRunWithoutListener(t *testing.T) {
	t.Parallel()

	srv := httpserver.New()
	err := srv.Run(context.Background(), httpserver.Static(nil), http.HandlerFunc(ok))
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrNoListener)

	err = srv.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, httpserver.ErrNoListener)
}

func TestRunAfterShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New()
	require.NoError(t, srv.Shutdown(context.Background()))
	err := srv.Run(context.Background(), httpserver.Static(listen(t)), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestHooks(t *testing.T) {
	t.Parallel()
	var started, stopped atomic.Bool
	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithStartHook(func(_ *slog.Logger) {
			started.Store(true)
			close(start)
		}),
		httpserver.WithStopHook(func(_ *slog.Logger) { stopped.Store(true) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, httpserver.Static(listen(t)), http.NewServeMux()) }()
	<-start
	cancel()
	waitDone(t, done)

	assert.True(t, started.Load(), "start hook not executed")
	assert.True(t, stopped.Load(), "stop hook not executed")
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(started) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Run(ctx, httpserver.Static(listen(t)), http.NewServeMux()) }()
	<-started

	err := srv.Run(context.Background(), httpserver.Static(listen(t)), http.NewServeMux())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	cancel()
	_ = srv.Shutdown(context.Background())
}

func TestDoubleShutdown(t *testing.T) {
	t.Parallel()
	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(start) }),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), httpserver.Static(listen(t)), http.NewServeMux()) }()
	<-start
	require.NoError(t, srv.Shutdown(context.Background()), "first shutdown")
	require.NoError(t, srv.Shutdown(context.Background()), "second shutdown")
	waitDone(t, done)
}

// Not parallel: the signal reaches every Run in the process.
func TestSignalShutdown(t *testing.T) {
	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(start) }),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), httpserver.Static(listen(t)), http.NewServeMux()) }()
	<-start

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)
	waitDone(t, done)
}

func TestCheckpointSuspendsAndResumes(t *testing.T) {
	t.Parallel()

	c := checkpoint.New()
	reg, err := listener.New(listener.Config{
		BindAddress:     "127.0.0.1",
		InternalAddress: "127.0.0.1",
		HTTP:            listener.Spec{Enabled: true, AcceptQueueSize: 16},
	}, listener.WithCoordinator(c))
	require.NoError(t, err)
	defer reg.Close()

	start := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithCoordinator(c),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStartHook(func(_ *slog.Logger) { close(start) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, reg.Endpoint(listener.Plain), http.HandlerFunc(ok)) }()
	<-start

	require.NoError(t, get(reg.HTTPURI().String()))

	require.NoError(t, c.Checkpoint(context.Background()))
	assert.True(t, srv.Suspended())
	assert.Error(t, get(reg.HTTPURI().String()), "nothing serves while checkpointed")

	select {
	case err := <-done:
		require.Failf(t, "run returned during checkpoint", "%v", err)
	default:
	}

	require.NoError(t, c.Restore(context.Background()))
	assert.False(t, srv.Suspended())
	require.NoError(t, get(reg.HTTPURI().String()), "serving on the rebound listener")

	cancel()
	waitDone(t, done)
}

func TestCheckpointWhenIdle(t *testing.T) {
	t.Parallel()

	srv := httpserver.New()
	require.NoError(t, srv.BeforeCheckpoint(context.Background()))
	require.NoError(t, srv.AfterRestore(context.Background()))
	assert.False(t, srv.Suspended())
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func()
	}{
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"read header", func() { httpserver.WithReadHeaderTimeout(0) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"coordinator", func() { httpserver.WithCoordinator(nil) }},
		{"start hook", func() { httpserver.WithStartHook(nil) }},
		{"stop hook", func() { httpserver.WithStopHook(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}

	t.Run("logger nil allowed", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
	})
}

func TestLoggerOptionApplied(t *testing.T) {
	t.Parallel()
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	gotLogger := make(chan *slog.Logger, 1)
	srv := httpserver.NewFromConfig(
		httpserver.Config{ReadTimeout: time.Second, ShutdownTimeout: 50 * time.Millisecond},
		httpserver.WithLogger(l),
		httpserver.WithStartHook(func(lg *slog.Logger) { gotLogger <- lg }),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), httpserver.Static(listen(t)), nil) }()
	assert.Equal(t, l, <-gotLogger, "logger option not applied")
	_ = srv.Shutdown(context.Background())
	waitDone(t, done)
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks []httpserver.Check
		code   int
		body   string
	}{
		{name: "liveness", code: http.StatusOK, body: "ALIVE"},
		{
			name:   "ready",
			checks: []httpserver.Check{{Name: "db", Fn: func(context.Context) error { return nil }}},
			code:   http.StatusOK,
			body:   "READY",
		},
		{
			name:   "not ready",
			checks: []httpserver.Check{{Name: "db", Fn: func(context.Context) error { return errors.New("down") }}},
			code:   http.StatusServiceUnavailable,
			body:   "NOT_READY",
		},
		{
			name:   "listener closed",
			checks: []httpserver.Check{httpserver.ListenerCheck("http", httpserver.Static(nil))},
			code:   http.StatusServiceUnavailable,
			body:   "NOT_READY",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			httpserver.HealthCheckHandler(nil, tt.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}
