package adminapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bootkit/pkg/adminapi"
	"github.com/dmitrymomot/bootkit/pkg/httpserver"
	"github.com/dmitrymomot/bootkit/pkg/listener"
	"github.com/dmitrymomot/bootkit/pkg/logging"
)

func newAPI(t *testing.T, opts ...adminapi.Option) (*logging.Manager, *httptest.Server) {
	t.Helper()
	mgr := logging.New(logging.WithoutCoordinator(), logging.WithConsole(io.Discard))
	srv := httptest.NewServer(adminapi.Router(mgr, opts...))
	t.Cleanup(srv.Close)
	return mgr, srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestListLevels(t *testing.T) {
	t.Parallel()

	mgr, srv := newAPI(t)
	mgr.SetLevel("app.db", logging.LevelDebug)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/logging", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"":"INFO","app.db":"DEBUG"}`, string(body))
}

func TestGetLevel(t *testing.T) {
	t.Parallel()

	mgr, srv := newAPI(t)
	mgr.SetLevel("app", logging.LevelWarn)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/logging/app.http", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got adminapi.LevelResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, adminapi.LevelResponse{Name: "app.http", Level: logging.LevelWarn, Explicit: false}, got)

	_, body = do(t, http.MethodGet, srv.URL+"/v1/logging/"+adminapi.RootAlias, "")
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, adminapi.LevelResponse{Name: "", Level: logging.LevelInfo, Explicit: true}, got)
}

func TestSetAndClearLevel(t *testing.T) {
	t.Parallel()

	mgr, srv := newAPI(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/v1/logging/app.http", "debug\n")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, logging.LevelDebug, mgr.Level("app.http.client"))

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/logging/app.http", `"ERROR"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, logging.LevelError, mgr.Level("app.http"))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/v1/logging/app.http", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, logging.LevelInfo, mgr.Level("app.http"))
	assert.NotContains(t, mgr.Levels(), "app.http")
}

func TestSetLevelRejectsBadInput(t *testing.T) {
	t.Parallel()

	mgr, srv := newAPI(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/v1/logging/app", "LOUD")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid log level")

	resp, _ = do(t, http.MethodPut, srv.URL+"/v1/logging/app", strings.Repeat("D", 100))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	assert.NotContains(t, mgr.Levels(), "app")
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	_, srv := newAPI(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.NotEmpty(t, resp.Header.Get(adminapi.RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(adminapi.RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(adminapi.RequestIDHeader))

	req.Header.Set(adminapi.RequestIDHeader, "bad id!")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "bad id!", resp.Header.Get(adminapi.RequestIDHeader))
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	_, ok := adminapi.RequestIDExtractor()(context.Background())
	assert.False(t, ok)
	assert.Empty(t, adminapi.RequestID(context.Background()))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	_, srv := newAPI(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ALIVE", string(body))

	_, srv = newAPI(t, adminapi.WithReadinessChecks(httpserver.Check{
		Name: "broken",
		Fn:   func(context.Context) error { return errors.New("down") },
	}))
	resp, body = do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "NOT_READY", string(body))
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "adminapi_test_total", Help: "test counter"})
	reg.MustRegister(counter)
	counter.Inc()

	_, srv := newAPI(t, adminapi.WithGatherer(reg))
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "adminapi_test_total 1")
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	reg, err := listener.New(listener.Config{
		BindAddress:     "127.0.0.1",
		InternalAddress: "127.0.0.1",
		ExternalAddress: "public.example.com",
		HTTP:            listener.Spec{Enabled: true, AcceptQueueSize: 16},
	}, listener.WithoutCoordinator())
	require.NoError(t, err)
	defer reg.Close()

	_, srv := newAPI(t, adminapi.WithEndpoints(reg))
	resp, body := do(t, http.MethodGet, srv.URL+"/v1/endpoints", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []adminapi.EndpointResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, len(listener.Names))

	assert.Equal(t, listener.Plain, got[0].Name)
	assert.True(t, got[0].Enabled)
	assert.True(t, got[0].Bound)
	assert.Equal(t, reg.HTTPURI().String(), got[0].URI)
	assert.Equal(t, reg.HTTPExternalURI().String(), got[0].ExternalURI)

	assert.False(t, got[1].Enabled)
	assert.Empty(t, got[1].URI)

	require.NoError(t, reg.BeforeCheckpoint(context.Background()))
	_, body = do(t, http.MethodGet, srv.URL+"/v1/endpoints", "")
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got[0].Bound)
	assert.NotEmpty(t, got[0].URI, "URIs survive a checkpoint")
}

func TestEndpointsNotMountedWithoutRegistry(t *testing.T) {
	t.Parallel()

	_, srv := newAPI(t)
	resp, _ := do(t, http.MethodGet, srv.URL+"/v1/endpoints", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { adminapi.WithEndpoints(nil) })
	assert.Panics(t, func() { adminapi.WithGatherer(nil) })
	assert.Panics(t, func() { adminapi.Router(nil) })
}

func TestLevelChangesAreLogged(t *testing.T) {
	t.Parallel()

	var buf syncBuffer
	_, srv := newAPI(t, adminapi.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	resp, _ := do(t, http.MethodPut, srv.URL+"/v1/logging/app.db", "WARN")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := buf.String()
	assert.Contains(t, out, `msg="logger level changed"`)
	assert.Contains(t, out, "component=adminapi")
	assert.Contains(t, out, "logger=app.db")
	assert.Contains(t, out, "level_name=WARN")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
