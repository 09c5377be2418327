package adminapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/bootkit/pkg/httpserver"
	"github.com/dmitrymomot/bootkit/pkg/listener"
	"github.com/dmitrymomot/bootkit/pkg/logger"
	"github.com/dmitrymomot/bootkit/pkg/logging"
)

// RootAlias addresses the root logger in paths, since its name is empty.
const RootAlias = "ROOT"

// maxLevelBody bounds PUT bodies; a level name is a handful of bytes.
const maxLevelBody = 64

// Levels is the part of logging.Manager the API drives.
type Levels interface {
	Levels() map[string]logging.Level
	Level(name string) logging.Level
	SetLevel(name string, level logging.Level)
	ClearLevel(name string)
}

var _ Levels = (*logging.Manager)(nil)

// Endpoints lists listener endpoints by name. *listener.Registry satisfies it.
type Endpoints interface {
	Endpoint(name listener.Name) *listener.Endpoint
}

var _ Endpoints = (*listener.Registry)(nil)

// Option configures the router.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	endpoints Endpoints
	gatherer  prometheus.Gatherer
	checks    []httpserver.Check
}

// WithLogger sets the logger for request logs and level changes.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEndpoints exposes the registry's URIs under /v1/endpoints.
func WithEndpoints(e Endpoints) Option {
	if e == nil {
		panic("WithEndpoints: nil endpoints")
	}
	return func(o *options) { o.endpoints = e }
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	if g == nil {
		panic("WithGatherer: nil gatherer")
	}
	return func(o *options) { o.gatherer = g }
}

// WithReadinessChecks turns /healthz into a readiness probe.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(o *options) { o.checks = append(o.checks, checks...) }
}

// Router returns the administrative API:
//
//	GET    /healthz              liveness, or readiness with checks
//	GET    /metrics              Prometheus metrics
//	GET    /v1/logging           explicit levels by logger name
//	GET    /v1/logging/{name}    effective level of a logger
//	PUT    /v1/logging/{name}    set an explicit level; body is the level name
//	DELETE /v1/logging/{name}    clear an explicit level
//	GET    /v1/endpoints         listener URIs, with WithEndpoints
func Router(levels Levels, opts ...Option) chi.Router {
	if levels == nil {
		panic("adminapi.Router: nil levels")
	}
	o := &options{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Noop()
	}

	h := &handlers{levels: levels, endpoints: o.endpoints, logger: o.logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware, middleware.Recoverer, h.logRequests)

	r.Get("/healthz", httpserver.HealthCheckHandler(o.logger, o.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/logging", func(r chi.Router) {
		r.Get("/", h.listLevels)
		r.Get("/{name}", h.getLevel)
		r.Put("/{name}", h.setLevel)
		r.Delete("/{name}", h.clearLevel)
	})

	if o.endpoints != nil {
		r.Get("/v1/endpoints", h.listEndpoints)
	}
	return r
}

type handlers struct {
	levels    Levels
	endpoints Endpoints
	logger    *slog.Logger
}

// LevelResponse is the body of GET and PUT /v1/logging/{name}.
type LevelResponse struct {
	Name     string        `json:"name"`
	Level    logging.Level `json:"level"`
	Explicit bool          `json:"explicit"`
}

// EndpointResponse is one entry of GET /v1/endpoints.
type EndpointResponse struct {
	Name        listener.Name `json:"name"`
	Enabled     bool          `json:"enabled"`
	Bound       bool          `json:"bound"`
	URI         string        `json:"uri,omitempty"`
	ExternalURI string        `json:"external_uri,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func loggerName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if name == RootAlias {
		return logging.RootName
	}
	return name
}

func (h *handlers) listLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.levels.Levels())
}

func (h *handlers) getLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.levelResponse(loggerName(r)))
}

func (h *handlers) setLevel(w http.ResponseWriter, r *http.Request) {
	name := loggerName(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLevelBody+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if len(body) > maxLevelBody {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "level too long"})
		return
	}

	level, err := logging.ParseLevel(strings.Trim(strings.TrimSpace(string(body)), `"`))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.levels.SetLevel(name, level)
	h.logger.InfoContext(r.Context(), "logger level changed",
		logger.Component("adminapi"),
		logger.LoggerName(name),
		logger.Level(level.String()),
	)
	writeJSON(w, http.StatusOK, h.levelResponse(name))
}

func (h *handlers) clearLevel(w http.ResponseWriter, r *http.Request) {
	name := loggerName(r)
	h.levels.ClearLevel(name)
	h.logger.InfoContext(r.Context(), "logger level cleared", logger.Component("adminapi"), logger.LoggerName(name))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) levelResponse(name string) LevelResponse {
	_, explicit := h.levels.Levels()[name]
	return LevelResponse{Name: name, Level: h.levels.Level(name), Explicit: explicit}
}

func (h *handlers) listEndpoints(w http.ResponseWriter, _ *http.Request) {
	out := make([]EndpointResponse, 0, len(listener.Names))
	for _, name := range listener.Names {
		ep := h.endpoints.Endpoint(name)
		if ep == nil {
			continue
		}
		b := ep.Snapshot()
		resp := EndpointResponse{Name: name, Enabled: ep.Enabled(), Bound: b.Listener != nil}
		if b.URI != nil {
			resp.URI = b.URI.String()
		}
		if b.ExternalURI != nil {
			resp.ExternalURI = b.ExternalURI.String()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.DebugContext(r.Context(), "admin request",
			logger.Component("adminapi"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
