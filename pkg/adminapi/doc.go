// Package adminapi serves the administrative HTTP API: logger levels,
// listener URIs, health and Prometheus metrics.
//
// Router returns a chi.Router that can be served on the admin endpoint or
// mounted under a prefix of another router:
//
//	r := adminapi.Router(mgr,
//		adminapi.WithEndpoints(reg),
//		adminapi.WithLogger(mgr.Logger("bootkit.admin")),
//	)
//
// Logger names appear as path segments. The root logger, whose name is
// empty, is addressed as ROOT:
//
//	curl -X PUT -d DEBUG http://localhost:9090/v1/logging/app.http
//	curl http://localhost:9090/v1/logging/ROOT
//
// Every response carries an X-Request-ID header. A well-formed incoming id
// is kept; otherwise a new UUID is assigned. RequestIDExtractor puts the id
// on log records made with the request context.
package adminapi
