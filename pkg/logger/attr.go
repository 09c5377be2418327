package logger

import (
	"log/slog"
	"net/url"
	"strconv"
)

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// LoggerName records the hierarchical logger name under the key "logger".
func LoggerName(name string) slog.Attr {
	return slog.String("logger", name)
}

// Endpoint records a listener endpoint name under the key "endpoint".
func Endpoint(name string) slog.Attr {
	return slog.String("endpoint", name)
}

// Port records a TCP port under the key "port".
func Port(port int) slog.Attr {
	return slog.Int("port", port)
}

// URI records a URI under the key "uri".
// If u is nil, it returns an empty Attr.
func URI(u *url.URL) slog.Attr {
	if u == nil {
		return slog.Attr{}
	}
	return slog.String("uri", u.String())
}

// Path records a filesystem path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Level records a level name under the key "level_name".
// The key differs from slog's built-in "level" to avoid clobbering it.
func Level(name string) slog.Attr {
	return slog.String("level_name", name)
}

// CycleID records a checkpoint cycle identifier under the key "cycle_id".
// If id is empty, it returns an empty Attr.
func CycleID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("cycle_id", id)
}

// Phase records a lifecycle phase under the key "phase".
func Phase(phase string) slog.Attr {
	return slog.String("phase", phase)
}
