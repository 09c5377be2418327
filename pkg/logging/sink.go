package logging

import (
	"io"
	"log/slog"
	"math"
)

// FileSinkSpec is everything needed to reopen a file sink.
type FileSinkSpec struct {
	Path       string `json:"path"`
	MaxHistory int    `json:"max_history"`
	MaxSize    int64  `json:"max_size"`
}

// sinkOptions let every record through; filtering is done per logger.
var sinkOptions = &slog.HandlerOptions{Level: slog.Level(math.MinInt)}

func newSinkHandler(w io.Writer, format Format) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(w, sinkOptions)
	}
	return slog.NewTextHandler(w, sinkOptions)
}

// consoleSink writes to a stream the manager does not own. It is never
// closed, not even at checkpoint.
type consoleSink struct {
	w       io.Writer
	handler slog.Handler
}

func newConsoleSink(w io.Writer, format Format) *consoleSink {
	return &consoleSink{w: w, handler: newSinkHandler(w, format)}
}

// fileSink owns a RollingFile handle. A closed file sink is discarded; the
// manager builds a new one from spec when it is needed again.
type fileSink struct {
	spec    FileSinkSpec
	file    *RollingFile
	handler slog.Handler
}

func openFileSink(spec FileSinkSpec, format Format) (*fileSink, error) {
	f, err := OpenRollingFile(spec.Path, spec.MaxHistory, spec.MaxSize)
	if err != nil {
		return nil, err
	}
	return &fileSink{spec: spec, file: f, handler: newSinkHandler(f, format)}, nil
}

func (s *fileSink) Close() error {
	return s.file.Close()
}
