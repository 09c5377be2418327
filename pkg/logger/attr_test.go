package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bootkit/pkg/logger"
)

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	assert.Equal(t, "endpoint", logger.Endpoint("admin").Key)
	assert.Equal(t, int64(8080), logger.Port(8080).Value.Int64())
	assert.Equal(t, "logger", logger.LoggerName("a.b").Key)
	assert.Equal(t, "/var/log/app.log", logger.Path("/var/log/app.log").Value.String())
	assert.Equal(t, "level_name", logger.Level("DEBUG").Key)
	assert.Equal(t, "phase", logger.Phase("restore").Key)

	u := &url.URL{Scheme: "http", Host: "10.0.0.1:8080"}
	assert.Equal(t, "http://10.0.0.1:8080", logger.URI(u).Value.String())
	assert.True(t, logger.URI(nil).Equal(slog.Attr{}))
	assert.True(t, logger.CycleID("").Equal(slog.Attr{}))
}

func TestLogHandlerDecorator(t *testing.T) {
	type key string
	k := key("cycle")

	t.Run("injects context values", func(t *testing.T) {
		buf := &bytes.Buffer{}
		h := logger.NewLogHandlerDecorator(slog.NewJSONHandler(buf, nil), logger.ContextValue("cycle_id", k))
		log := slog.New(h)

		log.InfoContext(context.WithValue(context.Background(), k, "c-1"), "msg")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "c-1", entry["cycle_id"])
	})

	t.Run("nil context is tolerated", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := slog.New(logger.NewLogHandlerDecorator(slog.NewJSONHandler(buf, nil), logger.ContextValue("cycle_id", k)))
		log.Info("msg")
		assert.Contains(t, buf.String(), `"msg":"msg"`)
	})

	t.Run("no extractors returns the wrapped handler", func(t *testing.T) {
		base := slog.NewTextHandler(&bytes.Buffer{}, nil)
		assert.Same(t, base, logger.NewLogHandlerDecorator(base, nil, logger.ContextValue("", k)))
	})
}

func TestNoop(t *testing.T) {
	log := logger.Noop()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestLogHandlerDecoratorNilContext(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewLogHandlerDecorator(slog.NewTextHandler(&buf, nil),
		logger.ContextValue("tenant", "tenant-key"),
	)

	var ctx context.Context
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "direct call", 0)
	require.NoError(t, h.Handle(ctx, rec))
	assert.Contains(t, buf.String(), `msg="direct call"`)
	assert.NotContains(t, buf.String(), "tenant=")
}
