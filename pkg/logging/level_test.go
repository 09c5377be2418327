package logging_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bootkit/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want logging.Level
	}{
		{"OFF", logging.LevelOff},
		{"error", logging.LevelError},
		{"Warn", logging.LevelWarn},
		{"warning", logging.LevelWarn},
		{" info ", logging.LevelInfo},
		{"Debug", logging.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := logging.ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := logging.ParseLevel("LOUD")
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)
	_, err = logging.ParseLevel("")
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	assert.Panics(t, func() { logging.MustParseLevel("TRACE") })
}

func TestLevelText(t *testing.T) {
	t.Parallel()

	b, err := logging.LevelWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "WARN", string(b))
	assert.Equal(t, "DEBUG", logging.LevelDebug.String())
	assert.Equal(t, "Level(9)", logging.Level(9).String())

	_, err = logging.Level(-1).MarshalText()
	assert.ErrorIs(t, err, logging.ErrInvalidLevel)

	var l logging.Level
	require.NoError(t, l.UnmarshalText([]byte("error")))
	assert.Equal(t, logging.LevelError, l)
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}

func TestLevelEnables(t *testing.T) {
	t.Parallel()

	assert.True(t, logging.LevelInfo.Enables(slog.LevelInfo))
	assert.True(t, logging.LevelInfo.Enables(slog.LevelError))
	assert.False(t, logging.LevelInfo.Enables(slog.LevelDebug))

	assert.True(t, logging.LevelDebug.Enables(slog.LevelDebug-4), "debug lets finer levels through")
	assert.False(t, logging.LevelError.Enables(slog.LevelWarn))

	assert.False(t, logging.LevelOff.Enables(slog.LevelError))
	assert.False(t, logging.LevelOff.Enables(slog.LevelError+100))
}

func TestFromSlog(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logging.LevelDebug, logging.FromSlog(slog.LevelDebug))
	assert.Equal(t, logging.LevelInfo, logging.FromSlog(slog.LevelInfo+1))
	assert.Equal(t, logging.LevelWarn, logging.FromSlog(slog.LevelWarn))
	assert.Equal(t, logging.LevelError, logging.FromSlog(slog.LevelError+4))
}
