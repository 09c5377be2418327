package logging

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Format is the encoding used by sinks.
type Format string

const (
	// FormatText writes slog's key=value lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
)

func (f *Format) UnmarshalText(text []byte) error {
	switch v := Format(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case FormatText, FormatJSON:
		*f = v
	case "":
		*f = FormatText
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return nil
}

// ByteSize is a size in bytes that parses human-readable values such as
// "100MB" or "512 KiB".
type ByteSize int64

func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return fmt.Errorf("parse size %q: %w", text, err)
	}
	*b = ByteSize(n)
	return nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Config is the process's logging configuration.
type Config struct {
	// LogPath enables a rolling file sink when set.
	LogPath    string   `env:"LOG_PATH"`
	MaxHistory int      `env:"LOG_MAX_HISTORY" envDefault:"30"`
	MaxSize    ByteSize `env:"LOG_MAX_SIZE" envDefault:"100MB"`

	ConsoleEnabled bool   `env:"LOG_CONSOLE_ENABLED" envDefault:"true"`
	Format         Format `env:"LOG_FORMAT" envDefault:"text"`

	// LevelsFile is a name=LEVEL property file (or a YAML mapping) applied
	// on Configure.
	LevelsFile string `env:"LOG_LEVELS_FILE"`
	// WatchLevels re-applies LevelsFile whenever it changes.
	WatchLevels bool `env:"LOG_LEVELS_WATCH"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		MaxHistory:     30,
		MaxSize:        100 * 1000 * 1000,
		ConsoleEnabled: true,
		Format:         FormatText,
	}
}
