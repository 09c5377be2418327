package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Level is a verbosity threshold. Levels are ordered from least to most
// verbose: a logger at INFO emits ERROR, WARN and INFO records.
type Level int

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{
	LevelOff:   "OFF",
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
}

// upper folds level names without depending on the process locale.
var upper = cases.Upper(language.Und)

func (l Level) String() string {
	if l < LevelOff || l > LevelDebug {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel matches a level name case-insensitively. "WARNING" is
// accepted as an alias of WARN.
func ParseLevel(s string) (Level, error) {
	name := upper.String(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// MustParseLevel is ParseLevel that panics on unknown names.
func MustParseLevel(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Level) MarshalText() ([]byte, error) {
	if l < LevelOff || l > LevelDebug {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Enables reports whether a logger at level l emits a record at r.
func (l Level) Enables(r slog.Level) bool {
	return r >= l.threshold()
}

// threshold is the lowest slog level let through.
func (l Level) threshold() slog.Level {
	switch l {
	case LevelDebug:
		return math.MinInt
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return math.MaxInt
	}
}

// FromSlog maps a slog level onto the nearest Level at or below it in
// severity. Anything below INFO is DEBUG.
func FromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}
