package logging

import "errors"

var (
	// ErrConfig indicates an unreadable or malformed level-override file.
	// Settings applied before the failing call are kept.
	ErrConfig = errors.New("invalid logging configuration")

	// ErrInvalidLevel is returned for unknown level names.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidFormat is returned for unknown sink formats.
	ErrInvalidFormat = errors.New("invalid log format")

	// ErrOpenSink indicates a file sink could not be opened.
	ErrOpenSink = errors.New("failed to open log file")
)
