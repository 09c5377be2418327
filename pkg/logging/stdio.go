package logging

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// maxLineSize bounds a single line read from a redirected stream.
const maxLineSize = 1 << 20

// redirectStdio replaces os.Stdout and os.Stderr with pipes whose lines are
// logged at INFO through the "stdout" and "stderr" loggers. The console
// sink keeps the stderr file captured before the swap, so console output
// never loops back into the pipe.
func (m *Manager) redirectStdio() error {
	streams := []struct {
		name   string
		target **os.File
	}{
		{"stdout", &os.Stdout},
		{"stderr", &os.Stderr},
	}

	for _, s := range streams {
		r, w, err := os.Pipe()
		if err != nil {
			return fmt.Errorf("redirect %s: %w", s.name, err)
		}
		*s.target = w
		go pump(r, m.Logger(s.name))
	}
	return nil
}

// pump logs every line read from r until it is closed. The read end must
// stay drained: writes to fd 1 or 2 with no reader kill the process.
func pump(r io.ReadCloser, log *slog.Logger) {
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			log.Info(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("redirected stream read failed, discarding the rest", logger.Error(err))
		_, _ = io.Copy(io.Discard, r)
	}
}
