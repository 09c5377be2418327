package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// RollingFile is an append-only log file that rotates by size. On rotation
// path becomes path.1, path.1 becomes path.2 and so on up to
// path.<maxHistory>; older files are removed.
type RollingFile struct {
	mu         sync.Mutex
	path       string
	maxHistory int
	maxSize    int64
	file       *os.File
	size       int64
}

// OpenRollingFile opens path for appending, creating it and its directory
// as needed. A maxSize of zero or less disables rotation. A maxHistory of
// zero keeps no rotated files.
func OpenRollingFile(path string, maxHistory int, maxSize int64) (*RollingFile, error) {
	if path == "" {
		return nil, errors.New("rolling file requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f := &RollingFile{path: path, maxHistory: max(maxHistory, 0), maxSize: maxSize}
	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the path of the active file.
func (f *RollingFile) Path() string { return f.path }

// Write appends p, rotating first when p would push a non-empty file past
// the size limit. A single record is never split across files.
func (f *RollingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, os.ErrClosed
	}

	if f.maxSize > 0 && f.size > 0 && f.size+int64(len(p)) > f.maxSize {
		if err := f.rotate(); err != nil {
			return 0, fmt.Errorf("rotate %s: %w", f.path, err)
		}
	}

	n, err := f.file.Write(p)
	f.size += int64(n)
	return n, err
}

// Close closes the active file. Closing twice is not an error.
func (f *RollingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

func (f *RollingFile) open() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	f.file = file
	f.size = info.Size()
	return nil
}

// rotate shifts the backups and starts a fresh active file. The active
// file is reopened even when shifting fails, so a blocked backup slot costs
// one record instead of the sink.
func (f *RollingFile) rotate() error {
	closeErr := f.file.Close()
	f.file = nil

	shiftErr := f.shift()
	if err := f.open(); err != nil {
		return errors.Join(closeErr, shiftErr, err)
	}
	return errors.Join(closeErr, shiftErr)
}

func (f *RollingFile) shift() error {
	if f.maxHistory == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}

	if err := os.Remove(f.backup(f.maxHistory)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for i := f.maxHistory - 1; i >= 1; i-- {
		if err := os.Rename(f.backup(i), f.backup(i+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.Rename(f.path, f.backup(1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *RollingFile) backup(i int) string {
	return f.path + "." + strconv.Itoa(i)
}
