package logging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/bootkit/pkg/logger"
)

// SetLevelsFromFile applies the logger levels listed in path. Files ending
// in .yaml or .yml hold a name-to-level mapping; anything else is read as
// name=LEVEL properties. The file is validated as a whole first: an
// unreadable or malformed file returns ErrConfig and changes nothing.
func (m *Manager) SetLevelsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	levels, err := ParseLevels(filepath.Ext(path), data)
	if err != nil {
		return errors.Join(ErrConfig, fmt.Errorf("%s: %w", path, err))
	}

	m.mu.Lock()
	for _, name := range slices.Sorted(maps.Keys(levels)) {
		m.setLevelLocked(m.nodeLocked(name), levels[name])
	}
	m.mu.Unlock()

	m.log.Info("applied logger levels", logger.Path(path), "count", len(levels))
	return nil
}

// nodeLocked is node for callers already holding mu.
func (m *Manager) nodeLocked(name string) *node {
	if n, ok := m.configured[name]; ok {
		return n
	}
	m.cacheMu.Lock()
	n := m.cache[name].Value()
	m.cacheMu.Unlock()
	if n == nil {
		n = &node{name: name, mgr: m}
	}
	return n
}

// ParseLevels decodes a levels file. ext selects the syntax: ".yaml" and
// ".yml" are YAML mappings, anything else is the properties format.
func ParseLevels(ext string, data []byte) (map[string]Level, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return parseYAMLLevels(data)
	default:
		return parsePropertyLevels(data)
	}
}

func parseYAMLLevels(data []byte) (map[string]Level, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	levels := make(map[string]Level, len(raw))
	for name, value := range raw {
		level, err := ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("logger %q: %w", name, err)
		}
		levels[name] = level
	}
	return levels, nil
}

// parsePropertyLevels reads name=LEVEL lines. Keys and values may also be
// separated by ':' or whitespace. Lines starting with '#' or '!' are
// comments, and a trailing backslash continues a line.
func parsePropertyLevels(data []byte) (map[string]Level, error) {
	levels := make(map[string]Level)
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var (
		lineNo  int
		logical strings.Builder
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimLeft(scanner.Text(), " \t\f")
		if logical.Len() == 0 && (line == "" || line[0] == '#' || line[0] == '!') {
			continue
		}
		if trimmed, ok := strings.CutSuffix(line, `\`); ok {
			logical.WriteString(trimmed)
			continue
		}
		logical.WriteString(line)

		name, value := splitProperty(logical.String())
		logical.Reset()

		level, err := ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: logger %q: %w", lineNo, name, err)
		}
		levels[name] = level
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if logical.Len() > 0 {
		name, value := splitProperty(logical.String())
		level, err := ParseLevel(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: logger %q: %w", lineNo, name, err)
		}
		levels[name] = level
	}
	return levels, nil
}

func splitProperty(line string) (string, string) {
	i := strings.IndexAny(line, "=: \t\f")
	if i < 0 {
		return line, ""
	}
	key := line[:i]
	rest := strings.TrimLeft(line[i:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = rest[1:]
	}
	return key, strings.TrimSpace(rest)
}
