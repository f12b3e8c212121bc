// Package actionlog records user actions in an append-only text file for
// audit and history display.
package actionlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TimestampLayout prefixes every entry
const TimestampLayout = "2006-01-02 15:04:05"

// ErrNoHistory is returned by Read when nothing has been recorded yet
var ErrNoHistory = errors.New("no actions recorded yet")

// Log appends timestamped lines to a file. Entries are never rewritten.
type Log struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// Open prepares a log at path, creating its directory
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("action log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create action log directory: %w", err)
	}
	return &Log{path: path, now: time.Now}, nil
}

// Path returns the file backing the log
func (l *Log) Path() string { return l.path }

// Record appends "[timestamp] action". Newlines inside action are flattened
// so every entry stays on one line.
func (l *Log) Record(action string) error {
	action = strings.Join(strings.Fields(action), " ")

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open action log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "[%s] %s\n", l.now().Format(TimestampLayout), action); err != nil {
		return fmt.Errorf("failed to write action log: %w", err)
	}
	return nil
}

// Recordf formats and records an action
func (l *Log) Recordf(format string, args ...interface{}) error {
	return l.Record(fmt.Sprintf(format, args...))
}

// Read returns the most recent limit entries, oldest first. A limit of zero
// or less returns everything.
func (l *Log) Read(limit int) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open action log: %w", err)
	}
	defer func() { _ = f.Close() }()

	return tail(f, limit)
}

func tail(r io.Reader, limit int) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if limit > 0 && len(lines) > limit {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read action log: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNoHistory
	}
	return lines, nil
}
