// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Used by the TUI so log output does not interfere with rendering. The caller closes the returned file.
func NewFileLogger(path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), f, nil
}

// children tracks loggers made by [WithLogger] so level changes reach them.
// [log.Logger.With] copies the level at creation time.
var children = struct {
	sync.Mutex
	m map[*log.Logger][]*log.Logger
}{m: map[*log.Logger][]*log.Logger{}}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
//
// The child follows later [SetLogLevel] calls on l.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	child := l.With(kv...)

	children.Lock()
	defer children.Unlock()
	children.m[l] = append(children.m[l], child)
	return child
}

// SetLogLevel sets the [log.Level] for the given [log.Logger] and every logger derived from it with [WithLogger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	children.Lock()
	defer children.Unlock()
	setLevel(l, ll)
}

func setLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
	for _, child := range children.m[l] {
		setLevel(child, ll)
	}
}

// ParseLogLevel converts a config level name to a [log.Level], defaulting to [log.InfoLevel].
func ParseLogLevel(s string) log.Level {
	if s == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}
