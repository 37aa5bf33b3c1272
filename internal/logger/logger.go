// Package logger provides leveled logging for chunkflow.
// Lines are written as "[LEVEL] message" to stderr unless redirected.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to help users follow a document through the pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a log severity.
type Level int

// Available levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the level name used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel resolves a level name. Unknown names fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled lines to an io.Writer. It is safe for concurrent use.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	output io.Writer
}

// New creates a logger writing to w at the given minimum level.
// A nil writer discards output.
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{level: level, output: w}
}

// Discard returns a logger that drops every line.
func Discard() *Logger {
	return New(io.Discard, LevelError)
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Enabled returns true if lines at level are written.
func (l *Logger) Enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if level < l.level {
		return
	}
	fmt.Fprintf(l.output, "["+level.String()+"] "+format+"\n", args...)
}

// Debug logs at DEBUG.
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Info logs at INFO.
func (l *Logger) Info(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warn logs at WARNING.
func (l *Logger) Warn(format string, args ...any) { l.logf(LevelWarning, format, args...) }

// Error logs at ERROR.
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }

// Section prints a section header when DEBUG is enabled.
func (l *Logger) Section(name string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level <= LevelDebug {
		fmt.Fprintf(l.output, "\n=== %s ===\n", name)
	}
}

var std = New(os.Stderr, LevelWarning)

// Default returns the process-wide logger used by the package helpers.
func Default() *Logger {
	return std
}

// SetVerbose switches the default logger between DEBUG and WARNING.
func SetVerbose(v bool) {
	if v {
		std.SetLevel(LevelDebug)
		return
	}
	std.SetLevel(LevelWarning)
}

// IsVerbose returns true if the default logger writes debug lines.
func IsVerbose() bool {
	return std.Enabled(LevelDebug)
}

// SetOutput sets the output writer of the default logger.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Debug logs at DEBUG on the default logger.
func Debug(format string, args ...any) { std.Debug(format, args...) }

// Info logs at INFO on the default logger.
func Info(format string, args ...any) { std.Info(format, args...) }

// Warn logs at WARNING on the default logger.
func Warn(format string, args ...any) { std.Warn(format, args...) }

// Error logs at ERROR on the default logger.
func Error(format string, args ...any) { std.Error(format, args...) }

// Section prints a section header on the default logger.
func Section(name string) { std.Section(name) }
