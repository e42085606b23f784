// Package logger provides leveled logging for margin.
// Debug, Info, Warn and Section lines are printed only in verbose mode
// (the --verbose flag); Error lines are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes prefixed log lines to an output writer.
// A Logger is safe for concurrent use.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// New creates a logger writing to w. A nil writer means os.Stderr.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{output: w, verbose: verbose}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

var std = New(os.Stderr, false)

// Default returns the process-wide logger configured by the CLI flags.
func Default() *Logger {
	return std
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

func (l *Logger) printf(always bool, prefix, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if always || l.verbose {
		fmt.Fprintf(l.output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.printf(false, "[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.printf(false, "[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func (l *Logger) Warn(format string, args ...any) {
	l.printf(false, "[WARN] ", format, args...)
}

// Error prints an error message regardless of verbose mode.
func (l *Logger) Error(format string, args ...any) {
	l.printf(true, "[ERROR] ", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.printf(false, "\n=== ", "%s ===", name)
}

// SetVerbose toggles verbose mode on the default logger.
func SetVerbose(v bool) { std.SetVerbose(v) }

// IsVerbose reports whether the default logger is verbose.
func IsVerbose() bool { return std.IsVerbose() }

// SetOutput redirects the default logger.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// Debug logs to the default logger.
func Debug(format string, args ...any) { std.Debug(format, args...) }

// Info logs to the default logger.
func Info(format string, args ...any) { std.Info(format, args...) }

// Warn logs to the default logger.
func Warn(format string, args ...any) { std.Warn(format, args...) }

// Error logs to the default logger.
func Error(format string, args ...any) { std.Error(format, args...) }
