// Package logging provides leveled stderr logging with secret redaction.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes human-readable diagnostics to stderr. Resolved secret
// values must never be passed to it directly; wrap them in Secret or run
// messages through Redact first.
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer
}

// New creates a logger. Debug messages are dropped unless debug is true.
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     os.Stderr,
	}
}

// NewWithWriter creates a logger writing to w instead of stderr. Used by
// tests to capture output.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
		out:     w,
	}
}

func (l *Logger) log(color, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(l.out, "%s%s\033[0m %s\n", color, prefix, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log("\033[32m", "✓", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("\033[33m", "⚠", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log("\033[31m", "✗", format, args...)
}

// Debug logs a debug message when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.log("\033[36m", "[DEBUG]", format, args...)
}

// Secret wraps a sensitive value so that formatting it always produces a
// redacted placeholder.
type Secret string

// String implements fmt.Stringer, always returning the redacted form.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces every occurrence of the given secret values in s with a
// placeholder. Values of three characters or fewer are left alone to avoid
// shredding ordinary text.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
