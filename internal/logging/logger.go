package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Logger writes leveled, human-oriented diagnostics to stderr.
// Secret values must be wrapped in Secret before they reach a format call.
// A nil *Logger discards everything.
type Logger struct {
	debug bool
	out   io.Writer
	mu    sync.Mutex

	info  *color.Color
	warn  *color.Color
	err   *color.Color
	trace *color.Color
}

// New creates a logger writing to stderr.
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger writing to w. Colors are only emitted when
// noColor is false and NO_COLOR is unset.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	l := &Logger{
		debug: debug,
		out:   w,
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed),
		trace: color.New(color.FgCyan),
	}
	if noColor || os.Getenv("NO_COLOR") != "" {
		for _, c := range []*color.Color{l.info, l.warn, l.err, l.trace} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{l.info, l.warn, l.err, l.trace} {
			c.EnableColor()
		}
	}
	return l
}

// DebugEnabled reports whether Debug output is printed.
func (l *Logger) DebugEnabled() bool {
	return l != nil && l.debug
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(l.info, "✓", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(l.warn, "⚠", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(l.err, "✗", format, args...)
}

// Debug logs a message only when debug mode is on.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.DebugEnabled() {
		return
	}
	l.write(l.trace, "[DEBUG]", format, args...)
}

func (l *Logger) write(c *color.Color, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", c.Sprint(prefix), msg)
}

// Secret is a value that always prints as [REDACTED].
type Secret string

func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString covers %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces every occurrence of the given secrets in s.
// Values of three characters or fewer are left alone.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
