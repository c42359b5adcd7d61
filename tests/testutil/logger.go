package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/opz/internal/logging"
)

// LogCapture collects what a logging.Logger writes.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// NewTestLogger returns an uncolored logger writing into a capture.
func NewTestLogger(t *testing.T, debug bool) (*logging.Logger, *LogCapture) {
	t.Helper()
	capture := &LogCapture{}
	return logging.NewWithWriter(capture, debug, true), capture
}

// Output returns everything logged so far.
func (c *LogCapture) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Lines returns the non-empty logged lines.
func (c *LogCapture) Lines() []string {
	var lines []string
	for _, line := range strings.Split(c.Output(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// AssertContains checks that substr was logged.
func (c *LogCapture) AssertContains(t *testing.T, substr string) {
	t.Helper()
	assert.Contains(t, c.Output(), substr)
}

// AssertNotContains checks that substr was never logged.
func (c *LogCapture) AssertNotContains(t *testing.T, substr string) {
	t.Helper()
	assert.NotContains(t, c.Output(), substr)
}
