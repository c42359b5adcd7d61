// Package testutil provides testing utilities for opz.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommandExecutor scripts the secrets CLI for tests. It satisfies
// pkg/exec.CommandExecutor.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args).
	// A pattern matches any call whose key starts with it; the longest
	// matching pattern wins.
	Responses map[string]MockResponse

	// DefaultResponse is used when no pattern matches.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no pattern matches.
	StrictMode bool
}

// MockResponse defines the output of a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	Err      error
	ExitCode int
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Context context.Context
}

// Line renders the call as "command arg1 arg2".
func (c RecordedCall) Line() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// MockExitError mimics a process that exited with a non-zero status.
type MockExitError struct {
	Code   int
	Stderr string
}

func (e *MockExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode matches the method of *os/exec.ExitError.
func (e *MockExitError) ExitCode() int {
	return e.Code
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    append([]string(nil), args...),
		Context: ctx,
	})

	key := buildKey(name, args)

	best, found := "", false
	for pattern := range m.Responses {
		if strings.HasPrefix(key, pattern) && (!found || len(pattern) > len(best)) {
			best, found = pattern, true
		}
	}
	if found {
		resp := m.Responses[best]
		return resp.Stdout, resp.Stderr, resp.Err
	}

	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	return []byte{}, []byte{}, nil
}

func buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// AddResponse registers a mock response for a command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddJSONResponse registers a successful JSON response.
func (m *MockCommandExecutor) AddJSONResponse(commandPattern string, jsonData string) {
	m.AddResponse(commandPattern, MockResponse{Stdout: []byte(jsonData)})
}

// AddErrorResponse registers a failing response with stderr text.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, errMsg string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout:   []byte{},
		Stderr:   []byte(errMsg),
		Err:      &MockExitError{Code: exitCode, Stderr: errMsg},
		ExitCode: exitCode,
	})
}

// Calls returns the recorded calls whose line starts with prefix.
func (m *MockCommandExecutor) Calls(prefix string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if strings.HasPrefix(call.Line(), prefix) {
			matches = append(matches, call)
		}
	}
	return matches
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// Reset clears all recorded calls and responses.
func (m *MockCommandExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = make(map[string]MockResponse)
	m.RecordedCalls = make([]RecordedCall, 0)
	m.DefaultResponse = nil
}

// AssertCallCount verifies how many calls started with prefix.
func (m *MockCommandExecutor) AssertCallCount(t interface{ Error(args ...interface{}) }, prefix string, expected int) bool {
	calls := m.Calls(prefix)
	if len(calls) != expected {
		t.Error("expected", prefix, "to be called", expected, "times, but was called", len(calls), "times")
		return false
	}
	return true
}

// AssertNotCalled verifies that no call started with prefix.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }, prefix string) bool {
	return m.AssertCallCount(t, prefix, 0)
}
