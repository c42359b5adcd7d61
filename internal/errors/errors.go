package errors

import (
	"fmt"
	"strings"
)

// UserError is an error meant to be read by a person at a terminal.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError reports a bad value in the opz configuration file or environment.
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError reports a child command that could not be started.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// BackendSuggestion maps the stderr of a failed secrets CLI call to a hint.
func BackendSuggestion(stderr string) string {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "not signed in"), strings.Contains(s, "not currently signed in"):
		return "Run 'eval $(op signin)' to authenticate with 1Password"
	case strings.Contains(s, "session expired"):
		return "Your 1Password session has expired. Run 'op signin' again"
	case strings.Contains(s, "isn't a vault"), strings.Contains(s, "vault") && strings.Contains(s, "not found"):
		return "Check the --vault value. List vaults with 'op vault list'"
	case strings.Contains(s, "executable file not found"), strings.Contains(s, "command not found"):
		return "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/"
	case strings.Contains(s, "isn't an item"), strings.Contains(s, "not found"):
		return "Verify the item exists. Use 'opz find <query>' to search titles"
	case strings.Contains(s, "timeout"):
		return "The operation timed out. Check your network connection and try again"
	}
	return ""
}

// WrapCommandNotFound reports a child command missing from PATH.
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"npm":    "Install Node.js from https://nodejs.org/",
		"python": "Install Python from https://python.org/",
		"go":     "Install Go from https://golang.org/",
		"docker": "Install Docker from https://docker.com/",
		"op":     "Install 1Password CLI: https://developer.1password.com/docs/cli/get-started/",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	msg := "command not found"
	if err != nil {
		msg = fmt.Sprintf("command not found (%v)", err)
	}

	return CommandError{
		Command:    command,
		Message:    msg,
		Suggestion: suggestion,
	}
}
