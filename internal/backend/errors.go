package backend

import "fmt"

// BackendError reports a failed or unparseable backend invocation.
// ExitStatus is -1 when the process could not be started and 0 when it
// exited cleanly but its output was malformed.
type BackendError struct {
	Op string
	// Program is the backend executable, Command the full quoted argv.
	Program    string
	Command    string
	ExitStatus int
	Stderr     string
	Err        error
}

func (e *BackendError) Error() string {
	switch {
	case e.Stderr != "":
		return fmt.Sprintf("%s failed (exit status %d): %s", e.Command, e.ExitStatus, e.Stderr)
	case e.ExitStatus > 0:
		return fmt.Sprintf("%s failed (exit status %d)", e.Command, e.ExitStatus)
	default:
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
