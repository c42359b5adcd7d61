// Package execenv starts the user's command with resolved secrets in its
// environment.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/buildkite/shellwords"
	"github.com/systmms/opz/internal/expand"
	"github.com/systmms/opz/internal/logging"
	"github.com/systmms/opz/internal/secure"
)

// ExitStatus is the status opz itself should exit with.
type ExitStatus int

// LaunchError means the child process could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Executor runs commands with ephemeral environment variables.
type Executor struct {
	logger *logging.Logger

	// Stdin, Stdout and Stderr default to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Environ returns the inherited environment; os.Environ by default.
	Environ func() []string
}

// New creates a new executor
func New(logger *logging.Logger) *Executor {
	return &Executor{
		logger:  logger,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
	}
}

// Options configures command execution
type Options struct {
	Command       []string       // Command and arguments; $VAR references are expanded
	Values        *secure.EnvMap // Resolved secrets
	AllowOverride bool           // Existing env vars win over resolved values
	PrintVars     bool           // Print variable names with masked values to Stderr
	WorkingDir    string
}

// Exec expands the command arguments with the resolved values, runs the
// command with stdio inherited and returns the child's exit status.
// SIGINT and SIGTERM received meanwhile are forwarded to the child.
func (e *Executor) Exec(ctx context.Context, opts Options) (ExitStatus, error) {
	if len(opts.Command) == 0 {
		return 1, errors.New("no command specified")
	}

	values := opts.Values
	if values == nil {
		values = secure.NewEnvMap()
	}
	keys := values.Keys()

	var status ExitStatus
	err := values.Reveal(func(resolved map[string]string) error {
		if unresolved := expand.Unresolved(opts.Command, resolved); len(unresolved) > 0 {
			for _, name := range unresolved {
				if match, ok := expand.Suggest(name, keys); ok {
					e.logger.Warn("$%s is not set by the items and was left as is. Did you mean $%s?", name, match)
				}
			}
			e.logger.Debug("Left unexpanded (not provided by the items): %s", strings.Join(unresolved, ", "))
		}
		argv := expand.ExpandAll(opts.Command, resolved)

		if opts.PrintVars {
			e.printEnvironment(keys, resolved)
		}

		path, err := exec.LookPath(argv[0])
		if err != nil {
			return &LaunchError{Command: argv[0], Err: err}
		}

		cmd := exec.CommandContext(ctx, path, argv[1:]...)
		cmd.Args[0] = argv[0]
		cmd.Env = buildEnvironment(e.environ(), keys, resolved, opts.AllowOverride)
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr
		cmd.Dir = opts.WorkingDir

		e.logger.Debug("Executing command: %s", quoteArgs(opts.Command))
		e.logger.Debug("Environment variables set: %d", values.Len())

		status, err = run(cmd)
		return err
	})
	if err != nil {
		return 1, err
	}
	return status, nil
}

func run(cmd *exec.Cmd) (ExitStatus, error) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	if err := cmd.Start(); err != nil {
		return 1, &LaunchError{Command: cmd.Args[0], Err: err}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-signals:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return ExitStatus(128 + int(ws.Signal())), nil
		}
		return ExitStatus(exitErr.ExitCode()), nil
	}
	return 1, err
}

// quoteArgs renders argv before expansion, so no secret reaches the log.
func quoteArgs(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellwords.Quote(a)
	}
	return strings.Join(quoted, " ")
}

func (e *Executor) environ() []string {
	if e.Environ == nil {
		return os.Environ()
	}
	return e.Environ()
}

// buildEnvironment merges resolved values into the inherited environment.
func buildEnvironment(inherited []string, keys []string, resolved map[string]string, allowOverride bool) []string {
	envMap := make(map[string]string, len(inherited)+len(keys))
	for _, kv := range inherited {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}

	for _, key := range keys {
		if _, exists := envMap[key]; exists && allowOverride {
			continue
		}
		envMap[key] = resolved[key]
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, key+"="+value)
	}
	sort.Strings(result)
	return result
}

// printEnvironment displays the resolved variables with masked values.
func (e *Executor) printEnvironment(keys []string, resolved map[string]string) {
	w := e.Stderr
	if w == nil {
		w = os.Stderr
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No environment variables resolved")
		return
	}

	fmt.Fprintf(w, "Resolved %d environment variables:\n", len(keys))
	for _, key := range keys {
		fmt.Fprintf(w, "  %s=%s\n", key, maskValue(resolved[key]))
	}
	fmt.Fprintln(w)
}

// maskValue masks a secret value for display
func maskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}
