// Package backend talks to the secrets manager CLI (1Password `op` by
// default). Every call is a single process invocation; failures are
// returned immediately and never retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/systmms/opz/internal/logging"
	"github.com/systmms/opz/internal/metrics"
	"github.com/systmms/opz/pkg/exec"
)

// DefaultCommand is the backend command line used when none is configured.
const DefaultCommand = "op"

// Client runs backend operations through a CommandExecutor.
type Client struct {
	name        string
	baseArgs    []string
	executor    exec.CommandExecutor
	interactive exec.CommandExecutor
	metrics     *metrics.Collector
	logger      *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithExecutor replaces the executor used for captured calls.
func WithExecutor(e exec.CommandExecutor) Option {
	return func(c *Client) { c.executor = e }
}

// WithInteractiveExecutor replaces the executor used for calls that need
// the terminal (item creation).
func WithInteractiveExecutor(e exec.CommandExecutor) Option {
	return func(c *Client) { c.interactive = e }
}

// WithMetrics records every invocation in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger enables debug logging of invocations.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for commandLine, a shell-words string such as
// `op --account my.1password.com`. An empty string means DefaultCommand.
func New(commandLine string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(commandLine) == "" {
		commandLine = DefaultCommand
	}
	words, err := shellwords.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse backend command %q: %w", commandLine, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("parse backend command %q: no program", commandLine)
	}

	c := &Client{
		name:        words[0],
		baseArgs:    words[1:],
		executor:    exec.DefaultExecutor(),
		interactive: &exec.InteractiveExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListItems returns the item directory, optionally scoped to one vault.
func (c *Client) ListItems(ctx context.Context, vault string) ([]ItemSummary, error) {
	args := []string{"item", "list", "--format", "json"}
	if vault != "" {
		args = append(args, "--vault", vault)
	}

	stdout, err := c.run(ctx, c.executor, "list", args, args)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return []ItemSummary{}, nil
	}

	if err := validate(listSchema, stdout); err != nil {
		return nil, c.malformed("list", args, err)
	}
	var items []ItemSummary
	if err := json.Unmarshal(stdout, &items); err != nil {
		return nil, c.malformed("list", args, err)
	}
	return items, nil
}

// GetItem fetches an item with its fields. Results are never cached.
func (c *Client) GetItem(ctx context.Context, id string) (*ItemDetail, error) {
	args := []string{"item", "get", id, "--format", "json"}

	stdout, err := c.run(ctx, c.executor, "get", args, args)
	if err != nil {
		return nil, err
	}

	if err := validate(getSchema, stdout); err != nil {
		return nil, c.malformed("get", args, err)
	}
	var item ItemDetail
	if err := json.Unmarshal(stdout, &item); err != nil {
		return nil, c.malformed("get", args, err)
	}
	return &item, nil
}

// Read dereferences a secret reference and returns the value with
// surrounding whitespace trimmed.
func (c *Client) Read(ctx context.Context, reference string) (string, error) {
	args := []string{"read", reference}

	stdout, err := c.run(ctx, c.executor, "read", args, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}

// CreateItem creates an "API Credential" item with one text field per
// entry. The CLI runs attached to the terminal so it can prompt.
func (c *Client) CreateItem(ctx context.Context, req CreateRequest) error {
	args := BuildCreateArgs(req)
	redacted := BuildCreateArgs(redactFields(req))

	_, err := c.run(ctx, c.interactive, "create", args, redacted)
	var be *BackendError
	if errors.As(err, &be) {
		secrets := make([]string, 0, len(req.Fields))
		for _, f := range req.Fields {
			secrets = append(secrets, f.Value)
		}
		be.Stderr = logging.Redact(be.Stderr, secrets)
	}
	return err
}

// BuildCreateArgs renders the argv for `item create`. `key[text]=value`
// makes a custom text field labelled key.
func BuildCreateArgs(req CreateRequest) []string {
	args := []string{
		"item", "create",
		"--category", "API Credential",
		"--title", req.Title,
	}
	if req.Vault != "" {
		args = append(args, "--vault", req.Vault)
	}
	for _, f := range req.Fields {
		args = append(args, fmt.Sprintf("%s[text]=%s", f.Label, f.Value))
	}
	return args
}

func redactFields(req CreateRequest) CreateRequest {
	out := req
	out.Fields = make([]CreateField, len(req.Fields))
	for i, f := range req.Fields {
		out.Fields[i] = CreateField{Label: f.Label, Value: logging.Secret(f.Value).String()}
	}
	return out
}

// run invokes the backend. logArgs is what may appear in logs and errors;
// it differs from args only when args carry secret values.
func (c *Client) run(ctx context.Context, executor exec.CommandExecutor, op string, args, logArgs []string) ([]byte, error) {
	full := append(append([]string{}, c.baseArgs...), args...)
	shown := append(append([]string{}, c.baseArgs...), logArgs...)

	c.logger.Debug("Running %s", c.describe(shown))

	start := time.Now()
	stdout, stderr, err := executor.Execute(ctx, c.name, full...)
	c.metrics.ObserveBackend(op, time.Since(start), err)

	if err != nil {
		return nil, &BackendError{
			Op:         op,
			Program:    c.name,
			Command:    c.describe(shown),
			ExitStatus: exec.ExitCode(err),
			Stderr:     strings.TrimSpace(string(stderr)),
			Err:        err,
		}
	}
	return stdout, nil
}

func (c *Client) malformed(op string, args []string, err error) error {
	shown := append(append([]string{}, c.baseArgs...), args...)
	return &BackendError{
		Op:      op,
		Program: c.name,
		Command: c.describe(shown),
		Err:     fmt.Errorf("malformed output: %w", err),
	}
}

func (c *Client) describe(args []string) string {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, shellwords.Quote(c.name))
	for _, a := range args {
		quoted = append(quoted, shellwords.Quote(a))
	}
	return strings.Join(quoted, " ")
}
