// Package vcs derives default item names from the current git checkout.
package vcs

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/systmms/opz/pkg/exec"
)

// Repo wraps the git CLI for one working directory.
type Repo struct {
	Path     string
	executor exec.CommandExecutor
}

// New creates a Repo for path using executor; nil means the real git.
func New(path string, executor exec.CommandExecutor) *Repo {
	if executor == nil {
		executor = exec.DefaultExecutor()
	}
	return &Repo{Path: path, executor: executor}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	full := args
	if r.Path != "" {
		full = append([]string{"-C", r.Path}, args...)
	}
	stdout, stderr, err := r.executor.Execute(ctx, "git", full...)
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(stderr)))
	}
	return strings.TrimSpace(string(stdout)), nil
}

// OriginURL returns the URL of the origin remote, falling back to the
// first fetch remote listed by `git remote -v`.
func (r *Repo) OriginURL(ctx context.Context) (string, error) {
	if out, err := r.run(ctx, "remote", "get-url", "origin"); err == nil && out != "" {
		return out, nil
	}

	out, err := r.run(ctx, "remote", "-v")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("no git remote configured")
}

// Slug returns "org/repo" for the origin remote.
func (r *Repo) Slug(ctx context.Context) (string, error) {
	remote, err := r.OriginURL(ctx)
	if err != nil {
		return "", err
	}
	return ParseSlug(remote)
}

// ParseSlug extracts "org/repo" from an https, ssh:// or scp-like
// (git@host:org/repo.git) remote URL. Nested groups keep only the last two
// path segments.
func ParseSlug(remote string) (string, error) {
	remote = strings.TrimSpace(remote)

	var path string
	switch {
	case strings.Contains(remote, "://"):
		u, err := url.Parse(remote)
		if err != nil {
			return "", fmt.Errorf("parse remote %q: %w", remote, err)
		}
		path = u.Path
	case strings.Contains(remote, ":"):
		// scp-like syntax: [user@]host:path
		_, path, _ = strings.Cut(remote, ":")
	default:
		return "", fmt.Errorf("unrecognized remote %q", remote)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("remote %q has no org/repo path", remote)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}
