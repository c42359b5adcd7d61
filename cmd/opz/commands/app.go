// Package commands implements the opz command line.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/systmms/opz/internal/backend"
	"github.com/systmms/opz/internal/cache"
	"github.com/systmms/opz/internal/config"
	"github.com/systmms/opz/internal/execenv"
	"github.com/systmms/opz/internal/logging"
	"github.com/systmms/opz/internal/metrics"
	"github.com/systmms/opz/internal/pipeline"
	"github.com/systmms/opz/internal/resolve"
	"github.com/systmms/opz/internal/vcs"
	"github.com/systmms/opz/pkg/exec"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Vault      string
	Debug      bool
	NoColor    bool
}

// App carries the state of one opz invocation. The zero value of each
// seam means the real implementation.
type App struct {
	Flags   GlobalFlags
	Config  *config.Config
	Logger  *logging.Logger
	Metrics *metrics.Collector

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Executor runs captured backend calls, Interactive runs `item create`
	// and Git runs git.
	Executor    exec.CommandExecutor
	Interactive exec.CommandExecutor
	Git         exec.CommandExecutor

	// Environ overrides the environment inherited by child commands.
	Environ func() []string

	// ExitStatus is what the process should exit with when no error is
	// returned; `run` sets it to the child's status.
	ExitStatus int

	client *backend.Client
}

// NewApp returns an App wired to the real process streams.
func NewApp() *App {
	return &App{
		Config:  &config.Config{},
		Metrics: metrics.New(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Setup loads configuration and builds the logger. It runs before every
// command.
func (a *App) Setup() error {
	a.Logger = logging.NewWithWriter(a.Stderr, a.Flags.Debug, a.Flags.NoColor)

	a.Config.Logger = a.Logger
	a.Config.Path = a.Flags.ConfigPath
	a.Config.Explicit = a.Flags.ConfigPath != ""
	if a.Config.Path == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.Config.Path = path
	}
	return a.Config.Load()
}

// Close flushes metrics. Failures are logged, never fatal.
func (a *App) Close() {
	if a.Config == nil || a.Config.Settings == nil {
		return
	}
	path, err := a.Config.Settings.MetricsPath()
	if err == nil {
		err = a.Metrics.WriteFile(path)
	}
	if err != nil {
		a.Logger.Warn("Could not write metrics: %v", err)
	}
}

// Vault is the vault selector: the flag, else the configured default.
func (a *App) Vault() string {
	if a.Flags.Vault != "" {
		return a.Flags.Vault
	}
	return a.Config.Settings.Vault
}

// Backend returns the shared backend client.
func (a *App) Backend() (*backend.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	opts := []backend.Option{
		backend.WithMetrics(a.Metrics),
		backend.WithLogger(a.Logger),
	}
	if a.Executor != nil {
		opts = append(opts, backend.WithExecutor(a.Executor))
	}
	if a.Interactive != nil {
		opts = append(opts, backend.WithInteractiveExecutor(a.Interactive))
	}

	client, err := backend.New(a.Config.Settings.Backend, opts...)
	if err != nil {
		return nil, configError("backend", a.Config.Settings.Backend, err)
	}
	a.client = client
	return client, nil
}

// Cache returns the item list cache in front of the backend.
func (a *App) Cache() (*cache.Cache, error) {
	client, err := a.Backend()
	if err != nil {
		return nil, err
	}

	dir, err := a.Config.Settings.CacheDir()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}

	c := cache.New(&cache.FileStore{Dir: dir}, client)
	c.TTL = a.Config.Settings.CacheTTL(cache.DefaultTTL)
	c.Metrics = a.Metrics
	c.Logger = a.Logger
	return c, nil
}

// Resolver returns an item resolver backed by the cache.
func (a *App) Resolver() (*resolve.Resolver, error) {
	c, err := a.Cache()
	if err != nil {
		return nil, err
	}
	client, err := a.Backend()
	if err != nil {
		return nil, err
	}
	return &resolve.Resolver{Lister: c, Getter: client, Logger: a.Logger, Out: a.Stderr}, nil
}

// Pipeline returns the resolution pipeline.
func (a *App) Pipeline() (*pipeline.Pipeline, error) {
	r, err := a.Resolver()
	if err != nil {
		return nil, err
	}
	client, err := a.Backend()
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Resolver: r,
		Backend:  client,
		Logger:   a.Logger,
		Scheme:   a.Config.Settings.Scheme,
	}, nil
}

// Launcher returns the child process launcher.
func (a *App) Launcher() *execenv.Executor {
	e := execenv.New(a.Logger)
	e.Stdin = a.Stdin
	e.Stdout = a.Stdout
	e.Stderr = a.Stderr
	if a.Environ != nil {
		e.Environ = a.Environ
	}
	return e
}

// Repo returns the git checkout in the working directory.
func (a *App) Repo() *vcs.Repo {
	return vcs.New("", a.Git)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Stdout, format, args...)
}
