// Package config loads opz settings from an optional YAML file and OPZ_*
// environment variables. Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	dserrors "github.com/systmms/opz/internal/errors"
	"github.com/systmms/opz/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration
type Config struct {
	Path string
	// Explicit marks a path given by the user; it must exist.
	Explicit bool
	Logger   *logging.Logger
	Settings *Settings
}

// Settings mirrors config.yaml.
type Settings struct {
	Vault       string        `yaml:"vault,omitempty"`
	Backend     string        `yaml:"backend,omitempty"`
	Scheme      string        `yaml:"scheme,omitempty"`
	Cache       CacheSettings `yaml:"cache,omitempty"`
	MetricsFile string        `yaml:"metrics_file,omitempty"`
}

// CacheSettings configures the item list cache.
type CacheSettings struct {
	Dir string   `yaml:"dir,omitempty"`
	TTL Duration `yaml:"ttl,omitempty"`
}

// Duration decodes Go duration strings such as "90s" or "2m".
type Duration struct {
	time.Duration
	Set bool
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration, d.Set = parsed, true
	return nil
}

// DefaultPath is $XDG_CONFIG_HOME/opz/config.yaml, falling back to
// ~/.config/opz/config.yaml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "opz", "config.yaml"), nil
}

// Load reads the configuration file and then applies environment
// overrides. A missing file is fine unless the path was explicit.
func (c *Config) Load() error {
	settings := &Settings{}

	data, err := os.ReadFile(c.Path)
	switch {
	case err == nil:
		if err := decode(data, settings); err != nil {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    fmt.Sprintf("invalid configuration file: %v", err),
				Suggestion: "Check for indentation errors and unknown keys. Valid keys: vault, backend, scheme, cache.dir, cache.ttl, metrics_file",
			}
		}
		c.Logger.Debug("Loaded configuration from %s", c.Path)
	case errors.Is(err, os.ErrNotExist) && !c.Explicit:
		c.Logger.Debug("No configuration file at %s, using defaults", c.Path)
	case errors.Is(err, os.ErrNotExist):
		return dserrors.ConfigError{
			Field:      "path",
			Value:      c.Path,
			Message:    "configuration file not found",
			Suggestion: "Check the --config path or remove the flag to use defaults",
		}
	default:
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	c.Settings = settings
	return nil
}

func decode(data []byte, settings *Settings) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from OPZ_* variables.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		name   string
		target *string
	}{
		{"OPZ_VAULT", &s.Vault},
		{"OPZ_BACKEND", &s.Backend},
		{"OPZ_CACHE_DIR", &s.Cache.Dir},
		{"OPZ_METRICS_FILE", &s.MetricsFile},
	}
	for _, e := range strs {
		if v, ok := lookup(e.name); ok && v != "" {
			*e.target = v
		}
	}

	if v, ok := lookup("OPZ_CACHE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return dserrors.ConfigError{
				Field:      "OPZ_CACHE_TTL",
				Value:      v,
				Message:    "not a duration",
				Suggestion: "Use a Go duration such as 60s or 5m",
			}
		}
		s.Cache.TTL = Duration{Duration: ttl, Set: true}
	}
	return nil
}

// Validate rejects values opz cannot work with.
func (s *Settings) Validate() error {
	if s.Cache.TTL.Set && s.Cache.TTL.Duration < 0 {
		return dserrors.ConfigError{
			Field:      "cache.ttl",
			Value:      s.Cache.TTL.Duration,
			Message:    "must not be negative",
			Suggestion: "Use 0 to disable caching",
		}
	}
	return nil
}

// CacheTTL returns the configured TTL or fallback when unset.
func (s *Settings) CacheTTL(fallback time.Duration) time.Duration {
	if s.Cache.TTL.Set {
		return s.Cache.TTL.Duration
	}
	return fallback
}

// CacheDir returns the configured cache directory with ~ expanded, or ""
// when unset.
func (s *Settings) CacheDir() (string, error) {
	return expandPath(s.Cache.Dir)
}

// MetricsPath returns the metrics file with ~ expanded, or "".
func (s *Settings) MetricsPath() (string, error) {
	return expandPath(s.MetricsFile)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", dserrors.ConfigError{Value: p, Message: err.Error()}
	}
	return expanded, nil
}
