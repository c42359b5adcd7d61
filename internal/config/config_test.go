package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/opz/internal/errors"
	"github.com/systmms/opz/tests/testutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	testutil.WriteFile(t, path, content)
	return path
}

func TestConfig_Load(t *testing.T) {
	testutil.IsolateOpzEnv(t)

	path := writeConfig(t, `
vault: Private
backend: op --account my.1password.com
scheme: op
cache:
  dir: /tmp/opz-cache
  ttl: 90s
metrics_file: /tmp/opz.prom
`)
	cfg := &Config{Path: path}
	require.NoError(t, cfg.Load())

	s := cfg.Settings
	assert.Equal(t, "Private", s.Vault)
	assert.Equal(t, "op --account my.1password.com", s.Backend)
	assert.Equal(t, "op", s.Scheme)
	assert.Equal(t, 90*time.Second, s.CacheTTL(time.Minute))
	dir, err := s.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/opz-cache", dir)
	metrics, err := s.MetricsPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/opz.prom", metrics)
}

func TestConfig_LoadMissingFile(t *testing.T) {
	testutil.IsolateOpzEnv(t)

	cfg := &Config{Path: "/nonexistent/opz/config.yaml"}
	require.NoError(t, cfg.Load())
	assert.Equal(t, Settings{}, *cfg.Settings)
	assert.Equal(t, time.Minute, cfg.Settings.CacheTTL(time.Minute))

	cfg = &Config{Path: "/nonexistent/opz/config.yaml", Explicit: true}
	err := cfg.Load()
	var ce dserrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestConfig_LoadEmptyFile(t *testing.T) {
	testutil.IsolateOpzEnv(t)

	cfg := &Config{Path: writeConfig(t, "")}
	require.NoError(t, cfg.Load())
	assert.Equal(t, Settings{}, *cfg.Settings)
}

func TestConfig_LoadInvalid(t *testing.T) {
	testutil.IsolateOpzEnv(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "vault: [unclosed\n"},
		{name: "unknown key", content: "vualt: Private\n"},
		{name: "bad ttl", content: "cache:\n  ttl: soon\n"},
		{name: "negative ttl", content: "cache:\n  ttl: -5s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Path: writeConfig(t, tt.content)}
			err := cfg.Load()
			var ce dserrors.ConfigError
			assert.ErrorAs(t, err, &ce)
			assert.Nil(t, cfg.Settings)
		})
	}
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	testutil.IsolateOpzEnv(t)
	testutil.SetupTestEnv(t, map[string]string{
		"OPZ_VAULT":        "Work",
		"OPZ_BACKEND":      "op2",
		"OPZ_CACHE_DIR":    "/var/cache/opz",
		"OPZ_CACHE_TTL":    "0s",
		"OPZ_METRICS_FILE": "/var/lib/opz.prom",
	})

	cfg := &Config{Path: writeConfig(t, "vault: Private\ncache:\n  ttl: 90s\n")}
	require.NoError(t, cfg.Load())

	s := cfg.Settings
	assert.Equal(t, "Work", s.Vault)
	assert.Equal(t, "op2", s.Backend)
	assert.Equal(t, "/var/cache/opz", s.Cache.Dir)
	assert.Equal(t, time.Duration(0), s.CacheTTL(time.Minute))
	assert.Equal(t, "/var/lib/opz.prom", s.MetricsFile)
}

func TestSettings_ApplyEnv(t *testing.T) {
	t.Parallel()

	lookup := func(env map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		}
	}

	s := &Settings{Vault: "Private"}
	require.NoError(t, s.ApplyEnv(lookup(map[string]string{"OPZ_VAULT": ""})))
	assert.Equal(t, "Private", s.Vault, "empty variables do not override")

	err := s.ApplyEnv(lookup(map[string]string{"OPZ_CACHE_TTL": "sixty"}))
	var ce dserrors.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "OPZ_CACHE_TTL", ce.Field)
}

func TestSettings_ExpandsHome(t *testing.T) {
	t.Parallel()

	home, err := homedir.Dir()
	require.NoError(t, err)

	s := &Settings{Cache: CacheSettings{Dir: "~/cache/opz"}}
	dir, err := s.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cache", "opz"), dir)

	empty, err := (&Settings{}).MetricsPath()
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestDefaultPath(t *testing.T) {
	dir := testutil.IsolateOpzEnv(t)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", "opz", "config.yaml"), path)

	require.NoError(t, os.Unsetenv("XDG_CONFIG_HOME"))
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	path, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".config", "opz", "config.yaml"), path)
}
