package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv sets environment variables for the duration of a test.
// Original values are restored through t.Cleanup, so tests using it must
// not run in parallel.
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		t.Setenv(key, value)
	}
}

// UnsetTestEnv removes variables for the duration of a test.
func UnsetTestEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		// t.Setenv registers the restore of the original value.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
	}
}

// IsolateOpzEnv points opz's config and cache locations at a fresh temp
// directory and clears every OPZ_* override. It returns that directory.
func IsolateOpzEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	SetupTestEnv(t, map[string]string{
		"XDG_CONFIG_HOME": filepath.Join(dir, "config"),
		"XDG_CACHE_HOME":  filepath.Join(dir, "cache"),
		"HOME":            dir,
	})
	UnsetTestEnv(t, "OPZ_VAULT", "OPZ_BACKEND", "OPZ_CACHE_DIR", "OPZ_CACHE_TTL", "OPZ_METRICS_FILE", "NO_COLOR")
	return dir
}
