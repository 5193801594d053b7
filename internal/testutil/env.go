// Package testutil provides utilities for testing sweep in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// sweepEnv lists every environment variable sweep reads.
var sweepEnv = []string{
	"SWEEP_CONFIG",
	"SWEEP_INSTALL_DIR",
	"SWEEP_CACHE_DIR",
	"SWEEP_RELEASES_HOST",
	"SWEEP_VERSION",
	"SWEEP_KEYRING",
	"SWEEP_REQUIRE_VERIFICATION",
}

// Env describes the isolated directories created by SetupTestEnv.
type Env struct {
	Root      string
	ConfigDir string
	DataDir   string
	CacheDir  string
}

// SetupTestEnv points the user config, data and cache directories at a
// fresh temp dir and clears all SWEEP_* variables, so tests never read or
// write the real user configuration, history or download cache.
//
// The cleanup function is automatically handled by t.TempDir() and
// t.Setenv(), so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:      tmpDir,
		ConfigDir: filepath.Join(tmpDir, "config"),
		DataDir:   filepath.Join(tmpDir, "data"),
		CacheDir:  filepath.Join(tmpDir, "cache"),
	}

	for _, key := range sweepEnv {
		// Setenv registers restoration of the previous value.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	t.Setenv("XDG_DATA_HOME", env.DataDir)
	t.Setenv("XDG_CACHE_HOME", env.CacheDir)
	t.Setenv("SWEEP_CACHE_DIR", filepath.Join(env.CacheDir, "sweep"))

	for _, dir := range []string{env.ConfigDir, env.DataDir, env.CacheDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
