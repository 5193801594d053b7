package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woubuc/sweep/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("SWEEP_CONFIG", "/etc/real.lua")
	t.Setenv("SWEEP_VERSION", "9.9.9")

	env := testutil.SetupTestEnv(t)

	if _, ok := os.LookupEnv("SWEEP_CONFIG"); ok {
		t.Error("SWEEP_CONFIG should be unset")
	}
	if _, ok := os.LookupEnv("SWEEP_VERSION"); ok {
		t.Error("SWEEP_VERSION should be unset")
	}

	tests := []struct {
		key  string
		want string
	}{
		{"XDG_CONFIG_HOME", env.ConfigDir},
		{"XDG_DATA_HOME", env.DataDir},
		{"XDG_CACHE_HOME", env.CacheDir},
		{"SWEEP_CACHE_DIR", filepath.Join(env.CacheDir, "sweep")},
	}
	for _, tt := range tests {
		if got := os.Getenv(tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}

	for _, dir := range []string{env.ConfigDir, env.DataDir, env.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("directory %s not created: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestSetupTestEnv_Isolation(t *testing.T) {
	var first string

	t.Run("first", func(t *testing.T) {
		first = testutil.SetupTestEnv(t).Root
	})

	t.Run("second", func(t *testing.T) {
		if second := testutil.SetupTestEnv(t).Root; second == first {
			t.Error("each test should get its own directory")
		}
	})
}
