package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/woubuc/sweep/internal/platform"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "SWEEP_CONFIG"

// DefaultPath returns $SWEEP_CONFIG, or config.lua in the sweep directory
// under the user config dir.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandHome(p)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "sweep", "config.lua"), nil
}

// Load parses the config at path. An empty path means DefaultPath, and a
// missing file at the default location yields Default(). A missing file
// that was named explicitly is an error.
func Load(ctx context.Context, path string, detector platform.Detector) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
		explicit = os.Getenv(EnvConfigPath) != ""
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, info.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := NewParser(detector).ParseString(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
