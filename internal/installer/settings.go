package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/woubuc/sweep/internal/release"
)

// Settings are the installer's environment overrides. Command-line flags
// take precedence over every field.
type Settings struct {
	InstallDir          string `env:"SWEEP_INSTALL_DIR" env-description:"directory that receives the swp executable"`
	CacheDir            string `env:"SWEEP_CACHE_DIR" env-description:"download cache directory"`
	ReleasesHost        string `env:"SWEEP_RELEASES_HOST" env-default:"https://github.com/woubuc/sweep/releases/download" env-description:"base URL of versioned release directories"`
	Version             string `env:"SWEEP_VERSION" env-description:"release version, overrides package.json"`
	KeyringPath         string `env:"SWEEP_KEYRING" env-description:"armored or binary GPG public keyring"`
	RequireVerification bool   `env:"SWEEP_REQUIRE_VERIFICATION" env-default:"false" env-description:"refuse unverified archives"`
}

// LoadSettings reads Settings from the environment and fills directory
// defaults: the install dir sits next to the manifest in bin/, the cache
// under the user cache dir.
func LoadSettings(manifestPath string) (*Settings, error) {
	var s Settings
	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if s.InstallDir == "" {
		base := "."
		if manifestPath != "" {
			base = filepath.Dir(manifestPath)
		}
		s.InstallDir = filepath.Join(base, "bin")
	}

	if s.CacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		s.CacheDir = filepath.Join(dir, "sweep")
	}

	if s.ReleasesHost == "" {
		s.ReleasesHost = release.DefaultHost
	}

	return &s, nil
}

// Usage describes the supported environment variables.
func Usage() string {
	text, err := cleanenv.GetDescription(&Settings{}, nil)
	if err != nil {
		return ""
	}
	return text
}
