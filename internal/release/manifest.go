package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoVersion is returned when a manifest exists but carries no version.
var ErrNoVersion = errors.New("manifest has no version")

// manifest is the subset of package.json the installer reads.
type manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReadManifestVersion returns the "version" field of a package.json file.
func ReadManifestVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("parse manifest %s: %w", path, err)
	}

	version := trimVersion(m.Version)
	if version == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoVersion)
	}
	return version, nil
}

// ResolveVersion picks the version to install. An explicit version wins,
// then the manifest at manifestPath, then fallback. A missing manifest file
// is not an error; a malformed one is.
func ResolveVersion(explicit, manifestPath, fallback string) (string, error) {
	if v := trimVersion(explicit); v != "" {
		return v, nil
	}

	if manifestPath != "" {
		v, err := ReadManifestVersion(manifestPath)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}

	if v := trimVersion(fallback); v != "" && !strings.EqualFold(v, "dev") {
		return v, nil
	}
	return "", fmt.Errorf("no release version: pass --version or provide a package.json manifest")
}
