// Package release builds the download locations of published sweep release
// assets and reads the version to install from package metadata.
package release

import (
	"fmt"
	"strings"
)

const (
	// DefaultHost is the base URL that versioned release directories live under.
	DefaultHost = "https://github.com/woubuc/sweep/releases/download"
	// DefaultTool is the name of the installed executable.
	DefaultTool = "swp"
	// assetPrefix is the archive name prefix shared by every release asset.
	assetPrefix = "sweep"
	// checksumFile is published next to the archives when available.
	checksumFile = "checksums.txt"
)

// Asset describes a single downloadable release archive.
type Asset struct {
	Tool         string // executable name inside the archive, e.g. "swp"
	Version      string // without leading "v"
	Label        string // platform label, e.g. "linux"
	URL          string
	SignatureURL string
	ChecksumURL  string
}

// FileName returns the archive file name, e.g. "sweep-linux.tar.gz".
func (a *Asset) FileName() string {
	return fmt.Sprintf("%s-%s.tar.gz", assetPrefix, a.Label)
}

// Executable returns the name of the executable inside the archive.
// Windows builds ship with an .exe suffix.
func (a *Asset) Executable() string {
	if strings.HasPrefix(a.Label, "win") {
		return a.Tool + ".exe"
	}
	return a.Tool
}

// URL returns the download URL of a release asset:
//
//	<host>/v<version>/sweep-<label>.tar.gz
//
// The tool name does not appear in the URL; it only names the executable.
func URL(host, version, tool, label string) string {
	return fmt.Sprintf("%s/v%s/%s-%s.tar.gz", normalizeHost(host), trimVersion(version), assetPrefix, label)
}

// NewAsset builds the asset description for a version and platform label.
func NewAsset(host, version, tool, label string) (*Asset, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("version is required")
	}
	if label == "" {
		return nil, fmt.Errorf("platform label is required")
	}
	if tool == "" {
		tool = DefaultTool
	}
	if host == "" {
		host = DefaultHost
	}

	url := URL(host, version, tool, label)
	return &Asset{
		Tool:         tool,
		Version:      trimVersion(version),
		Label:        label,
		URL:          url,
		SignatureURL: url + ".asc",
		ChecksumURL:  fmt.Sprintf("%s/v%s/%s", normalizeHost(host), trimVersion(version), checksumFile),
	}, nil
}

func normalizeHost(host string) string {
	return strings.TrimRight(host, "/")
}

// trimVersion strips surrounding whitespace and a single leading "v" so the
// URL template never produces "vv1.2.0".
func trimVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}
