package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/woubuc/sweep/internal/lock"
	"github.com/woubuc/sweep/internal/release"
)

const lockName = "install"

// Manager orchestrates download, verification, installation and removal
// of a single release asset
type Manager struct {
	installDir string
	cacheDir   string
	asset      *release.Asset
	force      bool
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
	log        zerolog.Logger
}

// Config holds configuration for the binary manager
type Config struct {
	// InstallDir receives the extracted executable
	InstallDir string
	// CacheDir holds downloaded archives and the install lock
	CacheDir string
	// Asset is the release asset to install
	Asset *release.Asset
	// KeyringPath enables GPG verification when set
	KeyringPath string
	// RequireVerification refuses archives that cannot be verified
	RequireVerification bool
	// Force reinstalls even when the executable is present
	Force bool
	// Logger defaults to a no-op logger
	Logger *zerolog.Logger
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.InstallDir == "" {
		return nil, fmt.Errorf("InstallDir is required")
	}
	if config.CacheDir == "" {
		return nil, fmt.Errorf("CacheDir is required")
	}
	if config.Asset == nil {
		return nil, fmt.Errorf("Asset is required")
	}

	log := zerolog.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}

	return &Manager{
		installDir: config.InstallDir,
		cacheDir:   config.CacheDir,
		asset:      config.Asset,
		force:      config.Force,
		downloader: NewDownloader(config.CacheDir),
		verifier:   NewVerifier(config.KeyringPath, config.RequireVerification),
		extractor:  NewExtractor(),
		log:        log.With().Str("component", "binary").Logger(),
	}, nil
}

// BinaryPath returns the filesystem path of the installed executable
func (m *Manager) BinaryPath() string {
	return filepath.Join(m.installDir, m.asset.Executable())
}

// IsInstalled checks if the executable is present, regular and executable
func (m *Manager) IsInstalled() (bool, error) {
	info, err := os.Stat(m.BinaryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	// Windows has no executable bit
	if m.asset.Executable() == m.asset.Tool && info.Mode().Perm()&0111 == 0 {
		return false, nil
	}

	return true, nil
}

// Download downloads and verifies the release archive without installing it
func (m *Manager) Download(ctx context.Context) (*DownloadResult, error) {
	startTime := time.Now()

	m.log.Debug().Str("url", m.asset.URL).Msg("downloading release archive")
	archivePath, err := m.downloader.DownloadArchive(ctx, m.asset)
	if err != nil {
		return nil, err
	}

	var signaturePath string
	if m.verifier.keyringPath != "" {
		signaturePath, err = m.optional(m.downloader.DownloadSignature(ctx, m.asset))
		if err != nil {
			return nil, err
		}
	}
	checksumPath, err := m.optional(m.downloader.DownloadChecksums(ctx, m.asset))
	if err != nil {
		return nil, err
	}

	verifyResult, err := m.verifier.VerifyFile(archivePath, signaturePath, checksumPath)
	if err != nil {
		m.discard(archivePath, signaturePath, checksumPath)
		return nil, fmt.Errorf("verify archive: %w", err)
	}
	if verifyResult.Method == VerificationNone {
		m.log.Warn().Str("url", m.asset.URL).Msg("release publishes no signature or checksum, archive not verified")
	}

	return &DownloadResult{
		Asset:        m.asset,
		Path:         archivePath,
		Verified:     verifyResult.Method,
		DownloadTime: time.Since(startTime),
	}, nil
}

// discard drops cached files that failed verification so the next
// attempt downloads them again.
func (m *Manager) discard(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			m.log.Warn().Err(err).Str("path", p).Msg("failed to remove unverified download")
		}
	}
}

// optional treats a missing verification artifact as absent rather than failed
func (m *Manager) optional(path string, err error) (string, error) {
	if err == nil {
		return path, nil
	}
	if errors.Is(err, ErrNotFound) {
		m.log.Debug().Err(err).Msg("verification artifact not published")
		return "", nil
	}
	return "", err
}

// Install downloads, verifies, extracts and installs the executable.
// It is a no-op when the executable is already installed, unless Force is set.
func (m *Manager) Install(ctx context.Context) error {
	l, err := lock.Acquire(ctx, m.cacheDir, lockName)
	if err != nil {
		return fmt.Errorf("acquire install lock: %w", err)
	}
	defer l.Release()

	installed, err := m.IsInstalled()
	if err != nil {
		return fmt.Errorf("check if installed: %w", err)
	}
	if installed && !m.force {
		m.log.Info().Str("path", m.BinaryPath()).Msg("already installed")
		return nil
	}

	result, err := m.Download(ctx)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := os.MkdirAll(m.installDir, 0755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}

	destPath := m.BinaryPath()
	if err := m.extractor.ExtractBinary(result.Path, destPath, m.asset.Executable()); err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	if err := SetExecutable(destPath); err != nil {
		return err
	}

	m.log.Info().
		Str("version", m.asset.Version).
		Str("platform", m.asset.Label).
		Str("verified", result.Verified.String()).
		Str("path", destPath).
		Dur("took", result.DownloadTime).
		Msg("installed")
	return nil
}

// Uninstall removes the installed executable and its download cache.
// A missing executable is not an error.
func (m *Manager) Uninstall(ctx context.Context) error {
	l, err := lock.Acquire(ctx, m.cacheDir, lockName)
	if err != nil {
		return fmt.Errorf("acquire install lock: %w", err)
	}
	defer l.Release()

	binaryPath := m.BinaryPath()
	if err := os.Remove(binaryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove binary: %w", err)
	}

	if err := os.RemoveAll(filepath.Join(m.cacheDir, m.asset.Tool)); err != nil {
		return fmt.Errorf("remove download cache: %w", err)
	}

	m.log.Info().Str("path", binaryPath).Msg("uninstalled")
	return nil
}
