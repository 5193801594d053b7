package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/woubuc/sweep/internal/release"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "sweep-installer/1.0"
)

// ErrNotFound is returned when the server answers 404. It is never retried.
var ErrNotFound = errors.New("not found")

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *resty.Client
	cacheDir  string
	retries   int
	baseDelay time.Duration
}

// NewDownloader creates a new downloader
func NewDownloader(cacheDir string) *Downloader {
	client := resty.New().
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Downloader{
		client:    client,
		cacheDir:  cacheDir,
		retries:   DefaultRetries,
		baseDelay: time.Second,
	}
}

// DownloadToFile downloads a URL to a specific file path
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := d.baseDelay << uint(attempt-1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotFound) {
			return err
		}

		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", url, ErrNotFound)
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// DownloadArchive downloads a release archive to the cache directory
func (d *Downloader) DownloadArchive(ctx context.Context, asset *release.Asset) (string, error) {
	if asset == nil {
		return "", fmt.Errorf("release asset is nil")
	}
	path, err := d.fetchCached(ctx, asset, asset.URL)
	if err != nil {
		return "", fmt.Errorf("download archive: %w", err)
	}
	return path, nil
}

// DownloadSignature downloads the detached GPG signature of the archive
func (d *Downloader) DownloadSignature(ctx context.Context, asset *release.Asset) (string, error) {
	if asset == nil || asset.SignatureURL == "" {
		return "", fmt.Errorf("no signature URL available")
	}
	path, err := d.fetchCached(ctx, asset, asset.SignatureURL)
	if err != nil {
		return "", fmt.Errorf("download signature: %w", err)
	}
	return path, nil
}

// DownloadChecksums downloads the release checksum file
func (d *Downloader) DownloadChecksums(ctx context.Context, asset *release.Asset) (string, error) {
	if asset == nil || asset.ChecksumURL == "" {
		return "", fmt.Errorf("no checksum URL available")
	}
	path, err := d.fetchCached(ctx, asset, asset.ChecksumURL)
	if err != nil {
		return "", fmt.Errorf("download checksums: %w", err)
	}
	return path, nil
}

// fetchCached downloads url into cache/{tool}/{version}/{filename}
// unless a non-empty copy is already there.
func (d *Downloader) fetchCached(ctx context.Context, asset *release.Asset, url string) (string, error) {
	cachePath := filepath.Join(d.cacheDir, asset.Tool, asset.Version, filepath.Base(url))

	if fileExists(cachePath) {
		return cachePath, nil
	}

	if err := d.DownloadToFile(ctx, url, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
