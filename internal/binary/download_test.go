package binary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/woubuc/sweep/internal/release"
)

func newTestDownloader(cacheDir string) *Downloader {
	d := NewDownloader(cacheDir)
	d.retries = 1
	d.baseDelay = time.Millisecond
	return d
}

func TestDownloaderDownloadToFile(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
		notFound   bool
	}{
		{
			name:       "successful_download",
			statusCode: http.StatusOK,
			body:       "test archive content",
		},
		{
			name:       "404_not_found",
			statusCode: http.StatusNotFound,
			body:       "not found",
			wantErr:    true,
			notFound:   true,
		},
		{
			name:       "500_server_error",
			statusCode: http.StatusInternalServerError,
			body:       "server error",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			tmpDir := t.TempDir()
			downloader := newTestDownloader(tmpDir)

			destPath := filepath.Join(tmpDir, "test-file")
			err := downloader.DownloadToFile(context.Background(), server.URL, destPath)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if errors.Is(err, ErrNotFound) != tt.notFound {
					t.Errorf("errors.Is(err, ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
				}
				if _, statErr := os.Stat(destPath + ".tmp"); !os.IsNotExist(statErr) {
					t.Error("temp file should not remain after failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}

			if string(content) != tt.body {
				t.Errorf("content mismatch:\ngot:  %q\nwant: %q", string(content), tt.body)
			}
		})
	}
}

func TestDownloaderRetryLogic(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	downloader := newTestDownloader(tmpDir)
	downloader.retries = 3

	destPath := filepath.Join(tmpDir, "test-file")
	if err := downloader.DownloadToFile(context.Background(), server.URL, destPath); err != nil {
		t.Fatalf("expected success after retries, got error: %v", err)
	}

	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDownloaderNotFoundIsNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	downloader := newTestDownloader(tmpDir)
	downloader.retries = 3

	err := downloader.DownloadToFile(context.Background(), server.URL, filepath.Join(tmpDir, "f"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestDownloaderContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tmpDir := t.TempDir()
	downloader := newTestDownloader(tmpDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := downloader.DownloadToFile(ctx, server.URL, filepath.Join(tmpDir, "test-file"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDownloaderDownloadArchive(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/v1.2.0/sweep-linux.tar.gz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, err := w.Write([]byte("archive")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	asset, err := release.NewAsset(server.URL, "1.2.0", "swp", "linux")
	if err != nil {
		t.Fatalf("NewAsset failed: %v", err)
	}

	cacheDir := t.TempDir()
	downloader := newTestDownloader(cacheDir)

	path, err := downloader.DownloadArchive(context.Background(), asset)
	if err != nil {
		t.Fatalf("DownloadArchive failed: %v", err)
	}

	wantPath := filepath.Join(cacheDir, "swp", "1.2.0", "sweep-linux.tar.gz")
	if path != wantPath {
		t.Errorf("path = %s, want %s", path, wantPath)
	}

	// Second call is served from the cache
	if _, err := downloader.DownloadArchive(context.Background(), asset); err != nil {
		t.Fatalf("cached DownloadArchive failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestDownloaderVerificationArtifacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1.2.0/sweep-linux.tar.gz.asc":
			w.Write([]byte("signature"))
		case "/v1.2.0/checksums.txt":
			w.Write([]byte("abc  sweep-linux.tar.gz\n"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	asset, err := release.NewAsset(server.URL, "1.2.0", "swp", "linux")
	if err != nil {
		t.Fatalf("NewAsset failed: %v", err)
	}

	cacheDir := t.TempDir()
	downloader := newTestDownloader(cacheDir)

	sigPath, err := downloader.DownloadSignature(context.Background(), asset)
	if err != nil {
		t.Fatalf("DownloadSignature failed: %v", err)
	}
	if filepath.Base(sigPath) != "sweep-linux.tar.gz.asc" {
		t.Errorf("unexpected signature path: %s", sigPath)
	}

	sumPath, err := downloader.DownloadChecksums(context.Background(), asset)
	if err != nil {
		t.Fatalf("DownloadChecksums failed: %v", err)
	}
	if filepath.Base(sumPath) != "checksums.txt" {
		t.Errorf("unexpected checksum path: %s", sumPath)
	}

	if _, err := downloader.DownloadSignature(context.Background(), &release.Asset{}); err == nil {
		t.Error("expected error for asset without signature URL")
	}
	if _, err := downloader.DownloadChecksums(context.Background(), nil); err == nil {
		t.Error("expected error for nil asset")
	}
}

func TestDownloaderRedirectHandling(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("redirected content"))
	}))
	defer target.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/asset", http.StatusFound)
	}))
	defer redirector.Close()

	tmpDir := t.TempDir()
	downloader := newTestDownloader(tmpDir)

	destPath := filepath.Join(tmpDir, "nested", "dir", "file")
	if err := downloader.DownloadToFile(context.Background(), redirector.URL, destPath); err != nil {
		t.Fatalf("DownloadToFile failed: %v", err)
	}

	content, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(content) != "redirected content" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	full := writeFile(t, tmpDir, "full", []byte("data"))
	empty := writeFile(t, tmpDir, "empty", nil)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"non_empty_file", full, true},
		{"empty_file", empty, false},
		{"directory", tmpDir, false},
		{"missing", filepath.Join(tmpDir, "missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileExists(tt.path); got != tt.want {
				t.Errorf("fileExists(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
