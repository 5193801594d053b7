package binary

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractBinary extracts the regular file named binaryName (at any depth)
// from a tar.gz archive to destPath with executable permissions.
func (e *Extractor) ExtractBinary(archivePath, destPath, binaryName string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return fmt.Errorf("binary %s not found in archive", binaryName)
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if !safeEntryName(header.Name) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		if header.Typeflag != tar.TypeReg || path.Base(header.Name) != binaryName {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("create dest dir: %w", err)
		}

		// Written next to the destination and renamed, so a running
		// executable is never truncated in place.
		tmpPath := destPath + ".tmp"
		outFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}

		if _, err := io.Copy(outFile, tarReader); err != nil {
			outFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write file: %w", err)
		}

		if err := outFile.Close(); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("close file: %w", err)
		}

		if err := os.Rename(tmpPath, destPath); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("rename file: %w", err)
		}

		return nil
	}
}

// safeEntryName rejects absolute names and names that climb out of the
// archive root.
func safeEntryName(name string) bool {
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}

// SetExecutable sets executable permissions on a file
func SetExecutable(filePath string) error {
	if err := os.Chmod(filePath, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
