package project

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Names of the files that list extra cleanable directories for a project.
// .cleanuprc is the legacy name and is read as well.
const (
	SwpFile     = ".swpfile"
	CleanupFile = ".cleanuprc"
)

// ParseSwpFile reads a list of directory names, one per line. Lines are
// trimmed; blank lines and lines starting with # are skipped; duplicates
// are dropped and order is preserved.
func ParseSwpFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dirs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		dirs = append(dirs, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return dirs, nil
}
