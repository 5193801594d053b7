package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Project is a detected project root and its cleanable directories.
type Project struct {
	Root      string
	Languages []string
	Dirs      []string
}

// Detect reports whether dir is a project for any of langs, or because it
// contains a .swpfile or .cleanuprc. It returns nil when dir is not a
// project. Only subdirectories that exist are recorded as cleanable.
func Detect(dir string, langs []Language) (*Project, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	p := &Project{Root: dir}
	found := false

	for _, lang := range langs {
		if !hasAnyFile(dir, lang.Markers) {
			continue
		}
		found = true
		p.Languages = append(p.Languages, lang.Name)
		for _, name := range lang.Dirs {
			p.addDirIfExists(name)
		}
	}

	for _, name := range []string{SwpFile, CleanupFile} {
		listed, err := ParseSwpFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s in %s: %w", name, dir, err)
		}
		found = true
		for _, d := range listed {
			p.addDirIfExists(d)
		}
	}

	if !found {
		return nil, nil
	}
	return p, nil
}

// IsCleanableDir reports whether path is one of the project's cleanable
// directories.
func (p *Project) IsCleanableDir(path string) bool {
	path = filepath.Clean(path)
	for _, d := range p.Dirs {
		if d == path {
			return true
		}
	}
	return false
}

// addDirIfExists records root/name when it is an existing directory inside
// the root. Listed names that climb out of the root are ignored.
func (p *Project) addDirIfExists(name string) {
	path := filepath.Join(p.Root, strings.TrimRight(name, `/\`))
	if path == filepath.Clean(p.Root) || !insideRoot(p.Root, path) {
		return
	}

	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return
	}

	for _, d := range p.Dirs {
		if d == path {
			return
		}
	}
	p.Dirs = append(p.Dirs, path)
}

func insideRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasAnyFile(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
