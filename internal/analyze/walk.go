package analyze

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/woubuc/sweep/internal/project"
)

// alwaysSkip are editor and VCS directories whose churn says nothing about
// whether a project is still being worked on.
var alwaysSkip = map[string]bool{
	".git":    true,
	".idea":   true,
	".vscode": true,
}

// LastModified returns the newest file modification time in the project,
// ignoring editor and VCS metadata and the project's own cleanable
// directories. ok is false when no file was found. Unreadable entries are
// skipped.
func LastModified(ctx context.Context, p *project.Project) (newest time.Time, ok bool, err error) {
	err = filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if d != nil && d.IsDir() && path != p.Root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != p.Root && (alwaysSkip[d.Name()] || p.IsCleanableDir(path)) {
				return fs.SkipDir
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if mod := info.ModTime(); !ok || mod.After(newest) {
			newest, ok = mod, true
		}
		return nil
	})
	return newest, ok, err
}

// DirSize sums the sizes of the regular files below dir. Entries that
// cannot be read are left out of the total.
func DirSize(ctx context.Context, dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
