// Package discover walks directory trees in parallel looking for projects.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/woubuc/sweep/internal/project"
)

const (
	minConcurrency = 8
	maxWarnings    = 500
)

// Options control a discovery run.
type Options struct {
	Languages []project.Language
	// Ignore skips any directory whose full path matches
	Ignore *regexp.Regexp
	// Concurrency bounds simultaneous directory reads; zero means DefaultConcurrency
	Concurrency int
	// Progress, if set, receives the running count of searched directories.
	// It is called from several goroutines.
	Progress func(searched int64)
	Logger   *zerolog.Logger
}

// Result is the outcome of a discovery run.
type Result struct {
	Projects []*project.Project
	Searched int64
	Warnings []string
}

// DefaultConcurrency returns twice the logical CPU count, at least 8.
func DefaultConcurrency() int {
	n, err := cpu.Counts(true)
	if err != nil || 2*n < minConcurrency {
		return minConcurrency
	}
	return 2 * n
}

type walker struct {
	opts     Options
	log      zerolog.Logger
	sem      chan struct{}
	searched atomic.Int64

	mu       sync.Mutex
	projects map[string]*project.Project
	warnings []string
}

// Discover finds all projects under roots. A root that is itself a project
// is reported without descending into it. Project directories, symlinks and
// ignored paths are never entered. Unreadable directories become warnings.
func Discover(ctx context.Context, roots []string, opts Options) (*Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency()
	}
	if opts.Languages == nil {
		opts.Languages = project.BuiltinLanguages()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	w := &walker{
		opts:     opts,
		log:      log,
		sem:      make(chan struct{}, opts.Concurrency),
		projects: make(map[string]*project.Project),
	}

	var wg sync.WaitGroup
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			w.addWarning("cannot resolve " + root + ": " + err.Error())
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.addWarning("cannot read " + abs + ": " + err.Error())
			continue
		}
		if !info.IsDir() {
			w.addWarning("not a directory: " + abs)
			continue
		}

		wg.Add(1)
		go func(dir string) {
			defer wg.Done()
			w.visit(ctx, dir)
		}(abs)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Searched: w.searched.Load(),
		Warnings: w.warnings,
	}
	for _, p := range w.projects {
		result.Projects = append(result.Projects, p)
	}
	sort.Slice(result.Projects, func(i, j int) bool {
		return result.Projects[i].Root < result.Projects[j].Root
	})

	w.log.Debug().
		Int("projects", len(result.Projects)).
		Int64("searched", result.Searched).
		Int("warnings", len(result.Warnings)).
		Msg("discovery finished")

	return result, nil
}

// visit checks whether dir is a project and otherwise walks its children.
func (w *walker) visit(ctx context.Context, dir string) {
	if ctx.Err() != nil {
		return
	}

	n := w.searched.Add(1)
	if w.opts.Progress != nil {
		w.opts.Progress(n)
	}

	// Hold the semaphore only during I/O so nested goroutines cannot deadlock.
	w.sem <- struct{}{}
	p, detectErr := project.Detect(dir, w.opts.Languages)
	var entries []os.DirEntry
	var readErr error
	if detectErr == nil && p == nil {
		entries, readErr = os.ReadDir(dir)
	}
	<-w.sem

	if detectErr != nil {
		w.addWarning(detectErr.Error())
		return
	}
	if p != nil {
		w.log.Debug().Str("root", p.Root).Strs("languages", p.Languages).Msg("project found")
		w.mu.Lock()
		w.projects[p.Root] = p
		w.mu.Unlock()
		return
	}
	if readErr != nil {
		w.addWarning("cannot read " + dir + ": " + readErr.Error())
		return
	}

	var wg sync.WaitGroup
	for _, e := range entries {
		// DirEntry type bits come from Lstat, so symlinks never report IsDir.
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if w.opts.Ignore != nil && w.opts.Ignore.MatchString(child) {
			w.log.Debug().Str("path", child).Msg("ignored")
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			w.visit(ctx, path)
		}(child)
	}
	wg.Wait()
}

func (w *walker) addWarning(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.warnings) < maxWarnings {
		w.warnings = append(w.warnings, msg)
	}
}
