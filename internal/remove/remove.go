// Package remove deletes the directories selected by analysis.
package remove

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/woubuc/sweep/internal/analyze"
	"github.com/woubuc/sweep/internal/lock"
)

const lockName = "clean"

var (
	ErrSymlink = errors.New("refusing to remove symlink")
	ErrNotDir  = errors.New("not a directory")
)

// Options control removal.
type Options struct {
	// DryRun reports what would be removed without touching the disk
	DryRun bool
	// LockDir, if set, holds a lock for the duration of the run
	LockDir     string
	Concurrency int
	// Progress, if set, is called once per finished directory from several
	// goroutines.
	Progress func(Outcome)
	Logger   *zerolog.Logger
}

// Outcome is the result of removing one directory.
type Outcome struct {
	Path  string
	Bytes int64
	Err   error
}

// Summary totals a set of outcomes.
type Summary struct {
	Removed    int
	Failed     int
	FreedBytes int64
}

// Remove deletes every candidate directory and reports one outcome per
// candidate, in input order. A failure is recorded in its outcome and does
// not stop the others. The returned error is set only when the run could
// not start or was cancelled.
func Remove(ctx context.Context, candidates []analyze.Candidate, opts Options) ([]Outcome, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	if opts.LockDir != "" && !opts.DryRun {
		l, err := lock.Acquire(ctx, opts.LockDir, lockName)
		if err != nil {
			return nil, err
		}
		defer l.Release()
	}

	outcomes := make([]Outcome, len(candidates))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, c := range candidates {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			out := Outcome{Path: c.Path, Bytes: c.Bytes}
			out.Err = removeDir(c.Path, opts.DryRun)
			if out.Err != nil {
				out.Bytes = 0
				log.Warn().Err(out.Err).Str("path", c.Path).Msg("remove failed")
			} else {
				log.Debug().Str("path", c.Path).Bool("dry_run", opts.DryRun).Msg("removed")
			}

			outcomes[i] = out
			if opts.Progress != nil {
				opts.Progress(out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func removeDir(path string, dryRun bool) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, path)
	}
	if dryRun {
		return nil
	}
	return os.RemoveAll(path)
}

// Summarize totals outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Path == "" {
			continue
		}
		if o.Err != nil {
			s.Failed++
			continue
		}
		s.Removed++
		s.FreedBytes += o.Bytes
	}
	return s
}
