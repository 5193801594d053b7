// Package analyze decides which discovered projects are old enough to clean
// and measures how much space removing their dependency directories frees.
package analyze

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/woubuc/sweep/internal/git"
	"github.com/woubuc/sweep/internal/project"
)

// DefaultMaxAge is how long a project must be untouched before it is
// cleaned.
const DefaultMaxAge = 30 * 24 * time.Hour

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Options control analysis.
type Options struct {
	// All keeps every project regardless of age
	All bool
	// MaxAge defaults to DefaultMaxAge
	MaxAge time.Duration
	// GitSafe keeps only directories the enclosing repository ignores
	GitSafe bool
	// Concurrency bounds the number of projects analysed at once
	Concurrency int
	Clock       Clock
	Logger      *zerolog.Logger
}

// Candidate is a directory that will be removed.
type Candidate struct {
	Path         string
	Project      *project.Project
	Bytes        int64
	LastModified time.Time
}

// Plan is the result of analysis.
type Plan struct {
	// Candidates are sorted by path
	Candidates []Candidate
	// Projects is the number of old projects contributing candidates
	Projects int
	// Recent is the number of projects skipped for being modified recently
	Recent int
	// Protected counts directories dropped because git tracks them
	Protected    int
	ReclaimBytes int64
	RecentBytes  int64
}

type projectResult struct {
	project  *project.Project
	modified time.Time
	hasFiles bool
	dirs     []string
	sizes    []int64
	dropped  int
}

// Analyze measures each project and builds the removal plan.
func Analyze(ctx context.Context, projects []*project.Project, opts Options) (*Plan, error) {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Clock == nil {
		opts.Clock = ClockFunc(time.Now)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	ignores := &ignoreCache{byRoot: make(map[string]*git.IgnoreMatcher)}
	results := make([]projectResult, len(projects))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, p := range projects {
		g.Go(func() error {
			res := projectResult{project: p, dirs: p.Dirs}

			var err error
			res.modified, res.hasFiles, err = LastModified(groupCtx, p)
			if err != nil {
				return err
			}

			if opts.GitSafe {
				res.dirs, err = ignores.filter(groupCtx, p.Root, p.Dirs)
				if err != nil {
					return err
				}
				res.dropped = len(p.Dirs) - len(res.dirs)
			}

			for _, dir := range res.dirs {
				size, err := DirSize(groupCtx, dir)
				if err != nil {
					return err
				}
				res.sizes = append(res.sizes, size)
			}

			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := opts.Clock.Now()
	plan := &Plan{}

	for _, res := range results {
		plan.Protected += res.dropped

		var total int64
		for _, s := range res.sizes {
			total += s
		}

		// A project with no files of its own has nothing left to work on.
		old := opts.All || !res.hasFiles || now.Sub(res.modified) > opts.MaxAge
		if !old {
			plan.Recent++
			plan.RecentBytes += total
			log.Debug().Str("project", res.project.Root).Time("modified", res.modified).Msg("recently modified")
			continue
		}
		if len(res.dirs) == 0 {
			continue
		}

		plan.Projects++
		plan.ReclaimBytes += total
		for j, dir := range res.dirs {
			plan.Candidates = append(plan.Candidates, Candidate{
				Path:         dir,
				Project:      res.project,
				Bytes:        res.sizes[j],
				LastModified: res.modified,
			})
		}
	}

	sort.Slice(plan.Candidates, func(i, j int) bool {
		return plan.Candidates[i].Path < plan.Candidates[j].Path
	})

	log.Debug().
		Int("candidates", len(plan.Candidates)).
		Int("recent", plan.Recent).
		Int("protected", plan.Protected).
		Int64("bytes", plan.ReclaimBytes).
		Msg("analysis finished")

	return plan, nil
}

// ignoreCache shares one matcher per repository between projects.
type ignoreCache struct {
	mu     sync.Mutex
	byRoot map[string]*git.IgnoreMatcher
}

// filter keeps the dirs that the repository around projectRoot ignores.
// Projects outside any repository keep all their dirs.
func (c *ignoreCache) filter(ctx context.Context, projectRoot string, dirs []string) ([]string, error) {
	client := git.NewClient(projectRoot)

	root, err := client.Root(ctx)
	if errors.Is(err, git.ErrNotAGitRepo) {
		return dirs, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.byRoot[root]
	if !ok {
		if m, err = client.Ignores(ctx); err != nil {
			return nil, err
		}
		c.byRoot[root] = m
	}

	var kept []string
	for _, dir := range dirs {
		if m.Ignored(dir, true) {
			kept = append(kept, dir)
		}
	}
	return kept, nil
}
