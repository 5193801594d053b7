package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/woubuc/sweep/internal/analyze"
	"github.com/woubuc/sweep/internal/config"
	"github.com/woubuc/sweep/internal/discover"
	"github.com/woubuc/sweep/internal/history"
	"github.com/woubuc/sweep/internal/logging"
	"github.com/woubuc/sweep/internal/output"
	"github.com/woubuc/sweep/internal/project"
	"github.com/woubuc/sweep/internal/remove"
)

type cleanOptions struct {
	all        bool
	force      bool
	ignore     string
	maxAgeDays int
	dryRun     bool
	gitSafe    bool
	configPath string
	noHistory  bool
}

// settings are the effective options after merging config and flags.
type settings struct {
	roots     []string
	ignore    *regexp.Regexp
	all       bool
	maxAge    time.Duration
	gitSafe   bool
	languages []project.Language
}

func (a *app) clean(ctx context.Context, cmd *cobra.Command, opts cleanOptions, args []string) error {
	log := logging.New(a.stderr, a.debug)
	started := a.now()

	cfg, err := config.Load(ctx, opts.configPath, a.detector)
	if err != nil {
		return err
	}
	s, err := merge(cmd, cfg, opts, args)
	if err != nil {
		return err
	}

	p := output.New(a.stdout, a.stdin)

	p.StartSpinner(strings.Join(s.roots, ", "))
	res, err := discover.Discover(ctx, s.roots, discover.Options{
		Languages: s.languages,
		Ignore:    s.ignore,
		Progress: func(n int64) {
			p.UpdateSpinner(fmt.Sprintf("%d directories", n))
		},
		Logger: &log,
	})
	p.StopSpinner()
	if err != nil {
		return err
	}

	p.Status(output.LabelSearched, fmt.Sprintf("%d directories, found %d projects", res.Searched, len(res.Projects)))
	a.reportWarnings(p, res.Warnings)

	if len(res.Projects) == 0 {
		p.Success(output.LabelSearched, "No cleanable directories found")
		return nil
	}

	plan, err := analyze.Analyze(ctx, res.Projects, analyze.Options{
		All:         s.all,
		MaxAge:      s.maxAge,
		GitSafe:     s.gitSafe,
		Concurrency: discover.DefaultConcurrency(),
		Clock:       analyze.ClockFunc(a.now),
		Logger:      &log,
	})
	if err != nil {
		return err
	}

	p.Status(output.LabelAnalysed, fmt.Sprintf("%d directories in %d projects, %s",
		len(plan.Candidates), plan.Projects, output.Bytes(plan.ReclaimBytes)))
	if plan.Recent > 0 {
		p.Muted(fmt.Sprintf("%d recently modified projects skipped (%s)", plan.Recent, output.Bytes(plan.RecentBytes)))
	}
	if plan.Protected > 0 {
		p.Muted(fmt.Sprintf("%d directories kept because git tracks them", plan.Protected))
	}

	if len(plan.Candidates) == 0 {
		if plan.Recent > 0 {
			p.Muted(fmt.Sprintf("All projects were modified in the last %d days. Use --all to clean them anyway.",
				int(s.maxAge.Hours()/24)))
		} else {
			p.Success(output.LabelAnalysed, "No cleanable directories found")
		}
		return nil
	}

	p.PlanTable(plan, a.now())

	if !opts.force && !opts.dryRun {
		ok, err := p.Confirm(len(plan.Candidates))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	lockDir, err := cacheDir()
	if err != nil {
		return err
	}

	label := output.LabelRemoved
	if opts.dryRun {
		label = output.LabelWould
	}
	outcomes, err := remove.Remove(ctx, plan.Candidates, remove.Options{
		DryRun:  opts.dryRun,
		LockDir: lockDir,
		Progress: func(o remove.Outcome) {
			if o.Err != nil {
				p.Error(o.Err.Error())
				return
			}
			p.Success(label, p.Path(o.Path))
		},
		Logger: &log,
	})
	if err != nil {
		return err
	}

	summary := remove.Summarize(outcomes)
	p.SummaryTable(summary, opts.dryRun)

	if !opts.noHistory {
		a.record(ctx, log, history.Run{
			ID:         uuid.New(),
			StartedAt:  started,
			Duration:   a.now().Sub(started),
			Roots:      s.roots,
			Projects:   plan.Projects,
			Removed:    summary.Removed,
			Failed:     summary.Failed,
			FreedBytes: summary.FreedBytes,
			DryRun:     opts.dryRun,
			Dirs:       historyDirs(outcomes),
		})
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d directories could not be removed", summary.Failed)
	}
	return nil
}

// merge applies flags over the config file. Roots come from the arguments,
// then the configured paths, then the working directory.
func merge(cmd *cobra.Command, cfg *config.Config, opts cleanOptions, args []string) (*settings, error) {
	s := &settings{
		all:       cfg.All || opts.all,
		maxAge:    cfg.MaxAge(),
		gitSafe:   cfg.GitSafe || opts.gitSafe,
		languages: project.WithCustom(project.FromConfig(cfg.Languages)...),
	}

	f := cmd.Flags()
	if f.Changed("max-age") {
		if opts.maxAgeDays < 1 {
			return nil, fmt.Errorf("--max-age must be at least 1 day (use --all to ignore age)")
		}
		s.maxAge = time.Duration(opts.maxAgeDays) * 24 * time.Hour
	}
	if s.maxAge <= 0 {
		s.maxAge = analyze.DefaultMaxAge
	}

	pattern := cfg.Ignore
	if f.Changed("ignore") {
		pattern = opts.ignore
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern: %w", err)
		}
		s.ignore = re
	}

	roots := args
	if len(roots) == 0 {
		roots = cfg.Paths
	}
	for _, r := range roots {
		expanded, err := config.ExpandHome(r)
		if err != nil {
			return nil, err
		}
		s.roots = append(s.roots, expanded)
	}
	if len(s.roots) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		s.roots = []string{wd}
	}

	return s, nil
}

func (a *app) reportWarnings(p *output.Printer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	if a.debug {
		for _, w := range warnings {
			p.Warn(w)
		}
		return
	}
	p.Warn(fmt.Sprintf("%d paths could not be searched (use --debug to list them)", len(warnings)))
}

// record saves the run. History is best effort and never fails a run.
func (a *app) record(ctx context.Context, log zerolog.Logger, run history.Run) {
	store, err := history.Open(a.historyPath)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, run); err != nil {
		log.Warn().Err(err).Msg("record run")
	}
}

func historyDirs(outcomes []remove.Outcome) []history.Dir {
	dirs := make([]history.Dir, 0, len(outcomes))
	for _, o := range outcomes {
		d := history.Dir{Path: o.Path, Bytes: o.Bytes}
		if o.Err != nil {
			d.Error = o.Err.Error()
		}
		dirs = append(dirs, d)
	}
	return dirs
}

// cacheDir holds the removal lock, shared with the installer.
func cacheDir() (string, error) {
	if dir := os.Getenv("SWEEP_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(dir, "sweep"), nil
}
