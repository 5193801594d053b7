// Command swp finds software projects that have not been touched in a while
// and deletes their dependency and build directories to free disk space.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/woubuc/sweep/internal/platform"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		detector: platform.NewDetector(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
	}
	if err := a.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type app struct {
	detector platform.Detector
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time

	// persistent flags
	debug       bool
	historyPath string
}

func (a *app) rootCmd() *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:   "swp [paths...]",
		Short: "Reduce the disk usage of your projects",
		Long: `swp searches the given directories (or the configured paths, or the current
directory) for software projects. Projects that have not been modified for a
while get their dependency and build directories removed: target/ for Rust,
node_modules/ and .cache/ for Node.js, .gradle/ and build/ for Java, plus any
directory listed in a project's .swpfile.

Configuration is read from $SWEEP_CONFIG or config.lua in the sweep user
config directory. Flags override the configuration.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.clean(cmd.Context(), cmd, opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.debug, "debug", "d", false, "show debug logs")
	pf.StringVar(&a.historyPath, "history-file", "", "run history database (default: sweep/history.db in the user data dir)")

	f := cmd.Flags()
	f.BoolVarP(&opts.all, "all", "a", false, "include projects regardless of when they were last modified")
	f.BoolVarP(&opts.force, "force", "f", false, "do not ask for confirmation before deleting")
	f.StringVarP(&opts.ignore, "ignore", "i", "", "skip directories whose full path matches this regular expression")
	f.IntVar(&opts.maxAgeDays, "max-age", 0, "minimum days since last modification, at least 1 (default 30)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "show what would be removed without deleting anything")
	f.BoolVar(&opts.gitSafe, "git-safe", false, "only remove directories that git ignores")
	f.StringVar(&opts.configPath, "config", "", "config file to use")
	f.BoolVar(&opts.noHistory, "no-history", false, "do not record this run")

	cmd.AddCommand(a.historyCmd(), a.versionCmd())
	return cmd
}
