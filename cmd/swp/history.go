package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/woubuc/sweep/internal/history"
	"github.com/woubuc/sweep/internal/output"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		limit     int
		purgeDays int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show previous cleanup runs",
		Long: `Without arguments, lists the most recent runs. With a run ID, lists the
directories that run removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			p := output.New(a.stdout, a.stdin)
			ctx := cmd.Context()

			if purgeDays > 0 {
				n, err := store.PurgeOlderThan(ctx, time.Duration(purgeDays)*24*time.Hour)
				if err != nil {
					return err
				}
				p.Success(output.LabelRemoved, fmt.Sprintf("%d runs older than %d days", n, purgeDays))
				return nil
			}

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
				dirs, err := store.ListDirs(ctx, id)
				if err != nil {
					return err
				}
				a.renderDirs(dirs)
				return nil
			}

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.stdout, "No runs recorded yet")
				return nil
			}
			p.HistoryTable(runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().IntVar(&purgeDays, "purge", 0, "delete runs older than this many days")
	return cmd
}

func (a *app) renderDirs(dirs []history.Dir) {
	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Directory", "Size", "Error"})
	for _, d := range dirs {
		t.AppendRow(table.Row{d.Path, output.Bytes(d.Bytes), d.Error})
	}
	t.Render()
}
