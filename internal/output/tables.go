package output

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/woubuc/sweep/internal/analyze"
	"github.com/woubuc/sweep/internal/history"
	"github.com/woubuc/sweep/internal/remove"
)

// Bytes formats a size for humans ("1.2 GB").
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	if p.tty {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

// PlanTable lists the directories that will be removed with their size
// and how long ago their project was last touched.
func (p *Printer) PlanTable(plan *analyze.Plan, now time.Time) {
	t := p.newTable()
	t.AppendHeader(table.Row{"Directory", "Project", "Modified", "Size"})

	pathWidth := p.width - 50
	if pathWidth < 20 {
		pathWidth = 20
	}

	for _, c := range plan.Candidates {
		languages := ""
		modified := "never"
		if c.Project != nil {
			languages = strings.Join(c.Project.Languages, ", ")
		}
		if !c.LastModified.IsZero() {
			modified = analyze.TimeAgo(now.Sub(c.LastModified))
		}
		t.AppendRow(table.Row{ElidePath(c.Path, pathWidth), languages, modified, Bytes(c.Bytes)})
	}

	t.AppendFooter(table.Row{"", "", "Total", Bytes(plan.ReclaimBytes)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	t.Render()
}

// SummaryTable prints the totals of a removal run.
func (p *Printer) SummaryTable(s remove.Summary, dryRun bool) {
	t := p.newTable()
	freed := "Freed"
	if dryRun {
		freed = "Would free"
	}
	t.AppendHeader(table.Row{"Removed", "Failed", freed})
	t.AppendRow(table.Row{s.Removed, s.Failed, Bytes(s.FreedBytes)})

	p.mu.Lock()
	defer p.mu.Unlock()
	t.Render()
}

// HistoryTable prints past runs, newest first.
func (p *Printer) HistoryTable(runs []history.Run) {
	t := p.newTable()
	t.AppendHeader(table.Row{"When", "Paths", "Projects", "Removed", "Failed", "Freed", "Mode"})

	for _, r := range runs {
		mode := "clean"
		if r.DryRun {
			mode = "dry run"
		}
		t.AppendRow(table.Row{
			humanize.Time(r.StartedAt),
			strings.Join(r.Roots, ", "),
			r.Projects,
			r.Removed,
			r.Failed,
			Bytes(r.FreedBytes),
			mode,
		})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	t.Render()
}
