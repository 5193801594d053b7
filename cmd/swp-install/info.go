package main

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/woubuc/sweep/internal/installer"
	"github.com/woubuc/sweep/internal/platform"
)

// printInfo shows what the installer would fetch on this host.
func (a *app) printInfo(ctx context.Context, shim *installer.Shim, s *installer.Settings, version string) error {
	info, err := a.detector.Detect(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(a.stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"OS", info.OSType + " (" + info.OS + ")"})
	t.AppendRow(table.Row{"Arch", info.ArchName + " (" + info.Arch + ")"})
	if d := info.GetDistro(); d != nil {
		t.AppendRow(table.Row{"Distro", d.ID + " " + d.Version})
	}
	t.AppendRow(table.Row{"Version", orNone(version)})
	t.AppendRow(table.Row{"Install dir", s.InstallDir})

	if version != "" {
		asset, err := shim.Resolve(ctx)
		switch {
		case err == nil:
			t.AppendRow(table.Row{"Label", asset.Label})
			t.AppendRow(table.Row{"Archive", asset.URL})
		case errors.Is(err, platform.ErrUnsupportedPlatform):
			t.AppendRow(table.Row{"Label", "unsupported"})
		default:
			return err
		}
	}

	t.Render()
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
