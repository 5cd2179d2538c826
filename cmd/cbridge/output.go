package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cbridge/internal/diag"
	"cbridge/internal/diagfmt"
	"cbridge/internal/pipeline"
)

// printResult reports the diagnostics of every module, then what was
// written. JSON goes to stdout, everything else to stderr.
func printResult(cmd *cobra.Command, res *pipeline.Result, f genFlags, quiet bool) error {
	pathMode, ok := diagfmt.ParsePathMode(f.pathMode)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q", f.pathMode)
	}

	if f.format == "json" {
		bags := make([]diagfmt.ModuleBag, 0, len(res.Modules))
		for _, m := range res.Modules {
			m.Bag.Dedup()
			bags = append(bags, diagfmt.ModuleBag{Module: m.Name, Bag: m.Bag})
		}
		return diagfmt.JSON(cmd.OutOrStdout(), bags, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     true,
		})
	}

	errOut := cmd.ErrOrStderr()
	colored := useColor(cmd, os.Stderr)
	bags := make([]*diag.Bag, 0, len(res.Modules))
	for _, m := range res.Modules {
		bag := withoutTimings(m.Bag)
		bags = append(bags, bag)
		diagfmt.Pretty(errOut, bag, res.Files, diagfmt.PrettyOpts{
			Color:       colored,
			PathMode:    pathMode,
			Width:       f.width,
			ShowNotes:   true,
			ShowPreview: true,
			Module:      m.Name,
		})
		if f.timings && m.Timer != nil {
			fmt.Fprintf(errOut, "%s:\n%s", m.Name, m.Timer.Summary())
		}
	}
	if quiet {
		return nil
	}

	out := cmd.OutOrStdout()
	for _, m := range res.Modules {
		switch {
		case m.Skipped:
			fmt.Fprintf(out, "%s: skipped\n", m.Name)
		case m.Failed():
			fmt.Fprintf(out, "%s: failed\n", m.Name)
		case m.Bag.HasErrors() && !f.dryRun:
			header, source := m.Output.Paths(m.OutDir)
			fmt.Fprintf(out, "%s: %s, %s (partial)\n", m.Name, header, source)
		case f.dryRun:
			fmt.Fprintf(out, "%s: %s, %s (dry run, %d wrappers)\n", m.Name, m.Output.HeaderName, m.Output.SourceName, m.Output.Wrappers)
		default:
			header, source := m.Output.Paths(m.OutDir)
			suffix := ""
			if m.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(out, "%s: %s, %s%s\n", m.Name, header, source, suffix)
		}
	}
	fmt.Fprintln(errOut, diagfmt.Summary(bags...))
	return nil
}

// withoutTimings drops the timing payloads and repeated diagnostics;
// pretty output prints the timer summary instead.
func withoutTimings(bag *diag.Bag) *diag.Bag {
	if bag == nil {
		return nil
	}
	out := diag.NewBag(bag.Len())
	for _, d := range bag.Items() {
		if d.Code != diag.ObsTimings {
			out.Add(d)
		}
	}
	out.Dedup()
	return out
}
