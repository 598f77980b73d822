package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/epaperdriver/gather-build/pkg/gather"
	"github.com/epaperdriver/gather-build/pkg/includes"
)

// PrintGatherReport prints a colored summary of a run. Include reports are optional.
func PrintGatherReport(w io.Writer, summary *gather.Summary, checks []*includes.Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Build Tree Report")
	bold.Fprintln(w, "=================")
	fmt.Fprintf(w, "Examples: %s\n", summary.Roots.Example)
	fmt.Fprintf(w, "Library:  %s\n", summary.Roots.Library)
	fmt.Fprintf(w, "Output:   %s\n", summary.Roots.Output)
	fmt.Fprintln(w)

	checksByUnit := make(map[string]*includes.Report, len(checks))
	for _, r := range checks {
		checksByUnit[r.Unit] = r
	}

	for _, unit := range summary.Units {
		cyan.Fprintf(w, "%s", unit.Name)
		fmt.Fprintf(w, "  %d file(s) -> %s\n", len(unit.Files), unit.OutputDir)

		for _, c := range unit.Collisions {
			yellow.Fprintf(w, "  collision: %s kept %s, dropped %s\n", c.Output, c.Kept, c.Dropped)
		}

		if r, ok := checksByUnit[unit.Name]; ok {
			for _, m := range r.Missing {
				red.Fprintf(w, "  unresolved include: %s in %s\n", m.Include, m.File)
			}
			for _, cycle := range r.Cycles {
				red.Fprintf(w, "  include cycle: %v\n", cycle)
			}
		}
	}
	if len(summary.Units) > 0 {
		fmt.Fprintln(w)
	}

	summaryColor := green
	if summary.CollisionCount() > 0 {
		summaryColor = yellow
	}
	for _, r := range checks {
		if !r.OK() {
			summaryColor = red
			break
		}
	}

	summaryColor.Fprintf(w, "Summary: %d example(s), %d file(s), %d collision(s)\n",
		len(summary.Units), summary.FileCount(), summary.CollisionCount())
}
