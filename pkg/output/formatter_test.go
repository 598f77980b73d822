package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/epaperdriver/gather-build/pkg/gather"
	"github.com/epaperdriver/gather-build/pkg/includes"
	"github.com/epaperdriver/gather-build/pkg/materialize"
	"github.com/epaperdriver/gather-build/pkg/walker"
)

func TestPrintGatherReport(t *testing.T) {
	color.NoColor = true

	summary := &gather.Summary{
		Roots: walker.Roots{Example: "example", Library: "src", Output: "build"},
		Units: []gather.UnitSummary{
			{
				Name:      "Blink",
				OutputDir: "build/Blink",
				Files:     []string{"Blink.ino", "driver.h", "util.h"},
				Writes:    4,
				Collisions: []materialize.Collision{
					{Output: "util.h", Kept: "src/util.hpp", Dropped: "example/Blink/util.hpp"},
				},
			},
			{Name: "Clock", OutputDir: "build/Clock", Files: []string{"Clock.ino"}},
		},
	}
	checks := []*includes.Report{
		{Unit: "Blink", Files: 3, Missing: []includes.MissingInclude{{File: "Blink.ino", Include: "gone.h"}}},
	}

	var buf bytes.Buffer
	PrintGatherReport(&buf, summary, checks)
	out := buf.String()

	for _, want := range []string{
		"Build Tree Report",
		"Blink  3 file(s) -> build/Blink",
		"collision: util.h kept src/util.hpp, dropped example/Blink/util.hpp",
		"unresolved include: gone.h in Blink.ino",
		"Clock  1 file(s) -> build/Clock",
		"Summary: 2 example(s), 4 file(s), 1 collision(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
