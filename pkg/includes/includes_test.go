package includes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseIncludes(t *testing.T) {
	text := "#include \"driver.h\"\n" +
		"  #  include \"util.h\" // spaced\n" +
		"#include <Arduino.h>\n" +
		"const char *s = \"#include \\\"fake.h\\\"\";\n" +
		"#include\"tight.h\"\n"

	got := ParseIncludes(text)
	want := []string{"driver.h", "util.h", "tight.h"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseIncludes() mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphNoCycles(t *testing.T) {
	g := NewGraph()

	// a.cpp -> b.h -> c.h
	g.AddInclude("a.cpp", "b.h")
	g.AddInclude("b.h", "c.h")
	g.AddInclude("a.cpp", "b.h")

	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", cycles)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if diff := cmp.Diff([]string{"b.h"}, g.Includes("a.cpp")); diff != "" {
		t.Errorf("Includes(a.cpp) mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphCycles(t *testing.T) {
	g := NewGraph()

	// a.h -> b.h -> c.h -> a.h, plus d.h including itself
	g.AddInclude("a.h", "b.h")
	g.AddInclude("b.h", "c.h")
	g.AddInclude("c.h", "a.h")
	g.AddInclude("main.cpp", "a.h")
	g.AddInclude("d.h", "d.h")

	want := [][]string{{"a.h", "b.h", "c.h"}, {"d.h"}}
	if diff := cmp.Diff(want, g.Cycles()); diff != "" {
		t.Errorf("Cycles() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d.h"}, g.Includes("d.h")); diff != "" {
		t.Errorf("Includes(d.h) mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckUnit(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Blink.ino": "#include \"driver.h\"\n#include \"missing.h\"\n#include <SPI.h>\n",
		"driver.h":  "#include \"util.h\"\n",
		"util.h":    "#include \"driver.h\"\n",
		"notes.txt": "#include \"nowhere.h\"\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := CheckUnit("Blink", dir)
	if err != nil {
		t.Fatalf("CheckUnit() error = %v", err)
	}

	if report.Files != 3 {
		t.Errorf("Files = %d, want 3", report.Files)
	}
	wantMissing := []MissingInclude{{File: "Blink.ino", Include: "missing.h"}}
	if diff := cmp.Diff(wantMissing, report.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	wantCycles := [][]string{{"driver.h", "util.h"}}
	if diff := cmp.Diff(wantCycles, report.Cycles); diff != "" {
		t.Errorf("Cycles mismatch (-want +got):\n%s", diff)
	}
	if report.OK() {
		t.Error("report with problems should not be OK")
	}
}

func TestCheckUnitsClean(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Demo.ino"), []byte("#include \"./lib.h\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib.h"), []byte("int x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reports, err := CheckUnits(context.Background(), []UnitDir{{Name: "Demo", Dir: dir}})
	if err != nil {
		t.Fatalf("CheckUnits() error = %v", err)
	}
	if len(reports) != 1 || !reports[0].OK() {
		t.Errorf("expected one clean report, got %+v", reports)
	}
}
