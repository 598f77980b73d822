package gather

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/epaperdriver/gather-build/pkg/walker"
)

// tree writes files given as slash separated paths relative to root
func tree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// snapshot reads every file below root, keyed by slash separated relative path
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	got := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func rootsIn(dir string) walker.Roots {
	return walker.Roots{
		Example: filepath.Join(dir, "example"),
		Library: filepath.Join(dir, "src"),
		Output:  filepath.Join(dir, "build"),
	}
}

func TestRunBlinkScenario(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{
		"example/Blink/Blink.ino": "#include \"driver.hpp\"\nsetup(){}",
		"example/Blink/notes.txt": "ignore me",
		"example/README.md":       "not a unit",
		"src/driver.hpp":          "#include \"util.hpp\"\nclass Driver{};",
		"src/util.hpp":            "class Util{};",
		"src/notes.txt":           "ignore me too",
	})

	roots := rootsIn(dir)
	summary, err := NewGatherer(Options{Roots: roots}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]string{
		"Blink/Blink.ino": "#include \"driver.h\"\nsetup(){}",
		"Blink/driver.h":  "#include \"util.h\"\nclass Driver{};",
		"Blink/util.h":    "class Util{};",
	}
	if diff := cmp.Diff(want, snapshot(t, roots.Output)); diff != "" {
		t.Errorf("build tree mismatch (-want +got):\n%s", diff)
	}

	if len(summary.Units) != 1 || summary.Units[0].Name != "Blink" {
		t.Fatalf("unexpected units %+v", summary.Units)
	}
	if summary.FileCount() != 3 {
		t.Errorf("FileCount() = %d, want 3", summary.FileCount())
	}
	if summary.CollisionCount() != 0 {
		t.Errorf("CollisionCount() = %d, want 0", summary.CollisionCount())
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{
		"example/Clock/Clock.ino": "#include \"EpaperDriver.hpp\"\r\nvoid loop(){}\r\n",
		"example/Demo/Demo.ino":   "void setup(){}\n",
		"src/EpaperDriver.hpp":    "#pragma once\n",
		"src/EpaperDriver.cpp":    "#include \"EpaperDriver.hpp\"\n",
	})
	roots := rootsIn(dir)
	g := NewGatherer(Options{Roots: roots})

	if _, err := g.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	first := snapshot(t, roots.Output)

	if _, err := g.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if diff := cmp.Diff(first, snapshot(t, roots.Output)); diff != "" {
		t.Errorf("second run changed the build tree (-first +second):\n%s", diff)
	}

	if got := first["Clock/Clock.ino"]; got != "#include \"EpaperDriver.h\"\nvoid loop(){}\n" {
		t.Errorf("Clock.ino = %q", got)
	}
	if len(first) != 6 {
		t.Errorf("expected 6 output files, got %d: %v", len(first), first)
	}
}

func TestRunKeepsStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{
		"example/Demo/Demo.ino": "x",
		"src/old.cpp":           "old",
	})
	roots := rootsIn(dir)
	g := NewGatherer(Options{Roots: roots})
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(roots.Library, "old.cpp")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(roots.Output, "Demo", "old.cpp")); err != nil {
		t.Errorf("stale output should survive a rerun: %v", err)
	}
}

func TestRunMissingExampleRoot(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{"src/driver.hpp": "x"})
	roots := rootsIn(dir)

	_, err := NewGatherer(Options{Roots: roots}).Run(context.Background())
	if !errors.Is(err, walker.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := os.Stat(roots.Output); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("output root should not be created, stat error = %v", err)
	}
}

func TestRunMissingLibraryRoot(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{"example/Demo/Demo.ino": "x"})

	_, err := NewGatherer(Options{Roots: rootsIn(dir)}).Run(context.Background())
	if !errors.Is(err, walker.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRunOutputUnitIsFile(t *testing.T) {
	dir := t.TempDir()
	tree(t, dir, map[string]string{
		"example/A/A.ino": "a",
		"example/B/B.ino": "b",
		"src/lib.cpp":     "lib",
		"build/B":         "in the way",
	})
	roots := rootsIn(dir)

	summary, err := NewGatherer(Options{Roots: roots}).Run(context.Background())
	if !errors.Is(err, walker.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	// A was finished before B failed
	if len(summary.Units) != 1 || summary.Units[0].Name != "A" {
		t.Errorf("expected unit A to be materialized, got %+v", summary.Units)
	}
	if _, err := os.Stat(filepath.Join(roots.Output, "A", "lib.cpp")); err != nil {
		t.Errorf("expected A/lib.cpp: %v", err)
	}
}
