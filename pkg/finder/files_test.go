package finder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectCandidates(t *testing.T) {
	root := t.TempDir()
	exampleDir := filepath.Join(root, "example", "Blink")
	libraryDir := filepath.Join(root, "src")
	for _, dir := range []string{exampleDir, filepath.Join(libraryDir, "nested")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}
	for _, path := range []string{
		filepath.Join(exampleDir, "Blink.ino"),
		filepath.Join(exampleDir, "notes.txt"),
		filepath.Join(libraryDir, "driver.hpp"),
		filepath.Join(libraryDir, "driver.cpp"),
	} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	candidates, err := CollectCandidates(exampleDir, libraryDir)
	if err != nil {
		t.Fatalf("CollectCandidates() error = %v", err)
	}

	// Directories and non-source files are candidates too, filtering happens later
	want := []Candidate{
		{Name: "Blink.ino", Path: filepath.Join(exampleDir, "Blink.ino"), Origin: OriginExample},
		{Name: "notes.txt", Path: filepath.Join(exampleDir, "notes.txt"), Origin: OriginExample},
		{Name: "driver.cpp", Path: filepath.Join(libraryDir, "driver.cpp"), Origin: OriginLibrary},
		{Name: "driver.hpp", Path: filepath.Join(libraryDir, "driver.hpp"), Origin: OriginLibrary},
		{Name: "nested", Path: filepath.Join(libraryDir, "nested"), Origin: OriginLibrary},
	}

	if len(candidates) != len(want) {
		t.Fatalf("CollectCandidates() returned %d candidates, want %d: %+v", len(candidates), len(want), candidates)
	}
	for i := range want {
		if candidates[i] != want[i] {
			t.Errorf("candidate %d = %+v, want %+v", i, candidates[i], want[i])
		}
	}
}

func TestCollectCandidatesMissingDir(t *testing.T) {
	root := t.TempDir()
	if _, err := CollectCandidates(filepath.Join(root, "nope"), root); err == nil {
		t.Error("expected an error for a missing example directory")
	}
}

func TestOriginString(t *testing.T) {
	if OriginExample.String() != "example" || OriginLibrary.String() != "library" {
		t.Errorf("unexpected origin names: %s, %s", OriginExample, OriginLibrary)
	}
}

func TestExcludeFilter(t *testing.T) {
	f, err := NewExcludeFilter([]string{"*_test.cpp", "scratch*"})
	if err != nil {
		t.Fatalf("NewExcludeFilter() error = %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{"driver_test.cpp", true},
		{"scratch.hpp", true},
		{"driver.cpp", false},
		{"Blink.ino", false},
	}
	for _, tt := range tests {
		if got := f.Match(tt.name); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	var none *ExcludeFilter
	if none.Match("anything.cpp") {
		t.Error("nil filter should match nothing")
	}

	if _, err := NewExcludeFilter([]string{"[unclosed"}); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}
