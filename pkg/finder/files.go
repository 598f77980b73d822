package finder

import (
	"fmt"
	"os"
	"path/filepath"
)

// Origin tells which input tree a candidate was found in
type Origin int

const (
	OriginExample Origin = iota
	OriginLibrary
)

func (o Origin) String() string {
	switch o {
	case OriginExample:
		return "example"
	case OriginLibrary:
		return "library"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Candidate is a directory entry considered for copying, before any eligibility filtering
type Candidate struct {
	Name   string // entry name, e.g. "driver.hpp"
	Path   string // path to read it from
	Origin Origin
}

// CollectCandidates lists every entry of exampleDir followed by every entry of
// libraryDir. Nothing is filtered and nothing is deduplicated: the order is the
// write order, so a library file sharing a name with an example file comes last.
func CollectCandidates(exampleDir, libraryDir string) ([]Candidate, error) {
	candidates, err := appendEntries(nil, exampleDir, OriginExample)
	if err != nil {
		return nil, err
	}
	return appendEntries(candidates, libraryDir, OriginLibrary)
}

func appendEntries(candidates []Candidate, dir string, origin Origin) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s directory %s: %w", origin, dir, err)
	}

	for _, entry := range entries {
		candidates = append(candidates, Candidate{
			Name:   entry.Name(),
			Path:   filepath.Join(dir, entry.Name()),
			Origin: origin,
		})
	}

	return candidates, nil
}
