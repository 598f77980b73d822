// Package gather assembles the build tree: one flat output directory per
// example unit, holding the unit's own files plus the shared library files.
package gather

import (
	"context"
	"fmt"
	"sync"

	"github.com/epaperdriver/gather-build/pkg/finder"
	"github.com/epaperdriver/gather-build/pkg/logging"
	"github.com/epaperdriver/gather-build/pkg/materialize"
	"github.com/epaperdriver/gather-build/pkg/walker"
)

// Options configures a Gatherer
type Options struct {
	Roots       walker.Roots
	Materialize materialize.Options
}

// UnitSummary describes one materialized example unit
type UnitSummary struct {
	Name       string
	OutputDir  string
	Files      []string
	Writes     int
	Collisions []materialize.Collision
}

// Summary describes a complete run
type Summary struct {
	Roots walker.Roots
	Units []UnitSummary
}

// FileCount returns the number of distinct output files across all units
func (s *Summary) FileCount() int {
	n := 0
	for _, u := range s.Units {
		n += len(u.Files)
	}
	return n
}

// CollisionCount returns the number of collisions across all units
func (s *Summary) CollisionCount() int {
	n := 0
	for _, u := range s.Units {
		n += len(u.Collisions)
	}
	return n
}

// Gatherer runs the walk and materialize steps for a set of roots
type Gatherer struct {
	opts         Options
	materializer *materialize.Materializer
	mu           sync.Mutex // Prevent concurrent runs over the same output tree
}

// NewGatherer creates a gatherer for the given options
func NewGatherer(opts Options) *Gatherer {
	return &Gatherer{
		opts:         opts,
		materializer: materialize.New(opts.Materialize),
	}
}

// Roots returns the directories the gatherer works on
func (g *Gatherer) Roots() walker.Roots {
	return g.opts.Roots
}

// Run checks the inputs, creates the output root and materializes every example
// unit in turn. The first error aborts the run; units finished before it stay
// on disk. Stale files from earlier runs are never removed.
func (g *Gatherer) Run(ctx context.Context) (*Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	roots := g.opts.Roots
	if err := walker.CheckInputs(roots.Example, roots.Library); err != nil {
		return nil, err
	}
	if err := walker.EnsureOutputDir(roots.Output); err != nil {
		return nil, err
	}

	units, err := walker.Units(roots)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Roots: roots}
	for unit, err := range units {
		if err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		unitSummary, err := g.runUnit(ctx, unit)
		if err != nil {
			return summary, fmt.Errorf("example %s: %w", unit.Name, err)
		}
		summary.Units = append(summary.Units, *unitSummary)
	}

	return summary, nil
}

func (g *Gatherer) runUnit(ctx context.Context, unit walker.Unit) (*UnitSummary, error) {
	if err := walker.CheckInputs(unit.ExampleDir, unit.LibraryDir); err != nil {
		return nil, err
	}
	if err := walker.EnsureOutputDir(unit.OutputDir); err != nil {
		return nil, err
	}

	candidates, err := finder.CollectCandidates(unit.ExampleDir, unit.LibraryDir)
	if err != nil {
		return nil, err
	}

	result, err := g.materializer.Materialize(ctx, candidates, unit.OutputDir)
	if err != nil {
		return nil, err
	}

	logging.InfoContext(ctx, "materialized example",
		"unit", unit.Name,
		"files", len(result.Files),
		"skipped", result.Skipped,
	)

	return &UnitSummary{
		Name:       unit.Name,
		OutputDir:  unit.OutputDir,
		Files:      result.Files,
		Writes:     result.Writes,
		Collisions: result.Collisions,
	}, nil
}
