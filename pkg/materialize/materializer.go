// Package materialize copies eligible source files into a flat output directory,
// patching header includes on the way.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/epaperdriver/gather-build/pkg/finder"
	"github.com/epaperdriver/gather-build/pkg/logging"
)

// CollisionPolicy decides what happens when two candidates share an output name
type CollisionPolicy string

const (
	// CollisionLibraryWins writes both files in candidate order, so the library file ends up on disk
	CollisionLibraryWins CollisionPolicy = "library"
	// CollisionExampleWins keeps the first file written and skips later ones
	CollisionExampleWins CollisionPolicy = "example"
	// CollisionFail aborts the unit on the first collision
	CollisionFail CollisionPolicy = "error"
)

// ParseCollisionPolicy validates a policy name; empty means CollisionLibraryWins
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(s); p {
	case "":
		return CollisionLibraryWins, nil
	case CollisionLibraryWins, CollisionExampleWins, CollisionFail:
		return p, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q (want library, example or error)", s)
	}
}

// ErrCollision is wrapped by CollisionError
var ErrCollision = errors.New("output name collision")

// CollisionError reports two candidates mapping to the same output file
type CollisionError struct {
	Output string
	First  finder.Candidate
	Second finder.Candidate
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: both %s and %s map to %s", ErrCollision, e.First.Path, e.Second.Path, e.Output)
}

func (e *CollisionError) Unwrap() error {
	return ErrCollision
}

// Collision records a resolved collision
type Collision struct {
	Output  string // output file name
	Kept    string // source path whose content is on disk
	Dropped string // source path that lost
}

// Options configure a Materializer
type Options struct {
	Text      TextPolicy
	Collision CollisionPolicy
	Exclude   *finder.ExcludeFilter
}

// Result lists what a Materialize call produced
type Result struct {
	Files      []string // output names, in first-write order
	Writes     int      // number of files written, including overwrites
	Skipped    int      // candidates that were not eligible
	Collisions []Collision
}

// Materializer copies candidates into an output directory
type Materializer struct {
	opts Options
}

// New creates a Materializer. Zero-valued options fall back to the defaults.
func New(opts Options) *Materializer {
	if opts.Text == (TextPolicy{}) {
		opts.Text = DefaultTextPolicy
	}
	if opts.Collision == "" {
		opts.Collision = CollisionLibraryWins
	}
	return &Materializer{opts: opts}
}

// Eligible reports whether a candidate is copied and under which name.
// The candidate must be a regular file (symlinks are followed) with a recognized
// suffix and must not match the exclude filter.
func (m *Materializer) Eligible(c finder.Candidate) (string, bool) {
	outName, ok := OutputName(c.Name)
	if !ok || m.opts.Exclude.Match(c.Name) {
		return "", false
	}
	info, err := os.Stat(c.Path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return outName, true
}

// Materialize copies every eligible candidate into outputDir in order. Any read
// or write error aborts immediately; files already written stay on disk.
func (m *Materializer) Materialize(ctx context.Context, candidates []finder.Candidate, outputDir string) (*Result, error) {
	result := &Result{}
	written := make(map[string]finder.Candidate)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outName, ok := m.Eligible(c)
		if !ok {
			result.Skipped++
			logging.TraceContext(ctx, "skipping candidate", "name", c.Name, "origin", c.Origin.String())
			continue
		}

		if prev, seen := written[outName]; seen {
			switch m.opts.Collision {
			case CollisionFail:
				return result, &CollisionError{Output: outName, First: prev, Second: c}
			case CollisionExampleWins:
				result.Collisions = append(result.Collisions, Collision{Output: outName, Kept: prev.Path, Dropped: c.Path})
				logging.WarnContext(ctx, "output name collision, keeping first file",
					"output", outName, "kept", prev.Path, "dropped", c.Path)
				continue
			default:
				result.Collisions = append(result.Collisions, Collision{Output: outName, Kept: c.Path, Dropped: prev.Path})
				logging.WarnContext(ctx, "output name collision, overwriting",
					"output", outName, "kept", c.Path, "dropped", prev.Path)
			}
		} else {
			result.Files = append(result.Files, outName)
		}

		if err := m.CopyFile(c.Path, filepath.Join(outputDir, outName)); err != nil {
			return result, err
		}
		written[outName] = c
		result.Writes++
		logging.DebugContext(ctx, "materialized file", "source", c.Path, "output", outName)
	}

	return result, nil
}

// CopyFile reads inputPath, patches its includes and writes it to outputPath
func (m *Materializer) CopyFile(inputPath, outputPath string) error {
	text, err := ReadText(inputPath, m.opts.Text)
	if err != nil {
		return err
	}
	return WriteText(outputPath, PatchIncludes(text), m.opts.Text)
}
