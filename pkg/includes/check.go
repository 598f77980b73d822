package includes

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/epaperdriver/gather-build/pkg/logging"
	"github.com/epaperdriver/gather-build/pkg/materialize"
)

// MissingInclude is a quoted include that names no file in the unit
type MissingInclude struct {
	File    string // including file
	Include string // include target as written
}

// Report is the result of checking one unit
type Report struct {
	Unit    string
	Files   int
	Missing []MissingInclude
	Cycles  [][]string
}

// OK reports whether the unit has neither missing includes nor cycles
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Cycles) == 0
}

func isOutputSource(name string) bool {
	for _, suffix := range []string{materialize.ImplementationSuffix, materialize.ShortHeaderSuffix, materialize.EntryPointSuffix} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// CheckUnit parses the output files of the unit directory dir, builds their
// include graph and reports unresolved includes and include cycles.
func CheckUnit(unit, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	files := make(map[string]string) // name to text
	var order []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isOutputSource(entry.Name()) {
			continue
		}
		text, err := materialize.ReadText(filepath.Join(dir, entry.Name()), materialize.DefaultTextPolicy)
		if err != nil {
			return nil, err
		}
		files[entry.Name()] = text
		order = append(order, entry.Name())
	}

	g := NewGraph()
	report := &Report{Unit: unit, Files: len(order)}
	for _, name := range order {
		g.AddFile(name)
		for _, target := range ParseIncludes(files[name]) {
			resolved, ok := resolve(dir, files, target)
			if !ok {
				report.Missing = append(report.Missing, MissingInclude{File: name, Include: target})
				continue
			}
			g.AddInclude(name, resolved)
		}
	}

	report.Cycles = g.Cycles()
	return report, nil
}

// resolve maps an include target to a file name inside the unit
func resolve(dir string, files map[string]string, target string) (string, bool) {
	clean := path.Clean(target)
	if _, ok := files[clean]; ok {
		return clean, true
	}
	if strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", false
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean)))
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return clean, true
}

// UnitDir names an output unit directory to check
type UnitDir struct {
	Name string
	Dir  string
}

// CheckUnits checks every unit directory and logs what it finds. Problems are
// reported as warnings, they never fail the run.
func CheckUnits(ctx context.Context, units []UnitDir) ([]*Report, error) {
	reports := make([]*Report, 0, len(units))
	for _, unit := range units {
		report, err := CheckUnit(unit.Name, unit.Dir)
		if err != nil {
			return reports, err
		}
		for _, m := range report.Missing {
			logging.WarnContext(ctx, "unresolved include", "unit", unit.Name, "file", m.File, "include", m.Include)
		}
		for _, cycle := range report.Cycles {
			logging.WarnContext(ctx, "include cycle", "unit", unit.Name, "files", strings.Join(cycle, " -> "))
		}
		reports = append(reports, report)
	}
	return reports, nil
}
