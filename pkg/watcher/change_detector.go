package watcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/epaperdriver/gather-build/pkg/materialize"
	"github.com/fsnotify/fsnotify"
)

// ChangeAnalysis describes whether a batch of changes requires gathering again
type ChangeAnalysis struct {
	NeedRegather bool
	Reason       string
	ChangedFiles []string
}

// Classify decides whether event can change the build tree and which tree it
// belongs to. Relevant events touch a file with a copied suffix, or add or
// remove an entry directly under the example root (a unit appearing or going).
// Permission changes alone are ignored.
func Classify(event fsnotify.Event, exampleRoot, libraryRoot string) (ChangeType, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return 0, false
	}

	dir := filepath.Dir(event.Name)
	if dir == filepath.Clean(libraryRoot) {
		if _, ok := materialize.OutputName(filepath.Base(event.Name)); ok {
			return ChangeTypeLibrary, true
		}
		return 0, false
	}

	if dir == filepath.Clean(exampleRoot) {
		return ChangeTypeExample, isUnitChange(event)
	}
	if _, ok := materialize.OutputName(filepath.Base(event.Name)); ok {
		return ChangeTypeExample, true
	}
	return 0, false
}

// isUnitChange reports whether an event directly under the example root adds or
// removes a unit. Removed entries cannot be inspected, so any removal counts.
func isUnitChange(event fsnotify.Event) bool {
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		return err == nil && info.IsDir()
	}
	return false
}

// AnalyzeChanges determines whether the build tree must be gathered again.
// Every regather is a full run, whatever changed.
func AnalyzeChanges(events []ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{}

	var library, example bool
	for _, event := range events {
		if len(event.Paths) == 0 {
			continue
		}
		analysis.ChangedFiles = append(analysis.ChangedFiles, event.Paths...)
		switch event.Type {
		case ChangeTypeLibrary:
			library = true
		case ChangeTypeExample:
			example = true
		}
	}

	var parts []string
	if library {
		parts = append(parts, "library")
	}
	if example {
		parts = append(parts, "example")
	}
	if len(parts) > 0 {
		analysis.NeedRegather = true
		analysis.Reason = strings.Join(parts, " and ") + " changed"
	}

	return analysis
}
