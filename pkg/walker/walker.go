// Package walker discovers example units and prepares their output directories.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// ErrConfiguration marks a required input directory that is missing, or an
// output path that exists but is not a directory.
var ErrConfiguration = errors.New("configuration error")

// ConfigError describes which path failed the configuration check
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// Roots are the three directories a run works on
type Roots struct {
	Example string // one subdirectory per example unit
	Library string // shared library files
	Output  string // build tree
}

// Unit is one example subdirectory together with the paths it is gathered from and into
type Unit struct {
	Name       string
	ExampleDir string
	LibraryDir string
	OutputDir  string
}

// CheckInputs verifies that the example root and the library root are directories
func CheckInputs(exampleRoot, libraryRoot string) error {
	for _, dir := range []string{exampleRoot, libraryRoot} {
		if err := requireDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigError{Path: path, Reason: "input directory does not exist"}
		}
		return &ConfigError{Path: path, Reason: err.Error()}
	}
	if !info.IsDir() {
		return &ConfigError{Path: path, Reason: "input path is not a directory"}
	}
	return nil
}

// DiscoverExamples returns the names of the immediate subdirectories of exampleRoot.
// The root is checked before the sequence is returned. Entries that are not
// directories (after following symlinks) are skipped.
func DiscoverExamples(exampleRoot string) (iter.Seq2[string, error], error) {
	if err := requireDir(exampleRoot); err != nil {
		return nil, err
	}

	return func(yield func(string, error) bool) {
		entries, err := os.ReadDir(exampleRoot)
		if err != nil {
			yield("", fmt.Errorf("listing %s: %w", exampleRoot, err))
			return
		}

		for _, entry := range entries {
			info, err := os.Stat(filepath.Join(exampleRoot, entry.Name()))
			if err != nil || !info.IsDir() {
				continue
			}
			if !yield(entry.Name(), nil) {
				return
			}
		}
	}, nil
}

// Units maps every discovered example to its input and output paths
func Units(roots Roots) (iter.Seq2[Unit, error], error) {
	names, err := DiscoverExamples(roots.Example)
	if err != nil {
		return nil, err
	}

	return func(yield func(Unit, error) bool) {
		for name, err := range names {
			if err != nil {
				yield(Unit{}, err)
				return
			}
			unit := Unit{
				Name:       name,
				ExampleDir: filepath.Join(roots.Example, name),
				LibraryDir: roots.Library,
				OutputDir:  filepath.Join(roots.Output, name),
			}
			if !yield(unit, nil) {
				return
			}
		}
	}, nil
}

// EnsureOutputDir creates path if it is absent. The parent must already exist.
func EnsureOutputDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &ConfigError{Path: path, Reason: "output path exists but is not a directory"}
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.Mkdir(path, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("checking output directory %s: %w", path, err)
	}
}
