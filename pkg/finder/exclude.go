package finder

import (
	"fmt"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// ExcludeFilter matches candidate names against user supplied glob patterns.
// A nil filter matches nothing.
type ExcludeFilter struct {
	patterns []compiledPattern
}

// NewExcludeFilter compiles the given patterns, e.g. "*_test.cpp" or "scratch*"
func NewExcludeFilter(patterns []string) (*ExcludeFilter, error) {
	f := &ExcludeFilter{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.patterns = append(f.patterns, compiledPattern{pattern: pattern, glob: g})
	}
	return f, nil
}

// Match reports whether name matches any exclude pattern
func (f *ExcludeFilter) Match(name string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.patterns {
		if p.glob.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns the filter was built from
func (f *ExcludeFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	patterns := make([]string, 0, len(f.patterns))
	for _, p := range f.patterns {
		patterns = append(patterns, p.pattern)
	}
	return patterns
}
