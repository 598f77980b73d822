// Package includes checks that the quoted includes of a materialized unit
// resolve inside the unit and do not form cycles.
package includes

import (
	"bufio"
	"regexp"
	"strings"
)

// quotedInclude matches `#include "path"`, allowing the spacing the preprocessor allows
var quotedInclude = regexp.MustCompile(`^\s*#\s*include\s*"([^"]+)"`)

// ParseIncludes returns the quoted include targets of text in order of appearance.
// Angle bracket includes are system headers and are ignored.
func ParseIncludes(text string) []string {
	var targets []string

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if m := quotedInclude.FindStringSubmatch(scanner.Text()); m != nil {
			targets = append(targets, m[1])
		}
	}

	return targets
}
