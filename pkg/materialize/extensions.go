package materialize

import "strings"

const (
	ImplementationSuffix = ".cpp"
	HeaderSuffix         = ".hpp"
	ShortHeaderSuffix    = ".h"
	EntryPointSuffix     = ".ino"
)

// nameTransform turns a source file name into its output file name
type nameTransform func(name string) string

func keepName(name string) string { return name }

// shortenHeader drops the trailing "pp" of a ".hpp" name
func shortenHeader(name string) string { return name[:len(name)-2] }

// recognized is the closed set of copied suffixes. Matching is case-sensitive.
var recognized = []struct {
	suffix    string
	transform nameTransform
}{
	{ImplementationSuffix, keepName},
	{HeaderSuffix, shortenHeader},
	{EntryPointSuffix, keepName},
}

// OutputName returns the file name a source file is written under, and false
// when the name does not carry a recognized suffix.
func OutputName(name string) (string, bool) {
	for _, r := range recognized {
		if strings.HasSuffix(name, r.suffix) {
			return r.transform(name), true
		}
	}
	return "", false
}
