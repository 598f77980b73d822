package materialize

import "regexp"

// includePattern matches a quoted include of a ".hpp" file up to the closing
// quote, capturing everything but the "pp". It does not cross line breaks.
var includePattern = regexp.MustCompile(`(#include ".*?\.h)pp"`)

// PatchIncludes rewrites every `#include "X.hpp"` to `#include "X.h"`.
// Matches are found leftmost first and never overlap. Everything else is left as is.
func PatchIncludes(text string) string {
	return includePattern.ReplaceAllString(text, `${1}"`)
}
