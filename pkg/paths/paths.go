package paths

import (
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/hardlinkr/hardlinkr/pkg/regex"
)

// ShellQuote wraps s in single quotes for safe use in a POSIX shell,
// escaping embedded single quotes.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Depth returns the number of path separators in path. Shallower paths have
// a lower depth.
func Depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

// IsIgnored reports whether path matches any of the compiled ignore
// patterns.
func IsIgnored(path string, patterns []*regexp2.Regexp) bool {
	return regex.MatchAny(patterns, path)
}
