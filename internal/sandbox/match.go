package sandbox

import (
	"path"
	"strings"
)

// recursiveMarker is the glob token that matches any depth below a prefix.
const recursiveMarker = "**"

// Match reports whether the forward-slash relative path rel matches pattern.
//
// Two pattern classes are supported. A pattern containing "**" matches any
// path strictly below its prefix: "docs/**" matches "docs/a" and
// "docs/a/b/c" but never "docs" itself, and a bare "**" matches every path.
// All other patterns use anchored single-segment glob semantics as
// understood by path.Match: "*" and "?" never cross a "/", so "*.py"
// matches "main.py" but not "src/main.py".
func Match(rel, pattern string) bool {
	if strings.Contains(pattern, recursiveMarker) {
		return matchRecursive(rel, pattern)
	}
	ok, err := path.Match(pattern, rel)
	if err != nil {
		// Malformed patterns never match.
		return false
	}
	return ok
}

// MatchAny reports whether rel matches at least one of patterns, short-
// circuiting on the first hit. An empty pattern list matches nothing.
func MatchAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(rel, pattern) {
			return true
		}
	}
	return false
}

// matchRecursive handles patterns containing the "**" marker: the marker is
// stripped and the remaining prefix, sans trailing slash, must be a proper
// path-component prefix of rel with at least one segment after it. An empty
// prefix (a bare "**") matches everything.
func matchRecursive(rel, pattern string) bool {
	prefix := strings.TrimSuffix(strings.ReplaceAll(pattern, recursiveMarker, ""), "/")
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(rel, prefix+"/") && len(rel) > len(prefix)+1
}
