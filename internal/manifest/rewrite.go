package manifest

import "strings"

// RewritePaths substitutes newPrefix for oldPrefix in every page below n.
// oldPrefix only matches at the start of a path segment, so "sdk/latest/" also
// matches inside "docs/sdk/latest/x" but not inside "mysdk/latest/x".
// Group names, icons and other attributes are never touched.
func RewritePaths(n Node, oldPrefix, newPrefix string) {
	MapPages(n, func(p PageRef) PageRef {
		return PageRef(replaceSegmentPrefix(string(p), oldPrefix, newPrefix))
	})
}

func replaceSegmentPrefix(s, oldPrefix, newPrefix string) string {
	if oldPrefix == "" {
		return s
	}
	if strings.HasPrefix(s, oldPrefix) {
		return newPrefix + s[len(oldPrefix):]
	}
	if i := strings.Index(s, "/"+oldPrefix); i >= 0 {
		return s[:i+1] + newPrefix + s[i+1+len(oldPrefix):]
	}
	return s
}
