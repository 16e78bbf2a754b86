// Package mediaref derives media-host identifiers from stored reference
// URLs. A reference like ".../images/cfzr6cdqawmxokcgrsb4.png" yields the
// public id "cfzr6cdqawmxokcgrsb4"; the host folder is re-applied by the
// media service when issuing a delete.
package mediaref

import "strings"

// PublicIDFromURL returns the last path segment of url with any query
// string and file extension stripped. Empty input yields empty output.
func PublicIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	s := url
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "."); i > 0 {
		s = s[:i]
	}
	return s
}
