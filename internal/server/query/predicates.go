package query

import (
	"cmp"
	"strings"
)

// ContainsFold reports whether needle occurs, case-insensitively, in any field.
// An empty needle matches everything.
func ContainsFold(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// InRange reports whether v lies within the optional inclusive bounds.
func InRange[N cmp.Ordered](v N, lo, hi *N) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// CompareFold compares strings case-insensitively.
func CompareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
