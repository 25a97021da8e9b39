package tools

import (
	"slices"
	"strings"
)

// Resolve maps a short operation name onto a catalog name.
//
// Matching is order-sensitive:
//  1. an exact name match;
//  2. a name ending in "_<op>" or "_<op>_tool", or equal to "<op>_tool";
//  3. a name that merely contains op.
//
// Names are scanned in sorted order so that ties are broken the same way on
// every call. A substring hit does not end the scan; a later suffix match
// still wins.
func Resolve(names []string, op string) (string, bool) {
	if op == "" {
		return "", false
	}
	if slices.Contains(names, op) {
		return op, true
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)

	var fallback string
	for _, name := range sorted {
		if hasOperationSuffix(name, op) {
			return name, true
		}
		if fallback == "" && strings.Contains(name, op) {
			fallback = name
		}
	}
	return fallback, fallback != ""
}

func hasOperationSuffix(name, op string) bool {
	return strings.HasSuffix(name, "_"+op) ||
		strings.HasSuffix(name, "_"+op+"_tool") ||
		name == op+"_tool"
}
