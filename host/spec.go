package host

import (
	"slices"
	"strings"
)

// ParseSpec splits a binding spec of the form "type.ns1.ns2" into its type and namespaces.
// Namespaces are sorted and de-duplicated, and empty tokens are dropped.
// The type is empty if the spec only names namespaces, like ".ns1".
func ParseSpec(spec string) (typ string, namespaces []string) {
	parts := strings.Split(strings.TrimSpace(spec), ".")
	typ = parts[0]
	for _, ns := range parts[1:] {
		if len(ns) == 0 {
			continue
		}
		namespaces = append(namespaces, ns)
	}
	if len(namespaces) == 0 {
		return typ, nil
	}
	slices.Sort(namespaces)
	return typ, slices.Compact(namespaces)
}

// FormatSpec is the inverse of [ParseSpec].
func FormatSpec(typ string, namespaces ...string) string {
	if len(namespaces) == 0 {
		return typ
	}
	return typ + "." + strings.Join(namespaces, ".")
}

// hasAll reports whether every namespace in want is present in have.
// Both slices are expected to be sorted.
func hasAll(have, want []string) bool {
	for _, ns := range want {
		if _, found := slices.BinarySearch(have, ns); !found {
			return false
		}
	}
	return true
}
