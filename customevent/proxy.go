package customevent

import (
	"slices"
	"strings"

	"github.com/saylorsolutions/eventx/host"
)

// AttrPrefix marks a namespace token as an attribute scope, like "@title".
const AttrPrefix = "@"

// AttrNames is a set of attribute names.
type AttrNames map[string]struct{}

func (a AttrNames) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Slice returns the names in sorted order.
func (a AttrNames) Slice() []string {
	if len(a) == 0 {
		return nil
	}
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NamespaceFilter restricts a listener to events that target the element it was bound to, and optionally to a set of attribute names.
type NamespaceFilter struct {
	BoundTarget host.Target
	AttrNames   AttrNames
}

// ParseNamespaces builds a [NamespaceFilter] from the [AttrPrefix] tokens in namespaces.
// Returns false if there are no such tokens, in which case no filtering should happen.
//
// A bare "@" token contributes no attribute name, so a filter built only from it restricts by target alone.
func ParseNamespaces(target host.Target, namespaces []string) (NamespaceFilter, bool) {
	var (
		found bool
		names = AttrNames{}
	)
	for _, ns := range namespaces {
		name, ok := strings.CutPrefix(ns, AttrPrefix)
		if !ok {
			continue
		}
		found = true
		if len(name) > 0 {
			names[name] = struct{}{}
		}
	}
	if !found {
		return NamespaceFilter{}, false
	}
	return NamespaceFilter{
		BoundTarget: target,
		AttrNames:   names,
	}, true
}

// Matches reports whether evt originated at the bound target and concerns one of the attribute names.
// The attribute check is skipped when there are no attribute names.
func (f NamespaceFilter) Matches(evt *host.Event) bool {
	if evt.Target != f.BoundTarget {
		return false
	}
	if len(f.AttrNames) == 0 {
		return true
	}
	return f.AttrNames.Has(evt.AttrName())
}

// Wrap returns a handler that only calls handler when [NamespaceFilter.Matches] is true.
// Events that don't match are ignored without error.
func (f NamespaceFilter) Wrap(handler host.Handler) host.Handler {
	return func(evt *host.Event) error {
		if !f.Matches(evt) {
			return nil
		}
		return handler(evt)
	}
}
