package host

import (
	"maps"
	"sync"
)

var _ Parented = (*Element)(nil)

// Element is a named node with attributes and an optional parent.
// Attribute access is concurrency safe, but methods that mutate attributes don't dispatch any events.
type Element struct {
	name   string
	parent *Element

	mux   sync.RWMutex
	attrs map[string]string
}

// NewElement creates an [Element] under parent, which may be nil for a root element.
func NewElement(name string, parent *Element) *Element {
	return &Element{
		name:   name,
		parent: parent,
		attrs:  map[string]string{},
	}
}

func (e *Element) Name() string {
	return e.name
}

func (e *Element) Parent() *Element {
	return e.parent
}

func (e *Element) ParentTarget() Target {
	if e == nil || e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Attr(name string) (string, bool) {
	e.mux.RLock()
	defer e.mux.RUnlock()
	val, ok := e.attrs[name]
	return val, ok
}

// Attrs returns a copy of the element's attributes.
func (e *Element) Attrs() map[string]string {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return maps.Clone(e.attrs)
}

// StoreAttr sets an attribute directly.
func (e *Element) StoreAttr(name, val string) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.attrs[name] = val
}

// DeleteAttr removes an attribute directly, returning whether it was present.
func (e *Element) DeleteAttr(name string) bool {
	e.mux.Lock()
	defer e.mux.Unlock()
	_, ok := e.attrs[name]
	delete(e.attrs, name)
	return ok
}

// Path returns the slash-separated names from the root element down to e.
func (e *Element) Path() string {
	if e.parent == nil {
		return e.name
	}
	return e.parent.Path() + "/" + e.name
}

func (e *Element) String() string {
	return e.Path()
}
