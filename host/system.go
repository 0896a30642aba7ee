package host

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrNilTarget     = errors.New("nil target")
	ErrInvalidTarget = errors.New("target is not comparable")
	ErrNilHandler    = errors.New("nil handler")
	ErrInvalidSpec   = errors.New("invalid binding spec")
)

// Handler responds to a delivered [Event].
// A returned error stops delivery and is passed back to the caller of [System.Deliver].
type Handler func(evt *Event) error

// BindingID identifies a single call to [System.On] or [System.One].
type BindingID string

// Binding is the record of a handler attached to a target.
// Special hooks receive the Binding when it's added and removed.
type Binding struct {
	ID         BindingID
	Target     Target
	Type       string
	Namespaces []string
	// Handler is the handler as given by the caller.
	// A special Add hook may replace what actually runs, but Handler, Type, and Namespaces stay as bound so unbinding still matches.
	Handler Handler
	// Data is owned by the special hooks for Type, and is passed back unchanged to the Remove hook.
	Data any

	run Handler
}

// Run returns the handler delivery would call for this binding right now.
// For a binding made with [System.One] this removes the binding before calling Handler, so wrappers that filter events should wrap Run rather than Handler.
func (b *Binding) Run() Handler {
	return b.run
}

// SpecialHooks intercept binding and unbinding for a single event type.
type SpecialHooks struct {
	// Add is called before the binding is stored.
	// Returning a non-nil Handler replaces the handler that runs on delivery, which is usually a wrapper around [Binding.Run].
	Add func(b *Binding) Handler
	// Remove is called once after the binding has been removed.
	Remove func(b *Binding)
}

type sysConf struct {
	log   *slog.Logger
	newID func() BindingID
}

// ConfigFunc configures a [System] at construction.
type ConfigFunc func(conf *sysConf) error

// Logger sets the logger for the [System].
func Logger(log *slog.Logger) ConfigFunc {
	return func(conf *sysConf) error {
		if log == nil {
			return errors.New("nil logger")
		}
		conf.log = log
		return nil
	}
}

// IDGenerator overrides how a [BindingID] is generated.
func IDGenerator(gen func() BindingID) ConfigFunc {
	return func(conf *sysConf) error {
		if gen == nil {
			return errors.New("nil ID generator")
		}
		conf.newID = gen
		return nil
	}
}

// System is an in-process event system with per-target bindings, namespaces, special bind hooks, and synchronous delivery.
// It's safe for concurrent use, but handlers and hooks are never run while internal locks are held, so they may bind and unbind freely.
type System struct {
	log   *slog.Logger
	newID func() BindingID

	mux      sync.RWMutex
	special  map[string]SpecialHooks
	bindings map[Target][]*Binding
}

// NewSystem creates a [System].
// This will panic if a [ConfigFunc] returns an error.
func NewSystem(configFuncs ...ConfigFunc) *System {
	conf := sysConf{
		log: slog.Default(),
		newID: func() BindingID {
			return BindingID(uuid.NewString())
		},
	}
	for _, fn := range configFuncs {
		if err := fn(&conf); err != nil {
			panic(fmt.Sprintf("invalid system config: %v", err))
		}
	}
	return &System{
		log:      conf.log,
		newID:    conf.newID,
		special:  map[string]SpecialHooks{},
		bindings: map[Target][]*Binding{},
	}
}

// Special installs hooks for the given event type, replacing any previously installed.
// Existing bindings are unaffected until they're removed, at which point the hooks current at that time are used.
func (s *System) Special(typ string, hooks SpecialHooks) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.special[typ] = hooks
}

// ClearSpecial removes hooks installed with [System.Special].
func (s *System) ClearSpecial(typ string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.special, typ)
}

func (s *System) hooks(typ string) (SpecialHooks, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	hooks, ok := s.special[typ]
	return hooks, ok
}

// On binds a handler to events on target.
// The spec is an event type optionally followed by dot-separated namespaces, like "change.mine".
func (s *System) On(target Target, spec string, handler Handler) (BindingID, error) {
	return s.bind(target, spec, handler, false)
}

// One is like [System.On], but the binding is removed right before its first run.
func (s *System) One(target Target, spec string, handler Handler) (BindingID, error) {
	return s.bind(target, spec, handler, true)
}

func (s *System) bind(target Target, spec string, handler Handler, once bool) (BindingID, error) {
	if err := checkTarget(target); err != nil {
		return "", err
	}
	if handler == nil {
		return "", ErrNilHandler
	}
	typ, namespaces := ParseSpec(spec)
	if len(typ) == 0 {
		return "", fmt.Errorf("%w: no event type in '%s'", ErrInvalidSpec, spec)
	}
	b := &Binding{
		ID:         s.newID(),
		Target:     target,
		Type:       typ,
		Namespaces: namespaces,
		Handler:    handler,
		run:        handler,
	}
	if once {
		b.run = s.onceHandler(b)
	}
	if hooks, ok := s.hooks(typ); ok && hooks.Add != nil {
		if replacement := hooks.Add(b); replacement != nil {
			b.run = replacement
		}
	}
	s.mux.Lock()
	s.bindings[target] = append(s.bindings[target], b)
	s.mux.Unlock()
	s.log.Debug("Bound listener", "type", typ, "namespaces", namespaces, "id", b.ID)
	return b.ID, nil
}

// Off removes a single binding from target.
// Returns false if no such binding exists, for example because it was already removed.
func (s *System) Off(target Target, id BindingID) bool {
	removed := s.remove(target, func(b *Binding) bool {
		return b.ID == id
	})
	return len(removed) > 0
}

// OffSpec removes all bindings on target that match the spec, returning how many were removed.
// A binding matches if it has the spec's type and includes all the spec's namespaces.
// A spec without a type, like ".mine", matches bindings of any type.
func (s *System) OffSpec(target Target, spec string) (int, error) {
	typ, namespaces := ParseSpec(spec)
	if len(typ) == 0 && len(namespaces) == 0 {
		return 0, fmt.Errorf("%w: '%s' names neither a type nor a namespace", ErrInvalidSpec, spec)
	}
	removed := s.remove(target, func(b *Binding) bool {
		if len(typ) > 0 && b.Type != typ {
			return false
		}
		return hasAll(b.Namespaces, namespaces)
	})
	return len(removed), nil
}

// RemoveAll removes every binding on target, returning how many were removed.
func (s *System) RemoveAll(target Target) int {
	return len(s.remove(target, func(*Binding) bool {
		return true
	}))
}

// onceHandler removes b before running its handler.
func (s *System) onceHandler(b *Binding) Handler {
	return func(evt *Event) error {
		if !s.Off(b.Target, b.ID) {
			// Another delivery already consumed it.
			return nil
		}
		return b.Handler(evt)
	}
}

// checkTarget rejects targets that can't be used as map keys, and nil pointers hidden in an interface.
func checkTarget(target Target) error {
	if target == nil {
		return ErrNilTarget
	}
	typ := reflect.TypeOf(target)
	if !typ.Comparable() {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, typ)
	}
	if val := reflect.ValueOf(target); val.Kind() == reflect.Pointer && val.IsNil() {
		return ErrNilTarget
	}
	return nil
}

func (s *System) remove(target Target, match func(b *Binding) bool) []*Binding {
	if checkTarget(target) != nil {
		return nil
	}
	var removed []*Binding
	s.mux.Lock()
	current := s.bindings[target]
	kept := make([]*Binding, 0, len(current))
	for _, b := range current {
		if match(b) {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		delete(s.bindings, target)
	} else {
		s.bindings[target] = kept
	}
	s.mux.Unlock()

	for _, b := range removed {
		s.log.Debug("Removed listener", "type", b.Type, "namespaces", b.Namespaces, "id", b.ID)
		if hooks, ok := s.hooks(b.Type); ok && hooks.Remove != nil {
			hooks.Remove(b)
		}
	}
	return removed
}

// Count returns the number of bindings for the event type on target.
func (s *System) Count(target Target, typ string) int {
	if checkTarget(target) != nil {
		return 0
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	var count int
	for _, b := range s.bindings[target] {
		if b.Type == typ {
			count++
		}
	}
	return count
}

// Deliver runs the handlers bound to evt.Type on evt.Target, then on each ancestor of a [Parented] target.
// Handlers run synchronously in the order they were bound.
// The first handler error stops delivery and is returned. Panics are not recovered.
func (s *System) Deliver(evt *Event) error {
	if evt == nil {
		return ErrNilTarget
	}
	if err := checkTarget(evt.Target); err != nil {
		return err
	}
	defer func() {
		evt.CurrentTarget = nil
		evt.Namespace = ""
	}()
	for current := evt.Target; checkTarget(current) == nil; current = parentOf(current) {
		if err := s.deliverAt(evt, current); err != nil {
			return err
		}
		if evt.IsPropagationStopped() {
			break
		}
	}
	return nil
}

func (s *System) deliverAt(evt *Event, current Target) error {
	s.mux.RLock()
	var matching []*Binding
	for _, b := range s.bindings[current] {
		if b.Type == evt.Type {
			matching = append(matching, b)
		}
	}
	s.mux.RUnlock()

	evt.CurrentTarget = current
	for _, b := range matching {
		evt.Namespace = strings.Join(b.Namespaces, ".")
		if err := b.run(evt); err != nil {
			return err
		}
		if evt.IsImmediatePropagationStopped() {
			break
		}
	}
	return nil
}

func parentOf(target Target) Target {
	p, ok := target.(Parented)
	if !ok {
		return nil
	}
	return p.ParentTarget()
}

// Bindings returns a copy of the bindings on target, in the order they were bound.
func (s *System) Bindings(target Target) []Binding {
	if checkTarget(target) != nil {
		return nil
	}
	s.mux.RLock()
	defer s.mux.RUnlock()
	current := s.bindings[target]
	result := make([]Binding, len(current))
	for i, b := range current {
		result[i] = *b
		result[i].Namespaces = slices.Clone(b.Namespaces)
	}
	return result
}
