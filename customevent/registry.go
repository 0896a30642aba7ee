package customevent

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/saylorsolutions/eventx/host"
)

var (
	ErrInvalidType   = errors.New("invalid event type")
	ErrNameConflict  = errors.New("event type name conflicts with a registered type")
	ErrNotRegistered = errors.New("event type not registered")
)

// PrePrefix is prepended to a type name to get the name of its pre-phase signal.
const PrePrefix = "pre-"

// PreName returns the pre-phase signal name for typ.
func PreName(typ string) string {
	return PrePrefix + typ
}

// Registry maps event type names to their [Descriptor], and installs the bind/unbind hooks that keep listener counts current.
type Registry struct {
	sys *host.System
	log *slog.Logger

	mux   sync.RWMutex
	types map[string]*Descriptor
}

// NewRegistry creates a [Registry] that installs its hooks in sys.
// This will panic if sys is nil, or if a [ConfigFunc] returns an error.
func NewRegistry(sys *host.System, configFuncs ...ConfigFunc) *Registry {
	if sys == nil {
		panic("nil host system")
	}
	c := applyConf(configFuncs)
	return &Registry{
		sys:   sys,
		log:   c.log,
		types: map[string]*Descriptor{},
	}
}

// Host returns the event system the registry is installed in.
func (r *Registry) Host() *host.System {
	return r.sys
}

// Register declares an event type, making "pre-<typ>" and "<typ>" bindable in the host event system.
//
// Registering a type that's already registered replaces its [Descriptor], and listener counts start over at 0.
// Listeners bound before the replacement are no longer counted, so removing them won't call the new Teardown hook.
func (r *Registry) Register(typ string, hooks Hooks) error {
	if err := validateType(typ); err != nil {
		return err
	}
	desc := newDescriptor(typ, hooks)
	replaced, err := func() (bool, error) {
		r.mux.Lock()
		defer r.mux.Unlock()
		if strings.HasPrefix(typ, PrePrefix) {
			if _, ok := r.types[strings.TrimPrefix(typ, PrePrefix)]; ok {
				return false, fmt.Errorf("%w: '%s' is the pre-phase name of '%s'", ErrNameConflict, typ, strings.TrimPrefix(typ, PrePrefix))
			}
		}
		if _, ok := r.types[PreName(typ)]; ok {
			return false, fmt.Errorf("%w: '%s' is already registered", ErrNameConflict, PreName(typ))
		}
		_, replaced := r.types[typ]
		r.types[typ] = desc
		return replaced, nil
	}()
	if err != nil {
		return err
	}
	r.sys.Special(PreName(typ), r.guard(typ, PhasePre))
	r.sys.Special(typ, r.guard(typ, PhasePost))
	if replaced {
		r.log.Debug("Replaced event type", "type", typ)
	} else {
		r.log.Debug("Registered event type", "type", typ)
	}
	return nil
}

func validateType(typ string) error {
	switch {
	case len(typ) == 0:
		return fmt.Errorf("%w: empty name", ErrInvalidType)
	case strings.ContainsAny(typ, ". \t\n"):
		return fmt.Errorf("%w: '%s' may not contain dots or whitespace", ErrInvalidType, typ)
	case typ == PrePrefix:
		return fmt.Errorf("%w: '%s' is reserved", ErrInvalidType, typ)
	}
	return nil
}

// Lookup returns the current [Descriptor] for typ, if registered.
func (r *Registry) Lookup(typ string) (*Descriptor, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	desc, ok := r.types[typ]
	return desc, ok
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
