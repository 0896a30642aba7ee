package host

import (
	"context"
)

// AttrNameParam is the [Params] key naming the attribute an event concerns.
// Namespace-scoped listeners compare against this value.
const AttrNameParam = "attrName"

// Target is anything listeners may be bound to.
// Targets are used as map keys and compared by identity, so they must be comparable (pointers are expected).
type Target = any

// Parented is implemented by targets that take part in bubbling.
// Delivery continues with the parent after the target's own listeners have run.
type Parented interface {
	ParentTarget() Target
}

// Params are arbitrary fields carried by an [Event].
type Params map[string]any

// Event is delivered to every [Handler] bound to its Type on its Target or one of the Target's ancestors.
// The same Event may be delivered more than once, with Type rewritten between deliveries.
type Event struct {
	Type          string
	Target        Target
	CurrentTarget Target // CurrentTarget is the target whose listeners are running.
	Namespace     string // Namespace is the dot-joined namespace list of the running binding.
	Cancelable    bool
	Params        Params

	ctx                context.Context
	defaultPrevented   bool
	propagationStopped bool
	immediateStopped   bool
}

// NewEvent creates a cancelable [Event].
// The given params are copied so later changes by handlers don't leak back to the caller.
func NewEvent(typ string, target Target, params Params) *Event {
	evt := &Event{
		Type:       typ,
		Target:     target,
		Cancelable: true,
		Params:     make(Params, len(params)),
	}
	for k, v := range params {
		evt.Params[k] = v
	}
	return evt
}

// WithContext sets the context handlers will see from [Event.Context].
func (e *Event) WithContext(ctx context.Context) *Event {
	e.ctx = ctx
	return e
}

func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// PreventDefault marks the event as cancelled.
// This has no effect once the event is no longer cancelable.
func (e *Event) PreventDefault() {
	if !e.Cancelable {
		return
	}
	e.defaultPrevented = true
}

func (e *Event) IsDefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents delivery to ancestors of the current target.
// Remaining listeners on the current target still run.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

func (e *Event) IsPropagationStopped() bool {
	return e.propagationStopped
}

// StopImmediatePropagation prevents delivery to any further listener, including those on the current target.
func (e *Event) StopImmediatePropagation() {
	e.immediateStopped = true
	e.propagationStopped = true
}

func (e *Event) IsImmediatePropagationStopped() bool {
	return e.immediateStopped
}

// Rephase readies the event to be delivered again as typ.
// Propagation flags from the previous delivery are cleared, and the event is no longer cancelable.
func (e *Event) Rephase(typ string) {
	e.Type = typ
	e.Cancelable = false
	e.propagationStopped = false
	e.immediateStopped = false
}

// Set stores a value in the event's [Params].
func (e *Event) Set(key string, val any) {
	if e.Params == nil {
		e.Params = Params{}
	}
	e.Params[key] = val
}

// AttrName returns the [AttrNameParam] value, or an empty string if it's missing or not a string.
func (e *Event) AttrName() string {
	name, _ := Param[string](e, AttrNameParam)
	return name
}

// Param looks up a value in the event's [Params] and asserts its type.
// The zero value and false are returned if the key is missing or the type doesn't match.
func Param[T any](evt *Event, key string) (T, bool) {
	var mt T
	if evt == nil || evt.Params == nil {
		return mt, false
	}
	raw, ok := evt.Params[key]
	if !ok || raw == nil {
		return mt, false
	}
	val, ok := raw.(T)
	if !ok {
		return mt, false
	}
	return val, true
}
