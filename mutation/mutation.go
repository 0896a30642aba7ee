// Package mutation provides attribute mutation events for [host.Element], built on [customevent].
//
// Listeners bind to "pre-attr" to veto or rewrite a change, and to "attr" to react to a committed change.
// Both may be scoped with "@name" namespaces to a single element and attribute.
package mutation

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/saylorsolutions/eventx/customevent"
	"github.com/saylorsolutions/eventx/host"
)

// TypeAttr is the event type for attribute changes.
const TypeAttr = "attr"

const (
	ParamPrevValue  = "prevValue"  // ParamPrevValue is the attribute value before the change, empty for an addition.
	ParamNewValue   = "newValue"   // ParamNewValue is the value to be set. Pre-phase listeners may overwrite it.
	ParamAttrChange = "attrChange" // ParamAttrChange is the [Change] kind.
)

// Change describes what kind of attribute mutation happened.
type Change int

const (
	Modification Change = iota + 1
	Addition
	Removal
)

func (c Change) String() string {
	switch c {
	case Modification:
		return "modification"
	case Addition:
		return "addition"
	case Removal:
		return "removal"
	default:
		return fmt.Sprintf("Change(%d)", int(c))
	}
}

// Observer registers [TypeAttr] and performs attribute changes through a [customevent.Dispatcher].
type Observer struct {
	dispatcher *customevent.Dispatcher
	observing  atomic.Bool
}

// NewObserver registers [TypeAttr] with the dispatcher's registry.
// The onActive function may be nil, otherwise it's called with true when the first attribute listener is bound and with false when the last one is removed.
func NewObserver(dispatcher *customevent.Dispatcher, onActive func(active bool)) (*Observer, error) {
	obs := &Observer{
		dispatcher: dispatcher,
	}
	toggle := func(active bool) func() {
		return func() {
			obs.observing.Store(active)
			if onActive != nil {
				onActive(active)
			}
		}
	}
	err := dispatcher.Registry().Register(TypeAttr, customevent.Hooks{
		Setup:    toggle(true),
		Teardown: toggle(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register %s events: %w", TypeAttr, err)
	}
	return obs, nil
}

// Observing reports whether any attribute listener is currently bound.
func (o *Observer) Observing() bool {
	return o.observing.Load()
}

// SetAttr sets an attribute through the pre/post event sequence.
// The stored value is returned, which may differ from val if a pre-phase listener rewrote [ParamNewValue].
// The returned bool is false if a listener cancelled the change.
func (o *Observer) SetAttr(ctx context.Context, el *host.Element, name, val string) (string, bool, error) {
	prev, had := el.Attr(name)
	change := Modification
	if !had {
		change = Addition
	}
	params := host.Params{
		host.AttrNameParam: name,
		ParamPrevValue:     prev,
		ParamNewValue:      val,
		ParamAttrChange:    change,
	}
	return customevent.TriggerResult(ctx, o.dispatcher, el, TypeAttr, params, func(evt *host.Event) (string, error) {
		newVal, ok := host.Param[string](evt, ParamNewValue)
		if !ok {
			return "", fmt.Errorf("%s must be a string, got %T", ParamNewValue, evt.Params[ParamNewValue])
		}
		el.StoreAttr(name, newVal)
		return newVal, nil
	})
}

// RemoveAttr removes an attribute through the pre/post event sequence.
// Nothing is dispatched if the attribute isn't present, and false is returned.
func (o *Observer) RemoveAttr(ctx context.Context, el *host.Element, name string) (bool, error) {
	prev, had := el.Attr(name)
	if !had {
		return false, nil
	}
	params := host.Params{
		host.AttrNameParam: name,
		ParamPrevValue:     prev,
		ParamAttrChange:    Removal,
	}
	_, removed, err := customevent.TriggerResult(ctx, o.dispatcher, el, TypeAttr, params, func(evt *host.Event) (bool, error) {
		return el.DeleteAttr(name), nil
	})
	return removed, err
}

// ChangeOf reads the [Change] kind from an attribute event.
func ChangeOf(evt *host.Event) Change {
	change, _ := host.Param[Change](evt, ParamAttrChange)
	return change
}
