/*
Package customevent provides custom event types with cancelable two-phase dispatch around a state mutation, built on the [host] event system.

# Event Types

An event type is declared with [Registry.Register], which makes two signals bindable in the host:
  - "pre-<type>" is delivered before the mutation, and any listener may cancel it with [host.Event.PreventDefault].
  - "<type>" is delivered after the mutation has been committed, and only if it was committed.

Listeners may be bound with the host's own [host.System.On], or with [Registry.On] and [Registry.OnPre], which check that the type is registered first.

# Lazy Activation

Observing the state that a type describes can be expensive, so [Hooks] let a type start observing only while someone is listening.
Setup is called when the first listener is bound to either phase of a type, and Teardown is called when the last one is removed.
Listener counts are tracked in the type's [Descriptor], and never go below 0 even if the host reports more removals than additions.

# Attribute Scoping

A listener bound with namespaces prefixed with "@", like "pre-attr.@title.@name", is wrapped with a [NamespaceFilter].
It will only be called for events that originated at the element it was bound to, and that name one of the given attributes in the [host.AttrNameParam] parameter.
Events bubbling up from descendants are ignored by such listeners.

# Triggering

[Dispatcher.Trigger] and [TriggerResult] run the sequence for one mutation:

	result, err := dispatcher.Trigger(el, "rename", host.Params{host.AttrNameParam: "name"}, func(evt *host.Event) (any, error) {
		return doRename(evt)
	})

Everything happens synchronously on the calling goroutine: pre-phase listeners, then the commit, then post-phase listeners.
Triggering an unregistered type is a silent no-op.
*/
package customevent
