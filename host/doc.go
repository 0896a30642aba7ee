/*
Package host provides a small, synchronous, in-process event system that other packages build custom event types on.

Handlers are bound to a [Target] with [System.On] using a spec of the form "type.ns1.ns2".
Namespaces don't affect delivery, but they're available to special hooks and may be used to remove groups of bindings with [System.OffSpec].

# Special Hooks

A [SpecialHooks] pair may be installed per event type with [System.Special].
The Add hook runs for every new [Binding] of that type and may replace the handler that actually runs.
The Remove hook runs once for every removed [Binding].
This is how higher level packages track listener counts and wrap handlers with filters without the caller being aware of it.

# Delivery

[System.Deliver] runs handlers synchronously on the caller's goroutine, in the order they were bound.
If the target implements [Parented], delivery bubbles up through its ancestors until one calls [Event.StopPropagation].
Handler errors stop delivery and are returned as-is; panics are not recovered.
*/
package host
