/*
Package eventx hosts custom event types on top of a small namespaced event system.

The interesting parts live in sub-packages:
  - host is the event system: targets, bindings, special add/remove hooks, and bubbling delivery.
  - customevent registers custom types, counts their listeners to run setup/teardown exactly when needed, and dispatches them in a cancelable pre phase followed by a post phase.
  - mutation is an attribute change observer built with customevent.
  - scenario replays YAML mutation scenarios, which is what cmd/eventtrace exposes.
*/
package eventx
