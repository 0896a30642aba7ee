package customevent

import (
	"github.com/saylorsolutions/eventx/host"
)

func (r *Registry) guard(typ string, phase Phase) host.SpecialHooks {
	return host.SpecialHooks{
		Add: func(b *host.Binding) host.Handler {
			return r.onBind(typ, phase, b)
		},
		Remove: func(b *host.Binding) {
			r.onUnbind(typ, phase, b)
		},
	}
}

func (r *Registry) onBind(typ string, phase Phase, b *host.Binding) host.Handler {
	desc, ok := r.Lookup(typ)
	if !ok {
		return nil
	}
	if desc.bind(phase) {
		r.log.Debug("Activated event type", "type", typ, "phase", phase)
	}
	// Remembered so that unbinding after a re-registration doesn't touch the new descriptor.
	b.Data = desc

	filter, ok := ParseNamespaces(b.Target, b.Namespaces)
	if !ok {
		return nil
	}
	return filter.Wrap(b.Run())
}

func (r *Registry) onUnbind(typ string, phase Phase, b *host.Binding) {
	desc, ok := b.Data.(*Descriptor)
	if !ok {
		return
	}
	if current, _ := r.Lookup(typ); current != desc {
		r.log.Debug("Ignoring unbind for a replaced event type", "type", typ, "phase", phase)
		return
	}
	deactivated, balanced := desc.unbind(phase)
	if !balanced {
		r.log.Warn("Unbalanced unbind", "type", typ, "phase", phase)
		return
	}
	if deactivated {
		r.log.Debug("Deactivated event type", "type", typ, "phase", phase)
	}
}
