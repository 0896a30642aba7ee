package customevent

import (
	"fmt"

	"github.com/saylorsolutions/eventx/host"
)

// On binds handler to the post-phase signal of a registered type.
// The spec is the bare type name with optional namespaces, like "rename.@title.mine".
func (r *Registry) On(target host.Target, spec string, handler host.Handler) (host.BindingID, error) {
	return r.bind(target, spec, PhasePost, handler)
}

// OnPre binds handler to the pre-phase signal of a registered type.
// The spec is the bare type name with optional namespaces, the "pre-" prefix is added here.
func (r *Registry) OnPre(target host.Target, spec string, handler host.Handler) (host.BindingID, error) {
	return r.bind(target, spec, PhasePre, handler)
}

func (r *Registry) bind(target host.Target, spec string, phase Phase, handler host.Handler) (host.BindingID, error) {
	typ, namespaces := host.ParseSpec(spec)
	if _, ok := r.Lookup(typ); !ok {
		return "", fmt.Errorf("%w: '%s'", ErrNotRegistered, typ)
	}
	if phase == PhasePre {
		typ = PreName(typ)
	}
	return r.sys.On(target, host.FormatSpec(typ, namespaces...), handler)
}

// Off removes a binding created with [Registry.On] or [Registry.OnPre].
func (r *Registry) Off(target host.Target, id host.BindingID) bool {
	return r.sys.Off(target, id)
}
