package customevent

import (
	"sync"
)

// Phase identifies which of the two signals of an event type a listener is bound to.
type Phase int

const (
	PhasePre  Phase = iota // PhasePre is the cancelable signal delivered before a commit.
	PhasePost              // PhasePost is the informational signal delivered after a commit.
)

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhasePost:
		return "post"
	default:
		return "unknown"
	}
}

// Hooks are called when an event type gains its first listener, and when it loses its last one.
// Either may be nil.
//
// Hooks run while the [Descriptor] is locked, so they must not bind or unbind listeners of the same type.
type Hooks struct {
	Setup    func()
	Teardown func()
}

// Descriptor is the registered state of a single event type: its hooks and how many listeners are bound to each phase.
type Descriptor struct {
	typ   string
	hooks Hooks

	mux  sync.Mutex
	pre  int
	post int
}

func newDescriptor(typ string, hooks Hooks) *Descriptor {
	return &Descriptor{
		typ:   typ,
		hooks: hooks,
	}
}

func (d *Descriptor) Type() string {
	return d.typ
}

func (d *Descriptor) PreCount() int {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.pre
}

func (d *Descriptor) PostCount() int {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.post
}

// Active reports whether any listener is bound to either phase.
func (d *Descriptor) Active() bool {
	d.mux.Lock()
	defer d.mux.Unlock()
	return d.pre+d.post > 0
}

func (d *Descriptor) counter(phase Phase) *int {
	if phase == PhasePre {
		return &d.pre
	}
	return &d.post
}

// bind counts a new listener, running setup first if it's the first listener across both phases.
func (d *Descriptor) bind(phase Phase) (activated bool) {
	d.mux.Lock()
	defer d.mux.Unlock()
	if d.pre+d.post == 0 {
		if d.hooks.Setup != nil {
			d.hooks.Setup()
		}
		activated = true
	}
	*d.counter(phase)++
	return activated
}

// unbind reverses bind, running teardown when the last listener across both phases is removed.
// The phase counter never goes below 0, and balanced reports false if there was nothing to remove.
func (d *Descriptor) unbind(phase Phase) (deactivated, balanced bool) {
	d.mux.Lock()
	defer d.mux.Unlock()
	count := d.counter(phase)
	if *count == 0 {
		return false, false
	}
	*count--
	if d.pre+d.post > 0 {
		return false, true
	}
	if d.hooks.Teardown != nil {
		d.hooks.Teardown()
	}
	return true, true
}
