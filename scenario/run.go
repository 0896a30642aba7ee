package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/saylorsolutions/eventx/customevent"
	"github.com/saylorsolutions/eventx/host"
	"github.com/saylorsolutions/eventx/mutation"
	"go.opentelemetry.io/otel/trace"
)

const (
	ansiLabel = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// Options control how a [Scenario] is run.
// The zero value writes an uncoloured trace to stderr.
type Options struct {
	Out            io.Writer
	Color          bool
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

type tracer struct {
	out   io.Writer
	color bool
}

func (t *tracer) linef(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format+"\n", args...)
}

func (t *tracer) label(label string) string {
	if t.color {
		return ansiLabel + "[" + label + "]" + ansiReset
	}
	return "[" + label + "]"
}

type runner struct {
	trace     *tracer
	sys       *host.System
	obs       *mutation.Observer
	elements  map[string]*host.Element
	listeners map[string]ListenerSpec
	bound     map[string]host.BindingID
}

// Run replays the scenario against a fresh event system, writing one trace line per observable action.
// Cancelling ctx stops the run before the next step.
func Run(ctx context.Context, s *Scenario, opts Options) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	configFuncs := []customevent.ConfigFunc{customevent.Logger(opts.Logger)}
	if opts.TracerProvider != nil {
		configFuncs = append(configFuncs, customevent.TracerProvider(opts.TracerProvider))
	}

	r := &runner{
		trace:     &tracer{out: opts.Out, color: opts.Color},
		sys:       host.NewSystem(host.Logger(opts.Logger)),
		elements:  map[string]*host.Element{},
		listeners: map[string]ListenerSpec{},
		bound:     map[string]host.BindingID{},
	}
	dispatcher := customevent.NewDispatcher(customevent.NewRegistry(r.sys, configFuncs...), configFuncs...)
	obs, err := mutation.NewObserver(dispatcher, func(active bool) {
		if active {
			r.trace.linef("observer: active")
		} else {
			r.trace.linef("observer: inactive")
		}
	})
	if err != nil {
		return err
	}
	r.obs = obs

	if len(s.Name) > 0 {
		r.trace.linef("scenario: %s", s.Name)
	}
	for _, spec := range s.Elements {
		el := host.NewElement(spec.ID, r.elements[spec.Parent])
		for k, v := range spec.Attrs {
			el.StoreAttr(k, v)
		}
		r.elements[spec.ID] = el
	}
	for _, l := range s.Listeners {
		r.listeners[l.Label] = l
		if l.Deferred {
			continue
		}
		if err := r.bind(l.Label); err != nil {
			return err
		}
	}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stopped before step %d: %w", i, err)
		}
		if err := r.step(ctx, step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (r *runner) step(ctx context.Context, step Step) error {
	switch {
	case step.Set != nil:
		el := r.elements[step.Set.Element]
		val, ok, err := r.obs.SetAttr(ctx, el, step.Set.Attr, step.Set.Value)
		if err != nil {
			return err
		}
		if !ok {
			r.trace.linef("set %s %s=%q: cancelled", el, step.Set.Attr, step.Set.Value)
			return nil
		}
		r.trace.linef("set %s %s=%q: committed %q", el, step.Set.Attr, step.Set.Value, val)
	case step.Remove != nil:
		el := r.elements[step.Remove.Element]
		ok, err := r.obs.RemoveAttr(ctx, el, step.Remove.Attr)
		if err != nil {
			return err
		}
		if !ok {
			r.trace.linef("remove %s %s: not removed", el, step.Remove.Attr)
			return nil
		}
		r.trace.linef("remove %s %s: committed", el, step.Remove.Attr)
	case len(step.Bind) > 0:
		return r.bind(step.Bind)
	case len(step.Unbind) > 0:
		id, ok := r.bound[step.Unbind]
		if !ok {
			r.trace.linef("unbind %s: not bound", r.trace.label(step.Unbind))
			return nil
		}
		delete(r.bound, step.Unbind)
		l := r.listeners[step.Unbind]
		if !r.sys.Off(r.elements[l.Element], id) {
			r.trace.linef("unbind %s: already removed", r.trace.label(step.Unbind))
			return nil
		}
		r.trace.linef("unbind %s", r.trace.label(step.Unbind))
	}
	return nil
}

func (r *runner) bind(label string) error {
	if _, ok := r.bound[label]; ok {
		r.trace.linef("bind %s: already bound", r.trace.label(label))
		return nil
	}
	l := r.listeners[label]
	el := r.elements[l.Element]
	bindFn := r.sys.On
	if l.Once {
		bindFn = r.sys.One
	}
	id, err := bindFn(el, l.Event, r.handler(l))
	if err != nil {
		return fmt.Errorf("failed to bind listener '%s': %w", label, err)
	}
	r.bound[label] = id
	r.trace.linef("bind %s %s on %s", r.trace.label(label), l.Event, el)
	return nil
}

func (r *runner) handler(l ListenerSpec) host.Handler {
	return func(evt *host.Event) error {
		change := mutation.ChangeOf(evt)
		prev, _ := host.Param[string](evt, mutation.ParamPrevValue)
		next, _ := host.Param[string](evt, mutation.ParamNewValue)
		r.trace.linef("%s %s at %s from %s: %s %s %q -> %q",
			r.trace.label(l.Label), evt.Type, evt.CurrentTarget, evt.Target, evt.AttrName(), change, prev, next)
		switch l.Action {
		case ActionCancel:
			evt.PreventDefault()
			r.trace.linef("%s prevent default", r.trace.label(l.Label))
		case ActionStop:
			evt.StopPropagation()
			r.trace.linef("%s stop propagation", r.trace.label(l.Label))
		case ActionRewrite:
			evt.Set(mutation.ParamNewValue, l.Value)
			r.trace.linef("%s rewrite %q", r.trace.label(l.Label), l.Value)
		}
		return nil
	}
}
