package customevent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/saylorsolutions/eventx/host"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNilCommit = errors.New("nil commit function")
)

// CommitFunc performs the mutation an event type describes.
// It receives the event after all pre-phase listeners have run, so it can honour fields they changed.
type CommitFunc[R any] func(evt *host.Event) (R, error)

// Dispatcher fires the pre-phase signal, the commit, and the post-phase signal for registered event types.
type Dispatcher struct {
	reg    *Registry
	log    *slog.Logger
	tracer trace.Tracer
}

// NewDispatcher creates a [Dispatcher] for types registered in reg.
// This will panic if reg is nil, or if a [ConfigFunc] returns an error.
func NewDispatcher(reg *Registry, configFuncs ...ConfigFunc) *Dispatcher {
	if reg == nil {
		panic("nil registry")
	}
	c := applyConf(configFuncs)
	return &Dispatcher{
		reg:    reg,
		log:    c.log,
		tracer: c.tracer,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Trigger is [Dispatcher.TriggerContext] with a background context.
func (d *Dispatcher) Trigger(target host.Target, typ string, params host.Params, commit CommitFunc[any]) (any, error) {
	return d.TriggerContext(context.Background(), target, typ, params, commit)
}

// TriggerContext runs commit between the pre and post phases of typ, returning what commit returns.
// Nil is returned without calling commit if typ isn't registered, or if a pre-phase listener prevented the default.
// See [TriggerResult] for details.
func (d *Dispatcher) TriggerContext(ctx context.Context, target host.Target, typ string, params host.Params, commit CommitFunc[any]) (any, error) {
	result, _, err := TriggerResult(ctx, d, target, typ, params, commit)
	return result, err
}

// TriggerResult delivers the pre-phase signal of typ to target, then runs commit and delivers the post-phase signal if no listener called [host.Event.PreventDefault].
// The committed return is true only if commit ran and returned a nil error.
//
// A single [host.Event] is used for the whole sequence. It carries a copy of params, and is rephased from "pre-<typ>" to "<typ>" before commit runs,
// so stopping propagation in the pre phase doesn't affect the post phase.
// Each phase is only delivered if that phase has listeners somewhere.
//
// Calling this with a type that's not registered does nothing and returns no error.
// Errors from listeners or commit stop the sequence and are returned unchanged. Panics are not recovered.
func TriggerResult[R any](ctx context.Context, d *Dispatcher, target host.Target, typ string, params host.Params, commit CommitFunc[R]) (result R, committed bool, err error) {
	desc, ok := d.reg.Lookup(typ)
	if !ok {
		return result, false, nil
	}
	if commit == nil {
		return result, false, ErrNilCommit
	}
	ctx, span := d.tracer.Start(ctx, "customevent.trigger", trace.WithAttributes(
		attribute.String("customevent.type", typ),
	))
	defer span.End()
	fail := func(phase string, err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, phase+" failed")
	}

	evt := host.NewEvent(PreName(typ), target, params).WithContext(ctx)
	if desc.PreCount() > 0 {
		if err := d.reg.sys.Deliver(evt); err != nil {
			fail(PhasePre.String(), err)
			return result, false, err
		}
	}
	if evt.IsDefaultPrevented() {
		d.log.Debug("Event cancelled", "type", typ, "target", target)
		span.SetAttributes(attribute.Bool("customevent.cancelled", true))
		return result, false, nil
	}

	evt.Rephase(typ)
	result, err = commit(evt)
	if err != nil {
		fail("commit", err)
		return result, false, err
	}
	span.SetAttributes(attribute.Bool("customevent.committed", true))

	if desc.PostCount() > 0 {
		if err := d.reg.sys.Deliver(evt); err != nil {
			fail(PhasePost.String(), err)
			return result, true, err
		}
	}
	return result, true, nil
}
