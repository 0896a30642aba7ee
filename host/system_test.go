package host

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystem() *System {
	var n int
	return NewSystem(IDGenerator(func() BindingID {
		n++
		return BindingID(fmt.Sprintf("b%d", n))
	}))
}

func TestNewSystem_InvalidConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewSystem(Logger(nil))
	})
	assert.Panics(t, func() {
		NewSystem(IDGenerator(nil))
	})
	assert.NotPanics(t, func() {
		NewSystem()
	})
}

func TestSystem_On_Invalid(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	noop := func(*Event) error { return nil }

	_, err := sys.On(nil, "change", noop)
	assert.ErrorIs(t, err, ErrNilTarget)
	_, err = sys.On(el, "change", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	_, err = sys.On(el, ".ns", noop)
	assert.ErrorIs(t, err, ErrInvalidSpec)
	assert.Equal(t, 0, sys.Count(el, "change"))
}

func TestSystem_Deliver_Order(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var calls []string
	for _, label := range []string{"first", "second", "third"} {
		_, err := sys.On(el, "change", func(evt *Event) error {
			calls = append(calls, label)
			return nil
		})
		require.NoError(t, err)
	}
	_, err := sys.On(el, "other", func(evt *Event) error {
		calls = append(calls, "other")
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, sys.Deliver(NewEvent("change", el, nil)))
	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestSystem_Deliver_Bubbles(t *testing.T) {
	sys := testSystem()
	root := NewElement("root", nil)
	child := NewElement("child", root)
	var seen []Target
	handler := func(evt *Event) error {
		seen = append(seen, evt.CurrentTarget)
		assert.Equal(t, child, evt.Target)
		return nil
	}
	_, err := sys.On(root, "change", handler)
	require.NoError(t, err)
	_, err = sys.On(child, "change", handler)
	require.NoError(t, err)

	evt := NewEvent("change", child, nil)
	assert.NoError(t, sys.Deliver(evt))
	assert.Equal(t, []Target{child, root}, seen)
	assert.Nil(t, evt.CurrentTarget, "Current target should be reset after delivery")
}

func TestSystem_Deliver_StopPropagation(t *testing.T) {
	sys := testSystem()
	root := NewElement("root", nil)
	child := NewElement("child", root)
	var rootCalled, secondCalled bool
	_, _ = sys.On(child, "change", func(evt *Event) error {
		evt.StopPropagation()
		return nil
	})
	_, _ = sys.On(child, "change", func(evt *Event) error {
		secondCalled = true
		return nil
	})
	_, _ = sys.On(root, "change", func(evt *Event) error {
		rootCalled = true
		return nil
	})

	assert.NoError(t, sys.Deliver(NewEvent("change", child, nil)))
	assert.True(t, secondCalled, "Listeners on the same target should still run")
	assert.False(t, rootCalled, "Propagation to the parent should have stopped")

	secondCalled = false
	sys.RemoveAll(child)
	_, _ = sys.On(child, "change", func(evt *Event) error {
		evt.StopImmediatePropagation()
		return nil
	})
	_, _ = sys.On(child, "change", func(evt *Event) error {
		secondCalled = true
		return nil
	})
	assert.NoError(t, sys.Deliver(NewEvent("change", child, nil)))
	assert.False(t, secondCalled)
	assert.False(t, rootCalled)
}

func TestSystem_Deliver_Error(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	errBoom := errors.New("boom")
	var afterCalled bool
	_, _ = sys.On(el, "change", func(evt *Event) error {
		return errBoom
	})
	_, _ = sys.On(el, "change", func(evt *Event) error {
		afterCalled = true
		return nil
	})
	assert.ErrorIs(t, sys.Deliver(NewEvent("change", el, nil)), errBoom)
	assert.False(t, afterCalled)
	assert.ErrorIs(t, sys.Deliver(nil), ErrNilTarget)
}

func TestSystem_Deliver_Panics(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	_, _ = sys.On(el, "change", func(evt *Event) error {
		panic("handler panic")
	})
	assert.Panics(t, func() {
		_ = sys.Deliver(NewEvent("change", el, nil))
	})
}

func TestSystem_One(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var count int
	_, err := sys.One(el, "change", func(evt *Event) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, sys.Deliver(NewEvent("change", el, nil)))
	assert.NoError(t, sys.Deliver(NewEvent("change", el, nil)))
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, sys.Count(el, "change"))
}

func TestSystem_Off(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var called bool
	id, err := sys.On(el, "change", func(evt *Event) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sys.Off(el, id))
	assert.False(t, sys.Off(el, id), "Second removal should not find the binding")
	assert.NoError(t, sys.Deliver(NewEvent("change", el, nil)))
	assert.False(t, called)
}

func TestSystem_OffSpec(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	noop := func(*Event) error { return nil }
	_, _ = sys.On(el, "change.a.b", noop)
	_, _ = sys.On(el, "change.a", noop)
	_, _ = sys.On(el, "change", noop)
	_, _ = sys.On(el, "other.a", noop)

	n, err := sys.OffSpec(el, "change.b.a")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = sys.OffSpec(el, ".a")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, sys.Count(el, "change"))
	assert.Equal(t, 0, sys.Count(el, "other"))

	_, err = sys.OffSpec(el, ".")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestSystem_Special(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var (
		added, removed []BindingID
		wrappedCalls   int
	)
	sys.Special("change", SpecialHooks{
		Add: func(b *Binding) Handler {
			added = append(added, b.ID)
			b.Data = "owned"
			inner := b.Handler
			return func(evt *Event) error {
				wrappedCalls++
				return inner(evt)
			}
		},
		Remove: func(b *Binding) {
			assert.Equal(t, "owned", b.Data)
			removed = append(removed, b.ID)
		},
	})

	var innerCalls int
	id, err := sys.On(el, "change.mine", func(evt *Event) error {
		innerCalls++
		assert.Equal(t, "mine", evt.Namespace)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, sys.Deliver(NewEvent("change", el, nil)))
	assert.Equal(t, 1, wrappedCalls)
	assert.Equal(t, 1, innerCalls)

	bindings := sys.Bindings(el)
	require.Len(t, bindings, 1)
	assert.Equal(t, "change", bindings[0].Type, "Replaced handler should keep the bound type")
	assert.Equal(t, []string{"mine"}, bindings[0].Namespaces)

	n, err := sys.OffSpec(el, "change.mine")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []BindingID{id}, added)
	assert.Equal(t, []BindingID{id}, removed)

	sys.ClearSpecial("change")
	_, _ = sys.On(el, "change", func(*Event) error { return nil })
	assert.Len(t, added, 1, "Cleared hooks should not be called")
}

func TestSystem_Reentrant(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var nestedCalls int
	_, _ = sys.On(el, "outer", func(evt *Event) error {
		_, err := sys.On(el, "inner", func(*Event) error {
			nestedCalls++
			return nil
		})
		if err != nil {
			return err
		}
		return sys.Deliver(NewEvent("inner", el, nil))
	})
	assert.NoError(t, sys.Deliver(NewEvent("outer", el, nil)))
	assert.Equal(t, 1, nestedCalls)
}

func TestSystem_InvalidTargets(t *testing.T) {
	sys := testSystem()
	noop := func(*Event) error { return nil }
	var nilElement *Element

	_, err := sys.On(map[string]string{}, "change", noop)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = sys.On([]string{"a"}, "change", noop)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = sys.On(nilElement, "change", noop)
	assert.ErrorIs(t, err, ErrNilTarget)

	assert.ErrorIs(t, sys.Deliver(NewEvent("change", nilElement, nil)), ErrNilTarget)
	assert.ErrorIs(t, sys.Deliver(NewEvent("change", []string{"a"}, nil)), ErrInvalidTarget)
	assert.Equal(t, 0, sys.Count([]string{"a"}, "change"))
	assert.Equal(t, 0, sys.RemoveAll(map[string]string{}))
	assert.Nil(t, sys.Bindings(nilElement))
	assert.Nil(t, nilElement.ParentTarget())
}

func TestSystem_One_Wrapped(t *testing.T) {
	sys := testSystem()
	el := NewElement("a", nil)
	var removed int
	sys.Special("change", SpecialHooks{
		Add: func(b *Binding) Handler {
			run := b.Run()
			return func(evt *Event) error {
				if evt.Namespace != "" && evt.AttrName() != "wanted" {
					return nil
				}
				return run(evt)
			}
		},
		Remove: func(*Binding) {
			removed++
		},
	})
	var calls int
	_, err := sys.One(el, "change.filtered", func(*Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, sys.Deliver(NewEvent("change", el, Params{AttrNameParam: "other"})))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, sys.Count(el, "change"), "Filtered events shouldn't use up the binding")
	assert.Equal(t, 0, removed)

	require.NoError(t, sys.Deliver(NewEvent("change", el, Params{AttrNameParam: "wanted"})))
	require.NoError(t, sys.Deliver(NewEvent("change", el, Params{AttrNameParam: "wanted"})))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sys.Count(el, "change"))
	assert.Equal(t, 1, removed)
}
