package customevent

import (
	"testing"

	"github.com/saylorsolutions/eventx/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNamespaces(t *testing.T) {
	el := host.NewElement("el", nil)

	_, ok := ParseNamespaces(el, nil)
	assert.False(t, ok)
	_, ok = ParseNamespaces(el, []string{"mine", "other"})
	assert.False(t, ok, "Plain namespaces should not produce a filter")

	filter, ok := ParseNamespaces(el, []string{"@name", "mine", "@title"})
	require.True(t, ok)
	assert.Equal(t, el, filter.BoundTarget)
	assert.Equal(t, []string{"name", "title"}, filter.AttrNames.Slice())

	filter, ok = ParseNamespaces(el, []string{"@"})
	require.True(t, ok)
	assert.Empty(t, filter.AttrNames)
}

func TestNamespaceFilter_Matches(t *testing.T) {
	root := host.NewElement("root", nil)
	el := host.NewElement("el", root)
	filter, _ := ParseNamespaces(el, []string{"@name"})

	tests := map[string]struct {
		target  host.Target
		attr    string
		matches bool
	}{
		"Same target and attribute": {el, "name", true},
		"Other attribute":           {el, "title", false},
		"Other target":              {root, "name", false},
		"Missing attribute":         {el, "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			evt := host.NewEvent("attr", tc.target, host.Params{host.AttrNameParam: tc.attr})
			assert.Equal(t, tc.matches, filter.Matches(evt))
		})
	}

	targetOnly, _ := ParseNamespaces(el, []string{"@"})
	assert.True(t, targetOnly.Matches(host.NewEvent("attr", el, host.Params{host.AttrNameParam: "anything"})))
	assert.False(t, targetOnly.Matches(host.NewEvent("attr", root, nil)))
}

func TestNamespaceFilter_Wrap(t *testing.T) {
	el := host.NewElement("el", nil)
	filter, _ := ParseNamespaces(el, []string{"@name"})
	var calls int
	wrapped := filter.Wrap(func(evt *host.Event) error {
		calls++
		return nil
	})
	assert.NoError(t, wrapped(host.NewEvent("attr", el, host.Params{host.AttrNameParam: "name"})))
	assert.NoError(t, wrapped(host.NewEvent("attr", el, host.Params{host.AttrNameParam: "title"})))
	assert.Equal(t, 1, calls)
}

func TestNamespaceProxy_Bubbling(t *testing.T) {
	reg, sys := testRegistry(t)
	require.NoError(t, reg.Register("attr", Hooks{}))
	root := host.NewElement("root", nil)
	child := host.NewElement("child", root)

	var scoped, unscoped int
	_, err := sys.On(root, "attr.@name", func(evt *host.Event) error {
		scoped++
		return nil
	})
	require.NoError(t, err)
	_, err = sys.On(root, "attr", func(evt *host.Event) error {
		unscoped++
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, sys.Deliver(host.NewEvent("attr", child, host.Params{host.AttrNameParam: "name"})))
	assert.Equal(t, 0, scoped, "Scoped listener should ignore events from descendants")
	assert.Equal(t, 1, unscoped)

	assert.NoError(t, sys.Deliver(host.NewEvent("attr", root, host.Params{host.AttrNameParam: "name"})))
	assert.Equal(t, 1, scoped)
	assert.Equal(t, 2, unscoped)

	n, err := sys.OffSpec(root, "attr.@name")
	assert.NoError(t, err)
	assert.Equal(t, 1, n, "Proxied listener should still be found by its bound spec")
}

func TestNamespaceProxy_One(t *testing.T) {
	reg, sys := testRegistry(t)
	require.NoError(t, reg.Register("rename", Hooks{}))
	d := NewDispatcher(reg)
	node := host.NewElement("node", nil)

	var fired int
	_, err := sys.One(node, "pre-rename.@name", func(evt *host.Event) error {
		fired++
		evt.PreventDefault()
		return nil
	})
	require.NoError(t, err)
	commit := func(*host.Event) (any, error) {
		return "done", nil
	}

	result, err := d.Trigger(node, "rename", host.Params{host.AttrNameParam: "title"}, commit)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 0, fired)
	assert.Len(t, sys.Bindings(node), 1, "An event for another attribute shouldn't use up the listener")

	result, err = d.Trigger(node, "rename", host.Params{host.AttrNameParam: "name"}, commit)
	require.NoError(t, err)
	assert.Nil(t, result, "The one-shot listener should have vetoed the change")
	assert.Equal(t, 1, fired)
	assert.Empty(t, sys.Bindings(node))
	desc, _ := reg.Lookup("rename")
	assert.Equal(t, 0, desc.PreCount())

	result, err = d.Trigger(node, "rename", host.Params{host.AttrNameParam: "name"}, commit)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 1, fired)
}
