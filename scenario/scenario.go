// Package scenario replays YAML-described attribute mutations against a fresh event system and traces what listeners observe.
// It's mostly useful for exploring how pre-phase vetoes, attribute scoping, and bubbling interact.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/saylorsolutions/eventx/customevent"
	"github.com/saylorsolutions/eventx/host"
	"github.com/saylorsolutions/eventx/mutation"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Action is what a scenario listener does when it fires, in addition to writing a trace line.
type Action string

const (
	ActionLog     Action = "log"     // ActionLog only traces the event.
	ActionCancel  Action = "cancel"  // ActionCancel prevents the default, which only has an effect in the pre phase.
	ActionStop    Action = "stop"    // ActionStop stops propagation to ancestors.
	ActionRewrite Action = "rewrite" // ActionRewrite replaces the new attribute value with the listener's Value.
)

var validActions = []Action{ActionLog, ActionCancel, ActionStop, ActionRewrite}

// Scenario describes a tree of elements, listeners bound to them, and attribute mutations to perform.
type Scenario struct {
	Name      string         `yaml:"name"`
	Elements  []ElementSpec  `yaml:"elements"`
	Listeners []ListenerSpec `yaml:"listeners"`
	Steps     []Step         `yaml:"steps"`
}

// ElementSpec declares an element. A parent must be declared before its children.
type ElementSpec struct {
	ID     string            `yaml:"id"`
	Parent string            `yaml:"parent,omitempty"`
	Attrs  map[string]string `yaml:"attrs,omitempty"`
}

// ListenerSpec declares a listener.
// Listeners are bound before the first step, unless Deferred is set, in which case a "bind" step is needed.
type ListenerSpec struct {
	Label    string `yaml:"label"`
	Element  string `yaml:"element"`
	Event    string `yaml:"event"`
	Action   Action `yaml:"action,omitempty"`
	Value    string `yaml:"value,omitempty"`
	Once     bool   `yaml:"once,omitempty"`
	Deferred bool   `yaml:"deferred,omitempty"`
}

// Step is a single operation. Exactly one field must be set.
type Step struct {
	Set    *SetStep    `yaml:"set,omitempty"`
	Remove *RemoveStep `yaml:"remove,omitempty"`
	Bind   string      `yaml:"bind,omitempty"`
	Unbind string      `yaml:"unbind,omitempty"`
}

type SetStep struct {
	Element string `yaml:"element"`
	Attr    string `yaml:"attr"`
	Value   string `yaml:"value"`
}

type RemoveStep struct {
	Element string `yaml:"element"`
	Attr    string `yaml:"attr"`
}

// Load decodes and validates a YAML scenario.
// Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile is [Load] for a file path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(s.Name) == 0 {
		s.Name = path
	}
	return s, nil
}

// Validate checks references between elements, listeners, and steps.
// All problems are reported together.
func (s *Scenario) Validate() error {
	var (
		errs     []error
		elements = map[string]bool{}
		labels   = map[string]bool{}
	)
	for i, el := range s.Elements {
		switch {
		case len(el.ID) == 0:
			errs = append(errs, fmt.Errorf("element %d has no id", i))
		case elements[el.ID]:
			errs = append(errs, fmt.Errorf("element '%s' is declared more than once", el.ID))
		}
		if len(el.Parent) > 0 && !elements[el.Parent] {
			errs = append(errs, fmt.Errorf("element '%s' has undeclared parent '%s'", el.ID, el.Parent))
		}
		elements[el.ID] = true
	}
	for i, l := range s.Listeners {
		if len(l.Label) == 0 {
			errs = append(errs, fmt.Errorf("listener %d has no label", i))
		} else if labels[l.Label] {
			errs = append(errs, fmt.Errorf("listener label '%s' is used more than once", l.Label))
		}
		labels[l.Label] = true
		if !elements[l.Element] {
			errs = append(errs, fmt.Errorf("listener '%s' refers to unknown element '%s'", l.Label, l.Element))
		}
		if typ, _ := host.ParseSpec(l.Event); typ != mutation.TypeAttr && typ != customevent.PreName(mutation.TypeAttr) {
			errs = append(errs, fmt.Errorf("listener '%s' binds unsupported event '%s'", l.Label, l.Event))
		}
		if len(l.Action) > 0 && !slices.Contains(validActions, l.Action) {
			errs = append(errs, fmt.Errorf("listener '%s' has unknown action '%s'", l.Label, l.Action))
		}
	}
	for i, step := range s.Steps {
		var ops int
		if step.Set != nil {
			ops++
			if !elements[step.Set.Element] {
				errs = append(errs, fmt.Errorf("step %d sets an attribute on unknown element '%s'", i, step.Set.Element))
			}
			if len(step.Set.Attr) == 0 {
				errs = append(errs, fmt.Errorf("step %d has no attribute name", i))
			}
		}
		if step.Remove != nil {
			ops++
			if !elements[step.Remove.Element] {
				errs = append(errs, fmt.Errorf("step %d removes an attribute from unknown element '%s'", i, step.Remove.Element))
			}
		}
		if len(step.Bind) > 0 {
			ops++
			if !labels[step.Bind] {
				errs = append(errs, fmt.Errorf("step %d binds unknown listener '%s'", i, step.Bind))
			}
		}
		if len(step.Unbind) > 0 {
			ops++
			if !labels[step.Unbind] {
				errs = append(errs, fmt.Errorf("step %d unbinds unknown listener '%s'", i, step.Unbind))
			}
		}
		if ops != 1 {
			errs = append(errs, fmt.Errorf("step %d must have exactly one operation, found %d", i, ops))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}
