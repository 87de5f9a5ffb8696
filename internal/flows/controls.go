// Package flows implements the flow-argument form layer: a bidirectional
// adapter between declarative form controls and wire-level flow arguments,
// plus the flow catalog and argument validation.
package flows

import (
	"fmt"
)

// Args is a wire-level flow argument object. Opaque byte fields cross the
// boundary base64-encoded.
type Args map[string]any

// State is the form-state representation consumed by controls.
type State map[string]any

// Validator checks one control value. Returning an error marks the control
// invalid without affecting any other control.
type Validator func(value any) error

// Control is one form input. Kind is advisory for the consuming UI:
// "text", "multiline", "select", "int", "bool" or "bytes".
type Control struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	Hint    string   `json:"hint,omitempty"`
	Options []string `json:"options,omitempty"`

	// HintFunc recomputes Hint from the current value on every change,
	// e.g. a byte-unit rendering of a raw byte count.
	HintFunc func(value any) string `json:"-"`

	value      any
	err        error
	dirty      bool
	validators []Validator
}

// Value returns the control's current value.
func (c *Control) Value() any { return c.value }

// Err returns the control's current validation error, or nil.
func (c *Control) Err() error { return c.err }

// Dirty reports whether the control changed since the last reset.
func (c *Control) Dirty() bool { return c.dirty }

func (c *Control) validate() {
	c.err = nil
	for _, v := range c.validators {
		if err := v(c.value); err != nil {
			c.err = fmt.Errorf("%s: %w", c.Name, err)
			return
		}
	}
}

// ControlSet is an ordered collection of controls. Controls validate
// independently; one invalid field never blocks the others.
type ControlSet struct {
	order    []string
	controls map[string]*Control
}

// NewControlSet creates an empty control set.
func NewControlSet() *ControlSet {
	return &ControlSet{controls: make(map[string]*Control)}
}

// Add appends a control with its validators and returns the set for chaining.
func (cs *ControlSet) Add(c Control, validators ...Validator) *ControlSet {
	c.validators = validators
	if c.HintFunc != nil && c.Hint == "" {
		c.Hint = c.HintFunc(c.value)
	}
	cs.order = append(cs.order, c.Name)
	cs.controls[c.Name] = &c
	return cs
}

// Get returns the named control, or nil.
func (cs *ControlSet) Get(name string) *Control {
	return cs.controls[name]
}

// Controls returns the controls in declaration order.
func (cs *ControlSet) Controls() []*Control {
	out := make([]*Control, 0, len(cs.order))
	for _, name := range cs.order {
		out = append(out, cs.controls[name])
	}
	return out
}

// Set updates one control's value, revalidates it and marks it dirty.
// Setting an unknown control is an error; a failed validation is not —
// it is recorded on the control itself.
func (cs *ControlSet) Set(name string, value any) error {
	c := cs.controls[name]
	if c == nil {
		return fmt.Errorf("no control named %q", name)
	}
	c.value = value
	c.dirty = true
	c.validate()
	if c.HintFunc != nil {
		c.Hint = c.HintFunc(value)
	}
	return nil
}

// Populate sets values from form state without marking controls dirty.
// Controls absent from the state keep their current value.
func (cs *ControlSet) Populate(state State) {
	for _, name := range cs.order {
		value, ok := state[name]
		if !ok {
			continue
		}
		c := cs.controls[name]
		c.value = value
		c.dirty = false
		c.validate()
		if c.HintFunc != nil {
			c.Hint = c.HintFunc(value)
		}
	}
}

// State snapshots the current values.
func (cs *ControlSet) State() State {
	state := make(State, len(cs.order))
	for name, c := range cs.controls {
		state[name] = c.value
	}
	return state
}

// Errs returns the current validation errors keyed by control name.
func (cs *ControlSet) Errs() map[string]error {
	errs := make(map[string]error)
	for name, c := range cs.controls {
		if c.err != nil {
			errs[name] = c.err
		}
	}
	return errs
}

// Valid reports whether no control currently carries a validation error.
func (cs *ControlSet) Valid() bool {
	for _, c := range cs.controls {
		if c.err != nil {
			return false
		}
	}
	return true
}

// Pristine reports whether no control changed since the last reset.
func (cs *ControlSet) Pristine() bool {
	for _, c := range cs.controls {
		if c.dirty {
			return false
		}
	}
	return true
}

func (cs *ControlSet) markPristine() {
	for _, c := range cs.controls {
		c.dirty = false
	}
}
