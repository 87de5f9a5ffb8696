// Package semantic implements the typed-value rendering core of the console:
// the tagged value model, the renderer registry and dispatcher, the
// struct/union display-item builder, and the diff annotator.
package semantic

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DiffMark annotates a value with the outcome of a structural comparison.
// It is a renderer-only annotation and is never sent back to a flow.
type DiffMark string

const (
	DiffNone    DiffMark = ""
	DiffAdded   DiffMark = "added"
	DiffRemoved DiffMark = "removed"
	DiffChanged DiffMark = "changed"
)

// FetchMoreType is the pseudo type tag carried by the synthetic list item
// that holds the remainder of a truncated list.
const FetchMoreType = "__FetchMoreLink"

// TaggedValue is a runtime-typed value as delivered by the reflection layer.
// Value is one of: nil, string, float64, bool, map[string]*TaggedValue
// (a struct keyed by field name), or []*TaggedValue (a repeated field).
type TaggedValue struct {
	Type  string
	Value any
	Diff  DiffMark
}

// String returns the scalar display form of a primitive value.
// Structs and lists render through the dispatcher, not through String.
func (v *TaggedValue) String() string {
	if v == nil || v.Value == nil {
		return ""
	}
	switch val := v.Value.(type) {
	case string:
		return val
	case float64:
		// Whole numbers print without a trailing ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsList reports whether the value is a repeated field.
func (v *TaggedValue) IsList() bool {
	if v == nil {
		return false
	}
	_, ok := v.Value.([]*TaggedValue)
	return ok
}

// ListItems returns the repeated items, or nil if the value is not a list.
func (v *TaggedValue) ListItems() []*TaggedValue {
	if v == nil {
		return nil
	}
	items, _ := v.Value.([]*TaggedValue)
	return items
}

// StructFields returns the struct field map, or nil if the value is not a struct.
func (v *TaggedValue) StructFields() map[string]*TaggedValue {
	if v == nil {
		return nil
	}
	fields, _ := v.Value.(map[string]*TaggedValue)
	return fields
}

// IsPrimitive reports whether the value is a scalar (or empty).
func (v *TaggedValue) IsPrimitive() bool {
	if v == nil {
		return true
	}
	switch v.Value.(type) {
	case nil, string, float64, bool:
		return true
	default:
		return false
	}
}

// FieldNames returns the struct's field names in sorted order.
func (v *TaggedValue) FieldNames() []string {
	fields := v.StructFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the value, diff marks included.
func (v *TaggedValue) Clone() *TaggedValue {
	if v == nil {
		return nil
	}
	out := &TaggedValue{Type: v.Type, Diff: v.Diff}
	switch val := v.Value.(type) {
	case map[string]*TaggedValue:
		m := make(map[string]*TaggedValue, len(val))
		for k, item := range val {
			m[k] = item.Clone()
		}
		out.Value = m
	case []*TaggedValue:
		items := make([]*TaggedValue, len(val))
		for i, item := range val {
			items[i] = item.Clone()
		}
		out.Value = items
	default:
		out.Value = val
	}
	return out
}

// FetchMoreLink wraps the remainder of a truncated list in the synthetic
// pseudo item appended after the pagination cutoff.
func FetchMoreLink(remainder []*TaggedValue) *TaggedValue {
	return &TaggedValue{Type: FetchMoreType, Value: remainder}
}

// taggedValueJSON is the wire shape of a TaggedValue.
type taggedValueJSON struct {
	Type  string          `json:"type,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
	Diff  DiffMark        `json:"_diff,omitempty"`
}

// MarshalJSON emits the {type, value, _diff} wire shape.
func (v *TaggedValue) MarshalJSON() ([]byte, error) {
	raw := taggedValueJSON{Type: v.Type, Diff: v.Diff}
	if v.Value != nil {
		encoded, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		raw.Value = encoded
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts either the {type, value} envelope, a bare array,
// or a bare scalar. Nested struct fields and list items decode recursively.
func (v *TaggedValue) UnmarshalJSON(data []byte) error {
	trimmed := firstNonSpace(data)
	switch trimmed {
	case '{':
		var raw taggedValueJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v.Type = raw.Type
		v.Diff = raw.Diff
		if len(raw.Value) == 0 {
			v.Value = nil
			return nil
		}
		value, err := decodeValue(raw.Value)
		if err != nil {
			return err
		}
		v.Value = value
		return nil
	case '[':
		items, err := decodeList(data)
		if err != nil {
			return err
		}
		v.Value = items
		return nil
	default:
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return err
		}
		v.Value = scalar
		return nil
	}
}

func decodeValue(data json.RawMessage) (any, error) {
	switch firstNonSpace(data) {
	case '{':
		var fields map[string]*TaggedValue
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
		return fields, nil
	case '[':
		return decodeList(data)
	default:
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return nil, err
		}
		return scalar, nil
	}
}

func decodeList(data json.RawMessage) ([]*TaggedValue, error) {
	var items []*TaggedValue
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
