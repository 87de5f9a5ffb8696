package semantic

import "context"

// FieldDescriptor describes one struct field's metadata as reported by the
// reflection layer.
type FieldDescriptor struct {
	Name         string       `json:"name"`
	FriendlyName string       `json:"friendly_name,omitempty"`
	Doc          string       `json:"doc,omitempty"`
	Default      *TaggedValue `json:"default,omitempty"`
	Repeated     bool         `json:"repeated,omitempty"`
	Dynamic      bool         `json:"dynamic,omitempty"`
	Type         string       `json:"type,omitempty"`
}

// TypeDescriptor describes the shape of one semantic type. If UnionField is
// set, exactly one field besides the discriminator is active at a time,
// selected by the discriminator's current or default value.
type TypeDescriptor struct {
	Kind       string             `json:"kind,omitempty"` // "struct" or "primitive"
	Fields     []*FieldDescriptor `json:"fields,omitempty"`
	UnionField string             `json:"union_field,omitempty"`
}

// FieldByName returns the named field descriptor, or nil.
func (d *TypeDescriptor) FieldByName(name string) *FieldDescriptor {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// DescriptorProvider is the reflection-service surface the renderer consumes.
// Implementations live outside this package; see internal/descriptor.
type DescriptorProvider interface {
	Descriptor(ctx context.Context, typeName string) (*TypeDescriptor, error)
}
