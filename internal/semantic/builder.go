package semantic

import (
	"fmt"
	"strings"
)

// DisplayItem is one displayable (key, value) row produced from a struct
// value and its type descriptor. It carries enough metadata for a versioned
// record viewer to request field history or build nested recursive links.
type DisplayItem struct {
	Key           string           `json:"key"`
	Value         *TaggedValue     `json:"value"`
	StructKey     string           `json:"struct_key,omitempty"`
	Doc           string           `json:"doc,omitempty"`
	Field         *FieldDescriptor `json:"field,omitempty"`
	IsList        bool             `json:"is_list,omitempty"`
	RecursiveItem bool             `json:"recursive_item,omitempty"`
	HistoryPath   string           `json:"history_path,omitempty"`
}

// ItemOptions filters which fields become display items. VisibleFields is an
// allow-list; HiddenFields a deny-list. When an allow-list is supplied,
// absent fields are substituted with a copy of their declared default
// instead of being skipped.
type ItemOptions struct {
	VisibleFields []string
	HiddenFields  []string
}

// BuildItems converts a typed struct value plus its descriptor into an
// ordered list of display items. Declared field order is the display-order
// contract. A descriptor with UnionField set emits exactly two items: the
// discriminator and the active branch.
func BuildItems(value *TaggedValue, desc *TypeDescriptor, opts ItemOptions) ([]DisplayItem, error) {
	if desc.UnionField != "" {
		return buildUnionItems(value, desc)
	}
	return buildStructItems(value, desc, opts)
}

func buildStructItems(value *TaggedValue, desc *TypeDescriptor, opts ItemOptions) ([]DisplayItem, error) {
	fields := value.StructFields()
	visible := toSet(opts.VisibleFields)
	hidden := toSet(opts.HiddenFields)

	var items []DisplayItem
	for _, field := range desc.Fields {
		if opts.VisibleFields != nil && !visible[field.Name] {
			continue
		}
		if hidden[field.Name] {
			continue
		}
		fieldValue, present := fields[field.Name]
		if !present || fieldValue == nil {
			// Absent fields are skipped, unless an allow-list asked for
			// this field explicitly: then the declared default stands in.
			// The default is copied, never aliased, so annotating or
			// mutating the item cannot leak into the descriptor.
			if opts.VisibleFields == nil || field.Default == nil {
				continue
			}
			fieldValue = field.Default.Clone()
		}
		items = append(items, makeItem(field, fieldValue))
	}
	return items, nil
}

// buildUnionItems resolves the active branch of a discriminated union. The
// branch name comes from the discriminator's current value, lower-cased,
// falling back to the discriminator's declared default. Failure to resolve
// signals a malformed descriptor/value pair and is a hard error.
func buildUnionItems(value *TaggedValue, desc *TypeDescriptor) ([]DisplayItem, error) {
	discriminator := desc.FieldByName(desc.UnionField)
	if discriminator == nil {
		return nil, fmt.Errorf("union field %q has no descriptor", desc.UnionField)
	}

	fields := value.StructFields()
	discValue := fields[desc.UnionField]

	var branch string
	switch {
	case discValue != nil && discValue.String() != "":
		branch = strings.ToLower(discValue.String())
	case discriminator.Default != nil && discriminator.Default.String() != "":
		branch = strings.ToLower(discriminator.Default.String())
		defaulted := discriminator.Default.Clone()
		defaulted.Value = branch
		discValue = defaulted
	default:
		return nil, fmt.Errorf("cannot resolve union branch for field %q: no value and no default", desc.UnionField)
	}

	branchField := desc.FieldByName(branch)
	if branchField == nil {
		return nil, fmt.Errorf("union branch %q is not a declared field", branch)
	}

	branchValue := fields[branch]
	if branchValue == nil && branchField.Default != nil {
		branchValue = branchField.Default.Clone()
	}

	return []DisplayItem{
		makeItem(discriminator, discValue),
		makeItem(branchField, branchValue),
	}, nil
}

func makeItem(field *FieldDescriptor, value *TaggedValue) DisplayItem {
	key := field.FriendlyName
	if key == "" {
		key = field.Name
	}
	return DisplayItem{
		Key:           key,
		Value:         value,
		StructKey:     field.Name,
		Doc:           field.Doc,
		Field:         field,
		IsList:        field.Repeated || value.IsList(),
		RecursiveItem: field.Dynamic,
		HistoryPath:   field.Name,
	}
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
