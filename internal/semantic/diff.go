package semantic

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Annotate compares two versions of the same logical record and returns
// deep copies annotated with diff marks. The inputs are never mutated, so
// a live tree the UI is still bound to cannot alias the annotated one.
// "removed" only ever appears on the original side, "added" only on the
// updated side, and equal node pairs carry no mark at all.
//
// List comparison is unordered and duplicate-insensitive: an item is marked
// only when no deep-equal counterpart exists on the other side, ordering is
// ignored, and moved items are not detected. A duplicate without a matching
// duplicate on the other side still counts as matched. This is a documented
// simplification carried over from the original contract; downstream
// consumers assert on it.
func Annotate(original, updated *TaggedValue) (*TaggedValue, *TaggedValue) {
	origCopy := original.Clone()
	updCopy := updated.Clone()
	annotate(origCopy, updCopy)
	return origCopy, updCopy
}

var ignoreDiffMarks = cmpopts.IgnoreFields(TaggedValue{}, "Diff")

func equalValues(a, b *TaggedValue) bool {
	return cmp.Equal(a, b, ignoreDiffMarks)
}

func annotate(original, updated *TaggedValue) {
	switch {
	case original == nil && updated == nil:
		return
	case original == nil:
		updated.Diff = DiffAdded
		return
	case updated == nil:
		original.Diff = DiffRemoved
		return
	}

	origList, updList := original.IsList(), updated.IsList()
	if origList != updList {
		// A list turning into a non-list (or back) cannot happen for a
		// well-formed record; mark both sides rather than guessing.
		original.Diff = DiffChanged
		updated.Diff = DiffChanged
		return
	}
	if origList {
		annotateLists(original.ListItems(), updated.ListItems())
		return
	}

	if original.Type != updated.Type {
		original.Diff = DiffChanged
		updated.Diff = DiffChanged
		return
	}

	if original.IsPrimitive() || updated.IsPrimitive() {
		if !equalValues(original, updated) {
			original.Diff = DiffChanged
			updated.Diff = DiffChanged
		}
		return
	}

	// Nested structs: recurse over the union of both sides' keys. A key
	// present on only one side pairs with nil, producing added/removed.
	origFields := original.StructFields()
	updFields := updated.StructFields()
	for key := range origFields {
		annotate(origFields[key], updFields[key])
	}
	for key := range updFields {
		if _, seen := origFields[key]; !seen {
			annotate(nil, updFields[key])
		}
	}
}

func annotateLists(original, updated []*TaggedValue) {
	for _, item := range original {
		if !containsEqual(updated, item) {
			item.Diff = DiffRemoved
		}
	}
	for _, item := range updated {
		if !containsEqual(original, item) {
			item.Diff = DiffAdded
		}
	}
}

func containsEqual(items []*TaggedValue, target *TaggedValue) bool {
	for _, item := range items {
		if equalValues(item, target) {
			return true
		}
	}
	return false
}
