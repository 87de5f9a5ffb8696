package semantic

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotRegistered is returned by Registry.Find when no renderer is
// registered for a type. The dispatcher treats it as "render as plain
// value", never as a fatal error.
var ErrNotRegistered = errors.New("semantic: no renderer registered for type")

// Entry identifies one renderer: a directive name for cache keying and
// an html/template body executed with renderContext data.
type Entry struct {
	Directive string
	Template  string
	// Format converts the tagged value into display text before the
	// template runs. A nil Format falls back to the scalar string form.
	// Format implementations handle malformed input locally, returning
	// inline error text rather than failing the surrounding render.
	Format func(v *TaggedValue) string
}

// Overrides shadows registry entries for one rendering subtree.
type Overrides map[string]Entry

// Fingerprint returns a deterministic cache-key suffix for an override set:
// sorted "type=directive" pairs joined with ";". Overridden and
// non-overridden renderings of the same type never share a cache slot.
func (o Overrides) Fingerprint() string {
	if len(o) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(o))
	for typeName, entry := range o {
		pairs = append(pairs, typeName+"="+entry.Directive)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}

// Registry maps semantic type names to renderer entries. It is an explicit
// constructed object, populated during startup and read-only afterwards.
type Registry struct {
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register associates an entry with one or more semantic type names.
// A later registration for the same type shadows the earlier one.
func (r *Registry) Register(entry Entry, types ...string) {
	for _, typeName := range types {
		if _, exists := r.entries[typeName]; !exists {
			r.order = append(r.order, typeName)
		}
		r.entries[typeName] = entry
	}
}

// Find resolves the renderer for a type, consulting the override set first.
func (r *Registry) Find(typeName string, overrides Overrides) (Entry, error) {
	if entry, ok := overrides[typeName]; ok {
		return entry, nil
	}
	if entry, ok := r.entries[typeName]; ok {
		return entry, nil
	}
	return Entry{}, ErrNotRegistered
}

// Types returns registered type names in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
