package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/flowdeck/flowdeck/internal/metrics"
)

// ListPageSize is the pagination cutoff for repeated values. Longer lists
// render their first ListPageSize items plus a fetch-more pseudo item
// carrying the remainder.
const ListPageSize = 10

// Node is one rendered subtree. Kind is "semantic", "struct", "list",
// "scalar", "fetch-more" or "empty". HTML is the fragment for this node,
// with children already folded in.
type Node struct {
	Kind     string         `json:"kind"`
	Type     string         `json:"type,omitempty"`
	Display  string         `json:"display,omitempty"`
	Diff     DiffMark       `json:"_diff,omitempty"`
	HTML     template.HTML  `json:"html"`
	Children []*Node        `json:"children,omitempty"`
	Items    []StructRow    `json:"items,omitempty"`
	More     []*TaggedValue `json:"more,omitempty"`
}

// StructRow is one rendered display item of a struct value.
type StructRow struct {
	Key  string        `json:"key"`
	Doc  string        `json:"doc,omitempty"`
	HTML template.HTML `json:"html"`
	Node *Node         `json:"node,omitempty"`
}

// Renderer dispatches tagged values to type-specific renderers. It owns two
// caches: a per-type compiled template cache (keyed by type name, suffixed
// with the override fingerprint when an override scope is active) and one
// shared repeated-value template. Rendering is bind-once: the returned tree
// does not track later mutations of the input.
type Renderer struct {
	registry    *Registry
	descriptors DescriptorProvider
	metrics     *metrics.Metrics

	mu        sync.Mutex
	templates map[string]*template.Template
	repeated  *template.Template
	structTpl *template.Template
	scalarTpl *template.Template
}

// NewRenderer creates a renderer. descriptors and m may be nil; without a
// provider, struct values render their fields in sorted key order.
func NewRenderer(registry *Registry, descriptors DescriptorProvider, m *metrics.Metrics) *Renderer {
	return &Renderer{
		registry:    registry,
		descriptors: descriptors,
		metrics:     m,
		templates:   make(map[string]*template.Template),
	}
}

// Render dispatches a value with no override scope.
func (r *Renderer) Render(ctx context.Context, v *TaggedValue) (*Node, error) {
	return r.RenderWith(ctx, v, nil)
}

// RenderWith dispatches a value under an override scope. Overrides shadow
// registry entries for the whole subtree.
func (r *Renderer) RenderWith(ctx context.Context, v *TaggedValue, overrides Overrides) (*Node, error) {
	start := time.Now()
	node, err := r.render(ctx, v, overrides)
	r.metrics.ObserveRender(time.Since(start).Seconds())
	return node, err
}

// ClearCache drops all cached templates. Test-only operation.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = make(map[string]*template.Template)
	r.repeated = nil
	r.structTpl = nil
	r.scalarTpl = nil
}

func (r *Renderer) render(ctx context.Context, v *TaggedValue, overrides Overrides) (*Node, error) {
	switch {
	case v == nil || (v.Type == "" && v.Value == nil):
		return &Node{Kind: "empty"}, nil
	case v.Type == FetchMoreType:
		return r.renderFetchMore(v)
	case v.Type != "":
		return r.renderSemantic(ctx, v, overrides)
	case v.IsList():
		return r.renderList(ctx, v, overrides)
	default:
		return r.renderScalar(v)
	}
}

func (r *Renderer) renderSemantic(ctx context.Context, v *TaggedValue, overrides Overrides) (*Node, error) {
	r.metrics.IncRender(v.Type)

	if fields := v.StructFields(); fields != nil {
		return r.renderStruct(ctx, v, overrides)
	}
	if v.IsList() {
		node, err := r.renderList(ctx, v, overrides)
		if node != nil {
			node.Type = v.Type
		}
		return node, err
	}

	entry, err := r.registry.Find(v.Type, overrides)
	if err != nil {
		// Unregistered type: degrade to the plain value text rather than
		// surfacing an error.
		node, err := r.renderScalar(v)
		if node != nil {
			node.Type = v.Type
		}
		return node, err
	}

	tpl, err := r.lookupTemplate(v.Type, entry, overrides)
	if err != nil {
		return nil, err
	}

	display := v.String()
	if entry.Format != nil {
		display = entry.Format(v)
	}
	html, err := execute(tpl, map[string]any{
		"Directive": entry.Directive,
		"Display":   display,
		"Diff":      v.Diff,
		"Value":     v,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", v.Type, err)
	}
	return &Node{Kind: "semantic", Type: v.Type, Display: display, Diff: v.Diff, HTML: html}, nil
}

func (r *Renderer) renderStruct(ctx context.Context, v *TaggedValue, overrides Overrides) (*Node, error) {
	items, err := r.structItems(ctx, v)
	if err != nil {
		return nil, err
	}

	rows := make([]StructRow, 0, len(items))
	for _, item := range items {
		child, err := r.render(ctx, item.Value, overrides)
		if err != nil {
			return nil, err
		}
		rows = append(rows, StructRow{Key: item.Key, Doc: item.Doc, HTML: child.HTML, Node: child})
	}

	tpl, err := r.structTemplate(v.Type, overrides)
	if err != nil {
		return nil, err
	}
	html, err := execute(tpl, map[string]any{"Items": rows, "Diff": v.Diff})
	if err != nil {
		return nil, fmt.Errorf("rendering struct %s: %w", v.Type, err)
	}
	return &Node{Kind: "struct", Type: v.Type, Diff: v.Diff, HTML: html, Items: rows}, nil
}

// structItems builds display items from the type's descriptor, falling back
// to sorted field names when the reflection layer has nothing for the type.
func (r *Renderer) structItems(ctx context.Context, v *TaggedValue) ([]DisplayItem, error) {
	if r.descriptors != nil {
		desc, err := r.descriptors.Descriptor(ctx, v.Type)
		if err == nil && desc != nil && len(desc.Fields) > 0 {
			return BuildItems(v, desc, ItemOptions{})
		}
	}
	fields := v.StructFields()
	items := make([]DisplayItem, 0, len(fields))
	for _, name := range v.FieldNames() {
		items = append(items, DisplayItem{Key: name, StructKey: name, Value: fields[name]})
	}
	return items, nil
}

func (r *Renderer) renderList(ctx context.Context, v *TaggedValue, overrides Overrides) (*Node, error) {
	items := v.ListItems()
	visible := items
	var more []*TaggedValue
	if len(items) > ListPageSize {
		visible = items[:ListPageSize]
		more = items[ListPageSize:]
	}

	children := make([]*Node, 0, len(visible)+1)
	for _, item := range visible {
		child, err := r.render(ctx, item, overrides)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if more != nil {
		link, err := r.renderFetchMore(FetchMoreLink(more))
		if err != nil {
			return nil, err
		}
		children = append(children, link)
	}

	tpl, err := r.repeatedTemplate()
	if err != nil {
		return nil, err
	}
	html, err := execute(tpl, map[string]any{
		"Children":  children,
		"More":      more != nil,
		"Remaining": len(more),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering list: %w", err)
	}
	return &Node{Kind: "list", HTML: html, Children: children, More: more}, nil
}

func (r *Renderer) renderFetchMore(v *TaggedValue) (*Node, error) {
	remainder := v.ListItems()
	html := template.HTML(fmt.Sprintf(
		`<a class="sem-fetch-more" data-remaining="%d">Fetch %d more</a>`,
		len(remainder), len(remainder)))
	return &Node{Kind: "fetch-more", Type: FetchMoreType, HTML: html, More: remainder}, nil
}

func (r *Renderer) renderScalar(v *TaggedValue) (*Node, error) {
	display := v.String()
	if !v.IsPrimitive() {
		// Degraded rendering of a structured value without a renderer.
		encoded, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		display = string(encoded)
	}
	tpl, err := r.scalarTemplate()
	if err != nil {
		return nil, err
	}
	html, err := execute(tpl, map[string]any{
		"Directive": "plain",
		"Display":   display,
		"Diff":      v.Diff,
	})
	if err != nil {
		return nil, err
	}
	return &Node{Kind: "scalar", Display: display, Diff: v.Diff, HTML: html}, nil
}

// lookupTemplate returns the compiled template for a type, compiling and
// caching it on first encounter. Under an override scope the cache key is
// suffixed with the scope's fingerprint so overridden and non-overridden
// renderings never collide.
func (r *Renderer) lookupTemplate(typeName string, entry Entry, overrides Overrides) (*template.Template, error) {
	key := typeName
	if fp := overrides.Fingerprint(); fp != "" {
		key = typeName + "+" + fp
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.templates[key]; ok {
		r.metrics.CacheHit()
		return tpl, nil
	}
	r.metrics.CacheMiss()
	tpl, err := template.New(key).Parse(entry.Template)
	if err != nil {
		return nil, fmt.Errorf("compiling template for %s: %w", typeName, err)
	}
	r.templates[key] = tpl
	return tpl, nil
}

func (r *Renderer) repeatedTemplate() (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.repeated == nil {
		tpl, err := template.New("__repeated").Parse(repeatedTemplate)
		if err != nil {
			return nil, err
		}
		r.repeated = tpl
	}
	return r.repeated, nil
}

// structTemplate prefers a registered entry for the struct's own type so a
// domain type can replace the default table layout.
func (r *Renderer) structTemplate(typeName string, overrides Overrides) (*template.Template, error) {
	if entry, err := r.registry.Find(typeName, overrides); err == nil && entry.Template != "" {
		return r.lookupTemplate(typeName, entry, overrides)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.structTpl == nil {
		tpl, err := template.New("__struct").Parse(structTemplate)
		if err != nil {
			return nil, err
		}
		r.structTpl = tpl
	}
	return r.structTpl, nil
}

func (r *Renderer) scalarTemplate() (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scalarTpl == nil {
		tpl, err := template.New("__scalar").Parse(scalarTemplate)
		if err != nil {
			return nil, err
		}
		r.scalarTpl = tpl
	}
	return r.scalarTpl, nil
}

func execute(tpl *template.Template, data any) (template.HTML, error) {
	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
