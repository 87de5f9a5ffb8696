package semantic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
)

type staticProvider map[string]*TypeDescriptor

func (p staticProvider) Descriptor(_ context.Context, typeName string) (*TypeDescriptor, error) {
	if d, ok := p[typeName]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("no descriptor for %s", typeName)
}

func newTestRenderer() *Renderer {
	return NewRenderer(NewDefaultRegistry(), nil, nil)
}

func TestRender_NilRendersNothing(t *testing.T) {
	node, err := newTestRenderer().Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Kind != "empty" || node.HTML != "" {
		t.Errorf("node = %+v, want empty", node)
	}
}

func TestRender_PaginationBoundary(t *testing.T) {
	r := newTestRenderer()

	eleven := make([]*TaggedValue, 11)
	for i := range eleven {
		eleven[i] = scalar("", fmt.Sprintf("item-%d", i))
	}
	node, err := r.Render(context.Background(), &TaggedValue{Value: eleven})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// 10 rendered items plus the fetch-more pseudo item.
	if len(node.Children) != 11 {
		t.Fatalf("got %d children, want 11", len(node.Children))
	}
	last := node.Children[10]
	if last.Kind != "fetch-more" || last.Type != FetchMoreType {
		t.Errorf("last child = %+v, want fetch-more link", last)
	}
	if len(last.More) != 1 {
		t.Errorf("fetch-more carries %d items, want the 1 remainder", len(last.More))
	}
	if last.More[0].String() != "item-10" {
		t.Errorf("remainder = %q, want item-10", last.More[0].String())
	}

	ten := eleven[:10]
	node, err = r.Render(context.Background(), &TaggedValue{Value: ten})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(node.Children) != 10 {
		t.Fatalf("got %d children, want 10 and no fetch-more", len(node.Children))
	}
	for _, child := range node.Children {
		if child.Kind == "fetch-more" {
			t.Error("unexpected fetch-more link at exactly 10 items")
		}
	}
}

func TestRender_UnregisteredTypeDegrades(t *testing.T) {
	node, err := newTestRenderer().Render(context.Background(), scalar("NeverHeardOfIt", "raw text"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Display != "raw text" {
		t.Errorf("display = %q, want plain value text", node.Display)
	}
}

func TestRender_BytesRenderer(t *testing.T) {
	r := newTestRenderer()

	encoded := base64.StdEncoding.EncodeToString([]byte("hello"))
	node, err := r.Render(context.Background(), scalar("RDFBytes", encoded))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Display != "hello" {
		t.Errorf("display = %q, want decoded bytes", node.Display)
	}

	// Malformed base64 renders inline, it never fails the render.
	node, err = r.Render(context.Background(), scalar("RDFBytes", "%%%not-base64%%%"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(node.Display, "base64error(") {
		t.Errorf("display = %q, want inline base64error", node.Display)
	}
	if !strings.HasSuffix(node.Display, ":%%%not-base64%%%") {
		t.Errorf("display = %q, want raw value appended", node.Display)
	}
}

func TestRender_JSONRenderer(t *testing.T) {
	r := newTestRenderer()

	node, err := r.Render(context.Background(), scalar("JSONBlob", `{"b":2,"a":1}`))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(node.Display, "\n") {
		t.Errorf("display = %q, want pretty-printed JSON", node.Display)
	}

	node, err = r.Render(context.Background(), scalar("JSONBlob", "{broken"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(node.Display, "jsonerror(") {
		t.Errorf("display = %q, want inline jsonerror", node.Display)
	}
}

func TestRender_DurationRenderer(t *testing.T) {
	node, err := newTestRenderer().Render(context.Background(), scalar("DurationSeconds", float64(120)))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Display != "2m" {
		t.Errorf("display = %q, want 2m", node.Display)
	}
}

func TestRender_StructUsesDescriptorOrder(t *testing.T) {
	provider := staticProvider{
		"Client": {
			Kind: "struct",
			Fields: []*FieldDescriptor{
				{Name: "os", FriendlyName: "Operating System"},
				{Name: "hostname"},
			},
		},
	}
	r := NewRenderer(NewDefaultRegistry(), provider, nil)

	node, err := r.Render(context.Background(), record("Client", map[string]*TaggedValue{
		"hostname": scalar("RDFString", "box1"),
		"os":       scalar("RDFString", "linux"),
	}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Kind != "struct" || len(node.Items) != 2 {
		t.Fatalf("node = %+v, want struct with 2 rows", node)
	}
	if node.Items[0].Key != "Operating System" {
		t.Errorf("first row = %q, want descriptor order", node.Items[0].Key)
	}
}

func TestRender_StructWithoutDescriptorSortsKeys(t *testing.T) {
	node, err := newTestRenderer().Render(context.Background(), record("Anon", map[string]*TaggedValue{
		"b": scalar("RDFString", "2"),
		"a": scalar("RDFString", "1"),
	}))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(node.Items) != 2 || node.Items[0].Key != "a" {
		t.Fatalf("rows = %+v, want sorted key order", node.Items)
	}
}

func TestRender_OverrideShadowsRegistry(t *testing.T) {
	r := newTestRenderer()
	overrides := Overrides{
		"RDFString": {Directive: "shout", Template: `<b>{{.Display}}!</b>`},
	}

	node, err := r.RenderWith(context.Background(), scalar("RDFString", "hello"), overrides)
	if err != nil {
		t.Fatalf("RenderWith: %v", err)
	}
	if string(node.HTML) != "<b>hello!</b>" {
		t.Errorf("html = %q, want override template output", node.HTML)
	}

	// The non-overridden rendering of the same type must not reuse the
	// override's cached template.
	node, err = r.Render(context.Background(), scalar("RDFString", "hello"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(node.HTML), "<b>") {
		t.Errorf("html = %q, override leaked into the plain cache slot", node.HTML)
	}
}

func TestOverrides_FingerprintDeterministic(t *testing.T) {
	a := Overrides{
		"B": {Directive: "two"},
		"A": {Directive: "one"},
	}
	b := Overrides{
		"A": {Directive: "one"},
		"B": {Directive: "two"},
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("fingerprints differ: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
	if a.Fingerprint() != "A=one;B=two" {
		t.Errorf("fingerprint = %q, want sorted pairs", a.Fingerprint())
	}
	if (Overrides{}).Fingerprint() != "" {
		t.Error("empty override set must have empty fingerprint")
	}
}

func TestRender_DiffMarkSurvivesToNode(t *testing.T) {
	v := scalar("RDFString", "x")
	v.Diff = DiffAdded
	node, err := newTestRenderer().Render(context.Background(), v)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Diff != DiffAdded {
		t.Errorf("node diff = %q, want %q", node.Diff, DiffAdded)
	}
	if !strings.Contains(string(node.HTML), "sem-diff-added") {
		t.Errorf("html = %q, want diff class", node.HTML)
	}
}

func TestRenderer_ClearCache(t *testing.T) {
	r := newTestRenderer()
	if _, err := r.Render(context.Background(), scalar("RDFString", "x")); err != nil {
		t.Fatalf("Render: %v", err)
	}
	r.ClearCache()
	if _, err := r.Render(context.Background(), scalar("RDFString", "x")); err != nil {
		t.Fatalf("Render after ClearCache: %v", err)
	}
}
