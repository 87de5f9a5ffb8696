// cmd/descgen generates semantic type descriptors from CUE definitions.
//
// It reads the CUE package under ./schema and writes one JSON descriptor
// set to gen/descriptors/types.json, which internal/descriptor serves to
// the renderer at runtime.
//
// Each CUE definition becomes one struct descriptor. Field metadata comes
// from attributes:
//
//	hostname: string @type(RDFString) @friendly(Hostname)
//	memory:   int    @type(ByteSize)
//	pathspec: _      @type(PathSpec) @dynamic()
//
// A definition-level @union(field) attribute marks the discriminator of a
// union type. Concrete field values become rendering defaults.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/flowdeck/flowdeck/internal/semantic"
)

const outDir = "gen/descriptors"

func main() {
	log.SetFlags(0)
	log.SetPrefix("descgen: ")

	ctx := cuecontext.New()
	insts := load.Instances([]string{"./schema"}, nil)
	if len(insts) == 0 {
		log.Fatal("no CUE instances found in ./schema")
	}
	if insts[0].Err != nil {
		log.Fatalf("loading schema CUE: %v", insts[0].Err)
	}
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		log.Fatalf("building schema CUE value: %v", val.Err())
	}

	set, err := parseDescriptors(val)
	if err != nil {
		log.Fatalf("parsing descriptors: %v", err)
	}
	if len(set) == 0 {
		log.Fatal("no definitions found in ./schema")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("creating %s: %v", outDir, err)
	}
	out := filepath.Join(outDir, "types.json")
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("encoding descriptors: %v", err)
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("writing %s: %v", out, err)
	}
	log.Printf("wrote %d type descriptors to %s", len(set), out)
}

func parseDescriptors(val cue.Value) (map[string]*semantic.TypeDescriptor, error) {
	set := make(map[string]*semantic.TypeDescriptor)

	iter, err := val.Fields(cue.Definitions(true))
	if err != nil {
		return nil, err
	}
	for iter.Next() {
		label := iter.Selector().String()
		if !strings.HasPrefix(label, "#") {
			continue
		}
		name := strings.TrimPrefix(label, "#")
		desc, err := parseType(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", label, err)
		}
		set[name] = desc
	}
	return set, nil
}

func parseType(defVal cue.Value) (*semantic.TypeDescriptor, error) {
	desc := &semantic.TypeDescriptor{Kind: "struct"}

	if a := defVal.Attribute("union"); a.Err() == nil {
		field, err := a.String(0)
		if err != nil {
			return nil, fmt.Errorf("@union: %w", err)
		}
		desc.UnionField = field
	}

	iter, err := defVal.Fields(cue.Optional(true))
	if err != nil {
		return nil, err
	}
	for iter.Next() {
		field, err := parseField(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		desc.Fields = append(desc.Fields, field)
	}
	return desc, nil
}

func parseField(name string, val cue.Value) (*semantic.FieldDescriptor, error) {
	field := &semantic.FieldDescriptor{Name: name}

	if a := val.Attribute("type"); a.Err() == nil {
		typeName, err := a.String(0)
		if err != nil {
			return nil, fmt.Errorf("field %s @type: %w", name, err)
		}
		field.Type = typeName
	}
	if a := val.Attribute("friendly"); a.Err() == nil {
		friendly, err := a.String(0)
		if err != nil {
			return nil, fmt.Errorf("field %s @friendly: %w", name, err)
		}
		field.FriendlyName = friendly
	}
	if a := val.Attribute("dynamic"); a.Err() == nil {
		field.Dynamic = true
	}
	if doc := docText(val); doc != "" {
		field.Doc = doc
	}
	if val.IncompleteKind() == cue.ListKind {
		field.Repeated = true
	}

	// A concrete field value is the rendering default.
	if val.IsConcrete() && val.Kind() != cue.StructKind && val.Kind() != cue.ListKind {
		var out any
		if err := val.Decode(&out); err != nil {
			return nil, fmt.Errorf("field %s default: %w", name, err)
		}
		field.Default = &semantic.TaggedValue{Type: field.Type, Value: normalize(out)}
	}
	return field, nil
}

func docText(val cue.Value) string {
	var parts []string
	for _, doc := range val.Doc() {
		parts = append(parts, strings.TrimSpace(doc.Text()))
	}
	return strings.Join(parts, " ")
}

// normalize folds CUE-decoded numbers into the float64 form tagged values
// use everywhere else.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return v
	}
}
