package semantic

import (
	"encoding/json"
	"testing"
)

func TestTaggedValue_DecodeEnvelope(t *testing.T) {
	raw := `{"type":"Client","value":{"hostname":{"type":"RDFString","value":"box1"},"uptime":{"type":"DurationSeconds","value":120}}}`

	var v TaggedValue
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Type != "Client" {
		t.Errorf("type = %q", v.Type)
	}
	fields := v.StructFields()
	if fields == nil {
		t.Fatal("value did not decode as struct")
	}
	if got := fields["hostname"].String(); got != "box1" {
		t.Errorf("hostname = %q", got)
	}
	if got, ok := fields["uptime"].Value.(float64); !ok || got != 120 {
		t.Errorf("uptime = %v", fields["uptime"].Value)
	}
}

func TestTaggedValue_DecodeBareArrayAndScalar(t *testing.T) {
	var v TaggedValue
	if err := json.Unmarshal([]byte(`[{"value":"foo"},{"value":"bar"}]`), &v); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if !v.IsList() || len(v.ListItems()) != 2 {
		t.Fatalf("value = %+v, want 2-item list", v.Value)
	}

	var s TaggedValue
	if err := json.Unmarshal([]byte(`"plain"`), &s); err != nil {
		t.Fatalf("unmarshal scalar: %v", err)
	}
	if s.String() != "plain" {
		t.Errorf("scalar = %q", s.String())
	}
}

func TestTaggedValue_DiffMarkOnWire(t *testing.T) {
	v := scalar("RDFString", "x")
	v.Diff = DiffAdded

	encoded, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded TaggedValue
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Diff != DiffAdded {
		t.Errorf("diff = %q, want round-tripped %q", decoded.Diff, DiffAdded)
	}
}

func TestTaggedValue_CloneIsDeep(t *testing.T) {
	original := record("Client", map[string]*TaggedValue{
		"tags": list(scalar("RDFString", "a")),
	})
	copied := original.Clone()

	copied.StructFields()["tags"].ListItems()[0].Value = "mutated"
	if got := original.StructFields()["tags"].ListItems()[0].String(); got != "a" {
		t.Errorf("clone aliased the original: %q", got)
	}
}
