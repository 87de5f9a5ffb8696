package flows

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownFlow is returned for flow names absent from the catalog.
var ErrUnknownFlow = errors.New("flows: unknown flow")

// Descriptor describes one launchable flow as supplied by the catalog file.
type Descriptor struct {
	Name           string          `json:"name"`
	FriendlyName   string          `json:"friendly_name"`
	Category       string          `json:"category"`
	BlockFleetRuns bool            `json:"block_fleet_runs"`
	DefaultArgs    Args            `json:"default_args,omitempty"`
	ArgsSchema     json.RawMessage `json:"args_schema,omitempty"`
}

// Catalog holds the flow descriptors and the forms registered for them.
type Catalog struct {
	descriptors []Descriptor
	byName      map[string]Descriptor
	forms       map[string]Form
}

// NewCatalog creates a catalog from descriptors, preserving their order.
func NewCatalog(descriptors []Descriptor) *Catalog {
	c := &Catalog{
		descriptors: descriptors,
		byName:      make(map[string]Descriptor, len(descriptors)),
		forms:       make(map[string]Form),
	}
	for _, d := range descriptors {
		c.byName[d.Name] = d
	}
	return c
}

// LoadCatalog reads a JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow catalog: %w", err)
	}
	var descriptors []Descriptor
	if err := json.Unmarshal(data, &descriptors); err != nil {
		return nil, fmt.Errorf("parsing flow catalog: %w", err)
	}
	return NewCatalog(descriptors), nil
}

// RegisterForm attaches a form to its flow. The flow must exist in the
// catalog.
func (c *Catalog) RegisterForm(f Form) error {
	if _, ok := c.byName[f.Name()]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlow, f.Name())
	}
	c.forms[f.Name()] = f
	return nil
}

// DefaultForms returns the forms shipped with the console.
func DefaultForms() []Form {
	return []Form{
		ArtifactCollectorForm{},
		FileCollectorForm{},
		ProcessListingForm{},
	}
}

// Flows returns the descriptors in catalog order.
func (c *Catalog) Flows() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Flow returns one descriptor by name.
func (c *Catalog) Flow(name string) (Descriptor, error) {
	d, ok := c.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}
	return d, nil
}

// Form returns the registered form for a flow, or nil when the flow takes
// no arguments.
func (c *Catalog) Form(name string) (Form, error) {
	if _, ok := c.byName[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlow, name)
	}
	return c.forms[name], nil
}

// ValidateArgs checks flow arguments against the flow's JSON Schema.
// A flow without a schema accepts any arguments. The returned slice holds
// human-readable violations; an empty slice means the arguments are valid.
func (c *Catalog) ValidateArgs(name string, args Args) ([]string, error) {
	d, err := c.Flow(name)
	if err != nil {
		return nil, err
	}
	if len(d.ArgsSchema) == 0 {
		return nil, nil
	}

	schemaLoader := gojsonschema.NewBytesLoader(d.ArgsSchema)
	docLoader := gojsonschema.NewGoLoader(map[string]any(args))
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validating %s args: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		violations = append(violations, issue.String())
	}
	return violations, nil
}
