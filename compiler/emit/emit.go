// Package emit renders a generator's schema into its two build
// artifacts: a statically-typed Go wrapper and a YAML metadata
// document. Both are pure functions of the schema; emitting twice for
// an unmodified instance produces byte-identical output.
package emit

import (
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/syssam/loom"
	"github.com/syssam/loom/generator"
)

// Description is the emitters' view of one generator's schema:
// declared params, inputs, and outputs in declaration order, with
// synthetic and context params filtered out.
type Description struct {
	Name       string
	StubName   string
	ClassName  string
	Namespaces []string
	Target     loom.Target

	Params  []ParamDesc
	Inputs  []FieldDesc
	Outputs []FieldDesc
}

// ParamDesc describes one declared configuration param.
type ParamDesc struct {
	Name    string
	Default string
	GoType  string
}

// FieldDesc describes one declared input or output slot.
type FieldDesc struct {
	Name      string
	Kind      generator.Kind
	GoType    string
	IsArray   bool
	ArraySize int // 1 when not array-valued or unresolved
	Dims      int // -1 when unresolved
	Types     []loom.Type
}

// Describe builds the emitters' schema view for g.
func Describe(g *generator.Generator) (*Description, error) {
	s, err := g.Schema()
	if err != nil {
		return nil, err
	}
	d := &Description{
		Name:     g.Name(),
		StubName: g.StubName(),
		Target:   g.Target(),
	}
	parts := strings.Split(d.StubName, ".")
	d.ClassName = parts[len(parts)-1]
	d.Namespaces = parts[:len(parts)-1]

	for _, p := range s.Params() {
		if p.IsSynthetic() || p.IsContext() {
			continue
		}
		d.Params = append(d.Params, ParamDesc{
			Name:    p.Name(),
			Default: p.DefaultString(),
			GoType:  p.GoType(),
		})
	}
	for _, in := range s.Inputs() {
		d.Inputs = append(d.Inputs, describeField(in.Name(), in.Kind(), in.GoType(), in.IsArray(), in))
	}
	for _, out := range s.Outputs() {
		d.Outputs = append(d.Outputs, describeField(out.Name(), out.Kind(), out.GoType(), out.IsArray(), out))
	}
	return d, nil
}

// AllFuncOutputs reports whether every declared output is function-kind.
func (d *Description) AllFuncOutputs() bool {
	for _, out := range d.Outputs {
		if out.Kind != generator.KindFunction {
			return false
		}
	}
	return true
}

// field is the lazy-property surface shared by Input and Output.
// Unresolved properties fall back to their documented "absent"
// defaults in the description.
type field interface {
	ArraySize() (int, error)
	Dims() (int, error)
	Types() ([]loom.Type, error)
}

func describeField(name string, kind generator.Kind, goType string, array bool, f field) FieldDesc {
	desc := FieldDesc{
		Name:      name,
		Kind:      kind,
		GoType:    goType,
		IsArray:   array,
		ArraySize: 1,
		Dims:      -1,
	}
	if n, err := f.ArraySize(); err == nil {
		desc.ArraySize = n
	}
	if n, err := f.Dims(); err == nil {
		desc.Dims = n
	}
	if types, err := f.Types(); err == nil {
		desc.Types = types
	}
	return desc
}

// exported derives the Go field name for a declared name.
func exported(name string) string {
	return inflect.Camelize(name)
}
