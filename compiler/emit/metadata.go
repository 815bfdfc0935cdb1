package emit

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/syssam/loom/generator"
)

// Metadata renders the structured schema document for g. Keys appear
// in a fixed order; any field whose value equals its absent default
// (rank 1, zero dimensions, empty type list) is omitted.
func Metadata(g *generator.Generator) ([]byte, error) {
	d, err := Describe(g)
	if err != nil {
		return nil, err
	}

	doc := mapping()
	appendPair(doc, "name", strNode(d.Name))
	appendPair(doc, "stub-name", strNode(d.StubName))
	appendPair(doc, "class-name", strNode(d.ClassName))
	ns := sequence()
	for _, n := range d.Namespaces {
		ns.Content = append(ns.Content, strNode(n))
	}
	appendPair(doc, "namespaces", ns)

	params := sequence()
	for _, p := range d.Params {
		m := mapping()
		appendPair(m, "name", strNode(p.Name))
		appendPair(m, "default", strNode(p.Default))
		appendPair(m, "c-type", strNode(p.GoType))
		// Plain value params carry no extra type declarations, but the
		// key itself is part of the document contract.
		appendPair(m, "type-decls", strNode(""))
		appendPair(m, "is-synthetic", boolNode(false))
		appendPair(m, "is-looplevel", boolNode(false))
		params.Content = append(params.Content, m)
	}
	appendPair(doc, "params", params)

	appendPair(doc, "inputs", fieldNodes(d.Inputs, false))
	appendPair(doc, "outputs", fieldNodes(d.Outputs, true))
	appendPair(doc, "outputs-all-funcs", boolNode(d.AllFuncOutputs()))

	inputInfo := sequence()
	for _, in := range d.Inputs {
		m := mapping()
		appendPair(m, "name", strNode(exported(in.Name)))
		appendPair(m, "c-type", strNode(wrapperType(in, false)))
		inputInfo.Content = append(inputInfo.Content, m)
	}
	appendPair(doc, "input-info", inputInfo)

	outputInfo := sequence()
	for _, out := range d.Outputs {
		m := mapping()
		appendPair(m, "name", strNode(exported(out.Name)))
		appendPair(m, "c-type", strNode(wrapperType(out, true)))
		appendPair(m, "getter", strNode(exported(out.Name)))
		outputInfo.Content = append(outputInfo.Content, m)
	}
	appendPair(doc, "output-info", outputInfo)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fieldNodes(fields []FieldDesc, output bool) *yaml.Node {
	seq := sequence()
	for _, f := range fields {
		m := mapping()
		appendPair(m, "name", strNode(f.Name))
		appendPair(m, "c-type", strNode(wrapperType(f, output)))
		appendPair(m, "io-kind", strNode(f.Kind.String()))
		if f.ArraySize != 1 {
			appendPair(m, "rank", intNode(f.ArraySize))
		}
		if f.Dims > 0 {
			appendPair(m, "dimensions", intNode(f.Dims))
		}
		if len(f.Types) > 0 {
			types := sequence()
			for _, t := range f.Types {
				types.Content = append(types.Content, strNode(t.String()))
			}
			appendPair(m, "types", types)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

// wrapperType renders the Go type the wrapper exposes for a field.
// Outputs are always handed out as their function view.
func wrapperType(f FieldDesc, output bool) string {
	var t string
	switch {
	case output || f.Kind == generator.KindFunction:
		t = "*pipeline.Func"
	case f.Kind == generator.KindBuffer:
		t = "*pipeline.Buffer"
	default:
		t = f.GoType
	}
	if f.IsArray {
		return "[]" + t
	}
	return t
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func intNode(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}
