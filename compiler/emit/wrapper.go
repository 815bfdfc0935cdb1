package emit

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/loom/generator"
)

const (
	loomPkg      = "github.com/syssam/loom"
	generatorPkg = "github.com/syssam/loom/generator"
	pipelinePkg  = "github.com/syssam/loom/pipeline"
)

// Wrapper renders the statically-typed Go wrapper for g: a Params
// struct carrying every declared param with its default, an Inputs
// struct, an Outputs struct with one field per declared output plus
// the resolved target, and a Generate entry point that re-creates the
// generator by its registered name. A generator with no declared
// outputs gets a placeholder file so build tooling still receives its
// artifact.
func Wrapper(g *generator.Generator) ([]byte, error) {
	d, err := Describe(g)
	if err != nil {
		return nil, err
	}
	f := jen.NewFile(wrapperPackage(d))
	f.HeaderComment("Code generated by loom. DO NOT EDIT.")

	if len(d.Outputs) == 0 {
		f.Comment(fmt.Sprintf("Generator %q declares no outputs; nothing to wrap.", d.Name))
		return renderFile(f)
	}

	genParams(f, d)
	genInputs(f, d)
	genOutputs(f, d)
	genGenerate(f, d)
	return renderFile(f)
}

// wrapperPackage picks the generated package name: the innermost
// namespace of the stub name, or the lowercased class name.
func wrapperPackage(d *Description) string {
	if len(d.Namespaces) > 0 {
		return d.Namespaces[len(d.Namespaces)-1]
	}
	return strings.ToLower(d.ClassName)
}

func genParams(f *jen.File, d *Description) {
	f.Comment("Params holds every declared configuration param.")
	f.Type().Id("Params").StructFunc(func(s *jen.Group) {
		for _, p := range d.Params {
			s.Id(exported(p.Name)).Id(p.GoType)
		}
	})

	f.Comment("NewParams returns the params with their declared defaults.")
	f.Func().Id("NewParams").Params().Id("Params").Block(
		jen.Return(jen.Id("Params").ValuesFunc(func(v *jen.Group) {
			for _, p := range d.Params {
				v.Id(exported(p.Name)).Op(":").Id(p.Default)
			}
		})),
	)

	f.Comment("ToMap renders the params as string values for configuration.")
	f.Func().Params(jen.Id("p").Id("Params")).Id("ToMap").Params().Map(jen.String()).String().BlockFunc(func(b *jen.Group) {
		b.Id("m").Op(":=").Make(jen.Map(jen.String()).String(), jen.Lit(len(d.Params)))
		for _, p := range d.Params {
			b.Id("m").Index(jen.Lit(p.Name)).Op("=").Qual("fmt", "Sprint").Call(
				jen.Id("p").Dot(exported(p.Name)))
		}
		b.Return(jen.Id("m"))
	})
}

func genInputs(f *jen.File, d *Description) {
	f.Comment("Inputs holds a concrete value for every declared input.")
	f.Type().Id("Inputs").StructFunc(func(s *jen.Group) {
		for _, in := range d.Inputs {
			s.Id(exported(in.Name)).Add(fieldType(in))
		}
	})

	f.Func().Params(jen.Id("i").Id("Inputs")).Id("values").Params().Index().Index().Qual(generatorPkg, "StubValue").Block(
		jen.Return(jen.Index().Index().Qual(generatorPkg, "StubValue").ValuesFunc(func(v *jen.Group) {
			for _, in := range d.Inputs {
				v.Add(inputValues(in))
			}
		})),
	)
}

func genOutputs(f *jen.File, d *Description) {
	f.Comment("Outputs exposes the built outputs and the resolved target.")
	f.Type().Id("Outputs").StructFunc(func(s *jen.Group) {
		for _, out := range d.Outputs {
			// Built outputs are handed out as their function view.
			t := jen.Op("*").Qual(pipelinePkg, "Func")
			if out.IsArray {
				t = jen.Index().Op("*").Qual(pipelinePkg, "Func")
			}
			s.Id(exported(out.Name)).Add(t)
		}
		s.Id("Target").Qual(loomPkg, "Target")
		s.Id("stub").Op("*").Qual(generatorPkg, "Stub")
	})

	// Convenience accessors when the sole output is function-kind.
	if len(d.Outputs) == 1 && d.Outputs[0].Kind == generator.KindFunction {
		out := d.Outputs[0]
		if out.IsArray {
			f.Comment("At returns element i of the sole output.")
			f.Func().Params(jen.Id("o").Id("Outputs")).Id("At").Params(jen.Id("i").Int()).Op("*").Qual(pipelinePkg, "Func").Block(
				jen.Return(jen.Id("o").Dot(exported(out.Name)).Index(jen.Id("i"))),
			)
		} else {
			f.Comment("Func returns the sole output.")
			f.Func().Params(jen.Id("o").Id("Outputs")).Id("Func").Params().Op("*").Qual(pipelinePkg, "Func").Block(
				jen.Return(jen.Id("o").Dot(exported(out.Name))),
			)
		}
	}

	if d.AllFuncOutputs() {
		f.Comment("Pipeline returns the built pipeline over every output.")
		f.Func().Params(jen.Id("o").Id("Outputs")).Id("Pipeline").Params().Params(
			jen.Op("*").Qual(pipelinePkg, "Pipeline"), jen.Error(),
		).Block(
			jen.Return(jen.Id("o").Dot("stub").Dot("Pipeline").Call()),
		)

		f.Comment("Realize evaluates every output over the given extents.")
		f.Func().Params(jen.Id("o").Id("Outputs")).Id("Realize").Params(jen.Id("extents").Index().Int()).Params(
			jen.Index().Op("*").Qual(pipelinePkg, "Buffer"), jen.Error(),
		).Block(
			jen.Return(jen.Id("o").Dot("stub").Dot("Realize").Call(jen.Id("extents"))),
		)
	}
}

func genGenerate(f *jen.File, d *Description) {
	f.Comment("Generate builds the generator with the given inputs and params.")
	f.Func().Id("Generate").Params(
		jen.Id("ctx").Op("*").Qual(generatorPkg, "Context"),
		jen.Id("inputs").Id("Inputs"),
		jen.Id("params").Id("Params"),
	).Params(jen.Id("Outputs"), jen.Error()).BlockFunc(func(b *jen.Group) {
		b.List(jen.Id("stub"), jen.Err()).Op(":=").Qual(generatorPkg, "NewStub").Call(
			jen.Id("ctx"), jen.Lit(d.Name), jen.Id("params").Dot("ToMap").Call(),
			jen.Id("inputs").Dot("values").Call(),
		)
		b.If(jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Id("Outputs").Values(), jen.Err()),
		)
		b.Id("out").Op(":=").Id("Outputs").Values(jen.Dict{
			jen.Id("Target"): jen.Id("stub").Dot("Target").Call(),
			jen.Id("stub"):   jen.Id("stub"),
		})
		for _, out := range d.Outputs {
			getter := "Output"
			if out.IsArray {
				getter = "ArrayOutput"
			}
			b.List(jen.Id("out").Dot(exported(out.Name)), jen.Err()).Op("=").Id("stub").Dot(getter).Call(jen.Lit(out.Name))
			b.If(jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Id("Outputs").Values(), jen.Err()),
			)
		}
		b.Return(jen.Id("out"), jen.Nil())
	})
}

// fieldType renders the Go type of a wrapper struct field. A scalar
// input whose element type is still unresolved at emission is exposed
// as a pipeline expression.
func fieldType(f FieldDesc) *jen.Statement {
	var t *jen.Statement
	switch f.Kind {
	case generator.KindScalar:
		if len(f.Types) == 1 {
			t = jen.Id(f.GoType)
		} else {
			t = jen.Qual(pipelinePkg, "Expr")
		}
	case generator.KindFunction:
		t = jen.Op("*").Qual(pipelinePkg, "Func")
	case generator.KindBuffer:
		t = jen.Op("*").Qual(pipelinePkg, "Buffer")
	}
	if f.IsArray {
		return jen.Index().Add(t)
	}
	return t
}

// inputValues renders the bindable-value slice for one input field.
// The wrapping constructor must accept the field's emitted type:
// ConstValues for Go scalars, ScalarValues for expression-typed fields.
func inputValues(f FieldDesc) *jen.Statement {
	var wrap string
	switch f.Kind {
	case generator.KindScalar:
		wrap = "ConstValues"
		if len(f.Types) != 1 {
			wrap = "ScalarValues"
		}
	case generator.KindFunction:
		wrap = "FuncValues"
	case generator.KindBuffer:
		wrap = "BufferValues"
	}
	arg := jen.Id("i").Dot(exported(f.Name))
	if f.IsArray {
		return jen.Qual(generatorPkg, wrap).Call(arg.Op("..."))
	}
	return jen.Qual(generatorPkg, wrap).Call(arg)
}

func renderFile(f *jen.File) ([]byte, error) {
	var b strings.Builder
	if err := f.Render(&b); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
