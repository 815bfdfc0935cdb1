package generator

import (
	"fmt"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// Output is a declared output slot of a generator. Output values are
// written only during the generate phase; their type, dimensionality,
// and array size are fixed up front or inferred from the first defined
// value.
type Output struct {
	entity
}

// NewOutput declares an output of the given kind as a member of g.
// Outputs are function- or buffer-kind; a scalar output is a defect in
// the generator declaration.
func NewOutput(g *Generator, name string, kind Kind, opts ...FieldOption) *Output {
	if kind == KindScalar {
		panic("generator: internal: scalar output " + name)
	}
	out := &Output{entity: newEntity(g, name, kind, false)}
	for _, opt := range opts {
		opt(&out.entity)
	}
	g.registerOutput(out)
	return out
}

// Resize fixes the array size of an array output. It is permitted only
// while the size is still unresolved.
func (o *Output) Resize(n int) error {
	if !o.array {
		panic("generator: internal: Resize on non-array output " + o.name)
	}
	if o.arraySize != noSize {
		return loom.NewMismatchError(o.name, "array size",
			fmt.Sprint(o.arraySize), fmt.Sprint(n))
	}
	if n < 0 {
		return loom.NewNameError(fmt.Sprint(n), "invalid array size for "+o.name)
	}
	o.arraySize = n
	return nil
}

// Define binds the value of a non-array output: the index variables
// and one expression per tuple element. Permitted only during the
// generate phase; the first definition fixes (or validates) the
// output's dimensionality and element types.
func (o *Output) Define(args []string, values ...pipeline.Expr) error {
	return o.DefineAt(0, args, values...)
}

// DefineAt binds the value of array element i.
func (o *Output) DefineAt(i int, args []string, values ...pipeline.Expr) error {
	if o.gen != nil {
		if err := o.gen.checkExactPhase("define output "+o.name, GenerateCalled); err != nil {
			return err
		}
	}
	f, err := o.funcAt(i)
	if err != nil {
		return err
	}
	if err := f.Define(args, values...); err != nil {
		return err
	}
	if err := o.checkMatchingDims(f.Dimensions()); err != nil {
		return err
	}
	if err := o.checkMatchingTypes(f.OutputTypes()); err != nil {
		return err
	}
	o.verifyInternals()
	return nil
}

// Func returns the pipeline function of a non-array output, creating
// it on first access.
func (o *Output) Func() *pipeline.Func {
	f, err := o.funcAt(0)
	if err != nil {
		panic("generator: internal: " + err.Error())
	}
	return f
}

// FuncAt returns the pipeline function of array element i, creating
// the element functions on first access. The array size must be
// resolved by then.
func (o *Output) FuncAt(i int) *pipeline.Func {
	f, err := o.funcAt(i)
	if err != nil {
		panic("generator: internal: " + err.Error())
	}
	return f
}

func (o *Output) funcAt(i int) (*pipeline.Func, error) {
	if len(o.funcs) == 0 {
		size, err := o.ArraySize()
		if err != nil {
			return nil, err
		}
		o.funcs = make([]*pipeline.Func, size)
		for j := range o.funcs {
			o.funcs[j] = pipeline.NewFunc(o.elementName(j))
		}
	}
	if i < 0 || i >= len(o.funcs) {
		panic(fmt.Sprintf("generator: internal: output %s has no element %d", o.name, i))
	}
	return o.funcs[i], nil
}

// resolve runs after generation: every element must be defined, and
// properties not yet fixed are inferred from the defined values.
func (o *Output) resolve() error {
	size, err := o.ArraySize()
	if err != nil {
		return err
	}
	if len(o.funcs) != size {
		return loom.NewUnspecifiedError(o.name, "value", "")
	}
	for _, f := range o.funcs {
		if !f.Defined() {
			return loom.NewUnspecifiedError(f.Name(), "value", "")
		}
		if err := o.checkMatchingDims(f.Dimensions()); err != nil {
			return err
		}
		if err := o.checkMatchingTypes(f.OutputTypes()); err != nil {
			return err
		}
	}
	o.verifyInternals()
	return nil
}

// Parameters returns the output parameters backing each element
// function, for constraint tracking and argument synthesis.
func (o *Output) Parameters() []*pipeline.Parameter {
	params := make([]*pipeline.Parameter, len(o.funcs))
	for i, f := range o.funcs {
		params[i] = f.OutputParameter()
	}
	return params
}
