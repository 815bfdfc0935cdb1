package generator

import (
	"fmt"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// Input is a declared input slot of a generator. Its concrete bindings
// materialize either through SetInputs before generation, or
// implicitly as fresh pipeline parameters when generation begins
// without explicit binding.
type Input struct {
	entity
	bufs []*pipeline.Buffer
}

// NewInput declares an input of the given kind as a member of g.
// Scalar inputs carry 0 dimensions regardless of options.
func NewInput(g *Generator, name string, kind Kind, opts ...FieldOption) *Input {
	in := &Input{entity: newEntity(g, name, kind, false)}
	for _, opt := range opts {
		opt(&in.entity)
	}
	if kind == KindScalar {
		in.dims = 0
	}
	g.registerInput(in)
	return in
}

// setValues replaces any previously bound values with the supplied
// ones. The first call fixes the array size from the list length;
// every element's runtime kind must equal the declared kind, and its
// type and dimensionality are checked or backfilled.
func (in *Input) setValues(values []StubValue) error {
	if !in.array && len(values) != 1 {
		return loom.NewMismatchError(in.name, "array size", "1", fmt.Sprint(len(values)))
	}
	if in.array {
		if err := in.checkMatchingArraySize(len(values)); err != nil {
			return err
		}
	}
	in.exprs = nil
	in.funcs = nil
	in.bufs = nil
	in.params = nil
	for _, v := range values {
		if v.Kind() != in.kind {
			return loom.NewMismatchError(in.name, "kind", in.kind.String(), v.Kind().String())
		}
	}
	for i, v := range values {
		switch in.kind {
		case KindScalar:
			x := v.expr
			if !x.Defined() {
				return loom.NewUnspecifiedError(in.name, "value", "")
			}
			if err := in.checkMatchingTypes([]loom.Type{x.Type()}); err != nil {
				return err
			}
			p := pipeline.NewParameter(x.Type(), false, 0, in.elementName(i))
			p.SetScalar(x)
			in.exprs = append(in.exprs, x)
			in.params = append(in.params, p)
		case KindFunction:
			f := v.fn
			if f == nil {
				return loom.NewUnspecifiedError(in.name, "value", "")
			}
			if f.Defined() {
				if err := in.checkMatchingDims(f.Dimensions()); err != nil {
					return err
				}
				if err := in.checkMatchingTypes(f.OutputTypes()); err != nil {
					return err
				}
			}
			in.funcs = append(in.funcs, f)
		case KindBuffer:
			b := v.buf
			if b == nil {
				return loom.NewUnspecifiedError(in.name, "value", "")
			}
			if err := in.checkMatchingTypes([]loom.Type{b.Type()}); err != nil {
				return err
			}
			if err := in.checkMatchingDims(len(b.Extents())); err != nil {
				return err
			}
			p := pipeline.NewParameter(b.Type(), true, len(b.Extents()), in.elementName(i))
			p.SetBuffer(b)
			in.bufs = append(in.bufs, b)
			in.params = append(in.params, p)
			in.funcs = append(in.funcs, pipeline.ParamFunc(p, in.elementName(i)))
		}
	}
	in.verifyInternals()
	return nil
}

// bound reports whether concrete values are already attached.
func (in *Input) bound() bool {
	return len(in.exprs) > 0 || len(in.funcs) > 0
}

// initInternals materializes the input as fresh pipeline parameters.
// It runs when generation begins for an input nothing was bound to,
// and requires the type, dimensionality, and array size to be
// resolved by then.
func (in *Input) initInternals() error {
	if in.bound() {
		return nil
	}
	size, err := in.ArraySize()
	if err != nil {
		return err
	}
	t, err := in.Type()
	if err != nil {
		return err
	}
	dims, err := in.Dims()
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		name := in.elementName(i)
		if in.kind == KindScalar {
			p := pipeline.NewParameter(t, false, 0, name)
			in.params = append(in.params, p)
			in.exprs = append(in.exprs, pipeline.ParamRef(p))
			continue
		}
		p := pipeline.NewParameter(t, true, dims, name)
		in.params = append(in.params, p)
		in.funcs = append(in.funcs, pipeline.ParamFunc(p, name))
	}
	in.verifyInternals()
	return nil
}

// Expr returns the scalar expression of a non-array scalar input.
func (in *Input) Expr() pipeline.Expr { return in.ExprAt(0) }

// ExprAt returns the scalar expression of array element i.
func (in *Input) ExprAt(i int) pipeline.Expr {
	if in.kind != KindScalar {
		panic("generator: internal: Expr on non-scalar input " + in.name)
	}
	if i < 0 || i >= len(in.exprs) {
		panic(fmt.Sprintf("generator: internal: input %s has no element %d", in.name, i))
	}
	return in.exprs[i]
}

// Func returns the function of a non-array function or buffer input.
func (in *Input) Func() *pipeline.Func { return in.FuncAt(0) }

// FuncAt returns the function of array element i.
func (in *Input) FuncAt(i int) *pipeline.Func {
	if in.kind == KindScalar {
		panic("generator: internal: Func on scalar input " + in.name)
	}
	if i < 0 || i >= len(in.funcs) {
		panic(fmt.Sprintf("generator: internal: input %s has no element %d", in.name, i))
	}
	return in.funcs[i]
}

// Parameters returns the pipeline parameters backing the input, one
// per array element. Stub-bound function inputs have none.
func (in *Input) Parameters() []*pipeline.Parameter { return in.params }
