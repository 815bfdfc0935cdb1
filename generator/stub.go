package generator

import (
	"fmt"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// StubValue is one concrete value bound to an input slot: a scalar
// expression, a pipeline function, or a buffer. Its runtime kind must
// equal the declared kind of the input it is bound to.
type StubValue struct {
	kind Kind
	expr pipeline.Expr
	fn   *pipeline.Func
	buf  *pipeline.Buffer
}

// ScalarValue wraps a scalar expression as a bindable value.
func ScalarValue(e pipeline.Expr) StubValue {
	return StubValue{kind: KindScalar, expr: e}
}

// ConstValue wraps a Go scalar constant as a bindable value.
func ConstValue(v any) StubValue {
	return StubValue{kind: KindScalar, expr: pipeline.Const(v)}
}

// FuncValue wraps a pipeline function as a bindable value.
func FuncValue(f *pipeline.Func) StubValue {
	return StubValue{kind: KindFunction, fn: f}
}

// BufferValue wraps a concrete buffer as a bindable value.
func BufferValue(b *pipeline.Buffer) StubValue {
	return StubValue{kind: KindBuffer, buf: b}
}

// Kind returns the runtime kind of the wrapped value.
func (v StubValue) Kind() Kind { return v.kind }

// ConstValues wraps Go scalar constants as bindable values, one slot
// per constant.
func ConstValues[T any](vs ...T) []StubValue {
	out := make([]StubValue, len(vs))
	for i, v := range vs {
		out[i] = ConstValue(v)
	}
	return out
}

// ScalarValues wraps scalar expressions as bindable values.
func ScalarValues(es ...pipeline.Expr) []StubValue {
	out := make([]StubValue, len(es))
	for i, e := range es {
		out[i] = ScalarValue(e)
	}
	return out
}

// FuncValues wraps pipeline functions as bindable values.
func FuncValues(fs ...*pipeline.Func) []StubValue {
	out := make([]StubValue, len(fs))
	for i, f := range fs {
		out[i] = FuncValue(f)
	}
	return out
}

// BufferValues wraps buffers as bindable values.
func BufferValues(bs ...*pipeline.Buffer) []StubValue {
	out := make([]StubValue, len(bs))
	for i, b := range bs {
		out[i] = BufferValue(b)
	}
	return out
}

// Stub drives one generator instance from creation through build on
// behalf of generated wrapper code: create by name, apply params, bind
// inputs, build, then hand out the outputs.
type Stub struct {
	gen *Generator
}

// NewStub creates the named generator against ctx, applies the param
// values, binds the inputs, and drives it through generate and
// schedule.
func NewStub(ctx *Context, name string, params map[string]string, inputs [][]StubValue) (*Stub, error) {
	g, err := Create(name, ctx)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := g.SetParamValues(params); err != nil {
			return nil, err
		}
	}
	if len(inputs) > 0 {
		if err := g.SetInputs(inputs); err != nil {
			return nil, err
		}
	}
	if _, err := g.BuildPipeline(); err != nil {
		return nil, err
	}
	return &Stub{gen: g}, nil
}

// Generator returns the driven instance.
func (s *Stub) Generator() *Generator { return s.gen }

// Target returns the target the instance was built for.
func (s *Stub) Target() loom.Target { return s.gen.Target() }

// Output returns the sole element function of a named non-array output.
func (s *Stub) Output(name string) (*pipeline.Func, error) {
	return s.gen.GetOutput(name)
}

// ArrayOutput returns the element functions of a named output.
func (s *Stub) ArrayOutput(name string) ([]*pipeline.Func, error) {
	return s.gen.GetArrayOutput(name)
}

// Pipeline returns the built pipeline.
func (s *Stub) Pipeline() (*pipeline.Pipeline, error) {
	return s.gen.Pipeline()
}

// Realize evaluates the built pipeline over the given extents,
// returning one buffer per pipeline output.
func (s *Stub) Realize(extents []int) ([]*pipeline.Buffer, error) {
	if s.gen.Phase() != ScheduleCalled {
		return nil, loom.NewPhaseError("realize", s.gen.Phase().String(), ScheduleCalled.String())
	}
	pipe, err := s.gen.Pipeline()
	if err != nil {
		return nil, err
	}
	bufs, err := pipe.Realize(extents)
	if err != nil {
		return nil, fmt.Errorf("loom: realize %s: %w", s.gen.Name(), err)
	}
	return bufs, nil
}
