package pipeline

import (
	"fmt"

	"github.com/syssam/loom"
)

// Func is a named pipeline stage: a pure function from integer index
// variables to a tuple of scalar expressions. A Func starts undefined
// and is defined exactly once.
type Func struct {
	name   string
	args   []string
	values []Expr

	outputParam *Parameter
}

// NewFunc creates an undefined func with the given name.
func NewFunc(name string) *Func {
	return &Func{name: name}
}

// ParamFunc wraps a buffer parameter in a func that forwards every
// index into the parameter, so buffer inputs compose like any stage.
func ParamFunc(p *Parameter, name string) *Func {
	if !p.buffer {
		panic(fmt.Sprintf("pipeline: internal: ParamFunc on scalar parameter %q", p.name))
	}
	args := make([]string, p.dims)
	callArgs := make([]Expr, p.dims)
	for i := range args {
		args[i] = fmt.Sprintf("_%d", i)
		callArgs[i] = Var(args[i])
	}
	f := NewFunc(name)
	if err := f.Define(args, ParamCall(p, callArgs...)); err != nil {
		panic(fmt.Sprintf("pipeline: internal: %v", err))
	}
	f.outputParam = p
	return f
}

// Name returns the func name.
func (f *Func) Name() string { return f.name }

// Defined reports whether the func has a definition.
func (f *Func) Defined() bool { return len(f.values) > 0 }

// Define gives the func its definition. Every value must be a defined
// expression; a func may only be defined once.
func (f *Func) Define(args []string, values ...Expr) error {
	if f.Defined() {
		return fmt.Errorf("pipeline: func %q is already defined", f.name)
	}
	if len(values) == 0 {
		return fmt.Errorf("pipeline: func %q defined with no values", f.name)
	}
	for _, v := range values {
		if !v.Defined() {
			return fmt.Errorf("pipeline: func %q defined with an undefined value", f.name)
		}
	}
	f.args = append([]string(nil), args...)
	f.values = append([]Expr(nil), values...)
	return nil
}

// Dimensions returns the number of index variables.
func (f *Func) Dimensions() int { return len(f.args) }

// Outputs returns the tuple arity of the definition (0 if undefined).
func (f *Func) Outputs() int { return len(f.values) }

// OutputTypes returns the types of the definition tuple.
func (f *Func) OutputTypes() []loom.Type {
	types := make([]loom.Type, len(f.values))
	for i, v := range f.values {
		types[i] = v.Type()
	}
	return types
}

// OutputParameter returns the runtime parameter describing this func's
// output buffer, creating it on first use. Constraints recorded on the
// returned parameter participate in cross-build consistency tracking.
func (f *Func) OutputParameter() *Parameter {
	if f.outputParam == nil {
		if !f.Defined() {
			panic(fmt.Sprintf("pipeline: internal: OutputParameter on undefined func %q", f.name))
		}
		f.outputParam = NewParameter(f.values[0].Type(), true, len(f.args), f.name)
	}
	return f.outputParam
}

// realize evaluates the func over the given extents into a buffer.
func (f *Func) realize(extents []int) (*Buffer, error) {
	if !f.Defined() {
		return nil, fmt.Errorf("pipeline: func %q is not defined", f.name)
	}
	if len(f.values) != 1 {
		return nil, fmt.Errorf("pipeline: func %q: tuple realization is not supported", f.name)
	}
	if len(extents) != len(f.args) {
		return nil, fmt.Errorf("pipeline: func %q has %d dimensions but %d extents were given",
			f.name, len(f.args), len(extents))
	}
	buf := NewBuffer(f.values[0].Type(), extents)
	idx := make([]int, len(extents))
	env := evalEnv{vars: make(map[string]int64, len(f.args))}
	for {
		for i, a := range f.args {
			env.vars[a] = int64(idx[i])
		}
		v, err := f.values[0].eval(env)
		if err != nil {
			return nil, err
		}
		buf.set(idx, v)
		if !advance(idx, extents) {
			return buf, nil
		}
	}
}

// advance steps a multi-dimensional index; it returns false after the
// last position.
func advance(idx, extents []int) bool {
	for d := 0; d < len(idx); d++ {
		idx[d]++
		if idx[d] < extents[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}
