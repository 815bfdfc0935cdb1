package pipeline

import (
	"fmt"

	"github.com/syssam/loom"
)

// Pipeline is an ordered collection of output funcs.
type Pipeline struct {
	funcs []*Func
}

// NewPipeline creates a pipeline over the given output funcs. Every
// func must already be defined.
func NewPipeline(funcs []*Func) (*Pipeline, error) {
	if len(funcs) == 0 {
		return nil, fmt.Errorf("pipeline: a pipeline requires at least one output func")
	}
	for _, f := range funcs {
		if !f.Defined() {
			return nil, fmt.Errorf("pipeline: output %q was not defined", f.name)
		}
	}
	return &Pipeline{funcs: append([]*Func(nil), funcs...)}, nil
}

// Outputs returns the pipeline's output funcs in order.
func (p *Pipeline) Outputs() []*Func { return p.funcs }

// Realize evaluates every output func over the given extents.
func (p *Pipeline) Realize(extents []int) ([]*Buffer, error) {
	bufs := make([]*Buffer, 0, len(p.funcs))
	for _, f := range p.funcs {
		b, err := f.realize(extents)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, b)
	}
	return bufs, nil
}

// CompileToModule lowers the pipeline into a module exposing one
// public function with the given arguments.
func (p *Pipeline) CompileToModule(args []Argument, functionName string, target loom.Target) (*Module, error) {
	if functionName == "" {
		return nil, fmt.Errorf("pipeline: module function name must not be empty")
	}
	outputs := make([]string, len(p.funcs))
	for i, f := range p.funcs {
		outputs[i] = f.name
	}
	m := &Module{
		name:   functionName,
		target: target,
		functions: []FunctionInfo{{
			Name:      functionName,
			Arguments: args,
			Outputs:   outputs,
		}},
	}
	return m, nil
}
