package generator

import (
	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// PipelineParam is a legacy-style runtime parameter declared directly
// on a generator: a scalar argument or a whole input image. Legacy
// generators declare these and attach a build function; they cannot be
// mixed with modern inputs and outputs.
type PipelineParam struct {
	gen   *Generator
	name  string
	param *pipeline.Parameter
	fn    *pipeline.Func
}

// NewPipelineParam declares a legacy scalar runtime parameter.
func NewPipelineParam(g *Generator, name string, t loom.Type) *PipelineParam {
	p := &PipelineParam{
		gen:   g,
		name:  name,
		param: pipeline.NewParameter(t, false, 0, name),
	}
	g.registerPipelineParam(p)
	return p
}

// NewImageParam declares a legacy whole-image runtime parameter.
func NewImageParam(g *Generator, name string, t loom.Type, dims int) *PipelineParam {
	p := &PipelineParam{
		gen:   g,
		name:  name,
		param: pipeline.NewParameter(t, true, dims, name),
	}
	p.fn = pipeline.ParamFunc(p.param, name)
	g.registerPipelineParam(p)
	return p
}

// Name returns the declared name.
func (p *PipelineParam) Name() string { return p.name }

// Parameter returns the backing pipeline parameter.
func (p *PipelineParam) Parameter() *pipeline.Parameter { return p.param }

// Expr returns a reference to a scalar param's runtime value.
func (p *PipelineParam) Expr() pipeline.Expr {
	return pipeline.ParamRef(p.param)
}

// Func returns the function view of an image param.
func (p *PipelineParam) Func() *pipeline.Func {
	if p.fn == nil {
		panic("generator: internal: Func on scalar pipeline param " + p.name)
	}
	return p.fn
}
