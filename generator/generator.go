package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// Names of the context params every generator exposes. They are
// readable and settable in every phase and filtered from emitted
// schemas.
const (
	targetParamName        = "target"
	autoScheduleParamName  = "auto_schedule"
	machineParamsParamName = "machine_params"
)

// Generator is a live generator instance: the declared members, the
// lifecycle phase, and the lazily built schema. Instances are built by
// registered factories and driven by an external build layer, one
// instance per specialization. A Generator is not safe for concurrent
// use.
type Generator struct {
	id       uuid.UUID
	ctx      *Context
	name     string
	stubName string
	phase    Phase

	params         []*Param
	inputs         []*Input
	outputs        []*Output
	pipelineParams []*PipelineParam

	generateFn func() error
	scheduleFn func() error
	buildFn    func() (*pipeline.Pipeline, error)

	schema *Schema
	pipe   *pipeline.Pipeline
}

// New returns an empty generator bound to ctx. Factories declare
// members against it and attach the build functions before returning.
func New(ctx *Context) *Generator {
	g := &Generator{id: uuid.New(), ctx: ctx}
	newContextParam(g, targetParamName, ctx.Target().String())
	newContextParam(g, autoScheduleParamName, strconv.FormatBool(ctx.AutoSchedule()))
	newContextParam(g, machineParamsParamName, ctx.machineParams)
	return g
}

// OnGenerate attaches the generate function, which defines every
// declared output. Required for generators that declare outputs.
func (g *Generator) OnGenerate(fn func() error) { g.generateFn = fn }

// OnSchedule attaches the optional schedule function.
func (g *Generator) OnSchedule(fn func() error) { g.scheduleFn = fn }

// OnBuild attaches the legacy single-call build function, which
// returns the finished pipeline directly. Legacy generators declare
// pipeline params instead of inputs and outputs.
func (g *Generator) OnBuild(fn func() (*pipeline.Pipeline, error)) { g.buildFn = fn }

// Context returns the build context the instance was created against.
func (g *Generator) Context() *Context { return g.ctx }

// Target returns the compilation target.
func (g *Generator) Target() loom.Target { return g.ctx.Target() }

// Phase returns the current lifecycle phase.
func (g *Generator) Phase() Phase { return g.phase }

// Name returns the registered generator name.
func (g *Generator) Name() string { return g.name }

// StubName returns the dot-qualified stub name used by the emitters.
func (g *Generator) StubName() string {
	if g.stubName != "" {
		return g.stubName
	}
	return g.name
}

// ID returns the instance identity used in log and panic context.
func (g *Generator) ID() uuid.UUID { return g.id }

// MachineParams returns the parsed machine_params context param:
// parallelism, last-level cache size, and load/store cost balance.
// Schedule functions read it to steer scheduling decisions.
func (g *Generator) MachineParams() (parallelism, llcSize, balance int64, err error) {
	s, err := g.Schema()
	if err != nil {
		return 0, 0, 0, err
	}
	p, ok := s.Param(machineParamsParamName)
	if !ok {
		panic("generator: internal: generator " + g.name + " has no machine_params param")
	}
	return machineParams(p.Value())
}

// setNames records the registered name and stub name after creation.
func (g *Generator) setNames(name, stubName string) error {
	if !loom.ValidName(name) {
		return loom.NewNameError(name, "invalid generator name")
	}
	g.name = name
	g.stubName = stubName
	return nil
}

func (g *Generator) registerParam(p *Param) {
	if g.schema != nil {
		panic("generator: internal: param " + p.name + " declared after schema was built")
	}
	g.params = append(g.params, p)
}

func (g *Generator) registerInput(in *Input) {
	if g.schema != nil {
		panic("generator: internal: input " + in.name + " declared after schema was built")
	}
	g.inputs = append(g.inputs, in)
}

func (g *Generator) registerOutput(out *Output) {
	if g.schema != nil {
		panic("generator: internal: output " + out.name + " declared after schema was built")
	}
	g.outputs = append(g.outputs, out)
}

func (g *Generator) registerPipelineParam(p *PipelineParam) {
	if g.schema != nil {
		panic("generator: internal: pipeline param " + p.name + " declared after schema was built")
	}
	g.pipelineParams = append(g.pipelineParams, p)
}

// Schema is the validated public surface of one generator instance:
// ordered params (synthetics included), inputs, and outputs. Built
// once, immutable thereafter except for the values held inside params.
type Schema struct {
	params  []*Param
	inputs  []*Input
	outputs []*Output
	byName  map[string]*Param
}

// Params returns the ordered params, synthetics included.
func (s *Schema) Params() []*Param { return s.params }

// Inputs returns the ordered declared inputs.
func (s *Schema) Inputs() []*Input { return s.inputs }

// Outputs returns the ordered declared outputs.
func (s *Schema) Outputs() []*Output { return s.outputs }

// Param looks up a param, synthetic or declared, by name.
func (s *Schema) Param(name string) (*Param, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Schema validates the declared members and builds the instance
// schema. The first call builds it; later calls return the same value.
func (g *Generator) Schema() (*Schema, error) {
	if g.schema != nil {
		return g.schema, nil
	}
	if len(g.pipelineParams) > 0 && (len(g.inputs) > 0 || len(g.outputs) > 0) {
		return nil, fmt.Errorf("%w: generator %s declares pipeline params alongside inputs or outputs",
			loom.ErrMixedDeclarations, g.name)
	}

	seen := make(map[string]bool)
	checkName := func(name string) error {
		if !loom.ValidName(name) {
			return loom.NewNameError(name, "invalid name")
		}
		if seen[name] {
			return loom.NewDuplicateNameError(name, "duplicate name")
		}
		seen[name] = true
		return nil
	}

	s := &Schema{byName: make(map[string]*Param)}
	for _, p := range g.params {
		if err := checkName(p.name); err != nil {
			return nil, err
		}
		s.params = append(s.params, p)
		s.byName[p.name] = p
	}
	for _, p := range g.pipelineParams {
		if err := checkName(p.name); err != nil {
			return nil, err
		}
	}
	for _, in := range g.inputs {
		if err := checkName(in.name); err != nil {
			return nil, err
		}
		s.inputs = append(s.inputs, in)
	}
	for _, out := range g.outputs {
		if err := checkName(out.name); err != nil {
			return nil, err
		}
		s.outputs = append(s.outputs, out)
	}

	// Synthetic params expose each lazily-resolved field property.
	addSynthetic := func(p *Param) {
		s.params = append(s.params, p)
		s.byName[p.name] = p
	}
	synthesize := func(e *entity) {
		if e.kind != KindScalar {
			addSynthetic(newSyntheticParam(g, e.name+".type", loom.Type{}, e.setTypesFromString))
			addSynthetic(newSyntheticParam(g, e.name+".dim", loom.Int(32), e.setDimsFromString))
		}
		if e.array {
			addSynthetic(newSyntheticParam(g, e.name+".size", loom.Int(32), e.setArraySizeFromString))
		}
	}
	for _, in := range g.inputs {
		synthesize(&in.entity)
	}
	for _, out := range g.outputs {
		synthesize(&out.entity)
	}

	g.schema = s
	return s, nil
}

// SetParamValues applies a batch of string-encoded param values.
// Unknown names fail, naming the generator; non-context writes are
// permitted only strictly before generation.
func (g *Generator) SetParamValues(values map[string]string) error {
	s, err := g.Schema()
	if err != nil {
		return err
	}
	for name, value := range values {
		p, ok := s.Param(name)
		if !ok {
			return loom.NewUnknownParamError(g.name, name)
		}
		if err := p.SetFromString(value); err != nil {
			return err
		}
	}
	return nil
}

// SetInputs binds concrete values to every declared input, in
// declaration order, and advances the instance to InputsSet. The outer
// list length must equal the declared input count.
func (g *Generator) SetInputs(values [][]StubValue) error {
	s, err := g.Schema()
	if err != nil {
		return err
	}
	if len(values) != len(s.inputs) {
		return loom.NewMismatchError(g.name, "input count",
			strconv.Itoa(len(s.inputs)), strconv.Itoa(len(values)))
	}
	if err := g.advancePhase(InputsSet); err != nil {
		return err
	}
	for i, in := range s.inputs {
		if err := in.setValues(values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Generate materializes unbound inputs, advances to GenerateCalled,
// runs the generate function, and resolves every output.
func (g *Generator) Generate() error {
	s, err := g.Schema()
	if err != nil {
		return err
	}
	if g.buildFn != nil {
		panic("generator: internal: Generate on legacy generator " + g.name)
	}
	if g.generateFn == nil {
		panic("generator: internal: generator " + g.name + " has no generate function")
	}
	if len(s.outputs) == 0 {
		return fmt.Errorf("loom: generator %s must declare outputs to generate", g.name)
	}
	if err := g.advancePhase(GenerateCalled); err != nil {
		return err
	}
	for _, in := range s.inputs {
		if err := in.initInternals(); err != nil {
			return err
		}
	}
	if err := g.trackParameterValues(false); err != nil {
		return err
	}
	if err := g.generateFn(); err != nil {
		return err
	}
	for _, out := range s.outputs {
		if err := out.resolve(); err != nil {
			return err
		}
	}
	return g.trackParameterValues(true)
}

// Schedule advances to ScheduleCalled and runs the schedule function,
// if one is attached.
func (g *Generator) Schedule() error {
	if err := g.advancePhase(ScheduleCalled); err != nil {
		return err
	}
	if g.scheduleFn != nil {
		if err := g.scheduleFn(); err != nil {
			return err
		}
	}
	return g.trackParameterValues(true)
}

// BuildPipeline drives a modern-style generator through generate and
// schedule and returns the assembled pipeline.
func (g *Generator) BuildPipeline() (*pipeline.Pipeline, error) {
	if g.buildFn != nil {
		return g.Build()
	}
	if err := g.Generate(); err != nil {
		return nil, err
	}
	if err := g.Schedule(); err != nil {
		return nil, err
	}
	return g.Pipeline()
}

// Build runs the legacy single-call build path: the attached build
// function produces the pipeline, and the instance advances through
// GenerateCalled and ScheduleCalled as one compound transition.
// Nothing advances if the build function fails.
func (g *Generator) Build() (*pipeline.Pipeline, error) {
	if _, err := g.Schema(); err != nil {
		return nil, err
	}
	if g.buildFn == nil {
		panic("generator: internal: Build on modern generator " + g.name)
	}
	if len(g.outputs) > 0 {
		return nil, fmt.Errorf("loom: generator %s declares outputs and cannot use the legacy build path", g.name)
	}
	if g.phase != Created && g.phase != InputsSet {
		return nil, loom.NewPhaseError("build", g.phase.String(),
			Created.String()+" or "+InputsSet.String())
	}
	for _, in := range g.inputs {
		if err := in.initInternals(); err != nil {
			return nil, err
		}
	}
	if err := g.trackParameterValues(false); err != nil {
		return nil, err
	}
	// Params become readable while the build function runs. A failed
	// build restores the entry phase, so callers never observe a
	// half-advanced instance.
	prev := g.phase
	g.phase = GenerateCalled
	pipe, err := g.buildFn()
	if err != nil {
		g.phase = prev
		return nil, err
	}
	g.phase = ScheduleCalled
	g.pipe = pipe
	return pipe, g.trackParameterValues(true)
}

// Pipeline assembles (once) the pipeline from every output's element
// functions, in declaration order.
func (g *Generator) Pipeline() (*pipeline.Pipeline, error) {
	if g.pipe != nil {
		return g.pipe, nil
	}
	if err := g.checkMinPhase("assemble pipeline", GenerateCalled); err != nil {
		return nil, err
	}
	s, err := g.Schema()
	if err != nil {
		return nil, err
	}
	var funcs []*pipeline.Func
	for _, out := range s.outputs {
		funcs = append(funcs, out.funcs...)
	}
	pipe, err := pipeline.NewPipeline(funcs)
	if err != nil {
		return nil, err
	}
	g.pipe = pipe
	return pipe, nil
}

// BuildModule drives the instance to completion as needed and compiles
// the pipeline into a module named functionName, with an argument list
// derived from the declared inputs and pipeline params and any externs
// registered on the context appended.
func (g *Generator) BuildModule(functionName string) (*pipeline.Module, error) {
	if g.phase < GenerateCalled {
		if _, err := g.BuildPipeline(); err != nil {
			return nil, err
		}
	} else if g.phase == GenerateCalled {
		if err := g.Schedule(); err != nil {
			return nil, err
		}
	}
	pipe, err := g.Pipeline()
	if err != nil {
		return nil, err
	}
	s, err := g.Schema()
	if err != nil {
		return nil, err
	}

	var args []pipeline.Argument
	for _, in := range s.inputs {
		for _, p := range in.params {
			args = append(args, pipeline.ToArgument(p))
		}
	}
	for _, p := range g.pipelineParams {
		args = append(args, pipeline.ToArgument(p.param))
	}

	mod, err := pipe.CompileToModule(args, functionName, g.Target())
	if err != nil {
		return nil, err
	}
	for _, out := range s.outputs {
		for i, f := range out.funcs {
			mod.RemapMetadataName(f.Name(), out.elementName(i))
		}
	}
	names := make([]string, 0, len(g.ctx.externs))
	for name := range g.ctx.externs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod.AppendExtern(g.ctx.externs[name])
	}
	return mod, nil
}

// GetOutput returns the sole element function of a named non-array
// output. Readable once generation has run.
func (g *Generator) GetOutput(name string) (*pipeline.Func, error) {
	funcs, err := g.GetArrayOutput(name)
	if err != nil {
		return nil, err
	}
	if len(funcs) != 1 {
		return nil, loom.NewMismatchError(name, "array size", "1", strconv.Itoa(len(funcs)))
	}
	return funcs[0], nil
}

// GetArrayOutput returns the element functions of a named output.
func (g *Generator) GetArrayOutput(name string) ([]*pipeline.Func, error) {
	if err := g.checkMinPhase("read output "+name, GenerateCalled); err != nil {
		return nil, err
	}
	s, err := g.Schema()
	if err != nil {
		return nil, err
	}
	for _, out := range s.outputs {
		if out.name == name {
			return out.funcs, nil
		}
	}
	known := make([]string, len(s.outputs))
	for i, out := range s.outputs {
		known[i] = out.name
	}
	return nil, loom.NewNameError(name, "unknown output (have "+strings.Join(known, ", ")+")")
}

// trackParameterValues records the constraint tuple of every
// buffer-kind input parameter with the shared tracker; after
// generation it records output parameters too.
func (g *Generator) trackParameterValues(outputsReady bool) error {
	tracker := g.ctx.Tracker()
	for _, in := range g.inputs {
		if in.kind != KindBuffer {
			continue
		}
		for _, p := range in.params {
			if err := tracker.TrackValues(p.Name(), pipeline.Constraints(p)); err != nil {
				return err
			}
		}
	}
	for _, p := range g.pipelineParams {
		if !p.param.IsBuffer() {
			continue
		}
		if err := tracker.TrackValues(p.name, pipeline.Constraints(p.param)); err != nil {
			return err
		}
	}
	if outputsReady {
		for _, out := range g.outputs {
			if out.kind != KindBuffer {
				continue
			}
			for _, p := range out.Parameters() {
				if err := tracker.TrackValues(p.Name(), pipeline.Constraints(p)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
