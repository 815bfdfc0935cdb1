package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/loom"
)

// defaultMachineParams is the default value of the machine_params
// context param: parallelism, last-level cache size, load/store cost
// balance.
const defaultMachineParams = "16,16777216,40"

// paramKind discriminates the value stored inside a Param.
type paramKind uint8

const (
	paramBool paramKind = iota
	paramInt
	paramFloat
	paramString
	paramSynthetic
)

// Param is a named, typed configuration value declared as a member of
// a generator. Params are set from strings before generation and read
// with the typed getters inside the generator's build functions.
//
// Synthetic params are created by the schema builder, one per
// lazily-resolved field property, and forward writes to their field.
type Param struct {
	gen  *Generator
	name string
	kind paramKind
	typ  loom.Type
	def  string

	b bool
	i int64
	f float64
	s string

	// Context params stay readable and settable in every phase.
	context bool

	// Synthetic params forward writes to their field entity.
	apply func(string) error
}

// NewBoolParam declares a boolean param with a default, registered as
// a member of g.
func NewBoolParam(g *Generator, name string, def bool) *Param {
	p := &Param{gen: g, name: name, kind: paramBool, typ: loom.Bool(), b: def,
		def: strconv.FormatBool(def)}
	g.registerParam(p)
	return p
}

// NewIntParam declares a signed integer param with a default,
// registered as a member of g.
func NewIntParam(g *Generator, name string, def int64) *Param {
	p := &Param{gen: g, name: name, kind: paramInt, typ: loom.Int(64), i: def,
		def: strconv.FormatInt(def, 10)}
	g.registerParam(p)
	return p
}

// NewFloatParam declares a floating-point param with a default,
// registered as a member of g.
func NewFloatParam(g *Generator, name string, def float64) *Param {
	p := &Param{gen: g, name: name, kind: paramFloat, typ: loom.Float(64), f: def,
		def: strconv.FormatFloat(def, 'g', -1, 64)}
	g.registerParam(p)
	return p
}

// NewStringParam declares a free-form string param with a default,
// registered as a member of g.
func NewStringParam(g *Generator, name string, def string) *Param {
	p := &Param{gen: g, name: name, kind: paramString, s: def, def: def}
	g.registerParam(p)
	return p
}

// newContextParam declares one of the always-available context params
// owned by the generator itself rather than its author.
func newContextParam(g *Generator, name, def string) *Param {
	p := &Param{gen: g, name: name, kind: paramString, s: def, def: def, context: true}
	g.registerParam(p)
	return p
}

// newSyntheticParam builds a schema-owned param forwarding writes to a
// field entity property.
func newSyntheticParam(g *Generator, name string, typ loom.Type, apply func(string) error) *Param {
	return &Param{gen: g, name: name, kind: paramSynthetic, typ: typ, apply: apply}
}

// Name returns the declared param name.
func (p *Param) Name() string { return p.name }

// IsSynthetic reports whether the param was synthesized by the schema
// builder rather than declared by the generator author.
func (p *Param) IsSynthetic() bool { return p.kind == paramSynthetic }

// IsContext reports whether the param is one of the always-available
// context params (target, auto_schedule, machine_params). Context
// params are filtered from emitted schemas.
func (p *Param) IsContext() bool { return p.context }

// DefaultString returns the source rendering of the default value.
func (p *Param) DefaultString() string {
	if p.kind == paramString {
		return strconv.Quote(p.def)
	}
	return p.def
}

// GoType returns the Go source spelling of the param's value type, as
// used by the wrapper and metadata emitters.
func (p *Param) GoType() string {
	switch p.kind {
	case paramBool:
		return "bool"
	case paramInt:
		return "int64"
	case paramFloat:
		return "float64"
	case paramString:
		return "string"
	case paramSynthetic:
		if p.typ.Defined() {
			return p.typ.GoType()
		}
		return "int"
	}
	panic(fmt.Sprintf("generator: internal: unknown param kind %d", p.kind))
}

// SetFromString parses and stores a value. Writes are permitted only
// strictly before generation, except for context params.
func (p *Param) SetFromString(value string) error {
	if p.gen != nil && !p.context {
		if p.gen.phase >= GenerateCalled {
			return loom.NewPhaseError("set param "+p.name, p.gen.phase.String(),
				"before "+GenerateCalled.String())
		}
	}
	switch p.kind {
	case paramBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("loom: param %s: %w", p.name, err)
		}
		p.b = b
	case paramInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("loom: param %s: %w", p.name, err)
		}
		p.i = i
	case paramFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("loom: param %s: %w", p.name, err)
		}
		p.f = f
	case paramString:
		p.s = value
	case paramSynthetic:
		return p.apply(value)
	}
	return nil
}

// checkReadable panics on a read of a non-context param before
// generation: configuration arrives through SetFromString up to that
// point, so an earlier read would bake the default into the pipeline.
// Context params stay readable in every phase.
func (p *Param) checkReadable() {
	if p.gen == nil || p.context {
		return
	}
	if p.gen.phase < GenerateCalled {
		panic("generator: param " + p.name + " cannot be read before generation runs")
	}
}

// Bool returns the boolean value. Panics on a non-boolean param or on
// a read before generation; both are defects in the generator's own
// build functions.
func (p *Param) Bool() bool {
	if p.kind != paramBool {
		panic("generator: internal: Bool on non-bool param " + p.name)
	}
	p.checkReadable()
	return p.b
}

// Int64 returns the integer value.
func (p *Param) Int64() int64 {
	if p.kind != paramInt {
		panic("generator: internal: Int64 on non-int param " + p.name)
	}
	p.checkReadable()
	return p.i
}

// Float64 returns the floating-point value.
func (p *Param) Float64() float64 {
	if p.kind != paramFloat {
		panic("generator: internal: Float64 on non-float param " + p.name)
	}
	p.checkReadable()
	return p.f
}

// Value returns the current value rendered as a string.
func (p *Param) Value() string {
	switch p.kind {
	case paramBool:
		return strconv.FormatBool(p.b)
	case paramInt:
		return strconv.FormatInt(p.i, 10)
	case paramFloat:
		return strconv.FormatFloat(p.f, 'g', -1, 64)
	case paramString:
		return p.s
	case paramSynthetic:
		return ""
	}
	panic(fmt.Sprintf("generator: internal: unknown param kind %d", p.kind))
}

// machineParams splits a machine_params value into its three fields.
func machineParams(s string) (parallelism, llcSize, balance int64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("loom: machine_params %q: want 3 comma-separated fields", s)
	}
	vals := make([]int64, 3)
	for i, p := range parts {
		vals[i], err = strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("loom: machine_params %q: %w", s, err)
		}
	}
	return vals[0], vals[1], vals[2], nil
}
