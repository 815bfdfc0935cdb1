package pipeline

import (
	"fmt"

	"github.com/syssam/loom"
)

// Parameter is a runtime parameter of a compiled pipeline: either a
// scalar argument with optional min/max constraints, or a buffer
// argument with per-dimension layout constraints.
type Parameter struct {
	name   string
	typ    loom.Type
	buffer bool
	dims   int

	hostAlignment int

	// Buffer constraints, one slot per dimension. Undefined exprs mean
	// "unconstrained".
	mins    []Expr
	extents []Expr
	strides []Expr

	// Scalar constraints and bound value.
	minValue Expr
	maxValue Expr
	scalar   Expr

	// Concrete data bound to a buffer parameter.
	bound *Buffer
}

// NewParameter creates a parameter. Buffer parameters require dims > 0
// slots for layout constraints; scalar parameters must pass dims 0.
func NewParameter(t loom.Type, buffer bool, dims int, name string) *Parameter {
	if !buffer && dims != 0 {
		panic(fmt.Sprintf("pipeline: internal: scalar parameter %q with dims %d", name, dims))
	}
	return &Parameter{
		name:          name,
		typ:           t,
		buffer:        buffer,
		dims:          dims,
		hostAlignment: 1,
		mins:          make([]Expr, dims),
		extents:       make([]Expr, dims),
		strides:       make([]Expr, dims),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

// Type returns the element type.
func (p *Parameter) Type() loom.Type { return p.typ }

// IsBuffer reports whether the parameter is a buffer argument.
func (p *Parameter) IsBuffer() bool { return p.buffer }

// Dimensions returns the buffer dimensionality (0 for scalars).
func (p *Parameter) Dimensions() int { return p.dims }

// HostAlignment returns the required host-pointer alignment in bytes.
func (p *Parameter) HostAlignment() int { return p.hostAlignment }

// SetHostAlignment sets the required host-pointer alignment in bytes.
func (p *Parameter) SetHostAlignment(bytes int) { p.hostAlignment = bytes }

// MinConstraint returns the min constraint for a dimension.
func (p *Parameter) MinConstraint(dim int) Expr { return p.mins[dim] }

// ExtentConstraint returns the extent constraint for a dimension.
func (p *Parameter) ExtentConstraint(dim int) Expr { return p.extents[dim] }

// StrideConstraint returns the stride constraint for a dimension.
func (p *Parameter) StrideConstraint(dim int) Expr { return p.strides[dim] }

// SetMinConstraint fixes the min constraint for a dimension.
func (p *Parameter) SetMinConstraint(dim int, e Expr) { p.mins[dim] = e }

// SetExtentConstraint fixes the extent constraint for a dimension.
func (p *Parameter) SetExtentConstraint(dim int, e Expr) { p.extents[dim] = e }

// SetStrideConstraint fixes the stride constraint for a dimension.
func (p *Parameter) SetStrideConstraint(dim int, e Expr) { p.strides[dim] = e }

// MinValue returns the scalar minimum constraint.
func (p *Parameter) MinValue() Expr { return p.minValue }

// MaxValue returns the scalar maximum constraint.
func (p *Parameter) MaxValue() Expr { return p.maxValue }

// SetMinValue fixes the scalar minimum constraint.
func (p *Parameter) SetMinValue(e Expr) { p.minValue = e }

// SetMaxValue fixes the scalar maximum constraint.
func (p *Parameter) SetMaxValue(e Expr) { p.maxValue = e }

// SetScalar binds a concrete value to a scalar parameter.
func (p *Parameter) SetScalar(e Expr) {
	if p.buffer {
		panic(fmt.Sprintf("pipeline: internal: SetScalar on buffer parameter %q", p.name))
	}
	p.scalar = e
}

// ScalarExpr returns the bound scalar value (possibly undefined).
func (p *Parameter) ScalarExpr() Expr { return p.scalar }

// SetBuffer binds concrete data to a buffer parameter and constrains
// each dimension to the buffer's extent.
func (p *Parameter) SetBuffer(b *Buffer) {
	if !p.buffer {
		panic(fmt.Sprintf("pipeline: internal: SetBuffer on scalar parameter %q", p.name))
	}
	p.bound = b
	for i, x := range b.Extents() {
		if i >= p.dims {
			break
		}
		p.mins[i] = IntConst(loom.Int(32), 0)
		p.extents[i] = IntConst(loom.Int(32), int64(x))
	}
}

// Buffer returns the concrete data bound to a buffer parameter, if any.
func (p *Parameter) Buffer() *Buffer { return p.bound }

// Constraints returns the parameter's constraint tuple: the host
// alignment followed by min/extent/stride per dimension for buffers,
// or the min/max values for scalars. This is the tuple the cross-build
// consistency tracker records.
func Constraints(p *Parameter) []Expr {
	if p == nil {
		panic("pipeline: internal: Constraints on nil parameter")
	}
	values := []Expr{IntConst(loom.Int(32), int64(p.hostAlignment))}
	if p.buffer {
		for i := 0; i < p.dims; i++ {
			values = append(values, p.mins[i], p.extents[i], p.strides[i])
		}
	} else {
		values = append(values, p.minValue, p.maxValue)
	}
	return values
}

// ToArgument converts a parameter to a compiled-function argument.
func ToArgument(p *Parameter) Argument {
	a := Argument{
		Name:       p.name,
		Buffer:     p.buffer,
		Type:       p.typ.String(),
		Dimensions: p.dims,
	}
	if !p.buffer {
		if p.scalar.Defined() {
			a.Default = p.scalar.String()
		}
		if p.minValue.Defined() {
			a.Min = p.minValue.String()
		}
		if p.maxValue.Defined() {
			a.Max = p.maxValue.String()
		}
	}
	return a
}
