package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/loom"
	"github.com/syssam/loom/pipeline"
)

// Kind classifies what a field entity carries.
type Kind uint8

const (
	// KindScalar is a single scalar value slot.
	KindScalar Kind = iota
	// KindFunction is a pipeline function slot.
	KindFunction
	// KindBuffer is a concrete buffer slot.
	KindBuffer
)

// String returns the io-kind spelling used in emitted metadata.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindFunction:
		return "function"
	case KindBuffer:
		return "buffer"
	default:
		panic(fmt.Sprintf("generator: internal: unknown kind %d", uint8(k)))
	}
}

// noSize is the sentinel for an unresolved array size or dimension count.
const noSize = -1

// entity is the state shared by Input and Output: a named slot of some
// kind, possibly array-valued, whose element types, dimensionality,
// and array size resolve lazily. Whether the slot is array-valued is
// fixed at construction. Types, dims, and array size follow
// first-write-wins: the first concrete value observed fixes them, and
// every later value must match exactly.
type entity struct {
	gen   *Generator
	name  string
	kind  Kind
	array bool

	arraySize int
	dims      int
	types     []loom.Type

	funcs  []*pipeline.Func
	exprs  []pipeline.Expr
	params []*pipeline.Parameter
}

// FieldOption customizes an input or output declaration.
type FieldOption func(*entity)

// WithType fixes a single element type at declaration.
func WithType(t loom.Type) FieldOption {
	return func(e *entity) { e.types = []loom.Type{t} }
}

// WithTypes fixes the ordered element types at declaration.
func WithTypes(types ...loom.Type) FieldOption {
	return func(e *entity) { e.types = append([]loom.Type(nil), types...) }
}

// WithDims fixes the dimensionality at declaration.
func WithDims(dims int) FieldOption {
	return func(e *entity) { e.dims = dims }
}

// WithArraySize declares the field array-valued with a fixed size.
func WithArraySize(size int) FieldOption {
	return func(e *entity) {
		e.array = true
		e.arraySize = size
	}
}

// Arrayed declares the field array-valued with the size left to be
// resolved from the ".size" synthetic param or the bound values.
func Arrayed() FieldOption {
	return func(e *entity) { e.array = true }
}

func newEntity(g *Generator, name string, kind Kind, array bool) entity {
	return entity{
		gen:       g,
		name:      name,
		kind:      kind,
		array:     array,
		arraySize: noSize,
		dims:      noSize,
	}
}

// Name returns the declared field name.
func (e *entity) Name() string { return e.name }

// Kind returns the field kind.
func (e *entity) Kind() Kind { return e.kind }

// IsArray reports whether the field is array-valued.
func (e *entity) IsArray() bool { return e.array }

// ArraySizeDefined reports whether the array size has been resolved.
func (e *entity) ArraySizeDefined() bool {
	if !e.array {
		return true
	}
	return e.arraySize != noSize
}

// ArraySize returns the resolved array size. A non-array field has
// size 1.
func (e *entity) ArraySize() (int, error) {
	if !e.array {
		return 1, nil
	}
	if e.arraySize == noSize {
		return 0, loom.NewUnspecifiedError(e.name, "array size", e.name+".size")
	}
	return e.arraySize, nil
}

// TypesDefined reports whether the element types have been resolved.
func (e *entity) TypesDefined() bool { return len(e.types) > 0 }

// Types returns the resolved element types.
func (e *entity) Types() ([]loom.Type, error) {
	if len(e.types) == 0 {
		return nil, loom.NewUnspecifiedError(e.name, "type", e.name+".type")
	}
	return e.types, nil
}

// Type returns the sole element type of a single-typed field.
func (e *entity) Type() (loom.Type, error) {
	types, err := e.Types()
	if err != nil {
		return loom.Type{}, err
	}
	if len(types) != 1 {
		panic(fmt.Sprintf("generator: internal: Type on %d-typed field %s", len(types), e.name))
	}
	return types[0], nil
}

// DimsDefined reports whether the dimensionality has been resolved.
func (e *entity) DimsDefined() bool {
	if e.kind == KindScalar {
		return true
	}
	return e.dims != noSize
}

// Dims returns the resolved dimensionality. Scalar fields have 0.
func (e *entity) Dims() (int, error) {
	if e.kind == KindScalar {
		return 0, nil
	}
	if e.dims == noSize {
		return 0, loom.NewUnspecifiedError(e.name, "dimensions", e.name+".dim")
	}
	return e.dims, nil
}

// checkMatchingTypes fixes the element types on first observation and
// rejects any later value that does not match exactly.
func (e *entity) checkMatchingTypes(types []loom.Type) error {
	if len(e.types) == 0 {
		e.types = append([]loom.Type(nil), types...)
		return nil
	}
	if len(e.types) != len(types) {
		return loom.NewMismatchError(e.name, "type",
			typeListString(e.types), typeListString(types))
	}
	for i := range types {
		if e.types[i] != types[i] {
			return loom.NewMismatchError(e.name, "type",
				typeListString(e.types), typeListString(types))
		}
	}
	return nil
}

// checkMatchingDims fixes dimensionality on first observation and
// rejects later mismatches.
func (e *entity) checkMatchingDims(dims int) error {
	if e.dims == noSize {
		e.dims = dims
		return nil
	}
	if e.dims != dims {
		return loom.NewMismatchError(e.name, "dimensions",
			strconv.Itoa(e.dims), strconv.Itoa(dims))
	}
	return nil
}

// checkMatchingArraySize fixes array size on first observation and
// rejects later mismatches.
func (e *entity) checkMatchingArraySize(size int) error {
	if e.arraySize == noSize {
		e.arraySize = size
		return nil
	}
	if e.arraySize != size {
		return loom.NewMismatchError(e.name, "array size",
			strconv.Itoa(e.arraySize), strconv.Itoa(size))
	}
	return nil
}

// setTypesFromString backs the field's ".type" synthetic param.
func (e *entity) setTypesFromString(value string) error {
	types, err := loom.ParseTypeList(value)
	if err != nil {
		return err
	}
	return e.checkMatchingTypes(types)
}

// setDimsFromString backs the field's ".dim" synthetic param.
func (e *entity) setDimsFromString(value string) error {
	dims, err := strconv.Atoi(value)
	if err != nil || dims < 0 {
		return loom.NewNameError(value, "invalid dimension count for "+e.name)
	}
	return e.checkMatchingDims(dims)
}

// setArraySizeFromString backs the field's ".size" synthetic param.
func (e *entity) setArraySizeFromString(value string) error {
	size, err := strconv.Atoi(value)
	if err != nil || size < 0 {
		return loom.NewNameError(value, "invalid array size for "+e.name)
	}
	return e.checkMatchingArraySize(size)
}

// GoType returns the Go source spelling of one element of the field,
// as used by the wrapper and metadata emitters.
func (e *entity) GoType() string {
	switch e.kind {
	case KindScalar:
		if len(e.types) == 1 {
			return e.types[0].GoType()
		}
		return "pipeline.Expr"
	case KindFunction:
		return "*pipeline.Func"
	case KindBuffer:
		return "*pipeline.Buffer"
	}
	panic(fmt.Sprintf("generator: internal: unknown kind %d", uint8(e.kind)))
}

// elementName returns the metadata name of array element i.
func (e *entity) elementName(i int) string {
	if !e.array {
		return e.name
	}
	return fmt.Sprintf("%s_%d", e.name, i)
}

// verifyInternals asserts the entity's bound values agree with its
// fixed properties. Violations are defects in the framework or in the
// generator's build functions, not recoverable configuration errors.
func (e *entity) verifyInternals() {
	if e.kind == KindScalar {
		for _, x := range e.exprs {
			if !x.Defined() {
				panic("generator: internal: undefined value bound to " + e.name)
			}
			if len(e.types) == 1 && x.Type() != e.types[0] {
				panic(fmt.Sprintf("generator: internal: value of type %s bound to %s of type %s",
					x.Type(), e.name, e.types[0]))
			}
		}
		if e.arraySize != noSize && len(e.exprs) > 0 && len(e.exprs) != e.arraySize {
			panic(fmt.Sprintf("generator: internal: %d values bound to %s of array size %d",
				len(e.exprs), e.name, e.arraySize))
		}
		return
	}
	for _, f := range e.funcs {
		if f == nil {
			panic("generator: internal: nil function bound to " + e.name)
		}
		if !f.Defined() {
			continue
		}
		if e.dims != noSize && f.Dimensions() != e.dims {
			panic(fmt.Sprintf("generator: internal: function of %d dimensions bound to %s of %d",
				f.Dimensions(), e.name, e.dims))
		}
		if len(e.types) > 0 {
			got := f.OutputTypes()
			if len(got) != len(e.types) {
				panic(fmt.Sprintf("generator: internal: function with %d outputs bound to %s with %d types",
					len(got), e.name, len(e.types)))
			}
			for i := range got {
				if got[i] != e.types[i] {
					panic(fmt.Sprintf("generator: internal: function output type %s bound to %s expecting %s",
						got[i], e.name, e.types[i]))
				}
			}
		}
	}
	if e.arraySize != noSize && len(e.funcs) > 0 && len(e.funcs) != e.arraySize {
		panic(fmt.Sprintf("generator: internal: %d functions bound to %s of array size %d",
			len(e.funcs), e.name, e.arraySize))
	}
}

func typeListString(types []loom.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
