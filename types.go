package loom

import (
	"fmt"
	"strings"
)

// TypeCode classifies the fundamental kind of a scalar type.
type TypeCode uint8

// The closed set of type codes.
const (
	TypeInt TypeCode = iota
	TypeUInt
	TypeFloat
	TypeHandle
)

// String returns the code name as used in emitted metadata.
func (c TypeCode) String() string {
	switch c {
	case TypeInt:
		return "int"
	case TypeUInt:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeHandle:
		return "handle"
	default:
		panic(fmt.Sprintf("loom: internal: unknown type code %d", uint8(c)))
	}
}

// Type is a scalar element type: a type code plus a bit width.
// The zero value is not a valid type; use the constructors below.
type Type struct {
	Code  TypeCode
	Bits  int
	Lanes int
}

// Int returns a signed integer type with the given bit width.
func Int(bits int) Type { return Type{Code: TypeInt, Bits: bits, Lanes: 1} }

// UInt returns an unsigned integer type with the given bit width.
func UInt(bits int) Type { return Type{Code: TypeUInt, Bits: bits, Lanes: 1} }

// Float returns a floating-point type with the given bit width.
func Float(bits int) Type { return Type{Code: TypeFloat, Bits: bits, Lanes: 1} }

// Bool returns the boolean type, represented as a 1-bit unsigned integer.
func Bool() Type { return Type{Code: TypeUInt, Bits: 1, Lanes: 1} }

// Handle returns an opaque pointer type.
func Handle() Type { return Type{Code: TypeHandle, Bits: 64, Lanes: 1} }

// Defined reports whether t is a constructed type rather than the zero value.
func (t Type) Defined() bool { return t.Lanes != 0 }

// String returns the enum-map spelling of the type ("int32", "float64", ...).
func (t Type) String() string {
	if t.Code == TypeUInt && t.Bits == 1 {
		return "bool"
	}
	if t.Code == TypeHandle {
		return "handle"
	}
	return fmt.Sprintf("%s%d", t.Code, t.Bits)
}

// GoType returns the Go source spelling of the type, as used by the
// wrapper emitter and the c-type metadata key.
func (t Type) GoType() string {
	switch {
	case t.Code == TypeUInt && t.Bits == 1:
		return "bool"
	case t.Code == TypeInt:
		return fmt.Sprintf("int%d", t.Bits)
	case t.Code == TypeUInt:
		return fmt.Sprintf("uint%d", t.Bits)
	case t.Code == TypeFloat && t.Bits == 32:
		return "float32"
	case t.Code == TypeFloat && t.Bits == 64:
		return "float64"
	case t.Code == TypeHandle:
		return "uintptr"
	}
	panic(fmt.Sprintf("loom: internal: no Go type for %v", t))
}

// SourceExpr returns the loom source expression that constructs the
// type, as used by the name metadata key ("loom.Int(32)", ...).
func (t Type) SourceExpr() string {
	switch t.Code {
	case TypeInt:
		return fmt.Sprintf("loom.Int(%d)", t.Bits)
	case TypeUInt:
		if t.Bits == 1 {
			return "loom.Bool()"
		}
		return fmt.Sprintf("loom.UInt(%d)", t.Bits)
	case TypeFloat:
		return fmt.Sprintf("loom.Float(%d)", t.Bits)
	case TypeHandle:
		return "loom.Handle()"
	}
	panic(fmt.Sprintf("loom: internal: no source expression for %v", t))
}

// typeEnumMap is the set of types settable through ".type" params and
// type-list strings. Handle types are deliberately excluded.
var typeEnumMap = map[string]Type{
	"bool":    Bool(),
	"int8":    Int(8),
	"int16":   Int(16),
	"int32":   Int(32),
	"int64":   Int(64),
	"uint8":   UInt(8),
	"uint16":  UInt(16),
	"uint32":  UInt(32),
	"uint64":  UInt(64),
	"float32": Float(32),
	"float64": Float(64),
}

// TypeByName resolves a type-enum name to its Type.
func TypeByName(name string) (Type, bool) {
	t, ok := typeEnumMap[name]
	return t, ok
}

// ParseTypeList parses a comma-separated list of type-enum names.
func ParseTypeList(s string) ([]Type, error) {
	parts := strings.Split(s, ",")
	types := make([]Type, 0, len(parts))
	for _, p := range parts {
		t, ok := typeEnumMap[p]
		if !ok {
			return nil, NewNameError(p, "type not found")
		}
		types = append(types, t)
	}
	return types, nil
}
