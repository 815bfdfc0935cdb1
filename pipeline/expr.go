package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/loom"
)

type exprOp uint8

const (
	opUndef exprOp = iota
	opIntConst
	opFloatConst
	opVar
	opParam
	opParamCall
	opFuncCall
	opAdd
	opSub
	opMul
	opDiv
)

// Expr is a scalar expression. The zero value is the undefined
// expression, which is a legal placeholder (e.g. an unset constraint).
type Expr struct {
	op    exprOp
	typ   loom.Type
	ival  int64
	fval  float64
	name  string
	param *Parameter
	fn    *Func
	args  []Expr
}

// IntConst returns a constant of the given integer (or bool) type.
func IntConst(t loom.Type, v int64) Expr {
	return Expr{op: opIntConst, typ: t, ival: v}
}

// FloatConst returns a constant of the given floating-point type.
func FloatConst(t loom.Type, v float64) Expr {
	return Expr{op: opFloatConst, typ: t, fval: v}
}

// BoolConst returns a boolean constant.
func BoolConst(v bool) Expr {
	var i int64
	if v {
		i = 1
	}
	return Expr{op: opIntConst, typ: loom.Bool(), ival: i}
}

// Const returns a constant expression for a Go scalar value.
func Const(v any) Expr {
	switch x := v.(type) {
	case bool:
		return BoolConst(x)
	case int:
		return IntConst(loom.Int(32), int64(x))
	case int8:
		return IntConst(loom.Int(8), int64(x))
	case int16:
		return IntConst(loom.Int(16), int64(x))
	case int32:
		return IntConst(loom.Int(32), int64(x))
	case int64:
		return IntConst(loom.Int(64), x)
	case uint8:
		return IntConst(loom.UInt(8), int64(x))
	case uint16:
		return IntConst(loom.UInt(16), int64(x))
	case uint32:
		return IntConst(loom.UInt(32), int64(x))
	case uint64:
		return IntConst(loom.UInt(64), int64(x))
	case float32:
		return FloatConst(loom.Float(32), float64(x))
	case float64:
		return FloatConst(loom.Float(64), x)
	default:
		panic(fmt.Sprintf("pipeline: internal: no constant for %T", v))
	}
}

// Var returns a reference to a 32-bit index variable.
func Var(name string) Expr {
	return Expr{op: opVar, typ: loom.Int(32), name: name}
}

// ParamRef returns a reference to a scalar parameter's runtime value.
func ParamRef(p *Parameter) Expr {
	if p == nil || p.buffer {
		panic("pipeline: internal: ParamRef requires a scalar parameter")
	}
	return Expr{op: opParam, typ: p.typ, param: p, name: p.name}
}

// ParamCall returns an access into a buffer parameter at the given
// index expressions.
func ParamCall(p *Parameter, args ...Expr) Expr {
	if p == nil || !p.buffer {
		panic("pipeline: internal: ParamCall requires a buffer parameter")
	}
	return Expr{op: opParamCall, typ: p.typ, param: p, name: p.name, args: args}
}

// Call returns a call into another func at the given index expressions.
func Call(f *Func, args ...Expr) Expr {
	t := loom.Int(32)
	if len(f.values) > 0 {
		t = f.values[0].Type()
	}
	return Expr{op: opFuncCall, typ: t, fn: f, name: f.name, args: args}
}

// Add returns a + b. The result adopts a's type.
func Add(a, b Expr) Expr { return binary(opAdd, a, b) }

// Sub returns a - b. The result adopts a's type.
func Sub(a, b Expr) Expr { return binary(opSub, a, b) }

// Mul returns a * b. The result adopts a's type.
func Mul(a, b Expr) Expr { return binary(opMul, a, b) }

// Div returns a / b. The result adopts a's type.
func Div(a, b Expr) Expr { return binary(opDiv, a, b) }

func binary(op exprOp, a, b Expr) Expr {
	if !a.Defined() || !b.Defined() {
		panic("pipeline: internal: arithmetic on undefined expression")
	}
	return Expr{op: op, typ: a.typ, args: []Expr{a, b}}
}

// Defined reports whether e holds an expression.
func (e Expr) Defined() bool { return e.op != opUndef }

// Type returns the expression's scalar type.
func (e Expr) Type() loom.Type { return e.typ }

// String renders the expression for error messages.
func (e Expr) String() string {
	switch e.op {
	case opUndef:
		return "(undefined)"
	case opIntConst:
		if e.typ == loom.Bool() {
			return strconv.FormatBool(e.ival != 0)
		}
		return strconv.FormatInt(e.ival, 10)
	case opFloatConst:
		return strconv.FormatFloat(e.fval, 'g', -1, 64)
	case opVar, opParam:
		return e.name
	case opParamCall, opFuncCall:
		parts := make([]string, len(e.args))
		for i, a := range e.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.name, strings.Join(parts, ", "))
	case opAdd:
		return fmt.Sprintf("(%s + %s)", e.args[0], e.args[1])
	case opSub:
		return fmt.Sprintf("(%s - %s)", e.args[0], e.args[1])
	case opMul:
		return fmt.Sprintf("(%s*%s)", e.args[0], e.args[1])
	case opDiv:
		return fmt.Sprintf("(%s/%s)", e.args[0], e.args[1])
	}
	return "(invalid)"
}

// Equal reports structural equality of two expressions. Parameters and
// funcs compare by identity.
func Equal(a, b Expr) bool {
	if a.op != b.op {
		return false
	}
	switch a.op {
	case opUndef:
		return true
	case opIntConst:
		return a.typ == b.typ && a.ival == b.ival
	case opFloatConst:
		return a.typ == b.typ && a.fval == b.fval
	case opVar:
		return a.name == b.name
	case opParam:
		return a.param == b.param
	case opParamCall:
		if a.param != b.param {
			return false
		}
	case opFuncCall:
		if a.fn != b.fn {
			return false
		}
	}
	if len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if !Equal(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

// ProveEqual reports whether a and b can be proven equal. Two undefined
// expressions are equal for this purpose; otherwise both are constant-
// folded and compared structurally.
func ProveEqual(a, b Expr) bool {
	if !a.Defined() && !b.Defined() {
		return true
	}
	if !a.Defined() || !b.Defined() {
		return false
	}
	return Equal(fold(a), fold(b))
}

// fold performs constant folding over arithmetic nodes.
func fold(e Expr) Expr {
	switch e.op {
	case opAdd, opSub, opMul, opDiv:
		a, b := fold(e.args[0]), fold(e.args[1])
		if a.op == opIntConst && b.op == opIntConst {
			var v int64
			switch e.op {
			case opAdd:
				v = a.ival + b.ival
			case opSub:
				v = a.ival - b.ival
			case opMul:
				v = a.ival * b.ival
			case opDiv:
				if b.ival == 0 {
					return Expr{op: e.op, typ: e.typ, args: []Expr{a, b}}
				}
				v = a.ival / b.ival
			}
			return IntConst(e.typ, v)
		}
		if a.op == opFloatConst && b.op == opFloatConst {
			var v float64
			switch e.op {
			case opAdd:
				v = a.fval + b.fval
			case opSub:
				v = a.fval - b.fval
			case opMul:
				v = a.fval * b.fval
			case opDiv:
				v = a.fval / b.fval
			}
			return FloatConst(e.typ, v)
		}
		return Expr{op: e.op, typ: e.typ, args: []Expr{a, b}}
	default:
		return e
	}
}

// evalEnv carries variable bindings during realization.
type evalEnv struct {
	vars map[string]int64
}

type value struct {
	i       int64
	f       float64
	isFloat bool
}

func (v value) toInt() int64 {
	if v.isFloat {
		return int64(v.f)
	}
	return v.i
}

func (v value) toFloat() float64 {
	if v.isFloat {
		return v.f
	}
	return float64(v.i)
}

func (e Expr) eval(env evalEnv) (value, error) {
	switch e.op {
	case opUndef:
		return value{}, fmt.Errorf("pipeline: cannot evaluate undefined expression")
	case opIntConst:
		return value{i: e.ival}, nil
	case opFloatConst:
		return value{f: e.fval, isFloat: true}, nil
	case opVar:
		v, ok := env.vars[e.name]
		if !ok {
			return value{}, fmt.Errorf("pipeline: unbound variable %q", e.name)
		}
		return value{i: v}, nil
	case opParam:
		if !e.param.scalar.Defined() {
			return value{}, fmt.Errorf("pipeline: parameter %q has no bound value", e.name)
		}
		return e.param.scalar.eval(env)
	case opParamCall:
		if e.param.bound == nil {
			return value{}, fmt.Errorf("pipeline: buffer parameter %q has no bound data", e.name)
		}
		idx := make([]int, len(e.args))
		for i, arg := range e.args {
			av, err := arg.eval(env)
			if err != nil {
				return value{}, err
			}
			idx[i] = int(av.toInt())
		}
		if e.typ.Code == loom.TypeFloat {
			return value{f: e.param.bound.Float(idx...), isFloat: true}, nil
		}
		return value{i: e.param.bound.Int(idx...)}, nil
	case opFuncCall:
		if !e.fn.Defined() {
			return value{}, fmt.Errorf("pipeline: func %q is not defined", e.name)
		}
		inner := evalEnv{vars: make(map[string]int64, len(e.fn.args))}
		for i, arg := range e.fn.args {
			av, err := e.args[i].eval(env)
			if err != nil {
				return value{}, err
			}
			inner.vars[arg] = av.toInt()
		}
		return e.fn.values[0].eval(inner)
	case opAdd, opSub, opMul, opDiv:
		a, err := e.args[0].eval(env)
		if err != nil {
			return value{}, err
		}
		b, err := e.args[1].eval(env)
		if err != nil {
			return value{}, err
		}
		if a.isFloat || b.isFloat {
			x, y := a.toFloat(), b.toFloat()
			var v float64
			switch e.op {
			case opAdd:
				v = x + y
			case opSub:
				v = x - y
			case opMul:
				v = x * y
			case opDiv:
				v = x / y
			}
			return value{f: v, isFloat: true}, nil
		}
		x, y := a.i, b.i
		var v int64
		switch e.op {
		case opAdd:
			v = x + y
		case opSub:
			v = x - y
		case opMul:
			v = x * y
		case opDiv:
			if y == 0 {
				return value{}, fmt.Errorf("pipeline: division by zero")
			}
			v = x / y
		}
		return value{i: v}, nil
	}
	return value{}, fmt.Errorf("pipeline: invalid expression")
}
