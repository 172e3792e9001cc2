// interpreter_ops.go: PRIVATE primitive operations shared by both engines.
//
// The evaluator (interpreter_exec.go) and the SECD machine (vm.go) call the
// same functions here for CAR, CDR, CONS, ATOM, EQUAL, ADD, SUB, MUL, DIVE,
// REM and LEQ, so the two pipelines cannot disagree on the shared subset of
// the language. Operands arrive already evaluated; where/expr only label
// the error.
//
// Numbers are unsigned 64-bit. Results that would leave that range fail with
// ArithmeticOverflow rather than wrapping.

package lispkit

import "math/bits"

////////////////////////////////////////////////////////////////////////////////
//                               UNARY PRIMITIVES
////////////////////////////////////////////////////////////////////////////////

func applyUnary(b Builtin, x Node, where string, expr Node) (Node, error) {
	switch b {
	case BCar:
		if !x.IsList() {
			return Nil, newError(TypeMismatch, where, expr, "argument should be a list, got %s", x.Tag)
		}
		return x.Head(), nil
	case BCdr:
		if !x.IsList() {
			return Nil, newError(TypeMismatch, where, expr, "argument should be a list, got %s", x.Tag)
		}
		if x.Len() < 2 {
			return Nil, newError(TypeMismatch, where, expr, "argument should have at least 2 elements, got %d", x.Len())
		}
		return x.Tail(), nil
	case BAtom:
		return Bool(!x.IsList()), nil
	}
	return Nil, newError(MachineCorruption, where, expr, "%s is not a unary primitive", b)
}

////////////////////////////////////////////////////////////////////////////////
//                               BINARY PRIMITIVES
////////////////////////////////////////////////////////////////////////////////

// applyBinary computes b(x, y) where x is the left operand as written.
// For CONS, x is the head and y the list it is prepended to.
func applyBinary(b Builtin, x, y Node, where string, expr Node) (Node, error) {
	switch b {
	case BCons:
		if !y.IsList() {
			return Nil, newError(TypeMismatch, where, expr, "second argument should be a list, got %s", y.Tag)
		}
		return y.Cons(x), nil
	case BEqual:
		return equalAtoms(x, y, where, expr)
	case BAdd, BSub, BMul, BDive, BRem, BLeq:
		if !x.IsNumber() || !y.IsNumber() {
			return Nil, newError(TypeMismatch, where, expr, "arguments should be numbers, got %s and %s", x.Tag, y.Tag)
		}
		return arith(b, x.Number(), y.Number(), where, expr)
	}
	return Nil, newError(MachineCorruption, where, expr, "%s is not a binary primitive", b)
}

// equalAtoms compares two atoms. Two lists cannot be compared; a list
// against an atom, or atoms of different variants, is FALSE.
func equalAtoms(x, y Node, where string, expr Node) (Node, error) {
	xl, yl := x.IsList(), y.IsList()
	switch {
	case xl && yl:
		return Nil, newError(TypeMismatch, where, expr, "cannot compare two lists")
	case xl || yl:
		return False, nil
	case x.Tag != y.Tag:
		return False, nil
	case x.IsNumber():
		return Bool(x.Number() == y.Number()), nil
	default:
		return Bool(x.Text() == y.Text()), nil
	}
}

func arith(b Builtin, x, y uint64, where string, expr Node) (Node, error) {
	switch b {
	case BAdd:
		s, carry := bits.Add64(x, y, 0)
		if carry != 0 {
			return Nil, newError(ArithmeticOverflow, where, expr, "%d + %d overflows", x, y)
		}
		return Num(s), nil
	case BSub:
		d, borrow := bits.Sub64(x, y, 0)
		if borrow != 0 {
			return Nil, newError(ArithmeticOverflow, where, expr, "%d - %d is negative", x, y)
		}
		return Num(d), nil
	case BMul:
		hi, lo := bits.Mul64(x, y)
		if hi != 0 {
			return Nil, newError(ArithmeticOverflow, where, expr, "%d * %d overflows", x, y)
		}
		return Num(lo), nil
	case BDive:
		if y == 0 {
			return Nil, newError(DivideByZero, where, expr, "division by zero")
		}
		return Num(x / y), nil
	case BRem:
		if y == 0 {
			return Nil, newError(DivideByZero, where, expr, "remainder by zero")
		}
		return Num(x % y), nil
	default: // BLeq
		return Bool(x <= y), nil
	}
}
