package interp

import (
	"math"
	"strings"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// comparisonEpsilon is the tolerance used for numeric equality.
const comparisonEpsilon = 1e-9

// floatsEqual compares two doubles with the fixed comparison epsilon.
func floatsEqual(a, b float64) bool {
	return math.Abs(a-b) < comparisonEpsilon
}

func bothInt(l, r Value) (int64, int64, bool) {
	li, ok := l.(*IntValue)
	if !ok {
		return 0, 0, false
	}
	ri, ok := r.(*IntValue)
	if !ok {
		return 0, 0, false
	}
	return li.Value, ri.Value, ok
}

// floorMod returns the mathematical floor modulo: the result carries the sign
// of the divisor.
func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func floorModFloat(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// opTypeError builds the standard unsupported-operation diagnostic.
func opTypeError(op ast.Operator, l, r Value, pos lexer.Position) *errors.Error {
	return errors.Newf(errors.TypeError, pos, "Unsupported operation: %s %s %s",
		l.TypeInfo().Name, op, r.TypeInfo().Name)
}

// evalBinaryNative applies the native semantics of a non-assignment binary
// operator. Operator overloading has already been dispatched by the caller.
//
// Int arithmetic wraps on overflow (two's complement); see DESIGN.md.
func evalBinaryNative(op ast.Operator, l, r Value, pos lexer.Position) (Value, *errors.Error) {
	switch op {
	case ast.OpAdd:
		if li, ri, ok := bothInt(l, r); ok {
			return &IntValue{Value: li + ri}, nil
		}
		if ln, ok := numericOf(l); ok {
			if rn, ok := numericOf(r); ok {
				return &DoubleValue{Value: ln + rn}, nil
			}
		}
		if ls, ok := l.(*StringValue); ok {
			if rs, ok := r.(*StringValue); ok {
				return &StringValue{Value: ls.Value + rs.Value}, nil
			}
		}
		return nil, opTypeError(op, l, r, pos)

	case ast.OpSub:
		if li, ri, ok := bothInt(l, r); ok {
			return &IntValue{Value: li - ri}, nil
		}
		if ln, ok := numericOf(l); ok {
			if rn, ok := numericOf(r); ok {
				return &DoubleValue{Value: ln - rn}, nil
			}
		}
		return nil, opTypeError(op, l, r, pos)

	case ast.OpMul:
		if li, ri, ok := bothInt(l, r); ok {
			return &IntValue{Value: li * ri}, nil
		}
		if ln, ok := numericOf(l); ok {
			if rn, ok := numericOf(r); ok {
				return &DoubleValue{Value: ln * rn}, nil
			}
		}
		if ls, ok := l.(*StringValue); ok {
			if ri, ok := r.(*IntValue); ok {
				if ri.Value <= 0 {
					return &StringValue{Value: ""}, nil
				}
				return &StringValue{Value: strings.Repeat(ls.Value, int(ri.Value))}, nil
			}
		}
		return nil, opTypeError(op, l, r, pos)

	case ast.OpDiv:
		ln, lok := numericOf(l)
		rn, rok := numericOf(r)
		if !lok || !rok {
			return nil, opTypeError(op, l, r, pos)
		}
		if rn == 0 {
			return nil, errors.New(errors.ValueError, "Division by zero", pos)
		}
		if li, ri, ok := bothInt(l, r); ok && li%ri == 0 {
			return &IntValue{Value: li / ri}, nil
		}
		return &DoubleValue{Value: ln / rn}, nil

	case ast.OpMod:
		if li, ri, ok := bothInt(l, r); ok {
			if ri == 0 {
				return nil, errors.New(errors.ValueError, "Modulo by zero", pos)
			}
			return &IntValue{Value: floorMod(li, ri)}, nil
		}
		ln, lok := numericOf(l)
		rn, rok := numericOf(r)
		if !lok || !rok {
			return nil, opTypeError(op, l, r, pos)
		}
		if rn == 0 {
			return nil, errors.New(errors.ValueError, "Modulo by zero", pos)
		}
		return &DoubleValue{Value: floorModFloat(ln, rn)}, nil

	case ast.OpPow:
		ln, lok := numericOf(l)
		rn, rok := numericOf(r)
		if !lok || !rok {
			return nil, opTypeError(op, l, r, pos)
		}
		result := math.Pow(ln, rn)
		if _, _, ok := bothInt(l, r); ok && !math.IsInf(result, 0) && !math.IsNaN(result) {
			return &IntValue{Value: int64(result)}, nil
		}
		return &DoubleValue{Value: result}, nil

	case ast.OpAnd, ast.OpOr:
		lb, lok := l.(*BoolValue)
		rb, rok := r.(*BoolValue)
		if !lok || !rok {
			return nil, errors.Newf(errors.TypeError, pos,
				"Logical %s requires Bool operands, got '%s' and '%s'",
				op, l.TypeInfo().Name, r.TypeInfo().Name)
		}
		if op == ast.OpAnd {
			return boolValue(lb.Value && rb.Value), nil
		}
		return boolValue(lb.Value || rb.Value), nil

	case ast.OpEqual:
		return boolValue(valuesEqual(l, r)), nil

	case ast.OpNotEqual:
		return boolValue(!valuesEqual(l, r)), nil

	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		return compareOrdered(op, l, r, pos)

	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShiftLeft, ast.OpShiftRight:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, errors.Newf(errors.TypeError, pos,
				"Bitwise %s requires Int operands, got '%s' and '%s'",
				op, l.TypeInfo().Name, r.TypeInfo().Name)
		}
		switch op {
		case ast.OpBitAnd:
			return &IntValue{Value: li & ri}, nil
		case ast.OpBitOr:
			return &IntValue{Value: li | ri}, nil
		case ast.OpBitXor:
			return &IntValue{Value: li ^ ri}, nil
		case ast.OpShiftLeft:
			return &IntValue{Value: li << uint64(ri)}, nil
		default:
			return &IntValue{Value: li >> uint64(ri)}, nil
		}
	}

	return nil, errors.Newf(errors.UnsupportedOpError, pos, "Unsupported operator '%s' for binary expression", op)
}

// compareOrdered applies <, <=, >, >= to numbers or strings.
func compareOrdered(op ast.Operator, l, r Value, pos lexer.Position) (Value, *errors.Error) {
	if ln, ok := numericOf(l); ok {
		if rn, ok := numericOf(r); ok {
			eq := floatsEqual(ln, rn)
			switch op {
			case ast.OpLess:
				return boolValue(!eq && ln < rn), nil
			case ast.OpLessEqual:
				return boolValue(eq || ln < rn), nil
			case ast.OpGreater:
				return boolValue(!eq && ln > rn), nil
			default:
				return boolValue(eq || ln > rn), nil
			}
		}
	}
	if ls, ok := l.(*StringValue); ok {
		if rs, ok := r.(*StringValue); ok {
			switch op {
			case ast.OpLess:
				return boolValue(ls.Value < rs.Value), nil
			case ast.OpLessEqual:
				return boolValue(ls.Value <= rs.Value), nil
			case ast.OpGreater:
				return boolValue(ls.Value > rs.Value), nil
			default:
				return boolValue(ls.Value >= rs.Value), nil
			}
		}
	}
	return nil, errors.Newf(errors.TypeError, pos, "Unsupported comparison: %s %s %s",
		l.TypeInfo().Name, op, r.TypeInfo().Name)
}

// evalUnaryNative applies the native semantics of a unary operator.
func evalUnaryNative(op ast.Operator, v Value, pos lexer.Position) (Value, *errors.Error) {
	switch op {
	case ast.OpNot:
		b, ok := v.(*BoolValue)
		if !ok {
			return nil, errors.Newf(errors.TypeError, pos,
				"Logical NOT requires Bool, got '%s'", v.TypeInfo().Name)
		}
		return boolValue(!b.Value), nil

	case ast.OpSub:
		switch v := v.(type) {
		case *IntValue:
			return &IntValue{Value: -v.Value}, nil
		case *DoubleValue:
			return &DoubleValue{Value: -v.Value}, nil
		}
		return nil, errors.Newf(errors.TypeError, pos,
			"Unary minus requires Int or Double, got '%s'", v.TypeInfo().Name)

	case ast.OpBitNot:
		i, ok := v.(*IntValue)
		if !ok {
			return nil, errors.Newf(errors.TypeError, pos,
				"Bitwise NOT requires Int, got '%s'", v.TypeInfo().Name)
		}
		return &IntValue{Value: ^i.Value}, nil
	}

	return nil, errors.Newf(errors.UnsupportedOpError, pos, "Unsupported operator '%s' for unary expression", op)
}

// compoundBase returns the underlying operator of a compound assignment.
// `^=` parses but is not wired; it reports UnsupportedOpError (see DESIGN.md).
func compoundBase(op ast.Operator) (ast.Operator, bool) {
	switch op {
	case ast.OpAddAssign:
		return ast.OpAdd, true
	case ast.OpSubAssign:
		return ast.OpSub, true
	case ast.OpMulAssign:
		return ast.OpMul, true
	case ast.OpDivAssign:
		return ast.OpDiv, true
	case ast.OpModAssign:
		return ast.OpMod, true
	default:
		return ast.OpNone, false
	}
}
