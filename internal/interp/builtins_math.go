package interp

import (
	"math"

	"github.com/puqiar/go-fig/internal/errors"
)

// mathArg reads one numeric argument as float64.
func mathArg(name string, args []Value, i int) (float64, error) {
	if n, ok := numericOf(args[i]); ok {
		return n, nil
	}
	return 0, errors.NewRuntime(errors.TypeError,
		name+" expects a numeric argument, got '"+args[i].TypeInfo().Name+"'")
}

// unaryMath builds a one-argument math builtin.
func unaryMath(name string, f func(float64) float64) builtinEntry {
	return builtinEntry{1, func(args []Value) (Value, error) {
		x, err := mathArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return &DoubleValue{Value: f(x)}, nil
	}}
}

// binaryMath builds a two-argument math builtin.
func binaryMath(name string, f func(float64, float64) float64) builtinEntry {
	return builtinEntry{2, func(args []Value) (Value, error) {
		x, err := mathArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		y, err := mathArg(name, args, 1)
		if err != nil {
			return nil, err
		}
		return &DoubleValue{Value: f(x, y)}, nil
	}}
}

// mathBuiltins mirrors the common numeric math library.
func mathBuiltins() map[string]builtinEntry {
	return map[string]builtinEntry{
		"__fmath_acos":  unaryMath("__fmath_acos", math.Acos),
		"__fmath_acosh": unaryMath("__fmath_acosh", math.Acosh),
		"__fmath_asin":  unaryMath("__fmath_asin", math.Asin),
		"__fmath_asinh": unaryMath("__fmath_asinh", math.Asinh),
		"__fmath_atan":  unaryMath("__fmath_atan", math.Atan),
		"__fmath_atan2": binaryMath("__fmath_atan2", math.Atan2),
		"__fmath_atanh": unaryMath("__fmath_atanh", math.Atanh),
		"__fmath_ceil":  unaryMath("__fmath_ceil", math.Ceil),
		"__fmath_cos":   unaryMath("__fmath_cos", math.Cos),
		"__fmath_cosh":  unaryMath("__fmath_cosh", math.Cosh),
		"__fmath_exp":   unaryMath("__fmath_exp", math.Exp),
		"__fmath_expm1": unaryMath("__fmath_expm1", math.Expm1),
		"__fmath_fabs":  unaryMath("__fmath_fabs", math.Abs),
		"__fmath_floor": unaryMath("__fmath_floor", math.Floor),
		"__fmath_fmod":  binaryMath("__fmath_fmod", math.Mod),
		"__fmath_hypot": binaryMath("__fmath_hypot", math.Hypot),
		"__fmath_log":   unaryMath("__fmath_log", math.Log),
		"__fmath_log10": unaryMath("__fmath_log10", math.Log10),
		"__fmath_log1p": unaryMath("__fmath_log1p", math.Log1p),
		"__fmath_log2":  unaryMath("__fmath_log2", math.Log2),
		"__fmath_sin":   unaryMath("__fmath_sin", math.Sin),
		"__fmath_sinh":  unaryMath("__fmath_sinh", math.Sinh),
		"__fmath_sqrt":  unaryMath("__fmath_sqrt", math.Sqrt),
		"__fmath_tan":   unaryMath("__fmath_tan", math.Tan),
		"__fmath_tanh":  unaryMath("__fmath_tanh", math.Tanh),
		"__fmath_trunc": unaryMath("__fmath_trunc", math.Trunc),

		// frexp returns [fraction, exponent]
		"__fmath_frexp": {1, func(args []Value) (Value, error) {
			x, err := mathArg("__fmath_frexp", args, 0)
			if err != nil {
				return nil, err
			}
			frac, exp := math.Frexp(x)
			return &ListValue{Elements: []Value{
				&DoubleValue{Value: frac},
				&IntValue{Value: int64(exp)},
			}}, nil
		}},

		// gcd of two Ints
		"__fmath_gcd": {2, func(args []Value) (Value, error) {
			a, aok := args[0].(*IntValue)
			b, bok := args[1].(*IntValue)
			if !aok || !bok {
				return nil, errors.NewRuntime(errors.TypeError, "__fmath_gcd expects Int arguments")
			}
			x, y := a.Value, b.Value
			if x < 0 {
				x = -x
			}
			if y < 0 {
				y = -y
			}
			for y != 0 {
				x, y = y, x%y
			}
			return &IntValue{Value: x}, nil
		}},

		// epsilon equality of two numbers
		"__fmath_isequal": {2, func(args []Value) (Value, error) {
			x, err := mathArg("__fmath_isequal", args, 0)
			if err != nil {
				return nil, err
			}
			y, err := mathArg("__fmath_isequal", args, 1)
			if err != nil {
				return nil, err
			}
			return boolValue(floatsEqual(x, y)), nil
		}},
	}
}
