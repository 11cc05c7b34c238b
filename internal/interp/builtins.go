package interp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
)

// registerBuiltinValues seeds the builtin values: null, true, false, the
// builtin type objects, and the Error interface.
func (in *Interpreter) registerBuiltinValues(env *Environment) {
	define := func(name string, v Value) {
		env.Define(name, v.TypeInfo(), ast.AccessConst, v)
	}

	define("null", Null)
	define("true", True)
	define("false", False)

	for _, t := range []TypeInfo{
		TypeAny, TypeNull, TypeInt, TypeDouble, TypeBool, TypeString,
		TypeFunction, TypeList, TypeMap,
	} {
		define(t.Name, &StructTypeValue{Type: t, Builtin: true})
	}

	noParams := ast.Parameters{}
	define("Error", &InterfaceValue{
		Type: in.errorType,
		Methods: []ast.InterfaceMethod{
			{Name: "toString", Params: noParams, ReturnType: "String"},
			{Name: "getErrorClass", Params: noParams, ReturnType: "String"},
			{Name: "getErrorMessage", Params: noParams, ReturnType: "String"},
		},
	})
}

// registerBuiltinFunctions seeds the builtin function table into env. Also
// invoked by `import _builtins` so module environments (which have no parent)
// can reach the table.
func (in *Interpreter) registerBuiltinFunctions(env *Environment) {
	for name, entry := range in.builtinFunctions() {
		if env.ContainsInThisScope(name) {
			continue
		}
		fn := &FunctionValue{
			ID:      in.nextFunctionID(),
			Name:    name,
			Kind:    FuncBuiltin,
			Arity:   entry.arity,
			Builtin: entry.fn,
		}
		env.Define(name, TypeFunction, ast.AccessConst, fn)
	}
}

// builtinEntry is one builtin function: fixed arity (-1 for variadic) plus
// host code.
type builtinEntry struct {
	arity int
	fn    BuiltinFunc
}

// builtinFunctions builds the builtin function table. The closures capture
// the interpreter so stdio goes through its configured streams.
func (in *Interpreter) builtinFunctions() map[string]builtinEntry {
	table := map[string]builtinEntry{
		"__fstdout_print": {-1, func(args []Value) (Value, error) {
			for _, arg := range args {
				fmt.Fprint(in.output, arg.String())
			}
			return &IntValue{Value: int64(len(args))}, nil
		}},
		"__fstdout_println": {-1, func(args []Value) (Value, error) {
			for _, arg := range args {
				fmt.Fprint(in.output, arg.String())
			}
			fmt.Fprint(in.output, "\n")
			return &IntValue{Value: int64(len(args))}, nil
		}},
		"__fstdin_read": {0, func(args []Value) (Value, error) {
			var token string
			if _, err := fmt.Fscan(in.input, &token); err != nil {
				return &StringValue{Value: ""}, nil
			}
			return &StringValue{Value: token}, nil
		}},
		"__fstdin_readln": {0, func(args []Value) (Value, error) {
			line, err := in.input.ReadString('\n')
			if err != nil && line == "" {
				return &StringValue{Value: ""}, nil
			}
			line = strings.TrimRight(line, "\r\n")
			return &StringValue{Value: line}, nil
		}},

		"__fvalue_type": {1, func(args []Value) (Value, error) {
			return &StringValue{Value: args[0].TypeInfo().Name}, nil
		}},
		"__fvalue_int_parse": {1, func(args []Value) (Value, error) {
			s, ok := args[0].(*StringValue)
			if !ok {
				return nil, errors.NewRuntime(errors.RuntimeError, "__fvalue_int_parse expects a String")
			}
			v, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
			if err != nil {
				return nil, errors.NewRuntime(errors.RuntimeError, "Invalid int string for parsing: "+s.Value)
			}
			return &IntValue{Value: v}, nil
		}},
		"__fvalue_int_from": {1, func(args []Value) (Value, error) {
			switch v := args[0].(type) {
			case *DoubleValue:
				return &IntValue{Value: int64(v.Value)}, nil
			case *BoolValue:
				return &IntValue{Value: btoi(v.Value)}, nil
			}
			return nil, errors.NewRuntime(errors.RuntimeError,
				"Type '"+args[0].TypeInfo().Name+"' cannot be converted to int")
		}},
		"__fvalue_double_parse": {1, func(args []Value) (Value, error) {
			s, ok := args[0].(*StringValue)
			if !ok {
				return nil, errors.NewRuntime(errors.RuntimeError, "__fvalue_double_parse expects a String")
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
			if err != nil {
				return nil, errors.NewRuntime(errors.RuntimeError, "Invalid double string for parsing: "+s.Value)
			}
			return &DoubleValue{Value: v}, nil
		}},
		"__fvalue_double_from": {1, func(args []Value) (Value, error) {
			switch v := args[0].(type) {
			case *IntValue:
				return &DoubleValue{Value: float64(v.Value)}, nil
			case *BoolValue:
				return &DoubleValue{Value: float64(btoi(v.Value))}, nil
			}
			return nil, errors.NewRuntime(errors.RuntimeError,
				"Type '"+args[0].TypeInfo().Name+"' cannot be converted to double")
		}},
		"__fvalue_string_from": {1, func(args []Value) (Value, error) {
			return &StringValue{Value: args[0].String()}, nil
		}},

		"__ftime_now_ns": {0, func(args []Value) (Value, error) {
			return &IntValue{Value: time.Since(in.startTime).Nanoseconds()}, nil
		}},
	}

	for name, entry := range mathBuiltins() {
		table[name] = entry
	}
	return table
}
