package interp

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// calleeName derives the diagnostic name of a call target.
func calleeName(expr ast.Expression) string {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return expr.Value
	case *ast.MemberExpression:
		return expr.Member
	default:
		return "<anonymous>"
	}
}

// evalCall evaluates a function call expression. Arguments are evaluated
// strictly left to right in the caller's environment.
func (in *Interpreter) evalCall(ce *ast.CallExpression, env *Environment) (Value, error) {
	callee, err := in.eval(ce.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*FunctionValue)
	if !ok {
		return nil, errors.Newf(errors.TypeError, ce.Pos(),
			"'%s' object is not callable", callee.TypeInfo().Name)
	}
	name := calleeName(ce.Callee)

	switch fn.Kind {
	case FuncBuiltin, FuncBound:
		args := make([]Value, 0, len(ce.Arguments))
		for _, argExpr := range ce.Arguments {
			v, err := in.eval(argExpr, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return in.callHostFunction(fn, args, name, ce.Pos())

	default:
		return in.callUserFunction(fn, ce.Arguments, name, env, ce.Pos())
	}
}

// callHostFunction invokes a builtin or member-bound function with
// pre-evaluated arguments.
func (in *Interpreter) callHostFunction(fn *FunctionValue, args []Value, name string, pos lexer.Position) (Value, error) {
	if fn.Arity != -1 && fn.Arity != len(args) {
		return nil, errors.Newf(errors.ArgumentMismatchError, pos,
			"Builtin function '%s' expects %d arguments, but %d were provided",
			name, fn.Arity, len(args))
	}
	var v Value
	var err error
	if fn.Kind == FuncBound {
		v, err = fn.Bound(fn.Receiver, args)
	} else {
		v, err = fn.Builtin(args)
	}
	if err != nil {
		return nil, in.hostError(err, pos)
	}
	return v, nil
}

// hostError positions a plain host error raised by a builtin.
func (in *Interpreter) hostError(err error, pos lexer.Position) error {
	if fe, ok := err.(*errors.Error); ok {
		if !fe.Addressable() {
			fe.Pos = pos
		}
		return fe
	}
	if te, ok := err.(*thrownError); ok {
		return te
	}
	return errors.New(errors.RuntimeError, err.Error(), pos)
}

// callUserFunction evaluates argument expressions against the parameter list
// and executes a user function body. Defaulted parameters missing at the
// call site re-evaluate their default expression in the caller's
// environment.
func (in *Interpreter) callUserFunction(fn *FunctionValue, argExprs []ast.Expression, name string, env *Environment, pos lexer.Position) (Value, error) {
	params := fn.Params
	callEnv := NewEnclosedEnvironment("<Function "+name+"()>", fn.Closure)

	if params.IsVariadic() {
		list := &ListValue{Elements: make([]Value, 0, len(argExprs))}
		for _, argExpr := range argExprs {
			v, err := in.eval(argExpr, env)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, v)
		}
		callEnv.Define(params.Variadic, TypeList, ast.AccessNormal, list)
		return in.executeBody(fn, name, callEnv, env, pos)
	}

	minArgs := len(params.Positional)
	maxArgs := params.Len()
	if len(argExprs) < minArgs || len(argExprs) > maxArgs {
		return nil, errors.Newf(errors.ArgumentMismatchError, pos,
			"Function '%s' expects %d to %d arguments, but %d were provided",
			name, minArgs, maxArgs, len(argExprs))
	}

	var bound []Value

	// positional parameters
	for i, p := range params.Positional {
		expected, e := in.resolveTypeName(p.TypeName, fn.Closure, pos)
		if e != nil {
			return nil, e
		}
		v, err := in.eval(argExprs[i], env)
		if err != nil {
			return nil, err
		}
		if !in.isTypeMatch(expected, v, env) {
			return nil, errors.Newf(errors.ArgumentTypeMismatchError, argExprs[i].Pos(),
				"In function '%s', argument '%s' expects type '%s', but got type '%s'",
				name, p.Name, expected.Name, v.TypeInfo().Name)
		}
		bound = append(bound, v)
	}

	// defaulted parameters supplied at the call site
	i := len(params.Positional)
	for ; i < len(argExprs); i++ {
		dp := params.Defaulted[i-len(params.Positional)]
		expected, e := in.resolveTypeName(dp.TypeName, fn.Closure, pos)
		if e != nil {
			return nil, e
		}
		v, err := in.eval(argExprs[i], env)
		if err != nil {
			return nil, err
		}
		if !in.isTypeMatch(expected, v, env) {
			return nil, errors.Newf(errors.ArgumentTypeMismatchError, argExprs[i].Pos(),
				"In function '%s', argument '%s' expects type '%s', but got type '%s'",
				name, dp.Name, expected.Name, v.TypeInfo().Name)
		}
		bound = append(bound, v)
	}

	// remaining defaults re-evaluate in the caller's environment
	for ; i < maxArgs; i++ {
		dp := params.Defaulted[i-len(params.Positional)]
		expected, e := in.resolveTypeName(dp.TypeName, fn.Closure, pos)
		if e != nil {
			return nil, e
		}
		v, err := in.eval(dp.Default, env)
		if err != nil {
			return nil, err
		}
		if !in.isTypeMatch(expected, v, env) {
			return nil, errors.Newf(errors.DefaultParameterTypeError, dp.Default.Pos(),
				"In function '%s', default parameter '%s' has type '%s', which does not match the expected type '%s'",
				name, dp.Name, v.TypeInfo().Name, expected.Name)
		}
		bound = append(bound, v)
	}

	for j, v := range bound {
		var pname, ptype string
		if j < len(params.Positional) {
			pname = params.Positional[j].Name
			ptype = params.Positional[j].TypeName
		} else {
			dp := params.Defaulted[j-len(params.Positional)]
			pname = dp.Name
			ptype = dp.TypeName
		}
		declared, e := in.resolveTypeName(ptype, fn.Closure, pos)
		if e != nil {
			return nil, e
		}
		callEnv.Define(pname, declared, ast.AccessNormal, v)
	}

	return in.executeBody(fn, name, callEnv, env, pos)
}

// callFunction invokes a function with pre-evaluated arguments. Used by
// operator overloads, interface default methods, and the public API.
func (in *Interpreter) callFunction(fn *FunctionValue, args []Value, name string, env *Environment, pos lexer.Position) (Value, error) {
	if fn.Kind != FuncUser {
		return in.callHostFunction(fn, args, name, pos)
	}

	params := fn.Params
	callEnv := NewEnclosedEnvironment("<Function "+name+"()>", fn.Closure)

	if params.IsVariadic() {
		callEnv.Define(params.Variadic, TypeList, ast.AccessNormal, &ListValue{Elements: args})
		return in.executeBody(fn, name, callEnv, env, pos)
	}

	minArgs := len(params.Positional)
	maxArgs := params.Len()
	if len(args) < minArgs || len(args) > maxArgs {
		return nil, errors.Newf(errors.ArgumentMismatchError, pos,
			"Function '%s' expects %d to %d arguments, but %d were provided",
			name, minArgs, maxArgs, len(args))
	}

	for j := 0; j < maxArgs; j++ {
		var pname, ptype string
		var def ast.Expression
		if j < len(params.Positional) {
			pname = params.Positional[j].Name
			ptype = params.Positional[j].TypeName
		} else {
			dp := params.Defaulted[j-len(params.Positional)]
			pname = dp.Name
			ptype = dp.TypeName
			def = dp.Default
		}
		declared, e := in.resolveTypeName(ptype, fn.Closure, pos)
		if e != nil {
			return nil, e
		}

		var v Value
		if j < len(args) {
			v = args[j]
		} else {
			dv, err := in.eval(def, env)
			if err != nil {
				return nil, err
			}
			v = dv
		}
		if !in.isTypeMatch(declared, v, env) {
			return nil, errors.Newf(errors.ArgumentTypeMismatchError, pos,
				"In function '%s', argument '%s' expects type '%s', but got type '%s'",
				name, pname, declared.Name, v.TypeInfo().Name)
		}
		callEnv.Define(pname, declared, ast.AccessNormal, v)
	}

	return in.executeBody(fn, name, callEnv, env, pos)
}

// executeBody runs a user function body in its call environment, checks the
// declared return type, and yields the return value (null for normal
// completion).
func (in *Interpreter) executeBody(fn *FunctionValue, name string, callEnv, callerEnv *Environment, pos lexer.Position) (Value, error) {
	var retVal Value = Null

	sr, err := in.evalBlock(fn.Body, callEnv)
	if err != nil {
		return nil, err
	}
	if sr.Kind == resultReturn {
		retVal = sr.Value
	}

	if !in.isTypeMatch(fn.ReturnType, retVal, callerEnv) {
		return nil, errors.Newf(errors.ReturnTypeMismatchError, pos,
			"Function '%s' expects return type '%s', but got type '%s'",
			name, fn.ReturnType.Name, retVal.TypeInfo().Name)
	}
	return retVal, nil
}
