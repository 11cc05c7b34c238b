package interp

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
)

// evalStatement executes one statement. Break/continue/return travel through
// the StatementResult; thrown values and host errors travel on the error
// channel.
func (in *Interpreter) evalStatement(stmt ast.Statement, env *Environment) (StatementResult, error) {
	switch stmt := stmt.(type) {
	case *ast.ImportStatement:
		return in.evalImport(stmt, env)

	case *ast.VarDefStatement:
		return in.evalVarDef(stmt, env)

	case *ast.FunctionDefStatement:
		return in.evalFunctionDef(stmt, env)

	case *ast.StructDefStatement:
		return in.evalStructDef(stmt, env)

	case *ast.InterfaceDefStatement:
		return in.evalInterfaceDef(stmt, env)

	case *ast.ImplementStatement:
		return in.evalImplement(stmt, env)

	case *ast.IfStatement:
		return in.evalIf(stmt, env)

	case *ast.WhileStatement:
		return in.evalWhile(stmt, env)

	case *ast.ForStatement:
		return in.evalFor(stmt, env)

	case *ast.TryStatement:
		return in.evalTry(stmt, env)

	case *ast.ThrowStatement:
		value, err := in.eval(stmt.Value, env)
		if err != nil {
			return normalResult(), err
		}
		if _, isNull := value.(*NullValue); isNull {
			return normalResult(), errors.New(errors.TypeError, "null may not be thrown", stmt.Pos())
		}
		return normalResult(), &thrownError{value: value, pos: stmt.Pos()}

	case *ast.ReturnStatement:
		var value Value = Null
		if stmt.Value != nil {
			v, err := in.eval(stmt.Value, env)
			if err != nil {
				return normalResult(), err
			}
			value = v
		}
		return returnResult(value), nil

	case *ast.BreakStatement:
		if !env.InLoopContext() {
			return normalResult(), errors.New(errors.BreakOutsideLoopError, "`break` statement outside loop", stmt.Pos())
		}
		return breakResult(), nil

	case *ast.ContinueStatement:
		if !env.InLoopContext() {
			return normalResult(), errors.New(errors.ContinueOutsideLoopError, "`continue` statement outside loop", stmt.Pos())
		}
		return continueResult(), nil

	case *ast.ExpressionStatement:
		value, err := in.eval(stmt.Expression, env)
		if err != nil {
			return normalResult(), err
		}
		return normalResultOf(value), nil

	case *ast.BlockStatement:
		blockEnv := NewEnclosedEnvironment(scopeNameAt("Block", stmt.Pos()), env)
		return in.evalBlock(stmt, blockEnv)

	default:
		return normalResult(), errors.Newf(errors.RuntimeError, stmt.Pos(), "Unsupported statement type %T", stmt)
	}
}

// evalBlock executes the statements of a block in the given environment,
// short-circuiting on the first non-normal result.
func (in *Interpreter) evalBlock(block *ast.BlockStatement, env *Environment) (StatementResult, error) {
	result := normalResult()
	for _, stmt := range block.Statements {
		sr, err := in.evalStatement(stmt, env)
		if err != nil {
			if fe, ok := err.(*errors.Error); ok {
				fe.WithStack(env.StackTrace())
			}
			return normalResult(), err
		}
		if !sr.IsNormal() {
			return sr, nil
		}
		result = sr
	}
	return result, nil
}

// evalVarDef executes a var/const declaration.
func (in *Interpreter) evalVarDef(stmt *ast.VarDefStatement, env *Environment) (StatementResult, error) {
	if env.ContainsInThisScope(stmt.Name) {
		return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
			"Variable `%s` already declared in this scope", stmt.Name)
	}

	var value Value
	if stmt.Value != nil {
		v, err := in.eval(stmt.Value, env)
		if err != nil {
			return normalResult(), err
		}
		value = v
	}

	declared := TypeAny
	switch {
	case stmt.TypeName == ast.TypeFollowsValue:
		declared = actualType(value)
	case stmt.TypeName != "Any":
		t, e := in.resolveTypeName(stmt.TypeName, env, stmt.Pos())
		if e != nil {
			return normalResult(), e
		}
		declared = t
		if value != nil && !in.isTypeMatch(declared, value, env) {
			return normalResult(), errors.Newf(errors.TypeError, stmt.Value.Pos(),
				"Variable `%s` expects init-value type `%s`, but got '%s'",
				stmt.Name, declared.Name, value.TypeInfo().Name)
		}
		if value == nil {
			value = defaultValueOf(declared)
		}
	}
	if value == nil {
		value = Null
	}

	access := ast.NewAccessModifier(stmt.IsPublic, stmt.IsConst)
	env.Define(stmt.Name, declared, access, value)
	return normalResult(), nil
}

// evalFunctionDef executes a named function definition. Named functions are
// const bindings; public functions are public const.
func (in *Interpreter) evalFunctionDef(stmt *ast.FunctionDefStatement, env *Environment) (StatementResult, error) {
	if env.ContainsInThisScope(stmt.Name) {
		return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
			"Function `%s` already declared in this scope", stmt.Name)
	}

	returnType := TypeAny
	if stmt.ReturnType != "Any" {
		t, e := in.resolveTypeName(stmt.ReturnType, env, stmt.Pos())
		if e != nil {
			return normalResult(), e
		}
		returnType = t
	}

	fn := &FunctionValue{
		ID:         in.nextFunctionID(),
		Name:       stmt.Name,
		Kind:       FuncUser,
		Params:     stmt.Params,
		ReturnType: returnType,
		Body:       stmt.Body,
		Closure:    env,
	}
	access := ast.AccessConst
	if stmt.IsPublic {
		access = ast.AccessPublicConst
	}
	env.Define(stmt.Name, TypeFunction, access, fn)
	return normalResult(), nil
}

// evalIf executes if / else if / else.
func (in *Interpreter) evalIf(stmt *ast.IfStatement, env *Environment) (StatementResult, error) {
	cond, err := in.eval(stmt.Condition, env)
	if err != nil {
		return normalResult(), err
	}
	b, e := requireBool(cond, "Condition", stmt.Condition.Pos())
	if e != nil {
		return normalResult(), e
	}
	if b {
		branchEnv := NewEnclosedEnvironment(scopeNameAt("Block", stmt.Body.Pos()), env)
		return in.evalBlock(stmt.Body, branchEnv)
	}

	for _, elif := range stmt.ElseIfs {
		cond, err := in.eval(elif.Condition, env)
		if err != nil {
			return normalResult(), err
		}
		b, e := requireBool(cond, "Condition", elif.Condition.Pos())
		if e != nil {
			return normalResult(), e
		}
		if b {
			branchEnv := NewEnclosedEnvironment(scopeNameAt("Block", elif.Body.Pos()), env)
			return in.evalBlock(elif.Body, branchEnv)
		}
	}

	if stmt.Else != nil {
		branchEnv := NewEnclosedEnvironment(scopeNameAt("Block", stmt.Else.Pos()), env)
		return in.evalBlock(stmt.Else, branchEnv)
	}
	return normalResult(), nil
}

// evalWhile executes a while loop. Every iteration gets a fresh environment.
func (in *Interpreter) evalWhile(stmt *ast.WhileStatement, env *Environment) (StatementResult, error) {
	for {
		cond, err := in.eval(stmt.Condition, env)
		if err != nil {
			return normalResult(), err
		}
		b, e := requireBool(cond, "Condition", stmt.Condition.Pos())
		if e != nil {
			return normalResult(), e
		}
		if !b {
			return normalResult(), nil
		}

		iterEnv := NewEnclosedEnvironment(scopeNameAt("While", stmt.Pos()), env)
		sr, err := in.evalBlock(stmt.Body, iterEnv)
		if err != nil {
			return normalResult(), err
		}
		switch sr.Kind {
		case resultReturn:
			return sr, nil
		case resultBreak:
			return normalResult(), nil
		}
	}
}

// evalFor executes a C-style for loop. The init statement runs once in the
// loop environment; each iteration body gets a fresh environment.
func (in *Interpreter) evalFor(stmt *ast.ForStatement, env *Environment) (StatementResult, error) {
	loopEnv := NewEnclosedEnvironment(scopeNameAt("For", stmt.Pos()), env)

	if _, err := in.evalStatement(stmt.Init, loopEnv); err != nil {
		return normalResult(), err
	}

	for {
		cond, err := in.eval(stmt.Condition, loopEnv)
		if err != nil {
			return normalResult(), err
		}
		b, e := requireBool(cond, "Condition", stmt.Condition.Pos())
		if e != nil {
			return normalResult(), e
		}
		if !b {
			return normalResult(), nil
		}

		iterEnv := NewEnclosedEnvironment(scopeNameAt("For", stmt.Pos()), loopEnv)
		sr, err := in.evalBlock(stmt.Body, iterEnv)
		if err != nil {
			return normalResult(), err
		}
		switch sr.Kind {
		case resultReturn:
			return sr, nil
		case resultBreak:
			return normalResult(), nil
		}

		if stmt.Increment != nil {
			if _, err := in.evalStatement(stmt.Increment, loopEnv); err != nil {
				return normalResult(), err
			}
		}
	}
}

// evalTry executes try / catch / finally. User-thrown values match typed
// catches by their dynamic type (interface membership included); evaluator
// errors are caught only by untyped catches, bound as a "Kind: message" string.
// The finally block always runs and overwrites the result when it finishes
// non-normally or fails itself.
func (in *Interpreter) evalTry(stmt *ast.TryStatement, env *Environment) (StatementResult, error) {
	tryEnv := NewEnclosedEnvironment(scopeNameAt("Try", stmt.Pos()), env)
	result, tryErr := in.evalBlock(stmt.Body, tryEnv)

	if tryErr != nil {
		caught := false
		for _, c := range stmt.Catches {
			matched, bound, e := in.catchMatches(c, tryErr, env)
			if e != nil {
				return normalResult(), e
			}
			if !matched {
				continue
			}
			catchEnv := NewEnclosedEnvironment(scopeNameAt("Catch", c.Body.Pos()), env)
			declared := TypeAny
			if c.TypeName != "" {
				t, e := in.resolveTypeName(c.TypeName, env, c.Body.Pos())
				if e != nil {
					return normalResult(), e
				}
				declared = t
			}
			catchEnv.Define(c.VarName, declared, ast.AccessNormal, bound)
			result, tryErr = in.evalBlock(c.Body, catchEnv)
			caught = true
			break
		}
		if !caught {
			// run finally before propagating
			if stmt.Finally != nil {
				finEnv := NewEnclosedEnvironment(scopeNameAt("Finally", stmt.Finally.Pos()), env)
				if fr, err := in.evalBlock(stmt.Finally, finEnv); err != nil {
					return normalResult(), err
				} else if !fr.IsNormal() {
					return fr, nil
				}
			}
			return normalResult(), tryErr
		}
	}

	if stmt.Finally != nil {
		finEnv := NewEnclosedEnvironment(scopeNameAt("Finally", stmt.Finally.Pos()), env)
		fr, err := in.evalBlock(stmt.Finally, finEnv)
		if err != nil {
			return normalResult(), err
		}
		if !fr.IsNormal() {
			return fr, nil
		}
	}
	if tryErr != nil {
		return normalResult(), tryErr
	}
	return result, nil
}

// catchMatches decides whether a catch clause handles an in-flight error and
// returns the value to bind.
func (in *Interpreter) catchMatches(c ast.CatchClause, err error, env *Environment) (bool, Value, *errors.Error) {
	switch e := err.(type) {
	case *thrownError:
		if c.TypeName == "" {
			return true, e.value, nil
		}
		declared, fe := in.resolveTypeName(c.TypeName, env, c.Body.Pos())
		if fe != nil {
			return false, nil, fe
		}
		if _, isNull := e.value.(*NullValue); isNull {
			return false, nil, nil
		}
		if e.value.TypeInfo().Equal(declared) {
			return true, e.value, nil
		}
		if si, ok := e.value.(*StructInstanceValue); ok && env.Implements(si.Parent, declared) {
			return true, e.value, nil
		}
		return false, nil, nil

	case *errors.Error:
		if c.TypeName != "" {
			return false, nil, nil
		}
		return true, &StringValue{Value: e.Kind + ": " + e.Message}, nil
	}
	return false, nil, nil
}
