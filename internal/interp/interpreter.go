// Package interp provides the tree-walking evaluator and runtime for Fig.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// thrownError carries a user-thrown value up the call stack until a try
// statement catches it or the top level reports an uncaught exception.
type thrownError struct {
	value Value
	pos   lexer.Position
}

func (t *thrownError) Error() string {
	return "uncaught exception: " + t.value.String()
}

// Interpreter executes Fig AST nodes over scoped environments. One instance
// owns the type registry and the function id counter, so independent runs
// stay independent.
type Interpreter struct {
	global      *Environment
	types       *typeRegistry
	nextFnID    int64
	output      io.Writer
	input       *bufio.Reader
	sourcePath  string
	sourceLines []string
	libraryRoot string
	moduleCache map[string]*Environment
	startTime   time.Time

	errorType TypeInfo // the builtin Error interface identity
}

// New creates an Interpreter with a fresh global environment. Builtin values
// and functions are seeded into the global scope; output from print builtins
// goes to the given writer.
func New(output io.Writer) *Interpreter {
	in := &Interpreter{
		global:      NewEnvironment("<Global>"),
		types:       newTypeRegistry(),
		output:      output,
		input:       bufio.NewReader(os.Stdin),
		moduleCache: make(map[string]*Environment),
		startTime:   time.Now(),
	}
	in.errorType = in.types.Register("Error")
	in.registerBuiltinValues(in.global)
	in.registerBuiltinFunctions(in.global)
	return in
}

// SetInput redirects the stdin builtins to r.
func (in *Interpreter) SetInput(r io.Reader) {
	in.input = bufio.NewReader(r)
}

// SetSource records the source path and lines used for error reporting and
// module resolution.
func (in *Interpreter) SetSource(path string, lines []string) {
	in.sourcePath = path
	in.sourceLines = lines
}

// SetLibraryRoot sets the interpreter install directory searched for Library
// modules. Defaults to the executable's directory.
func (in *Interpreter) SetLibraryRoot(dir string) {
	in.libraryRoot = dir
}

// GlobalEnv returns the global environment.
func (in *Interpreter) GlobalEnv() *Environment {
	return in.global
}

// nextFunctionID allocates a process-unique function id.
func (in *Interpreter) nextFunctionID() int64 {
	in.nextFnID++
	return in.nextFnID
}

// Run evaluates a parsed program in the global environment. A non-Normal
// top-level result (a top-level `return`) ends the run without an error;
// thrown values become UncaughtExceptionError.
func (in *Interpreter) Run(program *ast.Program) *errors.Error {
	for _, stmt := range program.Statements {
		sr, err := in.evalStatement(stmt, in.global)
		if err != nil {
			return in.finishError(err)
		}
		if !sr.IsNormal() {
			break
		}
	}
	return nil
}

// finishError converts a propagated error into a presentable *errors.Error
// with source context and the scope stack attached.
func (in *Interpreter) finishError(err error) *errors.Error {
	switch e := err.(type) {
	case *thrownError:
		fe := errors.Newf(errors.UncaughtExceptionError, e.pos, "Uncaught exception: %s", e.value.String())
		return fe.WithSource(in.sourcePath, in.sourceLines).WithStack(in.global.StackTrace())
	case *errors.Error:
		return e.WithSource(in.sourcePath, in.sourceLines).WithStack(in.global.StackTrace())
	default:
		return errors.NewRuntime(errors.RuntimeError, err.Error())
	}
}

// actualType returns the type a value denotes: type objects denote their
// type, every other value denotes its own dynamic type.
func actualType(v Value) TypeInfo {
	switch v := v.(type) {
	case *StructTypeValue:
		return v.Type
	case *InterfaceValue:
		return v.Type
	default:
		return v.TypeInfo()
	}
}

// isTypeMatch reports whether a value satisfies a declared type. Any is a
// wildcard; null matches every declared type; an interface type is satisfied
// by any struct instance whose type implements it in scope.
func (in *Interpreter) isTypeMatch(declared TypeInfo, v Value, env *Environment) bool {
	if declared.Equal(TypeAny) {
		return true
	}
	if _, isNull := v.(*NullValue); isNull {
		return true
	}
	if v.TypeInfo().Equal(declared) {
		return true
	}
	if si, ok := v.(*StructInstanceValue); ok && env != nil {
		if env.Implements(si.Parent, declared) {
			return true
		}
	}
	return false
}

// resolveTypeName resolves a declared-type name to a TypeInfo by evaluating
// it as a variable holding a type object.
func (in *Interpreter) resolveTypeName(name string, env *Environment, pos lexer.Position) (TypeInfo, *errors.Error) {
	if name == "Any" {
		return TypeAny, nil
	}
	slot, ok := env.Get(name)
	if !ok {
		return TypeInfo{}, errors.Newf(errors.UndeclaredIdentifierError, pos, "Type `%s` is not defined", name)
	}
	switch v := slot.Value.(type) {
	case *StructTypeValue:
		return v.Type, nil
	case *InterfaceValue:
		return v.Type, nil
	default:
		return TypeInfo{}, errors.Newf(errors.TypeError, pos, "`%s` is not a type", name)
	}
}

// requireBool enforces Bool-only truthiness on condition values.
func requireBool(v Value, what string, pos lexer.Position) (bool, *errors.Error) {
	b, ok := v.(*BoolValue)
	if !ok {
		return false, errors.Newf(errors.TypeError, pos, "%s must be Bool, but got '%s'", what, v.TypeInfo().Name)
	}
	return b.Value, nil
}

// eval evaluates an expression to a value.
func (in *Interpreter) eval(expr ast.Expression, env *Environment) (Value, error) {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		return &IntValue{Value: expr.Value}, nil

	case *ast.FloatLiteral:
		return &DoubleValue{Value: expr.Value}, nil

	case *ast.StringLiteral:
		return &StringValue{Value: expr.Value}, nil

	case *ast.BooleanLiteral:
		return boolValue(expr.Value), nil

	case *ast.NullLiteral:
		return Null, nil

	case *ast.Identifier:
		lv, err := in.evalVarLvalue(expr, env)
		if err != nil {
			return nil, err
		}
		v, e := in.readLvalue(lv, expr.Pos())
		if e != nil {
			return nil, e
		}
		return v, nil

	case *ast.MemberExpression, *ast.IndexExpression:
		lv, err := in.evalLvalue(expr, env)
		if err != nil {
			return nil, err
		}
		v, e := in.readLvalue(lv, expr.Pos())
		if e != nil {
			return nil, e
		}
		return v, nil

	case *ast.UnaryExpression:
		return in.evalUnary(expr, env)

	case *ast.BinaryExpression:
		return in.evalBinary(expr, env)

	case *ast.TernaryExpression:
		cond, err := in.eval(expr.Condition, env)
		if err != nil {
			return nil, err
		}
		b, e := requireBool(cond, "Condition", expr.Condition.Pos())
		if e != nil {
			return nil, e
		}
		if b {
			return in.eval(expr.IfTrue, env)
		}
		return in.eval(expr.IfFalse, env)

	case *ast.CallExpression:
		return in.evalCall(expr, env)

	case *ast.FunctionLiteral:
		return in.evalFunctionLiteral(expr, env), nil

	case *ast.StructInitExpression:
		return in.evalInitExpr(expr, env)

	case *ast.ListLiteral:
		list := &ListValue{Elements: make([]Value, 0, len(expr.Elements))}
		for _, el := range expr.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, v)
		}
		return list, nil

	case *ast.TupleLiteral:
		list := &ListValue{Elements: make([]Value, 0, len(expr.Elements))}
		for _, el := range expr.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, v)
		}
		return list, nil

	case *ast.MapLiteral:
		m := NewMap()
		for _, entry := range expr.Entries {
			k, err := in.eval(entry.Key, env)
			if err != nil {
				return nil, err
			}
			v, err := in.eval(entry.Value, env)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil

	default:
		return nil, errors.Newf(errors.RuntimeError, expr.Pos(), "Unsupported expression type %T", expr)
	}
}

// evalFunctionLiteral captures the current environment as the closure of a
// new user function. An expression body is wrapped as `return expr;` inside
// a synthetic block.
func (in *Interpreter) evalFunctionLiteral(fl *ast.FunctionLiteral, env *Environment) *FunctionValue {
	body := fl.Body
	if fl.IsExprMode() {
		body = &ast.BlockStatement{
			Token: fl.Token,
			Statements: []ast.Statement{
				&ast.ReturnStatement{Token: fl.Token, Value: fl.ExprBody},
			},
		}
	}
	return &FunctionValue{
		ID:         in.nextFunctionID(),
		Name:       "<lambda>",
		Kind:       FuncUser,
		Params:     fl.Params,
		ReturnType: TypeAny,
		Body:       body,
		Closure:    env,
	}
}

// evalUnary evaluates a unary expression, dispatching to a registered
// operator overload before the native semantics.
func (in *Interpreter) evalUnary(ue *ast.UnaryExpression, env *Environment) (Value, error) {
	if ue.Operator == ast.OpReference {
		// the reference operator reads its operand's location
		return in.evalReference(ue, env)
	}

	v, err := in.eval(ue.Right, env)
	if err != nil {
		return nil, err
	}

	if si, ok := v.(*StructInstanceValue); ok {
		if fn, ok := env.OperatorMethod(si.Parent, ue.Operator, true); ok {
			return in.callFunction(fn, []Value{v}, fn.Name, env, ue.Pos())
		}
	}

	result, e := evalUnaryNative(ue.Operator, v, ue.Pos())
	if e != nil {
		return nil, e
	}
	return result, nil
}

// evalReference resolves the operand as an assignable location and returns
// the value currently stored there. No alias is created: later writes to the
// location are not seen through the returned value.
func (in *Interpreter) evalReference(ue *ast.UnaryExpression, env *Environment) (Value, error) {
	lv, err := in.evalLvalue(ue.Right, env)
	if err != nil {
		return nil, err
	}
	v, e := in.readLvalue(lv, ue.Pos())
	if e != nil {
		return nil, e
	}
	return v, nil
}

// evalBinary evaluates a binary expression: assignments route through the
// lvalue machinery, `is` performs type tests, everything else checks for an
// operator overload and falls back to the native semantics. `and`/`or`
// short-circuit on a Bool left operand.
func (in *Interpreter) evalBinary(be *ast.BinaryExpression, env *Environment) (Value, error) {
	op := be.Operator

	if op.IsAssignment() {
		return in.evalAssignment(be, env)
	}

	if op == ast.OpIs {
		return in.evalIs(be, env)
	}

	lhs, err := in.eval(be.Left, env)
	if err != nil {
		return nil, err
	}

	// short-circuit before the right operand is evaluated
	if op == ast.OpAnd {
		if b, ok := lhs.(*BoolValue); ok && !b.Value {
			return False, nil
		}
	}
	if op == ast.OpOr {
		if b, ok := lhs.(*BoolValue); ok && b.Value {
			return True, nil
		}
	}

	rhs, err := in.eval(be.Right, env)
	if err != nil {
		return nil, err
	}

	if result, handled, err := in.tryBinaryOverload(op, lhs, rhs, env, be.Pos()); handled {
		return result, err
	}

	result, e := evalBinaryNative(op, lhs, rhs, be.Pos())
	if e != nil {
		return nil, e
	}
	return result, nil
}

// tryBinaryOverload dispatches to a registered Operation overload. The left
// operand's type selects the method; the right operand is consulted when the
// left is not an overloaded struct instance.
func (in *Interpreter) tryBinaryOverload(op ast.Operator, lhs, rhs Value, env *Environment, pos lexer.Position) (Value, bool, error) {
	if si, ok := lhs.(*StructInstanceValue); ok {
		if fn, ok := env.OperatorMethod(si.Parent, op, false); ok {
			v, err := in.callFunction(fn, []Value{lhs, rhs}, fn.Name, env, pos)
			return v, true, err
		}
	}
	if si, ok := rhs.(*StructInstanceValue); ok {
		if fn, ok := env.OperatorMethod(si.Parent, op, false); ok {
			v, err := in.callFunction(fn, []Value{lhs, rhs}, fn.Name, env, pos)
			return v, true, err
		}
	}
	return nil, false, nil
}

// evalIs implements the `is` type test. A registered `Is` overload preempts
// the native test, like every other operator.
func (in *Interpreter) evalIs(be *ast.BinaryExpression, env *Environment) (Value, error) {
	lhs, err := in.eval(be.Left, env)
	if err != nil {
		return nil, err
	}
	rhs, err := in.eval(be.Right, env)
	if err != nil {
		return nil, err
	}

	if result, handled, err := in.tryBinaryOverload(ast.OpIs, lhs, rhs, env, be.Pos()); handled {
		return result, err
	}

	switch rv := rhs.(type) {
	case *StructTypeValue:
		return boolValue(lhs.TypeInfo().Equal(rv.Type)), nil
	case *InterfaceValue:
		if si, ok := lhs.(*StructInstanceValue); ok {
			return boolValue(env.Implements(si.Parent, rv.Type)), nil
		}
		return False, nil
	}
	return nil, errors.Newf(errors.TypeError, be.Pos(),
		"Unsupported operator `is` for '%s' and '%s'", lhs.TypeInfo().Name, rhs.TypeInfo().Name)
}

// evalAssignment implements `=` and the compound assignments. The assigned
// value is also the expression's value.
func (in *Interpreter) evalAssignment(be *ast.BinaryExpression, env *Environment) (Value, error) {
	lv, err := in.evalLvalue(be.Left, env)
	if err != nil {
		return nil, err
	}
	rhs, err := in.eval(be.Right, env)
	if err != nil {
		return nil, err
	}

	if be.Operator == ast.OpAssign {
		if e := in.writeLvalue(lv, rhs, env, be.Pos()); e != nil {
			return nil, e
		}
		return rhs, nil
	}

	base, ok := compoundBase(be.Operator)
	if !ok {
		return nil, errors.Newf(errors.UnsupportedOpError, be.Pos(),
			"Operator '%s' is not supported", be.Operator)
	}

	current, e := in.readLvalue(lv, be.Pos())
	if e != nil {
		return nil, e
	}

	var result Value
	if v, handled, err := in.tryBinaryOverload(base, current, rhs, env, be.Pos()); handled {
		if err != nil {
			return nil, err
		}
		result = v
	} else {
		result, e = evalBinaryNative(base, current, rhs, be.Pos())
		if e != nil {
			return nil, e
		}
	}
	if e := in.writeLvalue(lv, result, env, be.Pos()); e != nil {
		return nil, e
	}
	return result, nil
}

// evalVarLvalue resolves a variable reference to its slot.
func (in *Interpreter) evalVarLvalue(id *ast.Identifier, env *Environment) (Lvalue, error) {
	slot, ok := env.Get(id.Value)
	if !ok {
		return Lvalue{}, errors.Newf(errors.UndeclaredIdentifierError, id.Pos(),
			"Variable `%s` is not defined", id.Value)
	}
	return variableLvalue(slot), nil
}

// evalLvalue resolves an expression to an assignable location.
func (in *Interpreter) evalLvalue(expr ast.Expression, env *Environment) (Lvalue, error) {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return in.evalVarLvalue(expr, env)
	case *ast.MemberExpression:
		return in.evalMemberLvalue(expr, env)
	case *ast.IndexExpression:
		return in.evalIndexLvalue(expr, env)
	default:
		return Lvalue{}, errors.Newf(errors.TypeError, expr.Pos(),
			"Expression does not refer to an assignable location")
	}
}

// evalIndexLvalue resolves a[b] to a container location.
func (in *Interpreter) evalIndexLvalue(ie *ast.IndexExpression, env *Environment) (Lvalue, error) {
	base, err := in.eval(ie.Base, env)
	if err != nil {
		return Lvalue{}, err
	}
	index, err := in.eval(ie.Index, env)
	if err != nil {
		return Lvalue{}, err
	}

	switch base := base.(type) {
	case *ListValue:
		iv, ok := index.(*IntValue)
		if !ok {
			return Lvalue{}, errors.Newf(errors.TypeError, ie.Index.Pos(),
				"List indices must be Int, got '%s'", index.TypeInfo().Name)
		}
		if iv.Value < 0 || iv.Value >= int64(len(base.Elements)) {
			return Lvalue{}, errors.Newf(errors.IndexOutOfRangeError, ie.Index.Pos(),
				"Index %d out of list range (length %d)", iv.Value, len(base.Elements))
		}
		return Lvalue{Kind: LvListElement, List: base, Index: iv.Value}, nil

	case *MapValue:
		return Lvalue{Kind: LvMapElement, Map: base, Key: index}, nil

	case *StringValue:
		iv, ok := index.(*IntValue)
		if !ok {
			return Lvalue{}, errors.Newf(errors.TypeError, ie.Index.Pos(),
				"String indices must be Int, got '%s'", index.TypeInfo().Name)
		}
		if iv.Value < 0 || iv.Value >= int64(base.Len()) {
			return Lvalue{}, errors.Newf(errors.IndexOutOfRangeError, ie.Index.Pos(),
				"Index %d out of string range (length %d)", iv.Value, base.Len())
		}
		return Lvalue{Kind: LvStringElement, Str: base, Index: iv.Value}, nil

	default:
		return Lvalue{}, errors.Newf(errors.NoSubscriptableError, ie.Base.Pos(),
			"'%s' object is not subscriptable", base.TypeInfo().Name)
	}
}

// scopeNameAt builds a positioned scope name such as "<While 3:5>".
func scopeNameAt(kind string, pos lexer.Position) string {
	return fmt.Sprintf("<%s %d:%d>", kind, pos.Line, pos.Column)
}
