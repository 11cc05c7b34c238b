package interp

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
)

// evalInterfaceDef executes an interface definition, aggregating bundled
// interfaces' methods and registering the interface type.
func (in *Interpreter) evalInterfaceDef(stmt *ast.InterfaceDefStatement, env *Environment) (StatementResult, error) {
	if env.ContainsInThisScope(stmt.Name) {
		return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
			"Interface `%s` already declared in this scope", stmt.Name)
	}

	methods := make([]ast.InterfaceMethod, 0, len(stmt.Methods))
	seen := make(map[string]string) // method name -> owning interface
	for _, m := range stmt.Methods {
		if owner, dup := seen[m.Name]; dup {
			return normalResult(), errors.Newf(errors.DuplicateImplementMethodError, stmt.Pos(),
				"Interface `%s` has duplicate method '%s' with '%s.%s'", stmt.Name, m.Name, owner, m.Name)
		}
		seen[m.Name] = stmt.Name
		methods = append(methods, m)
	}

	for _, bundleExpr := range stmt.Bundles {
		bundleVal, err := in.eval(bundleExpr, env)
		if err != nil {
			return normalResult(), err
		}
		bundled, ok := bundleVal.(*InterfaceValue)
		if !ok {
			return normalResult(), errors.Newf(errors.TypeError, bundleExpr.Pos(),
				"Cannot bundle type '%s' that is not an interface", bundleVal.TypeInfo().Name)
		}
		for _, m := range bundled.Methods {
			if owner, dup := seen[m.Name]; dup {
				return normalResult(), errors.Newf(errors.DuplicateImplementMethodError, stmt.Pos(),
					"Interface `%s` has duplicate method '%s' with '%s.%s'",
					stmt.Name, m.Name, owner, m.Name)
			}
			seen[m.Name] = bundled.Type.Name
			methods = append(methods, m)
		}
	}

	ifaceType := in.types.Register(stmt.Name)
	access := ast.AccessConst
	if stmt.IsPublic {
		access = ast.AccessPublicConst
	}
	env.Define(stmt.Name, TypeInterface, access, &InterfaceValue{Type: ifaceType, Methods: methods})
	return normalResult(), nil
}

// operatorSpec describes one Operation magic method name.
type operatorSpec struct {
	op    ast.Operator
	arity int
}

// operationMethods maps Operation magic names to operators.
var operationMethods = map[string]operatorSpec{
	"Add": {ast.OpAdd, 2},
	"Sub": {ast.OpSub, 2},
	"Mul": {ast.OpMul, 2},
	"Div": {ast.OpDiv, 2},
	"Mod": {ast.OpMod, 2},
	"Pow": {ast.OpPow, 2},

	"Neg": {ast.OpSub, 1},
	"Not": {ast.OpNot, 1},

	"And": {ast.OpAnd, 2},
	"Or":  {ast.OpOr, 2},

	"Equal":        {ast.OpEqual, 2},
	"NotEqual":     {ast.OpNotEqual, 2},
	"LessThan":     {ast.OpLess, 2},
	"LessEqual":    {ast.OpLessEqual, 2},
	"GreaterThan":  {ast.OpGreater, 2},
	"GreaterEqual": {ast.OpGreaterEqual, 2},
	"Is":           {ast.OpIs, 2},

	"BitNot": {ast.OpBitNot, 1},

	"BitAnd":     {ast.OpBitAnd, 2},
	"BitOr":      {ast.OpBitOr, 2},
	"BitXor":     {ast.OpBitXor, 2},
	"ShiftLeft":  {ast.OpShiftLeft, 2},
	"ShiftRight": {ast.OpShiftRight, 2},
}

// OperationInterfaceName is the interface whose impl registers operator
// overloads instead of ordinary methods.
const OperationInterfaceName = "Operation"

// evalImplement executes an `impl Interface for Struct` statement.
func (in *Interpreter) evalImplement(stmt *ast.ImplementStatement, env *Environment) (StatementResult, error) {
	ifaceSlot, ok := env.Get(stmt.InterfaceName)
	if !ok {
		return normalResult(), errors.Newf(errors.UndeclaredIdentifierError, stmt.Pos(),
			"Interface '%s' not found", stmt.InterfaceName)
	}
	structSlot, ok := env.Get(stmt.StructName)
	if !ok {
		return normalResult(), errors.Newf(errors.UndeclaredIdentifierError, stmt.Pos(),
			"Struct '%s' not found", stmt.StructName)
	}

	structObj, ok := structSlot.Value.(*StructTypeValue)
	if !ok {
		return normalResult(), errors.Newf(errors.TypeError, stmt.Pos(),
			"Variable `%s` is not a struct type", stmt.StructName)
	}

	if stmt.InterfaceName == OperationInterfaceName {
		return in.registerOperationImpl(stmt, structObj, env)
	}

	ifaceObj, ok := ifaceSlot.Value.(*InterfaceValue)
	if !ok {
		return normalResult(), errors.Newf(errors.TypeError, stmt.Pos(),
			"Variable `%s` is not an interface", stmt.InterfaceName)
	}

	structType := structObj.Type
	ifaceType := ifaceObj.Type

	if env.HasImplRegistered(structType, ifaceType) {
		return normalResult(), errors.Newf(errors.DuplicateImplementError, stmt.Pos(),
			"Duplicate implement `%s` for `%s`", ifaceType.Name, structType.Name)
	}

	ifaceMethods := make(map[string]ast.InterfaceMethod, len(ifaceObj.Methods))
	for _, m := range ifaceObj.Methods {
		ifaceMethods[m.Name] = m
	}

	record := &ImplRecord{
		Interface: ifaceType,
		Struct:    structType,
		Methods:   make(map[string]*FunctionValue),
	}

	for _, implMethod := range stmt.Methods {
		ifMethod, required := ifaceMethods[implMethod.Name]
		if !required {
			return normalResult(), errors.Newf(errors.RedundantImplementationError, stmt.Pos(),
				"Struct '%s' implements extra method '%s' which is not required by interface '%s'",
				structType.Name, implMethod.Name, ifaceType.Name)
		}
		if _, dup := record.Methods[implMethod.Name]; dup {
			return normalResult(), errors.Newf(errors.DuplicateImplementMethodError, stmt.Pos(),
				"Duplicate implement method '%s'", implMethod.Name)
		}
		if !signaturesMatch(implMethod.Params, ifMethod.Params) {
			return normalResult(), errors.Newf(errors.InterfaceSignatureMismatch, stmt.Pos(),
				"Interface method '%s(%s)' signature mismatch with implementation '%s(%s)'",
				ifMethod.Name, ifMethod.Params.String(), implMethod.Name, implMethod.Params.String())
		}
		if _, taken := env.ImplementedMethod(structType, implMethod.Name); taken {
			return normalResult(), errors.Newf(errors.DuplicateImplementMethodError, stmt.Pos(),
				"Method '%s' already implemented by another interface for struct '%s'",
				implMethod.Name, structType.Name)
		}

		returnType := TypeAny
		if ifMethod.ReturnType != "Any" {
			t, e := in.resolveTypeName(ifMethod.ReturnType, env, stmt.Pos())
			if e != nil {
				return normalResult(), e
			}
			returnType = t
		}
		record.Methods[implMethod.Name] = &FunctionValue{
			ID:         in.nextFunctionID(),
			Name:       implMethod.Name,
			Kind:       FuncUser,
			Params:     implMethod.Params,
			ReturnType: returnType,
			Body:       implMethod.Body,
			Closure:    env,
		}
	}

	for _, m := range ifaceObj.Methods {
		if _, implemented := record.Methods[m.Name]; implemented {
			continue
		}
		if m.HasDefaultBody() {
			continue
		}
		return normalResult(), errors.Newf(errors.MissingImplementationError, stmt.Pos(),
			"Struct '%s' does not implement required interface method '%s' and interface '%s' provides no default implementation",
			structType.Name, m.Name, ifaceType.Name)
	}

	env.SetImplRecord(record, ifaceObj)
	return normalResult(), nil
}

// registerOperationImpl registers operator overloads for a struct type from
// an `impl Operation` statement. Overloading builtin types is forbidden;
// overload methods must take only positional parameters typed Any or the
// owning struct type.
func (in *Interpreter) registerOperationImpl(stmt *ast.ImplementStatement, structObj *StructTypeValue, env *Environment) (StatementResult, error) {
	structType := structObj.Type
	if structObj.Builtin || IsBuiltinType(structType) {
		return normalResult(), errors.Newf(errors.TypeError, stmt.Pos(),
			"Operators of built-in type `%s` cannot be overloaded", structType.Name)
	}

	for _, implMethod := range stmt.Methods {
		spec, known := operationMethods[implMethod.Name]
		if !known {
			continue
		}
		unary := spec.arity == 1

		if env.HasOperator(structType, spec.op, unary) {
			return normalResult(), errors.Newf(errors.DuplicateImplementError, stmt.Pos(),
				"Operator %s has already been implemented for `%s`", implMethod.Name, structType.Name)
		}

		params := implMethod.Params
		if len(params.Positional) != spec.arity || params.Len() != spec.arity || params.IsVariadic() {
			return normalResult(), errors.Newf(errors.InterfaceSignatureMismatch, stmt.Pos(),
				"Operator %s for %s must take exactly %d positional parameters, got %d",
				implMethod.Name, structType.Name, spec.arity, params.Len())
		}
		for _, p := range params.Positional {
			if p.TypeName == "Any" {
				continue
			}
			t, e := in.resolveTypeName(p.TypeName, env, stmt.Pos())
			if e != nil {
				return normalResult(), e
			}
			if !t.Equal(structType) {
				return normalResult(), errors.Newf(errors.TypeError, stmt.Pos(),
					"Invalid operator parameter type '%s' of `%s`, must be `Any` or `%s`",
					p.TypeName, p.Name, structType.Name)
			}
		}

		env.RegisterOperator(structType, spec.op, unary, &FunctionValue{
			ID:         in.nextFunctionID(),
			Name:       OperationInterfaceName + "." + structType.Name + "." + implMethod.Name,
			Kind:       FuncUser,
			Params:     params,
			ReturnType: TypeAny,
			Body:       implMethod.Body,
			Closure:    env,
		})
	}
	return normalResult(), nil
}

// signaturesMatch reports whether an impl method's parameter list matches the
// interface declaration: positional names and declared types, defaulted
// names, types and presence, and the variadic tail must all agree.
func signaturesMatch(impl, iface ast.Parameters) bool {
	if impl.Variadic != iface.Variadic {
		return false
	}
	if len(impl.Positional) != len(iface.Positional) || len(impl.Defaulted) != len(iface.Defaulted) {
		return false
	}
	for i := range impl.Positional {
		if impl.Positional[i].Name != iface.Positional[i].Name ||
			impl.Positional[i].TypeName != iface.Positional[i].TypeName {
			return false
		}
	}
	for i := range impl.Defaulted {
		if impl.Defaulted[i].Name != iface.Defaulted[i].Name ||
			impl.Defaulted[i].TypeName != iface.Defaulted[i].TypeName {
			return false
		}
	}
	return true
}
