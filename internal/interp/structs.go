package interp

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
)

// evalStructDef executes a struct definition: registers the type, evaluates
// field declarations, and defines the methods in the struct's defining
// environment. The type object is pre-defined in both the surrounding scope
// and its own defining environment so methods can refer to the struct.
func (in *Interpreter) evalStructDef(stmt *ast.StructDefStatement, env *Environment) (StatementResult, error) {
	if env.ContainsInThisScope(stmt.Name) {
		return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
			"Structure '%s' already defined in this scope", stmt.Name)
	}

	structType := in.types.Register(stmt.Name)
	defEnv := NewEnclosedEnvironment(scopeNameAt("Struct "+stmt.Name, stmt.Pos()), env)
	typeObj := &StructTypeValue{Type: structType, DefEnv: defEnv}

	access := ast.AccessConst
	if stmt.IsPublic {
		access = ast.AccessPublicConst
	}
	env.Define(stmt.Name, TypeStructType, access, typeObj)
	defEnv.Define(stmt.Name, TypeStructType, ast.AccessConst, typeObj)

	fields := make([]Field, 0, len(stmt.Fields))
	seen := make(map[string]bool)
	for _, fd := range stmt.Fields {
		if seen[fd.Name] {
			return normalResult(), errors.Newf(errors.RedeclarationError, stmt.Pos(),
				"Field '%s' already defined in structure '%s'", fd.Name, stmt.Name)
		}
		seen[fd.Name] = true

		fieldType := TypeAny
		if fd.TypeName != "Any" {
			t, e := in.resolveTypeName(fd.TypeName, env, stmt.Pos())
			if e != nil {
				return normalResult(), e
			}
			fieldType = t
		}
		// struct fields are accessible through instances regardless of the
		// `public` marker; only const-ness is enforced
		access := ast.AccessPublic
		if fd.Access.IsConst() {
			access = ast.AccessPublicConst
		}
		fields = append(fields, Field{
			Access:  access,
			Name:    fd.Name,
			Type:    fieldType,
			Default: fd.Default,
		})
	}
	typeObj.Fields = fields

	for _, bodyStmt := range stmt.Body.Statements {
		switch bodyStmt.(type) {
		case *ast.FunctionDefStatement, *ast.StructDefStatement:
			if _, err := in.evalStatement(bodyStmt, defEnv); err != nil {
				return normalResult(), err
			}
		default:
			return normalResult(), errors.Newf(errors.RuntimeError, bodyStmt.Pos(),
				"Unexpected statement in struct declaration")
		}
	}
	return normalResult(), nil
}

// evalInitExpr evaluates a struct-init expression in one of the three
// construction modes. Builtin type objects construct primitive values.
func (in *Interpreter) evalInitExpr(ie *ast.StructInitExpression, env *Environment) (Value, error) {
	typeVal, err := in.eval(ie.Type, env)
	if err != nil {
		return nil, err
	}
	structT, ok := typeVal.(*StructTypeValue)
	if !ok {
		return nil, errors.Newf(errors.TypeError, ie.Pos(),
			"'%s' is not a structure type", typeVal.String())
	}

	if structT.Builtin {
		return in.constructBuiltin(structT, ie, env)
	}

	structName := structT.Type.Name
	minArgs := structT.RequiredFields()
	maxArgs := len(structT.Fields)
	got := len(ie.Args)
	if got < minArgs || got > maxArgs {
		return nil, errors.Newf(errors.StructInitArgumentMismatch, ie.Pos(),
			"Structure '%s' expects %d to %d fields, but %d were provided",
			structName, minArgs, maxArgs, got)
	}

	instanceEnv := NewEnclosedEnvironment("<StructInstance "+structName+">", structT.DefEnv)

	defineField := func(f Field, v Value) *errors.Error {
		if !in.isTypeMatch(f.Type, v, env) {
			return errors.Newf(errors.StructFieldTypeMismatchError, ie.Pos(),
				"In structure '%s', field '%s' expects type '%s', but got type '%s'",
				structName, f.Name, f.Type.Name, v.TypeInfo().Name)
		}
		instanceEnv.Define(f.Name, f.Type, f.Access, v)
		return nil
	}

	// fieldDefault evaluates a missing field's default expression in the
	// struct's defining environment.
	fieldDefault := func(f Field) (Value, error) {
		if f.Default == nil {
			return nil, errors.Newf(errors.StructFieldNotFoundError, ie.Pos(),
				"Field '%s' of structure '%s' was not initialized and has no default",
				f.Name, structName)
		}
		return in.eval(f.Default, structT.DefEnv)
	}

	switch ie.Mode {
	case ast.InitPositional:
		args := make([]Value, 0, got)
		for _, a := range ie.Args {
			v, err := in.eval(a.Value, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		for i, f := range structT.Fields {
			var v Value
			if i < len(args) {
				v = args[i]
			} else {
				v, err = fieldDefault(f)
				if err != nil {
					return nil, err
				}
			}
			if e := defineField(f, v); e != nil {
				return nil, e
			}
		}

	case ast.InitNamed:
		byName := make(map[string]Value, got)
		for _, a := range ie.Args {
			if _, dup := byName[a.Name]; dup {
				return nil, errors.Newf(errors.StructFieldRedeclarationError, ie.Pos(),
					"Field '%s' already initialized in structure '%s'", a.Name, structName)
			}
			v, err := in.eval(a.Value, env)
			if err != nil {
				return nil, err
			}
			byName[a.Name] = v
		}
		for name := range byName {
			if _, ok := structT.FieldNamed(name); !ok {
				return nil, errors.Newf(errors.StructFieldNotFoundError, ie.Pos(),
					"Field '%s' not found in structure '%s'", name, structName)
			}
		}
		for _, f := range structT.Fields {
			v, provided := byName[f.Name]
			if !provided {
				var err error
				v, err = fieldDefault(f)
				if err != nil {
					return nil, err
				}
			}
			if e := defineField(f, v); e != nil {
				return nil, e
			}
		}

	case ast.InitShorthand:
		// a shorthand identifier that does not name a field degrades the
		// whole expression to positional mode
		for _, a := range ie.Args {
			if _, ok := structT.FieldNamed(a.Name); !ok {
				fallback := &ast.StructInitExpression{
					Token: ie.Token, Type: ie.Type, Args: ie.Args, Mode: ast.InitPositional,
				}
				return in.evalInitExpr(fallback, env)
			}
		}
		bound := make(map[string]Value, got)
		for _, a := range ie.Args {
			v, err := in.eval(a.Value, env)
			if err != nil {
				return nil, err
			}
			bound[a.Name] = v
		}
		for _, f := range structT.Fields {
			v, provided := bound[f.Name]
			if !provided {
				var err error
				v, err = fieldDefault(f)
				if err != nil {
					return nil, err
				}
			}
			if e := defineField(f, v); e != nil {
				return nil, e
			}
		}
	}

	// rebind the struct's methods to the instance so identifier lookup inside
	// a method body resolves fields through the instance environment
	for id, fn := range structT.DefEnv.Functions() {
		name, _ := structT.DefEnv.FunctionName(id)
		rebound := &FunctionValue{
			ID:         in.nextFunctionID(),
			Name:       name,
			Kind:       FuncUser,
			Params:     fn.Params,
			ReturnType: fn.ReturnType,
			Body:       fn.Body,
			Closure:    instanceEnv,
		}
		instanceEnv.Define(name, TypeFunction, ast.AccessPublicConst, rebound)
	}

	return &StructInstanceValue{Parent: structT.Type, Env: instanceEnv}, nil
}

// constructBuiltin handles TypeName{...} for builtin type objects. The
// zero-argument form yields the type's default value; the one-argument form
// validates the argument and shallow-copies containers.
func (in *Interpreter) constructBuiltin(structT *StructTypeValue, ie *ast.StructInitExpression, env *Environment) (Value, error) {
	t := structT.Type
	if len(ie.Args) > 1 {
		return nil, errors.Newf(errors.StructInitArgumentMismatch, ie.Pos(),
			"Builtin type `%s` expects 0 or 1 argument, but %d were provided", t.Name, len(ie.Args))
	}

	constructible := t.Equal(TypeInt) || t.Equal(TypeDouble) || t.Equal(TypeBool) ||
		t.Equal(TypeString) || t.Equal(TypeList) || t.Equal(TypeMap) || t.Equal(TypeNull)
	if !constructible {
		return nil, errors.Newf(errors.TypeError, ie.Pos(),
			"Builtin type `%s` cannot be constructed", t.Name)
	}

	if len(ie.Args) == 0 {
		return defaultValueOf(t), nil
	}

	v, err := in.eval(ie.Args[0].Value, env)
	if err != nil {
		return nil, err
	}
	if !v.TypeInfo().Equal(t) {
		return nil, errors.Newf(errors.TypeError, ie.Pos(),
			"Builtin `%s` constructor expects %s, got '%s'", t.Name, t.Name, v.TypeInfo().Name)
	}

	switch v := v.(type) {
	case *ListValue:
		copied := make([]Value, len(v.Elements))
		copy(copied, v.Elements)
		return &ListValue{Elements: copied}, nil
	case *MapValue:
		m := NewMap()
		v.Range(func(k, val Value) bool {
			m.Set(k, val)
			return true
		})
		return m, nil
	default:
		return v, nil
	}
}
