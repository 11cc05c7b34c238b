package interp

import (
	"fmt"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
)

// evalMemberLvalue resolves `a.b`. Lookup order: module members, builtin
// member methods, impl-provided methods, instance members, interface default
// methods.
func (in *Interpreter) evalMemberLvalue(me *ast.MemberExpression, env *Environment) (Lvalue, error) {
	base, err := in.eval(me.Base, env)
	if err != nil {
		return Lvalue{}, err
	}
	member := me.Member

	// 1. module member: must exist and be public
	if mod, ok := base.(*ModuleValue); ok {
		slot, found := mod.Env.Get(member)
		if !found || !slot.Access.IsPublic() {
			return Lvalue{}, errors.Newf(errors.NoAttributeError, me.Pos(),
				"Module `%s` has no public member '%s'", mod.Name, member)
		}
		return variableLvalue(slot), nil
	}

	// 2. builtin member method of the value's type
	if method, ok := lookupBuiltinMethod(base, member); ok {
		return boundMethodLvalue(member, &FunctionValue{
			ID:       in.nextFunctionID(),
			Name:     member,
			Kind:     FuncBound,
			Arity:    method.arity,
			Bound:    method.fn,
			Receiver: base,
		}), nil
	}

	// 3. impl-provided method for the value's type; struct instances bind the
	// method to the instance environment, builtin receivers to the current one
	if si, ok := base.(*StructInstanceValue); ok {
		if fn, ok := env.ImplementedMethod(si.Parent, member); ok {
			bound := &FunctionValue{
				ID:         in.nextFunctionID(),
				Name:       member,
				Kind:       FuncUser,
				Params:     fn.Params,
				ReturnType: fn.ReturnType,
				Body:       fn.Body,
				Closure:    si.Env,
			}
			return boundMethodLvalue(member, bound), nil
		}
	} else if fn, ok := env.ImplementedMethod(base.TypeInfo(), member); ok {
		bound := &FunctionValue{
			ID:         in.nextFunctionID(),
			Name:       member,
			Kind:       FuncUser,
			Params:     fn.Params,
			ReturnType: fn.ReturnType,
			Body:       fn.Body,
			Closure:    env,
		}
		return boundMethodLvalue(member, bound), nil
	}

	si, ok := base.(*StructInstanceValue)
	if !ok {
		return Lvalue{}, errors.Newf(errors.NoAttributeError, me.Pos(),
			"`%s` has no attribute '%s'", base.String(), member)
	}

	// 4. public instance member
	if si.Env.ContainsInThisScope(member) {
		slot, _ := si.Env.Get(member)
		if slot.Access.IsPublic() {
			return variableLvalue(slot), nil
		}
	}

	// 5. interface default method, bound to the current environment
	if m, ok := env.DefaultMethod(si.Parent, member); ok {
		returnType := TypeAny
		if m.ReturnType != "Any" {
			t, e := in.resolveTypeName(m.ReturnType, env, me.Pos())
			if e != nil {
				return Lvalue{}, e
			}
			returnType = t
		}
		fn := &FunctionValue{
			ID:         in.nextFunctionID(),
			Name:       member,
			Kind:       FuncUser,
			Params:     m.Params,
			ReturnType: returnType,
			Body:       m.DefaultBody,
			Closure:    env,
		}
		return boundMethodLvalue(member, fn), nil
	}

	// 6. nothing matched
	return Lvalue{}, errors.Newf(errors.NoAttributeError, me.Pos(),
		"`%s` has no attribute '%s' and no interface implements it", base.String(), member)
}

// builtinMethod is one builtin member method: fixed arity plus host code.
type builtinMethod struct {
	arity int
	fn    BoundFunc
}

// lookupBuiltinMethod returns the builtin member method table entry for the
// value's type.
func lookupBuiltinMethod(v Value, name string) (builtinMethod, bool) {
	switch v.(type) {
	case *StringValue:
		m, ok := stringMethods[name]
		return m, ok
	case *ListValue:
		m, ok := listMethods[name]
		return m, ok
	case *MapValue:
		m, ok := mapMethods[name]
		return m, ok
	}
	return builtinMethod{}, false
}

// stringMethods are the code-point-based String member methods.
var stringMethods = map[string]builtinMethod{
	"length": {0, func(recv Value, args []Value) (Value, error) {
		return &IntValue{Value: int64(recv.(*StringValue).Len())}, nil
	}},

	// replace(i, s) overwrites the code point at i with the single-code-point
	// string s, in place.
	"replace": {2, func(recv Value, args []Value) (Value, error) {
		s := recv.(*StringValue)
		idx, ok := args[0].(*IntValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`replace` arg 1 expects type Int")
		}
		repl, ok := args[1].(*StringValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`replace` arg 2 expects type String")
		}
		runes := []rune(s.Value)
		if idx.Value < 0 || idx.Value >= int64(len(runes)) {
			return nil, errors.NewRuntime(errors.IndexOutOfRangeError,
				fmt.Sprintf("`replace` index %d out of range", idx.Value))
		}
		rr := []rune(repl.Value)
		if len(rr) != 1 {
			return nil, errors.NewRuntime(errors.ValueError, "`replace` expects a single-code-point String")
		}
		runes[idx.Value] = rr[0]
		s.Value = string(runes)
		return Null, nil
	}},

	// erase(i, n) removes n code points starting at i, in place.
	"erase": {2, func(recv Value, args []Value) (Value, error) {
		s := recv.(*StringValue)
		idx, ok := args[0].(*IntValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`erase` arg 1 expects type Int")
		}
		n, ok := args[1].(*IntValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`erase` arg 2 expects type Int")
		}
		if idx.Value < 0 || n.Value < 0 {
			return nil, errors.NewRuntime(errors.ValueError, "`erase`: index and count must be non-negative")
		}
		runes := []rune(s.Value)
		if idx.Value+n.Value > int64(len(runes)) {
			return nil, errors.NewRuntime(errors.IndexOutOfRangeError, "`erase`: range exceeds string length")
		}
		s.Value = string(runes[:idx.Value]) + string(runes[idx.Value+n.Value:])
		return Null, nil
	}},

	// insert(i, s) inserts s before the code point at i, in place.
	"insert": {2, func(recv Value, args []Value) (Value, error) {
		s := recv.(*StringValue)
		idx, ok := args[0].(*IntValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`insert` arg 1 expects type Int")
		}
		ins, ok := args[1].(*StringValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`insert` arg 2 expects type String")
		}
		runes := []rune(s.Value)
		if idx.Value < 0 || idx.Value > int64(len(runes)) {
			return nil, errors.NewRuntime(errors.IndexOutOfRangeError,
				fmt.Sprintf("`insert` index %d out of range", idx.Value))
		}
		s.Value = string(runes[:idx.Value]) + ins.Value + string(runes[idx.Value:])
		return Null, nil
	}},
}

// listMethods are the List member methods.
var listMethods = map[string]builtinMethod{
	"length": {0, func(recv Value, args []Value) (Value, error) {
		return &IntValue{Value: int64(len(recv.(*ListValue).Elements))}, nil
	}},

	// get(i) returns the element at i, or null when out of range.
	"get": {1, func(recv Value, args []Value) (Value, error) {
		list := recv.(*ListValue)
		idx, ok := args[0].(*IntValue)
		if !ok {
			return nil, errors.NewRuntime(errors.TypeError, "`get` arg 1 expects type Int")
		}
		if idx.Value < 0 || idx.Value >= int64(len(list.Elements)) {
			return Null, nil
		}
		return list.Elements[idx.Value], nil
	}},

	"push": {1, func(recv Value, args []Value) (Value, error) {
		list := recv.(*ListValue)
		list.Elements = append(list.Elements, args[0])
		return Null, nil
	}},
}

// mapMethods are the Map member methods.
var mapMethods = map[string]builtinMethod{
	// get(key) returns the stored value, or null for a missing key.
	"get": {1, func(recv Value, args []Value) (Value, error) {
		m := recv.(*MapValue)
		if v, ok := m.Get(args[0]); ok {
			return v, nil
		}
		return Null, nil
	}},

	"contains": {1, func(recv Value, args []Value) (Value, error) {
		return boolValue(recv.(*MapValue).Contains(args[0])), nil
	}},
}
