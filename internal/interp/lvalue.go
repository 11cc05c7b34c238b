package interp

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// LvalueKind discriminates the assignable location categories.
type LvalueKind int

const (
	LvVariable LvalueKind = iota
	LvListElement
	LvMapElement
	LvStringElement
	LvBoundMethod
)

// Lvalue is a reference to an assignable location. Member-bound methods are
// readable but reject writes.
type Lvalue struct {
	Kind LvalueKind

	Slot *VariableSlot // LvVariable, LvBoundMethod

	List  *ListValue   // LvListElement
	Map   *MapValue    // LvMapElement
	Str   *StringValue // LvStringElement
	Index int64        // LvListElement, LvStringElement
	Key   Value        // LvMapElement
}

// variableLvalue wraps a slot reference.
func variableLvalue(slot *VariableSlot) Lvalue {
	return Lvalue{Kind: LvVariable, Slot: slot}
}

// boundMethodLvalue wraps a method in a synthetic immutable slot so that
// obj.method can be called but not assigned.
func boundMethodLvalue(name string, fn *FunctionValue) Lvalue {
	return Lvalue{
		Kind: LvBoundMethod,
		Slot: &VariableSlot{
			Name:         name,
			Value:        fn,
			DeclaredType: TypeFunction,
			Access:       ast.AccessPublicConst,
		},
	}
}

// read returns the current value of the location.
func (in *Interpreter) readLvalue(lv Lvalue, pos lexer.Position) (Value, *errors.Error) {
	switch lv.Kind {
	case LvVariable, LvBoundMethod:
		return lv.Slot.resolve().Value, nil

	case LvListElement:
		if lv.Index < 0 || lv.Index >= int64(len(lv.List.Elements)) {
			return nil, errors.Newf(errors.IndexOutOfRangeError, pos,
				"Index %d out of list range (length %d)", lv.Index, len(lv.List.Elements))
		}
		return lv.List.Elements[lv.Index], nil

	case LvMapElement:
		v, ok := lv.Map.Get(lv.Key)
		if !ok {
			return nil, errors.Newf(errors.KeyError, pos, "Key %s not found in map", displayElem(lv.Key))
		}
		return v, nil

	case LvStringElement:
		runes := []rune(lv.Str.Value)
		if lv.Index < 0 || lv.Index >= int64(len(runes)) {
			return nil, errors.Newf(errors.IndexOutOfRangeError, pos,
				"Index %d out of string range (length %d)", lv.Index, len(runes))
		}
		return &StringValue{Value: string(runes[lv.Index])}, nil
	}
	return nil, errors.New(errors.RuntimeError, "invalid lvalue", pos)
}

// writeLvalue assigns a value to the location, enforcing declared types and
// immutability.
func (in *Interpreter) writeLvalue(lv Lvalue, v Value, env *Environment, pos lexer.Position) *errors.Error {
	switch lv.Kind {
	case LvBoundMethod:
		return errors.Newf(errors.ImmutableError, pos, "Cannot assign to member method `%s`", lv.Slot.Name)

	case LvVariable:
		slot := lv.Slot.resolve()
		if slot.Access.IsConst() {
			return errors.Newf(errors.ImmutableError, pos, "Variable `%s` is immutable", slot.Name)
		}
		if !in.isTypeMatch(slot.DeclaredType, v, env) {
			return errors.Newf(errors.TypeError, pos,
				"Variable `%s` expects type `%s`, but got '%s'",
				slot.Name, slot.DeclaredType.Name, v.TypeInfo().Name)
		}
		slot.Value = v
		return nil

	case LvListElement:
		if lv.Index < 0 || lv.Index >= int64(len(lv.List.Elements)) {
			return errors.Newf(errors.IndexOutOfRangeError, pos,
				"Index %d out of list range (length %d)", lv.Index, len(lv.List.Elements))
		}
		lv.List.Elements[lv.Index] = v
		return nil

	case LvMapElement:
		lv.Map.Set(lv.Key, v)
		return nil

	case LvStringElement:
		s, ok := v.(*StringValue)
		if !ok || s.Len() != 1 {
			return errors.New(errors.TypeError,
				"String element assignment requires a single-code-point String", pos)
		}
		runes := []rune(lv.Str.Value)
		if lv.Index < 0 || lv.Index >= int64(len(runes)) {
			return errors.Newf(errors.IndexOutOfRangeError, pos,
				"Index %d out of string range (length %d)", lv.Index, len(runes))
		}
		runes[lv.Index] = []rune(s.Value)[0]
		lv.Str.Value = string(runes)
		return nil
	}
	return errors.New(errors.RuntimeError, "invalid lvalue", pos)
}
