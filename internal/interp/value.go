package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/puqiar/go-fig/internal/ast"
)

// Value represents a runtime value in the Fig interpreter. TypeInfo returns
// the value's dynamic type; String returns the display form used by print
// and string conversion.
//
// Values are shared by reference: containers and struct instances are held
// through pointers, so mutation is visible through every alias.
type Value interface {
	TypeInfo() TypeInfo
	String() string
}

// NullValue represents the null value. A single shared instance is used.
type NullValue struct{}

// Null is the shared null instance.
var Null = &NullValue{}

func (n *NullValue) TypeInfo() TypeInfo { return TypeNull }
func (n *NullValue) String() string     { return "null" }

// IntValue represents a 64-bit signed integer.
type IntValue struct {
	Value int64
}

func (i *IntValue) TypeInfo() TypeInfo { return TypeInt }
func (i *IntValue) String() string     { return strconv.FormatInt(i.Value, 10) }

// DoubleValue represents a double-precision float.
type DoubleValue struct {
	Value float64
}

func (d *DoubleValue) TypeInfo() TypeInfo { return TypeDouble }
func (d *DoubleValue) String() string     { return strconv.FormatFloat(d.Value, 'g', -1, 64) }

// BoolValue represents a boolean.
type BoolValue struct {
	Value bool
}

// Shared true/false instances.
var (
	True  = &BoolValue{Value: true}
	False = &BoolValue{Value: false}
)

// boolValue returns the shared instance for b.
func boolValue(b bool) *BoolValue {
	if b {
		return True
	}
	return False
}

func (b *BoolValue) TypeInfo() TypeInfo { return TypeBool }
func (b *BoolValue) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// StringValue represents a UTF-8 string. Index, length and mutation
// operations are code-point based.
type StringValue struct {
	Value string
}

func (s *StringValue) TypeInfo() TypeInfo { return TypeString }
func (s *StringValue) String() string     { return s.Value }

// Len returns the string length in code points.
func (s *StringValue) Len() int { return len([]rune(s.Value)) }

// FunctionKind selects between the three function variants.
type FunctionKind int

const (
	FuncUser    FunctionKind = iota // user-defined, body + closure env
	FuncBuiltin                     // host function over a value slice
	FuncBound                       // builtin member method bound to a receiver
)

// BuiltinFunc is the host signature of a builtin function.
type BuiltinFunc func(args []Value) (Value, error)

// BoundFunc is the host signature of a builtin member method.
type BoundFunc func(recv Value, args []Value) (Value, error)

// FunctionValue represents a callable. Every function carries a
// process-unique id; two function values are equal iff their ids are equal.
type FunctionValue struct {
	ID   int64
	Name string
	Kind FunctionKind

	// user-defined
	Params     ast.Parameters
	ReturnType TypeInfo
	Body       *ast.BlockStatement
	Closure    *Environment

	// builtin; Arity is -1 for variadic
	Builtin BuiltinFunc
	Arity   int

	// member-bound
	Bound    BoundFunc
	Receiver Value
}

func (f *FunctionValue) TypeInfo() TypeInfo { return TypeFunction }
func (f *FunctionValue) String() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("<Function %s #%d>", name, f.ID)
}

// Field is one declared field of a struct type.
type Field struct {
	Access  ast.AccessModifier
	Name    string
	Type    TypeInfo
	Default ast.Expression // nil when the field has no default
}

// StructTypeValue represents a struct type object. Builtin type objects
// (Int, String, ...) share this representation with Builtin set and no
// defining environment.
type StructTypeValue struct {
	Type    TypeInfo
	DefEnv  *Environment
	Fields  []Field
	Builtin bool
}

func (s *StructTypeValue) TypeInfo() TypeInfo { return TypeStructType }
func (s *StructTypeValue) String() string {
	return fmt.Sprintf("<StructType %s>", s.Type.Name)
}

// RequiredFields returns the number of fields without a default value.
func (s *StructTypeValue) RequiredFields() int {
	n := 0
	for _, f := range s.Fields {
		if f.Default == nil {
			n++
		}
	}
	return n
}

// FieldNamed returns the field with the given name.
func (s *StructTypeValue) FieldNamed(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StructInstanceValue represents one struct instance. Fields and rebound
// methods live in Env, whose parent is the struct's defining environment.
type StructInstanceValue struct {
	Parent TypeInfo
	Env    *Environment
}

func (s *StructInstanceValue) TypeInfo() TypeInfo { return s.Parent }
func (s *StructInstanceValue) String() string {
	return fmt.Sprintf("<%s instance>", s.Parent.Name)
}

// ListValue represents a mutable list shared by reference.
type ListValue struct {
	Elements []Value
}

func (l *ListValue) TypeInfo() TypeInfo { return TypeList }
func (l *ListValue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range l.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(displayElem(e))
	}
	sb.WriteString("]")
	return sb.String()
}

// mapKeyKind discriminates the comparable key representation.
type mapKeyKind int8

const (
	keyNull mapKeyKind = iota
	keyInt
	keyDouble
	keyBool
	keyString
	keyType
	keyIdentity
)

// mapKey is the comparable hash key of a map entry. Structural equality is
// used for Int, Double, Bool, String and type values; struct instances and
// other reference values key by identity.
type mapKey struct {
	kind mapKeyKind
	i    int64
	f    float64
	s    string
	p    any
}

// keyOf derives the map key for a value.
func keyOf(v Value) mapKey {
	switch v := v.(type) {
	case *NullValue:
		return mapKey{kind: keyNull}
	case *IntValue:
		return mapKey{kind: keyInt, i: v.Value}
	case *DoubleValue:
		return mapKey{kind: keyDouble, f: v.Value}
	case *BoolValue:
		return mapKey{kind: keyBool, i: btoi(v.Value)}
	case *StringValue:
		return mapKey{kind: keyString, s: v.Value}
	case *StructTypeValue:
		return mapKey{kind: keyType, i: int64(v.Type.ID())}
	case *InterfaceValue:
		return mapKey{kind: keyType, i: int64(v.Type.ID())}
	case *StructInstanceValue:
		return mapKey{kind: keyIdentity, p: v.Env}
	default:
		return mapKey{kind: keyIdentity, p: v}
	}
}

func btoi(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

type mapEntry struct {
	Key   Value
	Value Value
}

// MapValue represents a mutable map shared by reference. Iteration order is
// not guaranteed.
type MapValue struct {
	entries map[mapKey]mapEntry
}

// NewMap creates an empty map value.
func NewMap() *MapValue {
	return &MapValue{entries: make(map[mapKey]mapEntry)}
}

func (m *MapValue) TypeInfo() TypeInfo { return TypeMap }

func (m *MapValue) String() string {
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		parts = append(parts, displayElem(e.Key)+": "+displayElem(e.Value))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value stored under key.
func (m *MapValue) Get(key Value) (Value, bool) {
	e, ok := m.entries[keyOf(key)]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Set stores value under key.
func (m *MapValue) Set(key, value Value) {
	m.entries[keyOf(key)] = mapEntry{Key: key, Value: value}
}

// Contains reports whether key is present.
func (m *MapValue) Contains(key Value) bool {
	_, ok := m.entries[keyOf(key)]
	return ok
}

// Len returns the number of entries.
func (m *MapValue) Len() int { return len(m.entries) }

// Range calls f for each entry until it returns false.
func (m *MapValue) Range(f func(key, value Value) bool) {
	for _, e := range m.entries {
		if !f(e.Key, e.Value) {
			return
		}
	}
}

// ModuleValue wraps the environment produced by evaluating a module file.
type ModuleValue struct {
	Name string
	Env  *Environment
}

func (m *ModuleValue) TypeInfo() TypeInfo { return TypeModule }
func (m *ModuleValue) String() string     { return fmt.Sprintf("<Module %s>", m.Name) }

// InterfaceValue represents an interface type object.
type InterfaceValue struct {
	Type    TypeInfo
	Methods []ast.InterfaceMethod
}

func (i *InterfaceValue) TypeInfo() TypeInfo { return TypeInterface }
func (i *InterfaceValue) String() string {
	return fmt.Sprintf("<Interface %s>", i.Type.Name)
}

// displayElem renders a container element: strings are quoted, everything
// else uses its display form.
func displayElem(v Value) string {
	if s, ok := v.(*StringValue); ok {
		return strconv.Quote(s.Value)
	}
	return v.String()
}

// defaultValueOf returns the zero value of a builtin type, or null.
func defaultValueOf(t TypeInfo) Value {
	switch t.id {
	case TypeInt.id:
		return &IntValue{Value: 0}
	case TypeDouble.id:
		return &DoubleValue{Value: 0}
	case TypeString.id:
		return &StringValue{Value: ""}
	case TypeBool.id:
		return False
	case TypeList.id:
		return &ListValue{}
	case TypeMap.id:
		return NewMap()
	default:
		return Null
	}
}

// valuesEqual implements the == operator: structural equality for
// primitives (numeric equality uses the comparison epsilon), id equality for
// functions and types, identity for instances and containers.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case *NullValue:
		_, ok := b.(*NullValue)
		return ok
	case *IntValue:
		if bn, ok := numericOf(b); ok {
			return floatsEqual(float64(av.Value), bn)
		}
		return false
	case *DoubleValue:
		if bn, ok := numericOf(b); ok {
			return floatsEqual(av.Value, bn)
		}
		return false
	case *BoolValue:
		bv, ok := b.(*BoolValue)
		return ok && av.Value == bv.Value
	case *StringValue:
		bv, ok := b.(*StringValue)
		return ok && av.Value == bv.Value
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		return ok && av.ID == bv.ID
	case *StructTypeValue:
		bv, ok := b.(*StructTypeValue)
		return ok && av.Type.Equal(bv.Type)
	case *InterfaceValue:
		bv, ok := b.(*InterfaceValue)
		return ok && av.Type.Equal(bv.Type)
	case *StructInstanceValue:
		bv, ok := b.(*StructInstanceValue)
		return ok && av.Env == bv.Env
	case *ListValue:
		bv, ok := b.(*ListValue)
		return ok && av == bv
	case *MapValue:
		bv, ok := b.(*MapValue)
		return ok && av == bv
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		return ok && av.Env == bv.Env
	default:
		return a == b
	}
}

// numericOf returns the float64 reading of a numeric value.
func numericOf(v Value) (float64, bool) {
	switch v := v.(type) {
	case *IntValue:
		return float64(v.Value), true
	case *DoubleValue:
		return v.Value, true
	}
	return 0, false
}

// isNumeric reports whether v is Int or Double.
func isNumeric(v Value) bool {
	_, ok := numericOf(v)
	return ok
}
