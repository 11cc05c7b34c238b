package interp

import (
	"strings"

	"github.com/puqiar/go-fig/internal/ast"
)

// VariableSlot is one named binding in a scope: the value, the declared type
// enforced on every write, and the access modifier.
type VariableSlot struct {
	Name         string
	Value        Value
	DeclaredType TypeInfo
	Access       ast.AccessModifier
	Ref          *VariableSlot // alias target, nil for ordinary slots
}

// resolve follows reference aliases to the underlying slot.
func (s *VariableSlot) resolve() *VariableSlot {
	for s.Ref != nil {
		s = s.Ref
	}
	return s
}

// implKey identifies one interface implementation for one struct type.
type implKey struct {
	structID    int
	interfaceID int
}

// methodKey identifies one implemented method of a struct type.
type methodKey struct {
	structID int
	name     string
}

// opKey identifies one operator overload of a struct type.
type opKey struct {
	structID int
	op       ast.Operator
	unary    bool
}

// ImplRecord binds an interface's methods to a struct type.
type ImplRecord struct {
	Interface TypeInfo
	Struct    TypeInfo
	Methods   map[string]*FunctionValue
}

// Environment is a scope: a name-to-slot mapping with a parent link, plus the
// registries for functions, interface implementations and operator overloads
// established in this scope.
type Environment struct {
	scopeName     string
	vars          map[string]*VariableSlot
	functions     map[int64]*FunctionValue
	functionNames map[int64]string
	parent        *Environment

	impls     map[implKey]*ImplRecord
	methods   map[methodKey]*FunctionValue
	defaults  map[methodKey]ast.InterfaceMethod
	operators map[opKey]*FunctionValue
}

// NewEnvironment creates a root scope with the given name.
func NewEnvironment(name string) *Environment {
	return &Environment{
		scopeName:     name,
		vars:          make(map[string]*VariableSlot),
		functions:     make(map[int64]*FunctionValue),
		functionNames: make(map[int64]string),
		impls:         make(map[implKey]*ImplRecord),
		methods:       make(map[methodKey]*FunctionValue),
		defaults:      make(map[methodKey]ast.InterfaceMethod),
		operators:     make(map[opKey]*FunctionValue),
	}
}

// NewEnclosedEnvironment creates a child scope of parent.
func NewEnclosedEnvironment(name string, parent *Environment) *Environment {
	env := NewEnvironment(name)
	env.parent = parent
	return env
}

// ScopeName returns the name used in stack traces.
func (e *Environment) ScopeName() string { return e.scopeName }

// Parent returns the enclosing scope, or nil.
func (e *Environment) Parent() *Environment { return e.parent }

// Get returns the slot for name, searching the parent chain.
func (e *Environment) Get(name string) (*VariableSlot, bool) {
	if slot, ok := e.vars[name]; ok {
		return slot, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

// Contains reports whether name is bound anywhere in the scope chain.
func (e *Environment) Contains(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// ContainsInThisScope reports whether name is bound in this scope only.
func (e *Environment) ContainsInThisScope(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Define creates a new slot in this scope. The caller must have checked for
// redeclaration. Functions are additionally indexed by their id.
func (e *Environment) Define(name string, declared TypeInfo, access ast.AccessModifier, value Value) {
	e.vars[name] = &VariableSlot{
		Name:         name,
		Value:        value,
		DeclaredType: declared,
		Access:       access,
	}
	if fn, ok := value.(*FunctionValue); ok {
		e.functions[fn.ID] = fn
		e.functionNames[fn.ID] = name
	}
}

// FunctionName returns the name under which a function id was defined.
func (e *Environment) FunctionName(id int64) (string, bool) {
	if name, ok := e.functionNames[id]; ok {
		return name, true
	}
	if e.parent != nil {
		return e.parent.FunctionName(id)
	}
	return "", false
}

// Functions returns the functions defined in this scope only.
func (e *Environment) Functions() map[int64]*FunctionValue {
	return e.functions
}

// StackTrace returns the scope names from outermost to innermost.
func (e *Environment) StackTrace() []string {
	var chain []string
	for env := e; env != nil; env = env.parent {
		chain = append(chain, env.scopeName)
	}
	// reverse: outermost first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// InLoopContext reports whether the scope chain passes through a loop scope.
// The walk stops at the first function call frame: a loop enclosing the
// function's definition site must not absorb a break inside the body.
func (e *Environment) InLoopContext() bool {
	for env := e; env != nil; env = env.parent {
		if strings.HasPrefix(env.scopeName, "<While ") || strings.HasPrefix(env.scopeName, "<For ") {
			return true
		}
		if strings.HasPrefix(env.scopeName, "<Function ") {
			return false
		}
	}
	return false
}

// --- impl registry ---

// HasImplRegistered reports whether structType already implements interfaceType.
func (e *Environment) HasImplRegistered(structType, interfaceType TypeInfo) bool {
	key := implKey{structType.ID(), interfaceType.ID()}
	for env := e; env != nil; env = env.parent {
		if _, ok := env.impls[key]; ok {
			return true
		}
	}
	return false
}

// SetImplRecord registers an implementation with its methods and the
// interface's remaining default methods.
func (e *Environment) SetImplRecord(record *ImplRecord, iface *InterfaceValue) {
	e.impls[implKey{record.Struct.ID(), record.Interface.ID()}] = record
	for name, fn := range record.Methods {
		e.methods[methodKey{record.Struct.ID(), name}] = fn
	}
	for _, m := range iface.Methods {
		if _, overridden := record.Methods[m.Name]; overridden {
			continue
		}
		if m.HasDefaultBody() {
			e.defaults[methodKey{record.Struct.ID(), m.Name}] = m
		}
	}
}

// ImplementedMethod returns the impl-provided method name for a type.
func (e *Environment) ImplementedMethod(t TypeInfo, name string) (*FunctionValue, bool) {
	key := methodKey{t.ID(), name}
	for env := e; env != nil; env = env.parent {
		if fn, ok := env.methods[key]; ok {
			return fn, true
		}
	}
	return nil, false
}

// DefaultMethod returns the interface default method registered for a type.
func (e *Environment) DefaultMethod(t TypeInfo, name string) (ast.InterfaceMethod, bool) {
	key := methodKey{t.ID(), name}
	for env := e; env != nil; env = env.parent {
		if m, ok := env.defaults[key]; ok {
			return m, true
		}
	}
	return ast.InterfaceMethod{}, false
}

// Implements reports whether structType implements interfaceType anywhere in
// the scope chain.
func (e *Environment) Implements(structType, interfaceType TypeInfo) bool {
	return e.HasImplRegistered(structType, interfaceType)
}

// --- operator overload registry ---

// HasOperator reports whether an overload is registered for (type, op, arity).
func (e *Environment) HasOperator(t TypeInfo, op ast.Operator, unary bool) bool {
	_, ok := e.OperatorMethod(t, op, unary)
	return ok
}

// OperatorMethod returns the overload method for (type, op, arity).
func (e *Environment) OperatorMethod(t TypeInfo, op ast.Operator, unary bool) (*FunctionValue, bool) {
	key := opKey{t.ID(), op, unary}
	for env := e; env != nil; env = env.parent {
		if fn, ok := env.operators[key]; ok {
			return fn, true
		}
	}
	return nil, false
}

// RegisterOperator records an overload method in this scope.
func (e *Environment) RegisterOperator(t TypeInfo, op ast.Operator, unary bool, fn *FunctionValue) {
	e.operators[opKey{t.ID(), op, unary}] = fn
}

// MergeRegistries copies another environment's impl and operator registries
// into this scope. Used when importing a module.
func (e *Environment) MergeRegistries(other *Environment) {
	for k, v := range other.impls {
		e.impls[k] = v
	}
	for k, v := range other.methods {
		e.methods[k] = v
	}
	for k, v := range other.defaults {
		e.defaults[k] = v
	}
	for k, v := range other.operators {
		e.operators[k] = v
	}
}
