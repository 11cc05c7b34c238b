package interp

// TypeInfo identifies a Fig type. Equality is by id, not by name: two types
// with the same name defined in different modules are distinct.
type TypeInfo struct {
	id   int
	Name string
}

// Equal reports whether two TypeInfos denote the same type.
func (t TypeInfo) Equal(o TypeInfo) bool { return t.id == o.id }

// ID returns the process-unique type id.
func (t TypeInfo) ID() int { return t.id }

func (t TypeInfo) String() string { return t.Name }

// Builtin type identities. User type ids are allocated after these by the
// interpreter's type registry.
var (
	TypeAny            = TypeInfo{1, "Any"}
	TypeNull           = TypeInfo{2, "Null"}
	TypeInt            = TypeInfo{3, "Int"}
	TypeDouble         = TypeInfo{4, "Double"}
	TypeBool           = TypeInfo{5, "Bool"}
	TypeString         = TypeInfo{6, "String"}
	TypeFunction       = TypeInfo{7, "Function"}
	TypeStructType     = TypeInfo{8, "StructType"}
	TypeStructInstance = TypeInfo{9, "StructInstance"}
	TypeList           = TypeInfo{10, "List"}
	TypeMap            = TypeInfo{11, "Map"}
	TypeModule         = TypeInfo{12, "Module"}
	TypeInterface      = TypeInfo{13, "InterfaceType"}
)

const firstUserTypeID = 14

// IsBuiltinType reports whether the type is one of the predefined identities.
func IsBuiltinType(t TypeInfo) bool {
	return t.id > 0 && t.id < firstUserTypeID
}

// typeRegistry allocates type ids for named struct and interface types. It is
// owned by one interpreter instance so independent runs stay independent.
type typeRegistry struct {
	byName map[string]int
	nextID int
}

func newTypeRegistry() *typeRegistry {
	return &typeRegistry{
		byName: make(map[string]int),
		nextID: firstUserTypeID,
	}
}

// Register returns the TypeInfo for name, allocating a fresh id on first use.
func (r *typeRegistry) Register(name string) TypeInfo {
	if id, ok := r.byName[name]; ok {
		return TypeInfo{id, name}
	}
	id := r.nextID
	r.nextID++
	r.byName[name] = id
	return TypeInfo{id, name}
}

// Lookup returns the TypeInfo previously registered under name.
func (r *typeRegistry) Lookup(name string) (TypeInfo, bool) {
	if id, ok := r.byName[name]; ok {
		return TypeInfo{id, name}, true
	}
	return TypeInfo{}, false
}
