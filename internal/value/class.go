package value

import "sync/atomic"

// idCounter hands out identity ids for Standard/Union instances and
// Functions so equality-by-identity and hashing can avoid unsafe.Pointer.
var idCounter uint32

func nextID() uint32 { return atomic.AddUint32(&idCounter, 1) }

// ClassKind distinguishes what a Type/Class descriptor actually describes
// (spec.md §3.1: "A Type is either a primitive tag, a standard class
// descriptor, a union class descriptor, or a custom class descriptor").
type ClassKind uint8

const (
	ClassStandard ClassKind = iota
	ClassUnion
)

// Class is the shared descriptor for standard and union classes (spec.md
// §3.1/§3.2/§3.3). A descriptor carries its name, optional parent (the
// loader's class record enforces super_count == 0 at load time — see
// spec.md §4.9 — but the field exists so a future multi-level hierarchy
// isn't a breaking change), instance-variable names, operator/static
// method tables and property table.
type Class struct {
	Kind ClassKind
	Name string

	Parent *Class

	InstanceVars []string
	StaticVars   map[string]Value

	Operators       map[OperatorTag]Callable
	StaticOperators map[OperatorTag]Callable
	Methods         map[string]Callable
	StaticMethods   map[string]Callable
	Properties      map[string]Callable // getter only

	// Variants holds the ordered variant names for a union class
	// (ClassKind == ClassUnion); empty for standard classes.
	Variants []string
}

func NewClass(kind ClassKind, name string) *Class {
	return &Class{
		Kind:            kind,
		Name:            name,
		StaticVars:      map[string]Value{},
		Operators:       map[OperatorTag]Callable{},
		StaticOperators: map[OperatorTag]Callable{},
		Methods:         map[string]Callable{},
		StaticMethods:   map[string]Callable{},
		Properties:      map[string]Callable{},
	}
}

// LookupMethod walks the (single-level, per spec.md §4.9) parent chain for
// a named method, matching spec.md §4.2's "including inherited supers".
func (c *Class) LookupMethod(name string) (Callable, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) LookupOperator(tag OperatorTag) (Callable, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Operators[tag]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) LookupProperty(name string) (Callable, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		if m, ok := cls.Properties[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// VariantIndex returns the 0-based index of a union variant name, or -1.
func (c *Class) VariantIndex(name string) int {
	for i, v := range c.Variants {
		if v == name {
			return i
		}
	}
	return -1
}
