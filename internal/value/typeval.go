package value

// Type is a type descriptor (spec.md §3.1): either a primitive tag, a
// standard/union class descriptor, a custom class descriptor (named only —
// customs are implemented in Go, so there is no method table to carry
// here), or an option type wrapping a base type at some depth
// ("make_option_n(k)").
type Type struct {
	Primitive    Kind // valid when Class == nil, CustomName == "" and Base == nil
	Class        *Class
	CustomName   string
	Base         *Type
	OptionDepth  int
}

func PrimitiveType(k Kind) *Type { return &Type{Primitive: k} }
func StandardType(c *Class) *Type { return &Type{Class: c} }
func CustomType(name string) *Type { return &Type{CustomName: name} }

// MakeOptionType wraps base at the given option depth (spec.md §3.1:
// "make_option_n(k)").
func MakeOptionType(base *Type, depth int) *Type {
	return &Type{Base: base, OptionDepth: depth}
}

func (t *Type) IsOption() bool { return t.Base != nil }

func (t *Type) Name() string {
	if t.Base != nil {
		name := t.Base.Name()
		for i := 0; i < t.OptionDepth; i++ {
			name += "?"
		}
		return name
	}
	if t.Class != nil {
		return t.Class.Name
	}
	if t.CustomName != "" {
		return t.CustomName
	}
	return t.Primitive.String()
}

func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.Base != nil || o.Base != nil {
		if t.Base == nil || o.Base == nil || t.OptionDepth != o.OptionDepth {
			return false
		}
		return t.Base.Equal(o.Base)
	}
	if t.Class != nil || o.Class != nil {
		return t.Class == o.Class
	}
	if t.CustomName != "" || o.CustomName != "" {
		return t.CustomName == o.CustomName
	}
	return t.Primitive == o.Primitive
}

func (t *Type) Hash() uint32 {
	var h uint32 = 0x9e3779b9
	if t.Base != nil {
		h ^= t.Base.Hash()*1000003 + uint32(t.OptionDepth)
		return h
	}
	if t.Class != nil {
		for _, ch := range t.Class.Name {
			h = h*1000003 ^ uint32(ch)
		}
		return h
	}
	if t.CustomName != "" {
		for _, ch := range t.CustomName {
			h = h*1000003 ^ uint32(ch)
		}
		return h
	}
	return h ^ uint32(t.Primitive)
}

// InstanceOf reports whether v's runtime type satisfies t, walking the
// parent chain for standard/union instances.
func InstanceOf(v Value, t *Type) bool {
	if t.IsOption() {
		if !v.IsOption() || v.OptDepth() != t.OptionDepth {
			return false
		}
		some, ok := v.OptSome()
		if !ok {
			return true
		}
		return InstanceOf(some, t.Base)
	}
	vt := RuntimeType(v)
	if t.Class != nil {
		for c := vt.Class; c != nil; c = c.Parent {
			if c == t.Class {
				return true
			}
		}
		return false
	}
	return vt.Equal(t)
}

// RuntimeType returns v's dynamic Type (spec.md §3.1).
func RuntimeType(v Value) *Type {
	if v.IsOption() {
		some, ok := v.OptSome()
		var base *Type
		if ok {
			base = RuntimeType(some)
		} else {
			base = PrimitiveType(KindNull)
		}
		return MakeOptionType(base, v.optDepth)
	}
	switch v.kind {
	case KindStandard:
		return StandardType(v.standard.Class)
	case KindUnion:
		return StandardType(v.union.Class)
	case KindCustom:
		return CustomType(v.custom.ClassName())
	case KindType:
		return PrimitiveType(KindType)
	default:
		return PrimitiveType(v.kind)
	}
}
