package value

// UnionInstance is a user-defined tagged-union value (spec.md §3.3):
// variant index, boxed inner value, class pointer. The invariant
// "variant_index < class.variants.len()" is enforced at construction.
type UnionInstance struct {
	Class        *Class
	VariantIndex int
	Inner        Value
	id           uint32
}

func NewUnionInstance(class *Class, variantIndex int, inner Value) *UnionInstance {
	if variantIndex < 0 || variantIndex >= len(class.Variants) {
		panic("value: union variant index out of range")
	}
	return &UnionInstance{Class: class, VariantIndex: variantIndex, Inner: inner, id: nextID()}
}

func (u *UnionInstance) VariantName() string { return u.Class.Variants[u.VariantIndex] }

// GetAttr implements spec.md §3.3's attribute access: selecting the
// variant's payload when the name matches the active variant, or falling
// through to method dispatch (handled by dispatch.go).
func (u *UnionInstance) GetAttr(name string) (Value, bool) {
	if name == u.VariantName() {
		return u.Inner, true
	}
	return Value{}, false
}
