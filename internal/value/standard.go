package value

// StandardInstance is a user-defined class instance (spec.md §3.2): a class
// pointer plus a mutable attribute map. Created by the class's constructor
// opcode (ClassDef/CallFunction into the synthesized constructor); garbage
// collected by Go once unreferenced (the core's refcounting story in the
// original is replaced here by the host GC).
type StandardInstance struct {
	Class *Class
	Attrs map[string]Value
	id    uint32
}

func NewStandardInstance(class *Class) *StandardInstance {
	return &StandardInstance{Class: class, Attrs: map[string]Value{}, id: nextID()}
}

func (s *StandardInstance) GetAttr(name string) (Value, bool) {
	v, ok := s.Attrs[name]
	return v, ok
}

func (s *StandardInstance) SetAttr(name string, v Value) {
	s.Attrs[name] = v
}
