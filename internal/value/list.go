package value

// List is a mutable shared vector (spec.md §4.5) supporting integer and
// slice indexing. Unlike Tuple, mutation is visible to every holder of the
// same *List.
type List struct {
	Elems []Value
}

func NewList(elems []Value) *List {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return &List{Elems: cp}
}

func (l *List) Len() int { return len(l.Elems) }

func (l *List) At(i int) (Value, bool) {
	if i < 0 || i >= len(l.Elems) {
		return Value{}, false
	}
	return l.Elems[i], true
}

func (l *List) Set(i int, v Value) bool {
	if i < 0 || i >= len(l.Elems) {
		return false
	}
	l.Elems[i] = v
	return true
}

func (l *List) Append(v Value) { l.Elems = append(l.Elems, v) }

// Insert inserts v at index i, shifting the tail right.
func (l *List) Insert(i int, v Value) bool {
	if i < 0 || i > len(l.Elems) {
		return false
	}
	l.Elems = append(l.Elems, Value{})
	copy(l.Elems[i+1:], l.Elems[i:])
	l.Elems[i] = v
	return true
}

// RemoveAt deletes the element at i, shifting the tail left.
func (l *List) RemoveAt(i int) (Value, bool) {
	if i < 0 || i >= len(l.Elems) {
		return Value{}, false
	}
	v := l.Elems[i]
	l.Elems = append(l.Elems[:i], l.Elems[i+1:]...)
	return v, true
}

// SubSlice returns the [start, stop) elements as a fresh List, per slice
// indexing support (spec.md §4.5).
func (l *List) SubSlice(start, stop int) *List {
	if start < 0 {
		start = 0
	}
	if stop > len(l.Elems) {
		stop = len(l.Elems)
	}
	if start >= stop {
		return NewList(nil)
	}
	return NewList(l.Elems[start:stop])
}
