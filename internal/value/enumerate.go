package value

// Enumerate wraps an iterator value, producing (index, value) tuples
// (supplemented from original_source/src/custom_types/enumerate.rs per
// SPEC_FULL.md §9). It implements Custom so it can be indexed exactly like
// any other Value: its only operator is `next`, layered on the wrapped
// iterator's own `next`.
type Enumerate struct {
	inner Value
	next  Callable
	idx   int64
}

// NewEnumerate wraps an iterable by first resolving its `iter` operator
// (matching spec.md §4.2's uniform dispatch), falling back to treating the
// value itself as already an iterator if it has no `iter` operator.
func NewEnumerate(iterable Value) (*Enumerate, error) {
	it := iterable
	if c, ok := iterable.operatorCallable(OpIter); ok {
		r, err := c(nil)
		if err != nil {
			return nil, err
		}
		it = r
	}
	nextFn, ok := it.operatorCallable(OpNext)
	if !ok {
		return nil, &DispatchError{Kind: "type_error", Message: "value is not iterable"}
	}
	return &Enumerate{inner: it, next: nextFn}, nil
}

func (e *Enumerate) ClassName() string { return "Enumerate" }

func (e *Enumerate) Attr(name string) (Value, bool) { return Value{}, false }

func (e *Enumerate) Operator(tag OperatorTag) (Callable, bool) {
	switch tag {
	case OpNext:
		return e.doNext, true
	case OpIter:
		return func(args []Value) (Value, error) { return CustomV(e), nil }, true
	default:
		return nil, false
	}
}

func (e *Enumerate) doNext(args []Value) (Value, error) {
	r, err := e.next(nil)
	if err != nil {
		return Value{}, err
	}
	some, ok := r.OptSome()
	if !ok {
		return NoneAt(1), nil
	}
	pair := NewTuple([]Value{IntV(e.idx), some})
	e.idx++
	wrapped := TupleV(pair)
	return MakeOption(1, &wrapped), nil
}
