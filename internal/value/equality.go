package value

// Equal implements spec.md §3.1's equality contract: structural on
// primitives (with numeric-tower promotion), by identity for
// methods/functions, and dispatched through the `equals` operator for
// standard/union/custom values. It may return an error when a user-defined
// `equals` operator raises (propagated by internal/vm as a thrown
// exception).
func Equal(a, b Value) (bool, error) {
	if a.IsOption() || b.IsOption() {
		return equalOption(a, b)
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return toRational(a).Equal(toRational(b)), nil
	}
	if a.kind != b.kind {
		return false, nil
	}
	switch a.kind {
	case KindNull:
		return true, nil
	case KindChar:
		return a.ch == b.ch, nil
	case KindString:
		return a.str.Equal(b.str), nil
	case KindTuple:
		return equalSeq(a.tuple.Elems, b.tuple.Elems)
	case KindList:
		return equalSeq(a.list.Elems, b.list.Elems)
	case KindBytes:
		return bytesEqual(a.bytes.Data, b.bytes.Data), nil
	case KindRange:
		return a.rng.Start.Equal(b.rng.Start) && a.rng.Stop.Equal(b.rng.Stop) && a.rng.Step.Equal(b.rng.Step), nil
	case KindArray:
		return equalSeq(a.array.Elems, b.array.Elems)
	case KindType:
		return a.typ.Equal(b.typ), nil
	case KindFunction:
		return a.fn == b.fn, nil
	case KindMethod:
		return a.method.Receiver == b.method.Receiver && a.method.Fn == b.method.Fn, nil
	case KindStandard:
		return equalViaOperatorOrIdentity(a, b, a.standard.Class, func() bool { return a.standard == b.standard })
	case KindUnion:
		if a.union.VariantIndex != b.union.VariantIndex {
			return false, nil
		}
		return equalViaOperatorOrIdentity(a, b, a.union.Class, func() bool { return a.union == b.union })
	case KindCustom:
		if c, ok := a.operatorCallable(OpEquals); ok {
			r, err := c([]Value{a, b})
			if err != nil {
				return false, err
			}
			t, err := r.Truthy()
			return t, err
		}
		return a.custom == b.custom, nil
	case KindDict, KindSet:
		// Mutable containers: identity only, matching the "by identity"
		// default spec.md reserves for non-primitive kinds it doesn't
		// otherwise enumerate.
		return samePointer(a, b), nil
	default:
		return false, nil
	}
}

func samePointer(a, b Value) bool {
	switch a.kind {
	case KindDict:
		return a.dict == b.dict
	case KindSet:
		return a.set == b.set
	default:
		return false
	}
}

func equalViaOperatorOrIdentity(a, b Value, class *Class, identity func() bool) (bool, error) {
	if class != nil {
		if c, ok := class.Operators[OpEquals]; ok {
			r, err := c([]Value{a, b})
			if err != nil {
				return false, err
			}
			return r.Truthy()
		}
	}
	return identity(), nil
}

func equalSeq(a, b []Value) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		ok, err := Equal(a[i], b[i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalOption(a, b Value) (bool, error) {
	if !a.IsOption() || !b.IsOption() {
		return false, nil
	}
	av, aok := a.OptSome()
	bv, bok := b.OptSome()
	if aok != bok {
		return false, nil
	}
	if !aok {
		return true, nil
	}
	return Equal(av, bv)
}

// HashOf implements spec.md §3.1's hashing contract: stable and equivalent
// for equal values across the numeric tower, tuples combined with the
// seeded multiplicative rolling combiner, custom hashes obtained by
// invoking the Hash operator.
func HashOf(v Value) (uint32, error) {
	if v.IsOption() {
		some, ok := v.OptSome()
		if !ok {
			return uint32(0x345678) ^ uint32(v.optDepth), nil
		}
		h, err := HashOf(some)
		if err != nil {
			return 0, err
		}
		return h ^ 0x4f1bbcdc, nil
	}
	if isNumeric(v.kind) {
		return toRational(v).Hash(), nil
	}
	switch v.kind {
	case KindNull:
		return 0, nil
	case KindChar:
		return uint32(v.ch)*2654435761 ^ 0x5bd1e995, nil
	case KindString:
		return v.str.Hash(), nil
	case KindTuple:
		return hashSeq(v.tuple.Elems)
	case KindType:
		return v.typ.Hash(), nil
	case KindFunction:
		return v.fn.id, nil
	case KindMethod:
		return v.method.Fn.id ^ v.method.receiverHash, nil
	case KindStandard:
		if c, ok := v.operatorCallable(OpHash); ok {
			r, err := c([]Value{v})
			if err != nil {
				return 0, err
			}
			return uint32(r.AsBigint().Int64()), nil
		}
		return v.standard.id, nil
	case KindUnion:
		if c, ok := v.operatorCallable(OpHash); ok {
			r, err := c([]Value{v})
			if err != nil {
				return 0, err
			}
			return uint32(r.AsBigint().Int64()), nil
		}
		return v.union.id, nil
	case KindCustom:
		c, ok := v.operatorCallable(OpHash)
		if !ok {
			return 0, &DispatchError{Kind: "value_error", Message: "unhashable type: Custom"}
		}
		r, err := c([]Value{v})
		if err != nil {
			return 0, err
		}
		return uint32(r.AsBigint().Int64()), nil
	default:
		return 0, &DispatchError{Kind: "value_error", Message: "unhashable type: " + v.kind.String()}
	}
}

// hashSeq implements the tuple hash combiner specified in spec.md §3.1 and
// grounded on original_source/src/tuple.rs: seed 0x345678, combine each
// element with (seed ^ elemHash) * 1000003.
func hashSeq(elems []Value) (uint32, error) {
	h := uint32(0x345678)
	for _, e := range elems {
		eh, err := HashOf(e)
		if err != nil {
			return 0, err
		}
		h = (h ^ eh) * 1000003
	}
	return h, nil
}
