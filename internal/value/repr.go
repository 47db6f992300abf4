package value

import "strings"

// Repr renders v as either its `str` form (reprMode=false, used for print
// and string concatenation) or its `repr` form (reprMode=true, used when
// nesting inside another container's rendering, per Go's own fmt
// convention of %v vs %#v and the teacher's str/Inspect split). It prefers
// a user-defined `str`/`repr` operator when one is registered, falling
// back to the structural rendering described across spec.md §3/§4.5.
func Repr(v Value, reprMode bool) string {
	if v.IsOption() {
		some, ok := v.OptSome()
		if !ok {
			return "None"
		}
		return "Some(" + Repr(some, true) + ")"
	}

	tag := OpStr
	if reprMode {
		tag = OpRepr
	}
	if c, ok := v.operatorCallable(tag); ok {
		if r, err := c([]Value{v}); err == nil && r.kind == KindString {
			return r.str.Raw()
		}
	}

	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindChar:
		if reprMode {
			return "'" + string(v.ch) + "'"
		}
		return string(v.ch)
	case KindBigint:
		return v.bigint.String()
	case KindDecimal:
		return v.dec.String()
	case KindString:
		if reprMode {
			return v.str.Repr()
		}
		return v.str.Raw()
	case KindTuple:
		return "(" + joinRepr(v.tuple.Elems) + tupleTrailingComma(v.tuple.Elems) + ")"
	case KindList:
		return "[" + joinRepr(v.list.Elems) + "]"
	case KindArray:
		return "[" + joinRepr(v.array.Elems) + "]"
	case KindBytes:
		return reprBytes(v.bytes.Data)
	case KindRange:
		return v.rng.Start.String() + ".." + v.rng.Stop.String() + " step " + v.rng.Step.String()
	case KindSlice:
		return reprSlice(v.slice)
	case KindDict:
		return reprDict(v.dict)
	case KindSet:
		return reprSet(v.set)
	case KindType:
		return v.typ.Name()
	case KindFunction:
		return "<function " + v.fn.Name + ">"
	case KindMethod:
		return "<bound method " + v.method.Fn.Name + ">"
	case KindStandard:
		return "<" + v.standard.Class.Name + " instance>"
	case KindUnion:
		return v.union.Class.Name + "::" + v.union.VariantName() + "(" + Repr(v.union.Inner, true) + ")"
	case KindCustom:
		return "<" + v.custom.ClassName() + ">"
	default:
		return "?"
	}
}

func joinRepr(elems []Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Repr(e, true)
	}
	return strings.Join(parts, ", ")
}

func tupleTrailingComma(elems []Value) string {
	if len(elems) == 1 {
		return ","
	}
	return ""
}

func reprBytes(data []byte) string {
	var b strings.Builder
	b.WriteString("b\"")
	const hexdigits = "0123456789abcdef"
	for _, by := range data {
		b.WriteString("\\x")
		b.WriteByte(hexdigits[by>>4])
		b.WriteByte(hexdigits[by&0xF])
	}
	b.WriteByte('"')
	return b.String()
}

func reprSlice(s *Slice) string {
	var b strings.Builder
	if s.HasStart {
		b.WriteString(itoa(s.Start))
	}
	b.WriteByte(':')
	if s.HasStop {
		b.WriteString(itoa(s.Stop))
	}
	if s.HasStep {
		b.WriteByte(':')
		b.WriteString(itoa(s.Step))
	}
	return b.String()
}

func reprDict(d *Dict) string {
	var b strings.Builder
	b.WriteByte('{')
	it := d.Iter()
	first := true
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(Repr(k, true))
		b.WriteString(": ")
		b.WriteString(Repr(v, true))
	}
	b.WriteByte('}')
	return b.String()
}

func reprSet(s *Set) string {
	var b strings.Builder
	b.WriteByte('{')
	it := s.Iter()
	first := true
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(Repr(k, true))
	}
	b.WriteByte('}')
	return b.String()
}

func itoa(i int) string {
	neg := i < 0
	if neg {
		i = -i
	}
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
