package value

import (
	"fmt"

	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/strval"
)

// Value is the tagged sum described in spec.md §3.1. A Value is either a
// Normal value (optDepth == 0, the payload selected by kind) or an Option
// (optDepth > 0): Value itself never allocates for Null/Bool/Char/small
// Bigint, matching the teacher's Value{Type, Data, Obj} inline-primitive
// design in funvibe-funxy/internal/vm/value.go.
type Value struct {
	kind Kind

	optDepth int
	optSome  *Value // nil => None; non-nil => Some(optSome)

	b      bool
	ch     rune
	bigint bignum.Int
	dec    bignum.Rational
	str    strval.String

	tuple    *Tuple
	list     *List
	array    *Array
	bytes    *Bytes
	rng      *Range
	slice    *Slice
	dict     *Dict
	set      *Set
	typ      *Type
	fn       *Function
	method   *Method
	standard *StandardInstance
	union    *UnionInstance
	custom   Custom
}

// --- constructors -----------------------------------------------------

func Null() Value                 { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Char(r rune) Value            { return Value{kind: KindChar, ch: r} }
func Bigint(i bignum.Int) Value    { return Value{kind: KindBigint, bigint: i} }
func IntV(i int64) Value           { return Value{kind: KindBigint, bigint: bignum.FromInt64(i)} }
func Decimal(r bignum.Rational) Value { return Value{kind: KindDecimal, dec: r} }
func Str(s string) Value           { return Value{kind: KindString, str: strval.New(s)} }
func StringV(s strval.String) Value { return Value{kind: KindString, str: s} }
func TupleV(t *Tuple) Value        { return Value{kind: KindTuple, tuple: t} }
func ListV(l *List) Value          { return Value{kind: KindList, list: l} }
func ArrayV(a *Array) Value        { return Value{kind: KindArray, array: a} }
func BytesV(b *Bytes) Value        { return Value{kind: KindBytes, bytes: b} }
func RangeV(r *Range) Value        { return Value{kind: KindRange, rng: r} }
func SliceV(s *Slice) Value        { return Value{kind: KindSlice, slice: s} }
func DictV(d *Dict) Value          { return Value{kind: KindDict, dict: d} }
func SetV(s *Set) Value            { return Value{kind: KindSet, set: s} }
func TypeV(t *Type) Value          { return Value{kind: KindType, typ: t} }
func FunctionV(f *Function) Value  { return Value{kind: KindFunction, fn: f} }
func MethodV(m *Method) Value      { return Value{kind: KindMethod, method: m} }
func StandardV(s *StandardInstance) Value { return Value{kind: KindStandard, standard: s} }
func UnionV(u *UnionInstance) Value { return Value{kind: KindUnion, union: u} }
func CustomV(c Custom) Value       { return Value{kind: KindCustom, custom: c} }

// MakeOption builds an Option value at the given depth (depth must be > 0).
// some == nil represents None at this depth; otherwise some is wrapped.
// Per spec.md §3.1's invariant, constructing depth==0 is a programmer error.
func MakeOption(depth int, some *Value) Value {
	if depth <= 0 {
		panic("value: MakeOption depth must be > 0")
	}
	return Value{optDepth: depth, optSome: some}
}

func NoneAt(depth int) Value { return MakeOption(depth, nil) }

// --- predicates / accessors --------------------------------------------

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsOption() bool { return v.optDepth > 0 }
func (v Value) OptDepth() int  { return v.optDepth }

// OptSome returns the wrapped value and true if this is Some(...); ok=false
// both when this is None and when v is not an Option at all.
func (v Value) OptSome() (Value, bool) {
	if v.optDepth == 0 || v.optSome == nil {
		return Value{}, false
	}
	return *v.optSome, true
}

func (v Value) IsNull() bool    { return v.optDepth == 0 && v.kind == KindNull }
func (v Value) AsBool() bool    { return v.b }
func (v Value) AsChar() rune    { return v.ch }
func (v Value) AsBigint() bignum.Int      { return v.bigint }
func (v Value) AsDecimal() bignum.Rational { return v.dec }
func (v Value) AsString() strval.String   { return v.str }
func (v Value) AsTuple() *Tuple    { return v.tuple }
func (v Value) AsList() *List      { return v.list }
func (v Value) AsArray() *Array    { return v.array }
func (v Value) AsBytes() *Bytes    { return v.bytes }
func (v Value) AsRange() *Range    { return v.rng }
func (v Value) AsSlice() *Slice    { return v.slice }
func (v Value) AsDict() *Dict      { return v.dict }
func (v Value) AsSet() *Set        { return v.set }
func (v Value) AsType() *Type      { return v.typ }
func (v Value) AsFunction() *Function { return v.fn }
func (v Value) AsMethod() *Method  { return v.method }
func (v Value) AsStandard() *StandardInstance { return v.standard }
func (v Value) AsUnion() *UnionInstance { return v.union }
func (v Value) AsCustom() Custom   { return v.custom }

// Truthy implements the bool contract of spec.md §3.1/§4.2: every value
// participates in boolean context. Options are truthy iff Some; primitives
// use their natural falsy value; standard/union/custom defer to a `bool`
// operator if one is defined, else default to true (presence is truthy).
func (v Value) Truthy() (bool, error) {
	if v.IsOption() {
		_, ok := v.OptSome()
		return ok, nil
	}
	switch v.kind {
	case KindNull:
		return false, nil
	case KindBool:
		return v.b, nil
	case KindChar:
		return v.ch != 0, nil
	case KindBigint:
		return v.bigint.Sign() != 0, nil
	case KindDecimal:
		return v.dec.Sign() != 0, nil
	case KindString:
		return v.str.Len() != 0, nil
	case KindTuple:
		return len(v.tuple.Elems) != 0, nil
	case KindList:
		return v.list.Len() != 0, nil
	case KindDict:
		return v.dict.Len() != 0, nil
	case KindSet:
		return v.set.Len() != 0, nil
	case KindBytes:
		return len(v.bytes.Data) != 0, nil
	default:
		if c, ok := v.operatorCallable(OpBool); ok {
			r, err := c([]Value{v})
			if err != nil {
				return false, err
			}
			return r.AsBool(), nil
		}
		return true, nil
	}
}

func valueErrorf(format string, args ...any) error {
	return &DispatchError{Kind: "value_error", Message: fmt.Sprintf(format, args...)}
}

// DispatchError is the Go-level error returned by value-protocol failures
// that internal/vm translates into a raised ValueError/TypeError instance
// (spec.md §4.2: "unsupported operators fail with value_error").
type DispatchError struct {
	Kind    string
	Message string
}

func (e *DispatchError) Error() string { return e.Kind + ": " + e.Message }
