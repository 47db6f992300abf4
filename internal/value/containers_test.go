package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/bignum"
)

func TestListMutationIsSharedAcrossHolders(t *testing.T) {
	l := NewList([]Value{IntV(1), IntV(2)})
	other := l
	l.Append(IntV(3))
	require.Equal(t, 3, other.Len())
}

func TestListInsertAndRemoveAt(t *testing.T) {
	l := NewList([]Value{IntV(1), IntV(3)})
	require.True(t, l.Insert(1, IntV(2)))
	require.Equal(t, []int64{1, 2, 3}, intsOf(t, l.Elems))

	v, ok := l.RemoveAt(1)
	require.True(t, ok)
	require.Equal(t, int64(2), v.AsBigint().Int64())
	require.Equal(t, []int64{1, 3}, intsOf(t, l.Elems))
}

func intsOf(t *testing.T, vs []Value) []int64 {
	t.Helper()
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = v.AsBigint().Int64()
	}
	return out
}

func TestTupleIsImmutableBackingCopy(t *testing.T) {
	src := []Value{IntV(1)}
	tup := NewTuple(src)
	src[0] = IntV(99)
	require.Equal(t, int64(1), tup.Elems[0].AsBigint().Int64())
}

func TestArraySetRejectsOutOfRangeAndTypeMismatch(t *testing.T) {
	elemType := PrimitiveType(KindBigint)
	arr := NewArray(elemType, []Value{IntV(1), IntV(2)})
	require.Error(t, arr.Set(5, IntV(3)))
	require.Error(t, arr.Set(0, Str("nope")))
	require.NoError(t, arr.Set(0, IntV(9)))
	v, ok := arr.At(0)
	require.True(t, ok)
	require.Equal(t, int64(9), v.AsBigint().Int64())
}

func TestBytesEncodeUTF8AndRejectsUnknown(t *testing.T) {
	b := NewBytes([]byte("hi"))
	s, err := b.Encode("utf-8")
	require.NoError(t, err)
	require.Equal(t, "hi", s)

	_, err = b.Encode("rot13")
	require.Error(t, err)
}

func TestRangeRejectsZeroStepAndDetectsEmpty(t *testing.T) {
	_, err := NewRange(bignum.FromInt64(0), bignum.FromInt64(10), bignum.FromInt64(0))
	require.Error(t, err)

	r, err := NewRange(bignum.FromInt64(10), bignum.FromInt64(0), bignum.FromInt64(1))
	require.NoError(t, err)
	require.True(t, r.IsEmpty())
}

func TestRangeCursorWalksValues(t *testing.T) {
	r, err := NewRange(bignum.FromInt64(0), bignum.FromInt64(3), bignum.FromInt64(1))
	require.NoError(t, err)
	cur := r.Cursor()
	var got []int64
	for {
		v, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, v.Int64())
	}
	require.Equal(t, []int64{0, 1, 2}, got)
}

func TestSliceResolveClampsAndReversesOnNegativeStep(t *testing.T) {
	s := NewSlice(nil, nil, nil)
	start, stop, step, err := s.Resolve(5)
	require.NoError(t, err)
	require.Equal(t, 0, start)
	require.Equal(t, 5, stop)
	require.Equal(t, 1, step)

	negStep := -1
	rev := NewSlice(nil, nil, &negStep)
	start, stop, step, err = rev.Resolve(5)
	require.NoError(t, err)
	require.Equal(t, 4, start)
	require.Equal(t, -1, stop)
	require.Equal(t, -1, step)
}

func TestSliceResolveRejectsZeroStep(t *testing.T) {
	zero := 0
	s := NewSlice(nil, nil, &zero)
	_, _, _, err := s.Resolve(5)
	require.Error(t, err)
}

func TestDictInsertGetDelete(t *testing.T) {
	d := NewDict()
	_, had, err := d.Insert(Str("k"), IntV(1))
	require.NoError(t, err)
	require.False(t, had)

	v, ok, err := d.Get(Str("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), v.AsBigint().Int64())

	_, ok, err = d.Delete(Str("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, d.Len())
}

func TestSetAddContainsDelete(t *testing.T) {
	s := NewSet()
	added, err := s.Add(IntV(1))
	require.NoError(t, err)
	require.True(t, added)

	added, err = s.Add(IntV(1))
	require.NoError(t, err)
	require.False(t, added)

	has, err := s.Contains(IntV(1))
	require.NoError(t, err)
	require.True(t, has)

	ok, err := s.Delete(IntV(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestEnumerateWrapsIterProtocol(t *testing.T) {
	rng, err := NewRange(bignum.FromInt64(0), bignum.FromInt64(2), bignum.FromInt64(1))
	require.NoError(t, err)
	cur := rng.Cursor()
	idx := 0
	customIter := rangeCustomIterator{cur: cur, idx: &idx}

	e, err := NewEnumerate(CustomV(customIter))
	require.NoError(t, err)
	require.Equal(t, "Enumerate", e.ClassName())
}

// rangeCustomIterator is a minimal Custom adapting a RangeCursor to the
// iter/next protocol, used only to exercise NewEnumerate's fallback path
// (wrapping a value that is already an iterator, with no `iter` operator).
type rangeCustomIterator struct {
	cur *RangeCursor
	idx *int
}

func (r rangeCustomIterator) ClassName() string { return "RangeCursor" }
func (r rangeCustomIterator) Attr(name string) (Value, bool) { return Value{}, false }
func (r rangeCustomIterator) Operator(tag OperatorTag) (Callable, bool) {
	if tag != OpNext {
		return nil, false
	}
	return func(args []Value) (Value, error) {
		i, ok := r.cur.Next()
		if !ok {
			return NoneAt(1), nil
		}
		v := Bigint(i)
		return MakeOption(1, &v), nil
	}, true
}
