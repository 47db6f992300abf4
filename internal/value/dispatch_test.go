package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexPrimitiveStrRepr(t *testing.T) {
	v := IntV(5)
	strFn, err := v.Index("str")
	require.NoError(t, err)
	r, err := strFn.AsFunction().Native(nil)
	require.NoError(t, err)
	require.Equal(t, "5", r.AsString().Raw())

	reprFn, err := v.Index("repr")
	require.NoError(t, err)
	r, err = reprFn.AsFunction().Native(nil)
	require.NoError(t, err)
	require.Equal(t, "5", r.AsString().Raw())
}

func TestIndexPrimitiveUnsupportedOperatorErrors(t *testing.T) {
	_, err := IntV(5).Index("bogus")
	require.Error(t, err)
}

func TestConcatOperatorStringListTuple(t *testing.T) {
	m, err := Str("ab").Index(OpAdd.String())
	require.NoError(t, err)
	r, err := m.AsMethod().Fn.Native([]Value{Str("ab"), Str("cd")})
	require.NoError(t, err)
	require.Equal(t, "abcd", r.AsString().Raw())

	lm, err := ListV(NewList([]Value{IntV(1)})).Index(OpAdd.String())
	require.NoError(t, err)
	lr, err := lm.AsMethod().Fn.Native([]Value{
		ListV(NewList([]Value{IntV(1)})),
		ListV(NewList([]Value{IntV(2)})),
	})
	require.NoError(t, err)
	require.Equal(t, 2, lr.AsList().Len())
}

func TestOptionMapAppliesAndRewraps(t *testing.T) {
	some := IntV(3)
	opt := MakeOption(1, &some)
	mapFn, err := opt.Index("map")
	require.NoError(t, err)
	double := FunctionV(NewNativeFunction("double", func(args []Value) (Value, error) {
		return IntV(args[0].AsBigint().Int64() * 2), nil
	}))
	result, err := mapFn.AsFunction().Native([]Value{double})
	require.NoError(t, err)
	v, ok := result.OptSome()
	require.True(t, ok)
	require.Equal(t, int64(6), v.AsBigint().Int64())
}

func TestOptionMapOnNoneShortCircuits(t *testing.T) {
	opt := NoneAt(1)
	mapFn, err := opt.Index("map")
	require.NoError(t, err)
	called := false
	fn := FunctionV(NewNativeFunction("f", func(args []Value) (Value, error) {
		called = true
		return Value{}, nil
	}))
	result, err := mapFn.AsFunction().Native([]Value{fn})
	require.NoError(t, err)
	_, ok := result.OptSome()
	require.False(t, ok)
	require.False(t, called)
}

func TestIndexStandardResolvesMethodThenOperator(t *testing.T) {
	cls := NewClass(ClassStandard, "Counter")
	cls.Methods["inc"] = func(args []Value) (Value, error) { return IntV(1), nil }
	cls.Operators[OpAdd] = func(args []Value) (Value, error) { return IntV(2), nil }
	inst := NewStandardInstance(cls)
	v := StandardV(inst)

	m, err := v.Index("inc")
	require.NoError(t, err)
	r, err := m.AsMethod().Fn.Native([]Value{v})
	require.NoError(t, err)
	require.Equal(t, int64(1), r.AsBigint().Int64())

	op, err := v.Index(OpAdd.String())
	require.NoError(t, err)
	r, err = op.AsMethod().Fn.Native([]Value{v})
	require.NoError(t, err)
	require.Equal(t, int64(2), r.AsBigint().Int64())
}

func TestIndexStandardPropertyInvokesGetterEagerly(t *testing.T) {
	cls := NewClass(ClassStandard, "Box")
	cls.Properties["value"] = func(args []Value) (Value, error) { return IntV(42), nil }
	inst := NewStandardInstance(cls)
	v, err := StandardV(inst).Index("value")
	require.NoError(t, err)
	require.Equal(t, int64(42), v.AsBigint().Int64())
}

func TestIndexStandardUnknownAttributeErrors(t *testing.T) {
	cls := NewClass(ClassStandard, "Empty")
	inst := NewStandardInstance(cls)
	_, err := StandardV(inst).Index("nope")
	require.Error(t, err)
}

func TestIndexUnionPayloadByVariantName(t *testing.T) {
	cls := NewClass(ClassUnion, "Shape")
	cls.Variants = []string{"Circle", "Square"}
	inst := NewUnionInstance(cls, 0, IntV(7))
	v, err := UnionV(inst).Index("Circle")
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsBigint().Int64())
}

func TestIndexCustomDispatchesAttrAndRejectsUnknown(t *testing.T) {
	c := fakeCustom{attrs: map[string]Value{"name": Str("widget")}}
	v := CustomV(c)
	a, err := v.Index("name")
	require.NoError(t, err)
	require.Equal(t, "widget", a.AsString().Raw())

	_, err = v.Index("nonexistent")
	require.Error(t, err)
}

type fakeCustom struct {
	attrs map[string]Value
}

func (f fakeCustom) ClassName() string { return "Fake" }
func (f fakeCustom) Attr(name string) (Value, bool) {
	v, ok := f.attrs[name]
	return v, ok
}
func (f fakeCustom) Operator(tag OperatorTag) (Callable, bool) { return nil, false }
