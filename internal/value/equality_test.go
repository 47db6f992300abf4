package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/bignum"
)

func TestEqualNumericTowerPromotion(t *testing.T) {
	half := Decimal(bignum.RationalFromFrac(bignum.FromInt64(1), bignum.FromInt64(2)))
	doubled := Decimal(bignum.RationalFromFrac(bignum.FromInt64(2), bignum.FromInt64(4)))
	eq, err := Equal(half, doubled)
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = Equal(Bool(true), IntV(1))
	require.NoError(t, err)
	require.True(t, eq)
}

func TestEqualStructuralContainers(t *testing.T) {
	a := TupleV(NewTuple([]Value{IntV(1), Str("x")}))
	b := TupleV(NewTuple([]Value{IntV(1), Str("x")}))
	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)

	c := TupleV(NewTuple([]Value{IntV(1), Str("y")}))
	eq, err = Equal(a, c)
	require.NoError(t, err)
	require.False(t, eq)
}

func TestEqualOptionNesting(t *testing.T) {
	a1, a2 := IntV(1), IntV(1)
	some1 := MakeOption(1, &a1)
	some2 := MakeOption(1, &a2)
	eq, err := Equal(some1, some2)
	require.NoError(t, err)
	require.True(t, eq)

	none := NoneAt(1)
	eq, err = Equal(some1, none)
	require.NoError(t, err)
	require.False(t, eq)

	eq, err = Equal(NoneAt(1), NoneAt(1))
	require.NoError(t, err)
	require.True(t, eq)
}

func TestEqualStandardDefaultsToIdentity(t *testing.T) {
	cls := NewClass(ClassStandard, "Widget")
	a := StandardV(NewStandardInstance(cls))
	b := StandardV(NewStandardInstance(cls))
	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.False(t, eq)

	eq, err = Equal(a, a)
	require.NoError(t, err)
	require.True(t, eq)
}

func TestEqualStandardHonorsEqualsOperator(t *testing.T) {
	cls := NewClass(ClassStandard, "AlwaysEqual")
	cls.Operators[OpEquals] = func(args []Value) (Value, error) {
		return Bool(true), nil
	}
	a := StandardV(NewStandardInstance(cls))
	b := StandardV(NewStandardInstance(cls))
	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)
}

func TestHashOfMatchesAcrossNumericTower(t *testing.T) {
	h1, err := HashOf(IntV(5))
	require.NoError(t, err)
	h2, err := HashOf(Decimal(bignum.RationalFromFrac(bignum.FromInt64(10), bignum.FromInt64(2))))
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestHashOfTupleCombinerStable(t *testing.T) {
	a := TupleV(NewTuple([]Value{IntV(1), IntV(2)}))
	b := TupleV(NewTuple([]Value{IntV(1), IntV(2)}))
	h1, err := HashOf(a)
	require.NoError(t, err)
	h2, err := HashOf(b)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestHashOfCustomRequiresHashOperator(t *testing.T) {
	_, err := HashOf(CustomV(unhashableCustom{}))
	require.Error(t, err)
}

type unhashableCustom struct{}

func (unhashableCustom) ClassName() string { return "Unhashable" }
func (unhashableCustom) Operator(tag OperatorTag) (Callable, bool) { return nil, false }
func (unhashableCustom) Attr(name string) (Value, bool) { return Value{}, false }
