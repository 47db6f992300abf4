package bignum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRationalFromFracArithmetic(t *testing.T) {
	half := RationalFromFrac(FromInt64(1), FromInt64(2))
	third := RationalFromFrac(FromInt64(1), FromInt64(3))

	sum := half.Add(third)
	// 1/2 + 1/3 = 5/6
	require.Equal(t, "5/6", sum.String())
	require.False(t, sum.IsInt())
}

func TestRationalReducesToInt(t *testing.T) {
	r := RationalFromFrac(FromInt64(6), FromInt64(3))
	require.True(t, r.IsInt())
	require.True(t, r.AsInt().Equal(FromInt64(2)))
}

func TestRationalHashMatchesIntWhenWhole(t *testing.T) {
	whole := RationalFromFrac(FromInt64(10), FromInt64(2))
	require.Equal(t, FromInt64(5).Hash(), whole.Hash())
}

func TestRationalCmpAndSign(t *testing.T) {
	neg := RationalFromFrac(FromInt64(-1), FromInt64(2))
	pos := RationalFromFrac(FromInt64(1), FromInt64(2))
	require.Equal(t, -1, neg.Cmp(pos))
	require.Equal(t, -1, neg.Sign())
	require.Equal(t, 1, pos.Sign())
}

func TestRationalQuo(t *testing.T) {
	a := RationalFromInt(FromInt64(1))
	b := RationalFromInt(FromInt64(4))
	q := a.Quo(b)
	require.Equal(t, "1/4", q.String())
	require.InDelta(t, 0.25, q.Float64(), 1e-9)
}
