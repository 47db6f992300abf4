package bignum

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSmallIntFastPath(t *testing.T) {
	a := FromInt64(2)
	b := FromInt64(3)
	require.True(t, a.IsSmall())
	sum := a.Add(b)
	require.True(t, sum.IsSmall())
	require.Equal(t, int64(5), sum.Int64())
}

func TestOverflowPromotesToHeap(t *testing.T) {
	max := FromInt64(math.MaxInt64)
	one := FromInt64(1)
	sum := max.Add(one)
	require.False(t, sum.IsSmall())
	want := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	require.Equal(t, 0, want.Cmp(sum.Big()))
}

func TestFromLimbsRoundTrips(t *testing.T) {
	// 0x1_00000000 = 4294967296
	i := FromLimbs([]uint32{1, 0}, false)
	require.Equal(t, int64(4294967296), i.Int64())

	neg := FromLimbs([]uint32{1, 0}, true)
	require.Equal(t, int64(-4294967296), neg.Int64())
}

func TestDivModFloorSemantics(t *testing.T) {
	// -7 divmod 2 floors toward negative infinity: q=-4, r=1.
	q, r := FromInt64(-7).DivMod(FromInt64(2))
	require.Equal(t, int64(-4), q.Int64())
	require.Equal(t, int64(1), r.Int64())
}

func TestCmpAndEqual(t *testing.T) {
	require.Equal(t, 0, FromInt64(5).Cmp(FromInt64(5)))
	require.Equal(t, -1, FromInt64(1).Cmp(FromInt64(2)))
	require.True(t, FromInt64(9).Equal(FromInt64(9)))
}

func TestBitwiseOps(t *testing.T) {
	a := FromInt64(0b1100)
	b := FromInt64(0b1010)
	require.Equal(t, int64(0b1000), a.And(b).Int64())
	require.Equal(t, int64(0b1110), a.Or(b).Int64())
	require.Equal(t, int64(0b0110), a.Xor(b).Int64())
}
