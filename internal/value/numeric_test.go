package value

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/bignum"
)

func TestNumericCompareAcrossTower(t *testing.T) {
	// Bool coerces to 0/1, Decimal 1/2 is between them.
	require.Equal(t, -1, NumericCompare(Bool(false), IntV(1)))
	half := Decimal(bignum.RationalFromFrac(bignum.FromInt64(1), bignum.FromInt64(2)))
	require.Equal(t, 1, NumericCompare(half, Bool(false)))
	require.Equal(t, -1, NumericCompare(half, IntV(1)))
}

func TestWidestNumericKindPromotesToDecimal(t *testing.T) {
	require.Equal(t, KindDecimal, widestNumericKind(KindBigint, KindDecimal))
	require.Equal(t, KindBigint, widestNumericKind(KindBigint, KindBool))
}

func TestWrapNumericReducesIntegralRationalToBigint(t *testing.T) {
	whole := bignum.RationalFromFrac(bignum.FromInt64(4), bignum.FromInt64(2))
	v := wrapNumeric(KindBigint, whole)
	require.Equal(t, KindBigint, v.Kind())
	require.Equal(t, int64(2), v.AsBigint().Int64())
}

func TestWrapNumericKeepsDecimalKindEvenWhenIntegral(t *testing.T) {
	whole := bignum.RationalFromFrac(bignum.FromInt64(4), bignum.FromInt64(2))
	v := wrapNumeric(KindDecimal, whole)
	require.Equal(t, KindDecimal, v.Kind())
}

func TestWrapNumericWidensFractionalBigintDivideToDecimal(t *testing.T) {
	frac := bignum.RationalFromFrac(bignum.FromInt64(1), bignum.FromInt64(3))
	v := wrapNumeric(KindBigint, frac)
	require.Equal(t, KindDecimal, v.Kind())
}
