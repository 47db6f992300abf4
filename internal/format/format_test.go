package format

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/value"
)

func decimalOf(num, den int64) value.Value {
	return value.Decimal(bignum.RationalFromFrac(bignum.FromInt64(num), bignum.FromInt64(den)))
}

// TestFixedPoint exercises spec.md §8 scenario S6: format(0.333333…, {fmt_type: 'f', precision: 4}) == "0.3333".
func TestFixedPoint(t *testing.T) {
	v := decimalOf(1, 3)
	a := DefaultArgs()
	a.FmtType = 'f'
	a.Precision = 4
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "0.3333", out)
}

// TestScientific exercises S6's second half: format(1_000_000, {fmt_type: 'e', precision: 2}) == "1.00e+06".
func TestScientific(t *testing.T) {
	v := value.IntV(1_000_000)
	a := DefaultArgs()
	a.FmtType = 'e'
	a.Precision = 2
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "1.00e+06", out)
}

func TestScientificCarry(t *testing.T) {
	v := decimalOf(9996, 1000) // 9.996
	a := DefaultArgs()
	a.FmtType = 'e'
	a.Precision = 2
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "1.00e+01", out)
}

func TestIntegerRadix(t *testing.T) {
	v := value.IntV(255)
	a := DefaultArgs()
	a.FmtType = 'x'
	a.Hash = true
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "0xff", out)

	a.FmtType = 'X'
	out, err = Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "0XFF", out)
}

func TestNegativeFixedSign(t *testing.T) {
	v := decimalOf(-5, 2)
	a := DefaultArgs()
	a.FmtType = 'f'
	a.Precision = 1
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "-2.5", out)
}

func TestPercent(t *testing.T) {
	v := decimalOf(1, 2)
	a := DefaultArgs()
	a.FmtType = '%'
	a.Precision = 0
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "50%", out)
}

func TestWidthAndAlign(t *testing.T) {
	v := value.IntV(7)
	a := DefaultArgs()
	a.FmtType = 'd'
	a.MinWidth = 5
	a.Zero = true
	out, err := Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "00007", out)

	a.Zero = false
	a.Align = AlignLeft
	a.Fill = '.'
	out, err = Format(v, a)
	require.NoError(t, err)
	require.Equal(t, "7....", out)
}

func TestStrReprDispatch(t *testing.T) {
	a := DefaultArgs()
	a.FmtType = 's'
	out, err := Format(value.Str("hi"), a)
	require.NoError(t, err)
	require.Equal(t, "hi", out)

	a.FmtType = 'r'
	out, err = Format(value.Str("hi"), a)
	require.NoError(t, err)
	require.Equal(t, `"hi"`, out)
}
