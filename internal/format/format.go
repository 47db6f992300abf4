// Package format implements the value formatter of spec.md §4.11: given a
// value and a format-args record, produce the rendered string. It has no
// direct analogue in funvibe-funxy's own evaluator beyond
// internal/evaluator/format.go's verb-counting helper for Go's fmt — the
// numeric rendering itself is grounded on original_source/src/fmt_num.rs's
// scale-integer approach (FmtDecimal) rather than on float math, so that a
// Decimal value formats without the rounding surprises of float64.
package format

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/value"
)

// Align is the fill-alignment direction of the format-args record.
type Align byte

const (
	AlignNone  Align = 0
	AlignLeft  Align = '<'
	AlignRight Align = '>'
	AlignCenter Align = '^'
)

// Args mirrors spec.md §4.11's format-args record
// {fill, align, sign, hash, zero, min_width, precision, fmt_type}.
type Args struct {
	Fill      rune
	Align     Align
	Sign      byte // '+', '-', ' ', or 0 for "only show for negatives"
	Hash      bool
	Zero      bool
	MinWidth  int
	Precision int // -1 means unspecified
	FmtType   byte
}

// DefaultArgs returns the zero-value format-args record: no fill, no
// alignment, default sign handling, no minimum width, unspecified
// precision, and the 's' (str-via-protocol) verb.
func DefaultArgs() Args {
	return Args{Fill: ' ', Precision: -1, FmtType: 's'}
}

// Format renders v according to a, dispatching on a.FmtType per spec.md
// §4.11's table.
func Format(v value.Value, a Args) (string, error) {
	body, signed, err := render(v, a)
	if err != nil {
		return "", err
	}
	return pad(body, a, signed), nil
}

func render(v value.Value, a Args) (body string, signed bool, err error) {
	switch a.FmtType {
	case 'r':
		return value.Repr(v, true), false, nil
	case 's':
		return value.Repr(v, false), false, nil
	case 'c':
		return renderChar(v)
	case 'b', 'o', 'd', 'x', 'X':
		return renderRadix(v, a)
	case 'n':
		return renderNeutral(v, a)
	case 'e', 'E':
		return renderSci(v, a, a.FmtType == 'E')
	case 'f', 'F':
		return renderFixed(v, a)
	case 'g', 'G':
		return renderGeneral(v, a)
	case '%':
		return renderPercent(v, a)
	default:
		return "", false, formatErrorf("unknown format type %q", string(a.FmtType))
	}
}

func formatErrorf(f string, args ...any) error {
	return &value.DispatchError{Kind: "value_error", Message: fmt.Sprintf(f, args...)}
}

func toBigint(v value.Value) (bignum.Int, bool) {
	switch v.Kind() {
	case value.KindBigint:
		return v.AsBigint(), true
	case value.KindBool:
		if v.AsBool() {
			return bignum.FromInt64(1), true
		}
		return bignum.FromInt64(0), true
	case value.KindChar:
		return bignum.FromInt64(int64(v.AsChar())), true
	default:
		return bignum.Int{}, false
	}
}

func toRat(v value.Value) (*big.Rat, bool) {
	switch v.Kind() {
	case value.KindDecimal:
		return v.AsDecimal().Rat(), true
	case value.KindBigint:
		return new(big.Rat).SetInt(v.AsBigint().Big()), true
	case value.KindBool:
		if v.AsBool() {
			return big.NewRat(1, 1), true
		}
		return big.NewRat(0, 1), true
	default:
		return nil, false
	}
}

func renderChar(v value.Value) (string, bool, error) {
	switch v.Kind() {
	case value.KindChar:
		return string(v.AsChar()), false, nil
	case value.KindBigint:
		return string(rune(v.AsBigint().Int64())), false, nil
	case value.KindBool:
		if v.AsBool() {
			return string(rune(1)), false, nil
		}
		return string(rune(0)), false, nil
	default:
		return "", false, formatErrorf("%%c requires an integer, bool or char")
	}
}

func renderRadix(v value.Value, a Args) (string, bool, error) {
	i, ok := toBigint(v)
	if !ok {
		return "", false, formatErrorf("integer format verb requires an integer value")
	}
	neg := i.Sign() < 0
	abs := i
	if neg {
		abs = i.Neg()
	}
	var base int
	var prefix string
	digitsUpper := false
	switch a.FmtType {
	case 'b':
		base, prefix = 2, "0b"
	case 'o':
		base, prefix = 8, "0o"
	case 'd':
		base, prefix = 10, ""
	case 'x':
		base, prefix = 16, "0x"
	case 'X':
		base, prefix = 16, "0X"
		digitsUpper = true
	}
	digits := abs.Big().Text(base)
	if digitsUpper {
		digits = strings.ToUpper(digits)
	}
	body := digits
	if a.Hash && prefix != "" {
		body = prefix + digits
	}
	return body, neg, nil
}

func renderNeutral(v value.Value, a Args) (string, bool, error) {
	r, ok := toRat(v)
	if !ok {
		return "", false, formatErrorf("%%n requires a numeric value")
	}
	precision := a.Precision
	if precision < 0 {
		precision = naturalPrecision(r)
	}
	return renderFixedRat(r, precision)
}

// naturalPrecision picks just enough fractional digits to round-trip r
// exactly for small denominators (powers of 2 and 5, i.e. terminating
// decimals), capped to avoid runaway output for repeating fractions.
func naturalPrecision(r *big.Rat) int {
	den := new(big.Int).Abs(r.Denom())
	twos, fives := 0, 0
	two, five := big.NewInt(2), big.NewInt(5)
	for den.Cmp(big.NewInt(1)) != 0 && twos+fives < 20 {
		q, rem := new(big.Int).QuoRem(den, two, new(big.Int))
		if rem.Sign() == 0 {
			den = q
			twos++
			continue
		}
		q, rem = new(big.Int).QuoRem(den, five, new(big.Int))
		if rem.Sign() == 0 {
			den = q
			fives++
			continue
		}
		return 6
	}
	if twos > fives {
		return twos
	}
	return fives
}

func renderFixed(v value.Value, a Args) (string, bool, error) {
	r, ok := toRat(v)
	if !ok {
		return "", false, formatErrorf("%%f requires a numeric value")
	}
	precision := a.Precision
	if precision < 0 {
		precision = 6
	}
	return renderFixedRat(r, precision)
}

func renderFixedRat(r *big.Rat, precision int) (string, bool, error) {
	neg := r.Sign() < 0
	dec := roundScale(r, precision)
	digits := dec.Value.Big().String()
	digits = strings.TrimPrefix(digits, "-")
	for len(digits) <= dec.Scale {
		digits = "0" + digits
	}
	if dec.Scale == 0 {
		return digits, neg, nil
	}
	intPart := digits[:len(digits)-dec.Scale]
	fracPart := digits[len(digits)-dec.Scale:]
	return intPart + "." + fracPart, neg, nil
}

func renderPercent(v value.Value, a Args) (string, bool, error) {
	r, ok := toRat(v)
	if !ok {
		return "", false, formatErrorf("%%%% requires a numeric value")
	}
	scaled := new(big.Rat).Mul(r, big.NewRat(100, 1))
	precision := a.Precision
	if precision < 0 {
		precision = 2
	}
	body, neg, err := renderFixedRat(scaled, precision)
	if err != nil {
		return "", false, err
	}
	return body + "%", neg, nil
}

// FmtDecimal is the scale-integer intermediate of spec.md §4.11: the
// rendered value equals Value * 10^-Scale. Produced by roundScale via
// half-up rounding on the exact rational, never via float64.
type FmtDecimal struct {
	Value bignum.Int
	Scale int
}

// roundScale rounds r to `scale` fractional digits, half-up (ties move
// away from zero), returning the result as a scale-integer pair.
func roundScale(r *big.Rat, scale int) FmtDecimal {
	neg := r.Sign() < 0
	num := new(big.Int).Abs(r.Num())
	den := new(big.Int).Abs(r.Denom())
	if scale > 0 {
		num.Mul(num, pow10(scale))
	} else if scale < 0 {
		den.Mul(den, pow10(-scale))
	}
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Lsh(rem, 1)
	if twice.CmpAbs(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if neg && q.Sign() != 0 {
		q.Neg(q)
	}
	return FmtDecimal{Value: bignum.FromBig(q), Scale: scale}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// renderSci renders scientific notation with `precision` digits after the
// decimal point in the mantissa (default 6), carrying a digit out of the
// leading position into the exponent when rounding the mantissa up to 10
// (e.g. 9.996 at precision 2 becomes 1.00e+01, per spec.md §4.11).
func renderSci(v value.Value, a Args, upper bool) (string, bool, error) {
	r, ok := toRat(v)
	if !ok {
		return "", false, formatErrorf("%%e requires a numeric value")
	}
	precision := a.Precision
	if precision < 0 {
		precision = 6
	}
	neg := r.Sign() < 0
	abs := new(big.Rat).Abs(r)
	exp := decimalExponent(abs)
	mantissa := new(big.Rat).Quo(abs, ratPow10(exp))
	dec := roundScale(mantissa, precision)
	digits := dec.Value.Big().String()
	for len(digits) <= precision {
		digits = "0" + digits
	}
	if len(digits)-precision > 1 {
		// rounding carried a digit out (e.g. 9.999 -> 10.00): reabsorb it
		// into the exponent and drop the trailing digit.
		exp++
		digits = digits[:len(digits)-1]
	}
	intDigit := digits[:len(digits)-precision]
	frac := digits[len(digits)-precision:]
	body := intDigit
	if precision > 0 {
		body += "." + frac
	}
	e := "e"
	if upper {
		e = "E"
	}
	sign := "+"
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	expDigits := big.NewInt(int64(exp)).String()
	if len(expDigits) < 2 {
		expDigits = "0" + expDigits
	}
	return body + e + sign + expDigits, neg, nil
}

func ratPow10(n int) *big.Rat {
	if n >= 0 {
		return new(big.Rat).SetInt(pow10(n))
	}
	return new(big.Rat).Inv(new(big.Rat).SetInt(pow10(-n)))
}

// decimalExponent returns the power of ten e such that 1 <= abs/10^e < 10,
// for a strictly positive rational abs.
func decimalExponent(abs *big.Rat) int {
	if abs.Sign() == 0 {
		return 0
	}
	e := 0
	one := big.NewRat(1, 1)
	ten := big.NewRat(10, 1)
	cur := new(big.Rat).Set(abs)
	for cur.Cmp(ten) >= 0 {
		cur.Quo(cur, ten)
		e++
	}
	for cur.Cmp(one) < 0 {
		cur.Mul(cur, ten)
		e--
	}
	return e
}

// renderGeneral implements the 'g'/'G' verb: scientific notation when the
// decimal exponent falls outside [-4, precision), fixed-point otherwise,
// per the conventional meaning spec.md §4.11 cites without spelling out
// the crossover (mirrored from Go's own strconv.FormatFloat 'g' verb,
// which the teacher's own numeric formatting ultimately delegates to).
func renderGeneral(v value.Value, a Args) (string, bool, error) {
	r, ok := toRat(v)
	if !ok {
		return "", false, formatErrorf("%%g requires a numeric value")
	}
	precision := a.Precision
	if precision < 0 {
		precision = 6
	}
	if precision == 0 {
		precision = 1
	}
	abs := new(big.Rat).Abs(r)
	exp := decimalExponent(abs)
	if abs.Sign() != 0 && (exp < -4 || exp >= precision) {
		a2 := a
		a2.Precision = precision - 1
		return renderSci(v, a2, a.FmtType == 'G')
	}
	a2 := a
	a2.Precision = precision - 1 - exp
	if a2.Precision < 0 {
		a2.Precision = 0
	}
	return renderFixed(v, a2)
}

// pad applies the width/fill/align/sign parts of the format-args record
// around an already-rendered numeric or text body.
func pad(body string, a Args, signed bool) string {
	sign := ""
	switch {
	case signed:
		sign = "-"
	case a.Sign == '+':
		sign = "+"
	case a.Sign == ' ':
		sign = " "
	}
	full := sign + body
	if a.MinWidth <= len(full) {
		return full
	}
	fill := a.Fill
	if fill == 0 {
		fill = ' '
	}
	padLen := a.MinWidth - len(full)
	filler := strings.Repeat(string(fill), padLen)
	switch a.Align {
	case AlignLeft:
		return full + filler
	case AlignCenter:
		left := padLen / 2
		right := padLen - left
		return strings.Repeat(string(fill), left) + full + strings.Repeat(string(fill), right)
	default: // AlignRight and AlignNone both right-align numerics by convention
		if a.Zero && a.Align == AlignNone {
			return sign + strings.Repeat("0", padLen) + body
		}
		return filler + full
	}
}
