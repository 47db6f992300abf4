package value

import "github.com/coreware/vmcore/internal/bignum"

// isNumeric reports whether kind participates in the numeric tower
// (spec.md §4.2: "mixing Bigint/Bool/Decimal auto-promotes to the widest
// type, with Bool coerced to 0/1").
func isNumeric(k Kind) bool {
	switch k {
	case KindBool, KindBigint, KindDecimal:
		return true
	default:
		return false
	}
}

func toRational(v Value) bignum.Rational {
	switch v.kind {
	case KindBool:
		if v.b {
			return bignum.RationalFromInt(bignum.FromInt64(1))
		}
		return bignum.RationalFromInt(bignum.FromInt64(0))
	case KindBigint:
		return bignum.RationalFromInt(v.bigint)
	case KindDecimal:
		return v.dec
	default:
		return bignum.RationalFromInt(bignum.FromInt64(0))
	}
}

func toBigintForBitwise(v Value) (bignum.Int, bool) {
	switch v.kind {
	case KindBool:
		if v.b {
			return bignum.FromInt64(1), true
		}
		return bignum.FromInt64(0), true
	case KindBigint:
		return v.bigint, true
	default:
		return bignum.Int{}, false
	}
}

// NumericCompare orders two numeric-tower values (spec.md §4.2's
// auto-promotion); non-numeric operands are rejected by the caller before
// reaching here.
func NumericCompare(a, b Value) int {
	return toRational(a).Cmp(toRational(b))
}

// widestNumericKind returns whichever kind should hold the result of a
// binary arithmetic operation between two numeric-tower operands: Decimal
// if either operand is Decimal, else Bigint.
func widestNumericKind(a, b Kind) Kind {
	if a == KindDecimal || b == KindDecimal {
		return KindDecimal
	}
	return KindBigint
}

func wrapNumeric(kind Kind, r bignum.Rational) Value {
	if kind == KindDecimal {
		return Decimal(r)
	}
	if r.IsInt() {
		return Bigint(r.AsInt())
	}
	// A non-Decimal result that isn't integral (e.g. Bigint / Bigint with a
	// remainder routed through "/" rather than floor-div) still has to
	// surface as a Decimal: the numeric tower widens automatically here.
	return Decimal(r)
}
