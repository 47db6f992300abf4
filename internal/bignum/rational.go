package bignum

import "math/big"

// Rational is the value model's Decimal payload: an arbitrary-precision
// fraction. Grounded on original_source/src/rational_var.rs, backed by the
// standard library's math/big.Rat.
type Rational struct {
	r *big.Rat
}

func RationalFromInt(i Int) Rational {
	return Rational{r: new(big.Rat).SetInt(i.Big())}
}

func RationalFromFrac(num, den Int) Rational {
	return Rational{r: new(big.Rat).SetFrac(num.Big(), den.Big())}
}

func RationalFromFloat64(f float64) Rational {
	r := new(big.Rat)
	r.SetFloat64(f)
	return Rational{r: r}
}

func (d Rational) Rat() *big.Rat { return d.r }

func (d Rational) Add(o Rational) Rational { return Rational{r: new(big.Rat).Add(d.r, o.r)} }
func (d Rational) Sub(o Rational) Rational { return Rational{r: new(big.Rat).Sub(d.r, o.r)} }
func (d Rational) Mul(o Rational) Rational { return Rational{r: new(big.Rat).Mul(d.r, o.r)} }

// Quo divides; callers must reject a zero divisor before calling (spec.md §8:
// division by zero throws ValueError, not a Go panic).
func (d Rational) Quo(o Rational) Rational { return Rational{r: new(big.Rat).Quo(d.r, o.r)} }

func (d Rational) Neg() Rational { return Rational{r: new(big.Rat).Neg(d.r)} }
func (d Rational) Sign() int     { return d.r.Sign() }
func (d Rational) Cmp(o Rational) int { return d.r.Cmp(o.r) }
func (d Rational) Equal(o Rational) bool { return d.r.Cmp(o.r) == 0 }

// IsInt reports whether the fraction reduces to a whole number.
func (d Rational) IsInt() bool { return d.r.IsInt() }

// AsInt returns the reduced integer value; only valid when IsInt() is true.
func (d Rational) AsInt() Int { return FromBig(new(big.Int).Set(d.r.Num())) }

func (d Rational) Float64() float64 {
	f, _ := d.r.Float64()
	return f
}

func (d Rational) String() string { return d.r.RatString() }

// Hash matches the numeric tower: a Rational equal to some Bigint hashes the
// same as that Bigint (spec.md §8 invariant 2). Non-integral rationals hash
// from their reduced numerator/denominator pair.
func (d Rational) Hash() uint32 {
	if d.IsInt() {
		return d.AsInt().Hash()
	}
	num := FromBig(d.r.Num()).Hash()
	den := FromBig(d.r.Denom()).Hash()
	return (num ^ (den * 1000003)) + 0x345678
}
