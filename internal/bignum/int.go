// Package bignum wraps arbitrary-precision integer and rational arithmetic
// for the value model, with a small-int fast path so common arithmetic never
// touches the heap. Arithmetic itself is delegated to math/big: spec.md §1
// treats bignum/rational math as an out-of-scope collaborator, and math/big
// already is the library that collaborator names.
package bignum

import (
	"math"
	"math/big"
)

// Int is a compact-or-heap arbitrary-precision integer. Values that fit in
// an int64 are stored inline (small == true); everything else falls back to
// a *big.Int. This mirrors the "compact or heap" duality spec.md §3.1
// requires of the Bigint variant.
type Int struct {
	small   int64
	isSmall bool
	big     *big.Int
}

// FromInt64 builds a compact Int.
func FromInt64(v int64) Int {
	return Int{small: v, isSmall: true}
}

// FromBig builds an Int from a *big.Int, compacting it if it fits in int64.
func FromBig(v *big.Int) Int {
	if v.IsInt64() {
		return Int{small: v.Int64(), isSmall: true}
	}
	return Int{big: new(big.Int).Set(v)}
}

// FromLimbs reconstructs an Int from big-endian 32-bit limbs as used by the
// module loader's bigint constant tag (spec.md §4.9, tag 2).
func FromLimbs(limbs []uint32, negative bool) Int {
	if len(limbs) == 0 {
		return FromInt64(0)
	}
	acc := new(big.Int)
	for _, limb := range limbs {
		acc.Lsh(acc, 32)
		acc.Or(acc, new(big.Int).SetUint64(uint64(limb)))
	}
	if negative {
		acc.Neg(acc)
	}
	return FromBig(acc)
}

// IsSmall reports whether the value is stored without heap allocation.
func (i Int) IsSmall() bool { return i.isSmall }

// Big returns the value as a *big.Int, materializing the compact form if
// necessary. The returned pointer must not be mutated by the caller.
func (i Int) Big() *big.Int {
	if i.isSmall {
		return big.NewInt(i.small)
	}
	return i.big
}

// Int64 returns the value truncated/converted to int64; callers should check
// IsSmall or Big().IsInt64() first if precision matters.
func (i Int) Int64() int64 {
	if i.isSmall {
		return i.small
	}
	return i.big.Int64()
}

// Float64 converts to the nearest float64.
func (i Int) Float64() float64 {
	if i.isSmall {
		return float64(i.small)
	}
	f := new(big.Float).SetInt(i.big)
	v, _ := f.Float64()
	return v
}

// Sign returns -1, 0 or 1.
func (i Int) Sign() int {
	if i.isSmall {
		switch {
		case i.small < 0:
			return -1
		case i.small > 0:
			return 1
		default:
			return 0
		}
	}
	return i.big.Sign()
}

// Cmp compares two Ints.
func (i Int) Cmp(o Int) int {
	if i.isSmall && o.isSmall {
		switch {
		case i.small < o.small:
			return -1
		case i.small > o.small:
			return 1
		default:
			return 0
		}
	}
	return i.Big().Cmp(o.Big())
}

func (i Int) Equal(o Int) bool { return i.Cmp(o) == 0 }

func (i Int) String() string {
	if i.isSmall {
		return big.NewInt(i.small).String()
	}
	return i.big.String()
}

// binOp funnels small+small additions through machine arithmetic with
// overflow detection, falling back to big.Int only when needed. This is the
// "quick path" original_source/src/quick_functions.rs implements for int
// arithmetic.
func binOp(a, b Int, smallOp func(x, y int64) (int64, bool), bigOp func(z, x, y *big.Int) *big.Int) Int {
	if a.isSmall && b.isSmall {
		if r, ok := smallOp(a.small, b.small); ok {
			return FromInt64(r)
		}
	}
	z := new(big.Int)
	bigOp(z, a.Big(), b.Big())
	return FromBig(z)
}

func addOverflows(x, y int64) (int64, bool) {
	r := x + y
	if (r > x) == (y > 0) {
		return r, true
	}
	return 0, false
}

func subOverflows(x, y int64) (int64, bool) {
	r := x - y
	if (r < x) == (y > 0) {
		return r, true
	}
	return 0, false
}

func mulOverflows(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	r := x * y
	if r/y != x {
		return 0, false
	}
	return r, true
}

func (i Int) Add(o Int) Int {
	return binOp(i, o, addOverflows, func(z, x, y *big.Int) *big.Int { return z.Add(x, y) })
}

func (i Int) Sub(o Int) Int {
	return binOp(i, o, subOverflows, func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) })
}

func (i Int) Mul(o Int) Int {
	return binOp(i, o, mulOverflows, func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) })
}

// DivMod returns floor-division quotient and the matching modulus (sign
// follows the divisor, Python/spec-style). Callers must check o.Sign() != 0.
func (i Int) DivMod(o Int) (q, r Int) {
	zq, zr := new(big.Int), new(big.Int)
	zq.DivMod(i.Big(), o.Big(), zr)
	// big.Int.DivMod is Euclidean (remainder always >= 0); spec wants
	// floor-division semantics where remainder takes the divisor's sign.
	if zr.Sign() != 0 && o.Sign() < 0 {
		zr.Add(zr, o.Big())
		zq.Sub(zq, big.NewInt(1))
	}
	return FromBig(zq), FromBig(zr)
}

// Pow raises i to a non-negative exponent.
func (i Int) Pow(exp Int) Int {
	z := new(big.Int).Exp(i.Big(), exp.Big(), nil)
	return FromBig(z)
}

func (i Int) Neg() Int {
	if i.isSmall && i.small != math.MinInt64 {
		return FromInt64(-i.small)
	}
	return FromBig(new(big.Int).Neg(i.Big()))
}

func (i Int) Not() Int {
	return FromBig(new(big.Int).Not(i.Big()))
}

func (i Int) And(o Int) Int { return FromBig(new(big.Int).And(i.Big(), o.Big())) }
func (i Int) Or(o Int) Int  { return FromBig(new(big.Int).Or(i.Big(), o.Big())) }
func (i Int) Xor(o Int) Int { return FromBig(new(big.Int).Xor(i.Big(), o.Big())) }

// Lsh/Rsh take a non-negative shift count; callers enforce the
// ArithmeticError-on-overflow boundary described in spec.md §8.
func (i Int) Lsh(n uint) Int { return FromBig(new(big.Int).Lsh(i.Big(), n)) }
func (i Int) Rsh(n uint) Int { return FromBig(new(big.Int).Rsh(i.Big(), n)) }

// Hash returns a stable hash consistent across the numeric tower: it is
// defined in terms of the big.Int's own digest so that equal Decimal and
// Bigint values (see value.Value.Hash) can be reconciled by the caller.
func (i Int) Hash() uint32 {
	b := i.Big()
	words := b.Bits()
	var h uint32 = 2166136261
	for _, w := range words {
		h ^= uint32(w) ^ uint32(uint64(w)>>32)
		h *= 16777619
	}
	if b.Sign() < 0 {
		h ^= 0xffffffff
	}
	return h
}

// FitsUint64 reports whether the value can be represented as a uint64,
// returning that uint64 when it can.
func (i Int) FitsUint64() (uint64, bool) {
	b := i.Big()
	if b.Sign() < 0 || !b.IsUint64() {
		return 0, false
	}
	return b.Uint64(), true
}
