package vm

import (
	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/value"
)

// binArith implements the fixed-arity arithmetic opcodes (spec.md §4.1):
// numeric-tower operands are computed directly; anything else is
// dispatched through the matching operator tag (spec.md §4.2).
func binArith(a, b value.Value, tag value.OperatorTag, numOp func(x, y bignum.Rational) bignum.Rational) (value.Value, error) {
	if isNumericVal(a) && isNumericVal(b) {
		ar, br := numericRat(a), numericRat(b)
		kind := value.KindBigint
		if a.Kind() == value.KindDecimal || b.Kind() == value.KindDecimal {
			kind = value.KindDecimal
		}
		r := numOp(ar, br)
		if kind == value.KindDecimal {
			return value.Decimal(r), nil
		}
		if r.IsInt() {
			return value.Bigint(r.AsInt()), nil
		}
		return value.Decimal(r), nil
	}
	return dispatchBinOperator(a, b, tag)
}

func isNumericVal(v value.Value) bool {
	switch v.Kind() {
	case value.KindBool, value.KindBigint, value.KindDecimal:
		return true
	default:
		return false
	}
}

func numericRat(v value.Value) bignum.Rational {
	switch v.Kind() {
	case value.KindBool:
		if v.AsBool() {
			return bignum.RationalFromInt(bignum.FromInt64(1))
		}
		return bignum.RationalFromInt(bignum.FromInt64(0))
	case value.KindBigint:
		return bignum.RationalFromInt(v.AsBigint())
	default:
		return v.AsDecimal()
	}
}

func dispatchBinOperator(a, b value.Value, tag value.OperatorTag) (value.Value, error) {
	callable, err := a.Index(tag.String())
	if err != nil {
		return value.Value{}, err
	}
	fn := callable.AsFunction()
	method := callable.AsMethod()
	if method != nil {
		return method.Fn.Native([]value.Value{a, b})
	}
	if fn != nil && fn.Native != nil {
		return fn.Native([]value.Value{a, b})
	}
	return value.Value{}, &value.DispatchError{Kind: "type_error", Message: "operator " + tag.String() + " not callable"}
}

func intDivMod(a, b value.Value) (q, r bignum.Int, err error) {
	ai, bi := toInt(a), toInt(b)
	if bi.Sign() == 0 {
		return bignum.Int{}, bignum.Int{}, &value.DispatchError{Kind: "value_error", Message: "division by zero"}
	}
	q, r = ai.DivMod(bi)
	return q, r, nil
}

func toInt(v value.Value) bignum.Int {
	switch v.Kind() {
	case value.KindBool:
		if v.AsBool() {
			return bignum.FromInt64(1)
		}
		return bignum.FromInt64(0)
	case value.KindBigint:
		return v.AsBigint()
	case value.KindDecimal:
		if v.AsDecimal().IsInt() {
			return v.AsDecimal().AsInt()
		}
		return bignum.FromInt64(0)
	default:
		return bignum.FromInt64(0)
	}
}
