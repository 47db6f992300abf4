package vm

import (
	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/value"
)

func (vm *VM) binOp(f *Frame, tag value.OperatorTag, numOp func(x, y bignum.Rational) bignum.Rational) error {
	b, a := f.pop(), f.pop()
	r, err := binArith(a, b, tag, numOp)
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) divide(f *Frame) error {
	b, a := f.pop(), f.pop()
	if isNumericVal(a) && isNumericVal(b) {
		if numericRat(b).Sign() == 0 {
			return &value.DispatchError{Kind: "value_error", Message: "division by zero"}
		}
		f.push(value.Decimal(numericRat(a).Quo(numericRat(b))))
		return nil
	}
	r, err := dispatchBinOperator(a, b, value.OpDiv)
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) floorDiv(f *Frame) error {
	b, a := f.pop(), f.pop()
	if isNumericVal(a) && isNumericVal(b) {
		q, _, err := intDivMod(a, b)
		if err != nil {
			return err
		}
		f.push(value.Bigint(q))
		return nil
	}
	r, err := dispatchBinOperator(a, b, value.OpFloorDiv)
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) mod(f *Frame) error {
	b, a := f.pop(), f.pop()
	if isNumericVal(a) && isNumericVal(b) {
		_, r, err := intDivMod(a, b)
		if err != nil {
			return err
		}
		f.push(value.Bigint(r))
		return nil
	}
	r, err := dispatchBinOperator(a, b, value.OpMod)
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) pow(f *Frame) error {
	b, a := f.pop(), f.pop()
	if isNumericVal(a) && isNumericVal(b) {
		base, exp := toInt(a), toInt(b)
		if exp.Sign() < 0 {
			return &value.DispatchError{Kind: "value_error", Message: "negative exponent"}
		}
		f.push(value.Bigint(base.Pow(exp)))
		return nil
	}
	r, err := dispatchBinOperator(a, b, value.OpPow)
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) bitOp(f *Frame, op func(a, b bignum.Int) bignum.Int) error {
	b, a := f.pop(), f.pop()
	f.push(value.Bigint(op(toInt(a), toInt(b))))
	return nil
}

func (vm *VM) shift(f *Frame, left bool) error {
	b, a := f.pop(), f.pop()
	bi := toInt(b)
	if bi.Sign() < 0 || !bi.Big().IsInt64() {
		return &value.DispatchError{Kind: "arithmetic_error", Message: "shift count out of range"}
	}
	n := uint(bi.Int64())
	ai := toInt(a)
	if left {
		f.push(value.Bigint(ai.Lsh(n)))
	} else {
		f.push(value.Bigint(ai.Rsh(n)))
	}
	return nil
}

func (vm *VM) compareOp(f *Frame, op bytecode.Opcode) error {
	b, a := f.pop(), f.pop()
	if isNumericVal(a) && isNumericVal(b) {
		c := value.NumericCompare(a, b)
		return vm.pushCompareResult(f, op, c)
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		c := a.AsString().Cmp(b.AsString())
		return vm.pushCompareResult(f, op, c)
	}
	var tag value.OperatorTag
	switch op {
	case bytecode.LessThan:
		tag = value.OpLessThan
	case bytecode.GreaterThan:
		tag = value.OpGreaterThan
	case bytecode.LessEqual:
		tag = value.OpLessEqual
	case bytecode.GreaterEqual:
		tag = value.OpGreaterEqual
	default:
		tag = value.OpLessThan
	}
	callee, err := a.Index(tag.String())
	if err != nil {
		return err
	}
	r, err := callValue(vm, callee, []value.Value{b})
	if err != nil {
		return err
	}
	f.push(r)
	return nil
}

func (vm *VM) pushCompareResult(f *Frame, op bytecode.Opcode, c int) error {
	switch op {
	case bytecode.LessThan:
		f.push(value.Bool(c < 0))
	case bytecode.GreaterThan:
		f.push(value.Bool(c > 0))
	case bytecode.LessEqual:
		f.push(value.Bool(c <= 0))
	case bytecode.GreaterEqual:
		f.push(value.Bool(c >= 0))
	case bytecode.Compare:
		f.push(value.IntV(int64(c)))
	}
	return nil
}

// doSubscript implements LoadSubscript (spec.md §4.5's container indexing,
// with Slice values accepted on List and String receivers only; any other
// receiver raises a type_error for a Slice): argc is
// almost always 1 (a single index or Slice value); anything not a built-in
// container dispatches through the getItem operator tag.
func (vm *VM) doSubscript(f *Frame, argc int) error {
	idxs := f.popN(argc)
	recv := f.pop()
	idx := idxs[0]
	if idx.Kind() == value.KindSlice {
		return vm.subscriptSlice(f, recv, idx.AsSlice())
	}
	switch recv.Kind() {
	case value.KindList:
		i, err := normalizeIndex(idx, recv.AsList().Len())
		if err != nil {
			return err
		}
		v, _ := recv.AsList().At(i)
		f.push(v)
		return nil
	case value.KindTuple:
		i, err := normalizeIndex(idx, recv.AsTuple().Len())
		if err != nil {
			return err
		}
		v, _ := recv.AsTuple().At(i)
		f.push(v)
		return nil
	case value.KindArray:
		i, err := normalizeIndex(idx, recv.AsArray().Len())
		if err != nil {
			return err
		}
		v, _ := recv.AsArray().At(i)
		f.push(v)
		return nil
	case value.KindString:
		i, err := normalizeIndex(idx, recv.AsString().Len())
		if err != nil {
			return err
		}
		ch, _ := recv.AsString().CharAt(i)
		f.push(value.Char(ch))
		return nil
	case value.KindDict:
		v, ok, err := recv.AsDict().Get(idx)
		if err != nil {
			return err
		}
		if !ok {
			return &value.DispatchError{Kind: "key_error", Message: "key not found"}
		}
		f.push(v)
		return nil
	default:
		callee, err := recv.Index(value.OpGetItem.String())
		if err != nil {
			return err
		}
		r, err := callValue(vm, callee, []value.Value{idx})
		if err != nil {
			return err
		}
		f.push(r)
		return nil
	}
}

func (vm *VM) subscriptSlice(f *Frame, recv value.Value, sl *value.Slice) error {
	switch recv.Kind() {
	case value.KindList:
		start, stop, step, err := sl.Resolve(recv.AsList().Len())
		if err != nil {
			return err
		}
		if step != 1 {
			return &value.DispatchError{Kind: "value_error", Message: "stepped slicing not supported on list"}
		}
		f.push(value.ListV(recv.AsList().SubSlice(start, stop)))
		return nil
	case value.KindString:
		start, stop, _, err := sl.Resolve(recv.AsString().Len())
		if err != nil {
			return err
		}
		f.push(value.StringV(recv.AsString().Slice(start, stop)))
		return nil
	default:
		return &value.DispatchError{Kind: "type_error", Message: "value does not support slicing"}
	}
}

func normalizeIndex(idx value.Value, length int) (int, error) {
	i := int(toInt(idx).Int64())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, &value.DispatchError{Kind: "index_error", Message: "index out of range"}
	}
	return i, nil
}

func (vm *VM) doStoreSubscript(f *Frame) error {
	val := f.pop()
	idx := f.pop()
	recv := f.pop()
	switch recv.Kind() {
	case value.KindList:
		i, err := normalizeIndex(idx, recv.AsList().Len())
		if err != nil {
			return err
		}
		recv.AsList().Set(i, val)
		return nil
	case value.KindArray:
		i, err := normalizeIndex(idx, recv.AsArray().Len())
		if err != nil {
			return err
		}
		return recv.AsArray().Set(i, val)
	case value.KindDict:
		_, _, err := recv.AsDict().Insert(idx, val)
		return err
	default:
		callee, err := recv.Index(value.OpSetItem.String())
		if err != nil {
			return err
		}
		_, err = callValue(vm, callee, []value.Value{idx, val})
		return err
	}
}

func (vm *VM) doDelSubscript(f *Frame) error {
	idx := f.pop()
	recv := f.pop()
	switch recv.Kind() {
	case value.KindList:
		i, err := normalizeIndex(idx, recv.AsList().Len())
		if err != nil {
			return err
		}
		recv.AsList().RemoveAt(i)
		return nil
	case value.KindDict:
		_, _, err := recv.AsDict().Delete(idx)
		return err
	case value.KindSet:
		_, err := recv.AsSet().Delete(idx)
		return err
	default:
		callee, err := recv.Index(value.OpDelItem.String())
		if err != nil {
			return err
		}
		_, err = callValue(vm, callee, []value.Value{idx})
		return err
	}
}

func (vm *VM) doMakeSlice(f *Frame) error {
	step := f.pop()
	stop := f.pop()
	start := f.pop()
	toPtr := func(v value.Value) *int {
		if v.IsNull() {
			return nil
		}
		i := int(toInt(v).Int64())
		return &i
	}
	f.push(value.SliceV(value.NewSlice(toPtr(start), toPtr(stop), toPtr(step))))
	return nil
}

// doForIter implements ForIter: the iterator Custom/container value stays
// on top of the stack across iterations (spec.md §4.10's loop opcodes);
// each pass resolves "next", storing the unwrapped Some into slot or
// jumping to target on None, popping the exhausted iterator.
func (vm *VM) doForIter(f *Frame, target, slot int) error {
	iter := f.peek(0)
	callee, err := iter.Index(value.OpNext.String())
	if err != nil {
		return err
	}
	result, err := callValue(vm, callee, nil)
	if err != nil {
		return err
	}
	some, ok := result.OptSome()
	if !ok {
		f.pop()
		f.PC = target
		return nil
	}
	f.Locals[slot] = some
	return nil
}

func throwValue(v value.Value) error {
	return &thrownValue{v: v}
}

// thrownValue wraps a raised value so unwind can recover the original
// Value instead of re-deriving one from a DispatchError's Kind/Message.
type thrownValue struct {
	v value.Value
}

func (e *thrownValue) Error() string {
	return value.Repr(e.v, false)
}
