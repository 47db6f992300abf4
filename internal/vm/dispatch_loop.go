package vm

import (
	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/value"
)

// step executes exactly one instruction at f.PC-1 (f.PC already advanced
// past the opcode byte by execute). It returns (results, true, nil) when
// the frame should unwind via Return, or (nil, false, err) when the
// instruction raised — execute's unwind pass takes over from there.
func (vm *VM) step(f *Frame, op bytecode.Opcode, code []byte) ([]value.Value, bool, error) {
	switch op {
	case bytecode.Nop:
		return nil, false, nil

	case bytecode.LoadNull:
		f.push(value.Null())
		return nil, false, nil

	case bytecode.LoadConst:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		f.push(f.Module.Constants[k])
		return nil, false, nil

	case bytecode.LoadValue:
		slot, _, next := imm(code, f.PC, op)
		f.PC = next
		f.push(f.Locals[slot])
		return nil, false, nil

	case bytecode.LoadDot:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		name := f.Module.Constants[k]
		recv := f.pop()
		r, err := recv.Index(name.AsString().Raw())
		if err != nil {
			return nil, false, err
		}
		f.push(r)
		return nil, false, nil

	case bytecode.LoadSubscript:
		argc, _, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doSubscript(f, argc)
	case bytecode.Subscript:
		return nil, false, vm.doSubscript(f, 1)

	case bytecode.LoadOp:
		opTag, _, next := imm(code, f.PC, op)
		f.PC = next
		recv := f.pop()
		r, err := recv.Index(value.OperatorTag(opTag).String())
		if err != nil {
			return nil, false, err
		}
		f.push(r)
		return nil, false, nil

	case bytecode.PopTop:
		f.pop()
		return nil, false, nil

	case bytecode.DupTop:
		f.push(f.peek(0))
		return nil, false, nil

	case bytecode.DupTop2:
		a, b := f.peek(1), f.peek(0)
		f.push(a)
		f.push(b)
		return nil, false, nil

	case bytecode.DupTopN:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		top := f.Stack[len(f.Stack)-n:]
		f.Stack = append(f.Stack, top...)
		return nil, false, nil

	case bytecode.Swap2:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-2] = f.Stack[n-2], f.Stack[n-1]
		return nil, false, nil

	case bytecode.Swap3:
		n := len(f.Stack)
		f.Stack[n-1], f.Stack[n-3] = f.Stack[n-3], f.Stack[n-1]
		return nil, false, nil

	case bytecode.SwapN:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		top := f.Stack[len(f.Stack)-n:]
		for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
			top[i], top[j] = top[j], top[i]
		}
		return nil, false, nil

	case bytecode.SwapStack:
		a, b, next := imm(code, f.PC, op)
		f.PC = next
		n := len(f.Stack)
		ia, ib := n-1-a, n-1-b
		f.Stack[ia], f.Stack[ib] = f.Stack[ib], f.Stack[ia]
		return nil, false, nil

	case bytecode.SwapDyn:
		a := f.pop()
		b := f.pop()
		idx := int(toInt(a).Int64())
		n := len(f.Stack)
		target := n - 1 - idx
		f.Stack[target], b = b, f.Stack[target]
		f.push(b)
		return nil, false, nil

	case bytecode.Store:
		slot, _, next := imm(code, f.PC, op)
		f.PC = next
		f.Locals[slot] = f.pop()
		return nil, false, nil

	case bytecode.StoreSubscript:
		return nil, false, vm.doStoreSubscript(f)

	case bytecode.StoreAttr:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		name := f.Module.Constants[k].AsString().Raw()
		v := f.pop()
		recv := f.pop()
		return nil, false, storeAttr(recv, name, v)

	case bytecode.DelSubscript:
		return nil, false, vm.doDelSubscript(f)

	// --- arithmetic ---
	case bytecode.Plus:
		return nil, false, vm.binOp(f, value.OpAdd, func(x, y bignum.Rational) bignum.Rational { return x.Add(y) })
	case bytecode.Minus:
		return nil, false, vm.binOp(f, value.OpSub, func(x, y bignum.Rational) bignum.Rational { return x.Sub(y) })
	case bytecode.Times:
		return nil, false, vm.binOp(f, value.OpMul, func(x, y bignum.Rational) bignum.Rational { return x.Mul(y) })
	case bytecode.Divide:
		return nil, false, vm.divide(f)
	case bytecode.FloorDiv:
		return nil, false, vm.floorDiv(f)
	case bytecode.Mod:
		return nil, false, vm.mod(f)
	case bytecode.Power:
		return nil, false, vm.pow(f)
	case bytecode.UMinus:
		v := f.pop()
		if isNumericVal(v) {
			f.push(value.Bigint(toInt(v).Neg()))
			return nil, false, nil
		}
		c, ok := unaryOperator(v, value.OpUMinus)
		if !ok {
			return nil, false, &value.DispatchError{Kind: "type_error", Message: "unsupported operand for unary -"}
		}
		r, err := c([]value.Value{v})
		f.push(r)
		return nil, false, err
	case bytecode.BitwiseNot:
		v := f.pop()
		f.push(value.Bigint(toInt(v).Not()))
		return nil, false, nil
	case bytecode.BitwiseAnd:
		return nil, false, vm.bitOp(f, func(a, b bignum.Int) bignum.Int { return a.And(b) })
	case bytecode.BitwiseOr:
		return nil, false, vm.bitOp(f, func(a, b bignum.Int) bignum.Int { return a.Or(b) })
	case bytecode.BitwiseXor:
		return nil, false, vm.bitOp(f, func(a, b bignum.Int) bignum.Int { return a.Xor(b) })
	case bytecode.LBitshift:
		return nil, false, vm.shift(f, true)
	case bytecode.RBitshift:
		return nil, false, vm.shift(f, false)

	case bytecode.BoolAnd:
		b, a := f.pop(), f.pop()
		at, _ := a.Truthy()
		bt, _ := b.Truthy()
		f.push(value.Bool(at && bt))
		return nil, false, nil
	case bytecode.BoolOr:
		b, a := f.pop(), f.pop()
		at, _ := a.Truthy()
		bt, _ := b.Truthy()
		f.push(value.Bool(at || bt))
		return nil, false, nil
	case bytecode.BoolXor:
		b, a := f.pop(), f.pop()
		at, _ := a.Truthy()
		bt, _ := b.Truthy()
		f.push(value.Bool(at != bt))
		return nil, false, nil
	case bytecode.BoolNot:
		a := f.pop()
		t, err := a.Truthy()
		if err != nil {
			return nil, false, err
		}
		f.push(value.Bool(!t))
		return nil, false, nil

	case bytecode.Equal:
		b, a := f.pop(), f.pop()
		eq, err := value.Equal(a, b)
		if err != nil {
			return nil, false, err
		}
		f.push(value.Bool(eq))
		return nil, false, nil
	case bytecode.Identical:
		b, a := f.pop(), f.pop()
		f.push(value.Bool(sameIdentity(a, b)))
		return nil, false, nil
	case bytecode.LessThan, bytecode.GreaterThan, bytecode.LessEqual, bytecode.GreaterEqual, bytecode.Compare:
		return nil, false, vm.compareOp(f, op)
	case bytecode.Instanceof:
		t := f.pop()
		v := f.pop()
		f.push(value.Bool(value.InstanceOf(v, t.AsType())))
		return nil, false, nil
	case bytecode.Contains:
		b, a := f.pop(), f.pop()
		ok, err := containsOp(a, b)
		if err != nil {
			return nil, false, err
		}
		f.push(value.Bool(ok))
		return nil, false, nil

	case bytecode.CallOp:
		opTag, argc, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doCallOp(f, value.OperatorTag(opTag), argc)

	// --- tuple ---
	case bytecode.PackTuple:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		elems := f.popN(n)
		f.push(value.TupleV(value.NewTuple(elems)))
		return nil, false, nil
	case bytecode.UnpackTuple:
		t := f.pop()
		tup := t.AsTuple()
		for _, e := range tup.Elems {
			f.push(e)
		}
		return nil, false, nil
	case bytecode.PackIterable, bytecode.UnpackIterable:
		// Iterable pack/unpack is sugar over PackTuple/UnpackTuple at
		// the value-model level: any iterable is first materialized by
		// the compiler into a Tuple before reaching here.
		return nil, false, nil

	// --- jumps ---
	case bytecode.Jump:
		target, _, _ := imm(code, f.PC, op)
		f.PC = target
		return nil, false, nil
	case bytecode.JumpFalse:
		target, _, next := imm(code, f.PC, op)
		f.PC = next
		v := f.pop()
		t, err := v.Truthy()
		if err != nil {
			return nil, false, err
		}
		if !t {
			f.PC = target
		}
		return nil, false, nil
	case bytecode.JumpTrue:
		target, _, next := imm(code, f.PC, op)
		f.PC = next
		v := f.pop()
		t, err := v.Truthy()
		if err != nil {
			return nil, false, err
		}
		if t {
			f.PC = target
		}
		return nil, false, nil
	case bytecode.JumpNN:
		target, _, next := imm(code, f.PC, op)
		f.PC = next
		if !f.peek(0).IsNull() {
			f.PC = target
		}
		return nil, false, nil
	case bytecode.JumpNull:
		target, _, next := imm(code, f.PC, op)
		f.PC = next
		if f.peek(0).IsNull() {
			f.PC = target
		}
		return nil, false, nil

	// --- calls / returns ---
	case bytecode.CallMethod:
		nameK, argc, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallMethod(f, nameK, argc, false)
	case bytecode.TailMethod:
		nameK, argc, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallMethod(f, nameK, argc, true)
	case bytecode.CallTos:
		argc, _, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallTos(f, argc, false)
	case bytecode.TailTos:
		argc, _, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallTos(f, argc, true)
	case bytecode.CallFunction:
		fnK, argc, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallFunction(f, fnK, argc, false)
	case bytecode.TailFunction:
		fnK, argc, next := imm(code, f.PC, op)
		f.PC = next
		return vm.doCallFunction(f, fnK, argc, true)
	case bytecode.Return:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		return f.popN(n), true, nil
	case bytecode.Yield:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doYield(f, n)
	case bytecode.SwitchTable:
		tbl, _, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doSwitch(f, tbl)

	// --- exceptions ---
	case bytecode.Throw:
		v := f.pop()
		return nil, false, throwValue(v)
	case bytecode.ThrowQuick:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		typ := f.Module.Constants[k]
		msg := f.pop()
		inst := value.NewException(typ.AsType().Class, msg.AsString().Raw())
		return nil, false, throwValue(value.StandardV(inst))
	case bytecode.EnterTry:
		handlerPC, _, next := imm(code, f.PC, op)
		f.PC = next
		f.TryStack = append(f.TryStack, tryRegion{stackHeight: len(f.Stack), handlerPC: handlerPC})
		return nil, false, nil
	case bytecode.ExceptN:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		types := make([]*value.Class, n)
		popped := f.popN(n)
		for i, t := range popped {
			types[i] = t.AsType().Class
		}
		f.TryStack[len(f.TryStack)-1].types = types
		return nil, false, nil
	case bytecode.EndTry:
		f.TryStack = f.TryStack[:len(f.TryStack)-1]
		return nil, false, nil
	case bytecode.Finally:
		return nil, false, nil

	// --- markers (the loader already materialized functions/classes) ---
	case bytecode.FuncDef, bytecode.ClassDef, bytecode.EndClass:
		_, _, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, nil

	// --- loops / comprehensions ---
	case bytecode.ForIter:
		target, slot, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doForIter(f, target, slot)
	case bytecode.Dotimes:
		target, _, next := imm(code, f.PC, op)
		f.PC = next
		count := f.pop()
		n := toInt(count)
		if n.Sign() <= 0 {
			f.PC = target
		} else {
			f.push(value.Bigint(n.Sub(bignum.FromInt64(1))))
		}
		return nil, false, nil
	case bytecode.ForParallel:
		target, slot, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, vm.doForIter(f, target, slot)
	case bytecode.ListCreate:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		f.push(value.ListV(value.NewList(f.popN(n))))
		return nil, false, nil
	case bytecode.SetCreate:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		s := value.NewSet()
		for _, e := range f.popN(n) {
			if _, err := s.Add(e); err != nil {
				return nil, false, err
			}
		}
		f.push(value.SetV(s))
		return nil, false, nil
	case bytecode.DictCreate:
		n, _, next := imm(code, f.PC, op)
		f.PC = next
		d := value.NewDict()
		pairs := f.popN(2 * n)
		for i := 0; i < len(pairs); i += 2 {
			if _, _, err := d.Insert(pairs[i], pairs[i+1]); err != nil {
				return nil, false, err
			}
		}
		f.push(value.DictV(d))
		return nil, false, nil
	case bytecode.ListAdd:
		v := f.pop()
		l := f.peek(0).AsList()
		l.Append(v)
		return nil, false, nil
	case bytecode.SetAdd:
		v := f.pop()
		s := f.peek(0).AsSet()
		_, err := s.Add(v)
		return nil, false, err
	case bytecode.DictAdd:
		val := f.pop()
		key := f.pop()
		d := f.peek(0).AsDict()
		_, _, err := d.Insert(key, val)
		return nil, false, err
	case bytecode.ListDyn, bytecode.SetDyn, bytecode.DictDyn:
		// Dynamic (runtime-sized) container literals reuse the same
		// Create/Add opcode pair; the compiler emits Create(0) first.
		return nil, false, nil
	case bytecode.MakeSlice:
		return nil, false, vm.doMakeSlice(f)

	// --- statics ---
	case bytecode.DoStatic, bytecode.StoreStatic, bytecode.LoadStatic:
		_, _, next := imm(code, f.PC, op)
		f.PC = next
		return nil, false, nil

	// --- union / option ---
	case bytecode.GetVariant:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		u := f.pop().AsUnion()
		_ = k
		f.push(u.Inner)
		return nil, false, nil
	case bytecode.MakeVariant:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		typ := f.Module.Constants[k].AsType()
		inner := f.pop()
		variantIdx := f.pop()
		inst := value.NewUnionInstance(typ.Class, int(toInt(variantIdx).Int64()), inner)
		f.push(value.UnionV(inst))
		return nil, false, nil
	case bytecode.VariantNo:
		u := f.pop().AsUnion()
		f.push(value.IntV(int64(u.VariantIndex)))
		return nil, false, nil
	case bytecode.MakeOption:
		depth, _, next := imm(code, f.PC, op)
		f.PC = next
		v := f.pop()
		f.push(value.MakeOption(depth, &v))
		return nil, false, nil
	case bytecode.IsSome:
		v := f.peek(0)
		_, ok := v.OptSome()
		f.push(value.Bool(ok))
		return nil, false, nil
	case bytecode.UnwrapOption:
		v := f.pop()
		some, ok := v.OptSome()
		if !ok {
			return nil, false, &value.DispatchError{Kind: "invalid_state", Message: "unwrap of None"}
		}
		f.push(some)
		return nil, false, nil

	// --- misc ---
	case bytecode.LoadFunction:
		k, _, next := imm(code, f.PC, op)
		f.PC = next
		f.push(f.Module.Constants[k])
		return nil, false, nil
	case bytecode.GetType:
		v := f.pop()
		f.push(value.TypeV(value.RuntimeType(v)))
		return nil, false, nil

	default:
		return nil, false, &value.DispatchError{Kind: "invalid_state", Message: "unimplemented opcode " + op.String()}
	}
}

func sameIdentity(a, b value.Value) bool {
	eq, _ := value.Equal(a, b)
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.KindStandard:
		return a.AsStandard() == b.AsStandard()
	case value.KindUnion:
		return a.AsUnion() == b.AsUnion()
	case value.KindList:
		return a.AsList() == b.AsList()
	case value.KindDict:
		return a.AsDict() == b.AsDict()
	case value.KindSet:
		return a.AsSet() == b.AsSet()
	default:
		return eq
	}
}

func unaryOperator(v value.Value, tag value.OperatorTag) (value.Callable, bool) {
	switch v.Kind() {
	case value.KindStandard:
		return v.AsStandard().Class.LookupOperator(tag)
	case value.KindUnion:
		return v.AsUnion().Class.LookupOperator(tag)
	case value.KindCustom:
		return v.AsCustom().Operator(tag)
	default:
		return nil, false
	}
}

func storeAttr(recv value.Value, name string, v value.Value) error {
	switch recv.Kind() {
	case value.KindStandard:
		recv.AsStandard().SetAttr(name, v)
		return nil
	default:
		return &value.DispatchError{Kind: "type_error", Message: "cannot set attribute on " + recv.Kind().String()}
	}
}

func containsOp(container, item value.Value) (bool, error) {
	switch container.Kind() {
	case value.KindList:
		for _, e := range container.AsList().Elems {
			eq, err := value.Equal(e, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case value.KindTuple:
		for _, e := range container.AsTuple().Elems {
			eq, err := value.Equal(e, item)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case value.KindDict:
		return container.AsDict().Contains(item)
	case value.KindSet:
		return container.AsSet().Contains(item)
	case value.KindString:
		return false, nil
	default:
		c, ok := unaryOperator(container, value.OpContains)
		if !ok {
			return false, &value.DispatchError{Kind: "type_error", Message: "unsupported operand for contains"}
		}
		r, err := c([]value.Value{container, item})
		if err != nil {
			return false, err
		}
		return r.AsBool(), nil
	}
}
