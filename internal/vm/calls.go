package vm

import "github.com/coreware/vmcore/internal/value"

// callValue invokes a resolved callee Value. Function constants produced by
// internal/loader's post-load fixup carry (FileID, FuncID) rather than a
// Native closure, so a bytecode Function routes through
// callBytecodeFunction; everything indexStandard/indexUnion/indexCustom
// hand back (methods, properties, operators) already comes wrapped as a
// Method whose Fn.Native closes over the right class-body caller, per
// internal/value/dispatch.go's Index contract.
func callValue(vm *VM, callee value.Value, args []value.Value) (value.Value, error) {
	switch callee.Kind() {
	case value.KindFunction:
		fn := callee.AsFunction()
		if fn.Native != nil {
			return fn.Native(args)
		}
		mod := vm.moduleByFile[fn.FileID]
		return vm.callBytecodeFunction(mod, fn.FuncID, args)
	case value.KindMethod:
		m := callee.AsMethod()
		full := append([]value.Value{m.Receiver}, args...)
		if m.Fn.Native != nil {
			return m.Fn.Native(full)
		}
		mod := vm.moduleByFile[m.Fn.FileID]
		return vm.callBytecodeFunction(mod, m.Fn.FuncID, full)
	default:
		return value.Value{}, &value.DispatchError{Kind: "type_error", Message: "value of kind " + callee.Kind().String() + " is not callable"}
	}
}

// doCallFunction implements CallFunction/TailFunction: fnK is a constant
// index holding the callee, argc the argument count already on the stack.
// A tail call still runs to completion here (this interpreter does not
// reuse the C stack across frames) but immediately propagates its single
// result as this frame's Return, matching the caller-visible contract.
func (vm *VM) doCallFunction(f *Frame, fnK, argc int, tail bool) ([]value.Value, bool, error) {
	args := f.popN(argc)
	callee := f.Module.Constants[fnK]
	result, err := callValue(vm, callee, args)
	if err != nil {
		return nil, false, err
	}
	if tail {
		return []value.Value{result}, true, nil
	}
	f.push(result)
	return nil, false, nil
}

// doCallTos calls the callable sitting on top of the stack above its argc
// arguments (CallTos/TailTos: "the callee is computed, not a constant").
func (vm *VM) doCallTos(f *Frame, argc int, tail bool) ([]value.Value, bool, error) {
	args := f.popN(argc)
	callee := f.pop()
	result, err := callValue(vm, callee, args)
	if err != nil {
		return nil, false, err
	}
	if tail {
		return []value.Value{result}, true, nil
	}
	f.push(result)
	return nil, false, nil
}

// doCallMethod resolves nameK against the receiver (below argc args) via
// Value.Index and invokes whatever that resolves to — a bound Method, a
// plain Function, or (for Custom types) a native closure.
func (vm *VM) doCallMethod(f *Frame, nameK, argc int, tail bool) ([]value.Value, bool, error) {
	args := f.popN(argc)
	recv := f.pop()
	name := f.Module.Constants[nameK].AsString().Raw()
	callee, err := recv.Index(name)
	if err != nil {
		return nil, false, err
	}
	result, err := callValue(vm, callee, args)
	if err != nil {
		return nil, false, err
	}
	if tail {
		return []value.Value{result}, true, nil
	}
	f.push(result)
	return nil, false, nil
}

// doCallOp implements CallOp: resolve the receiver's operator by tag name
// and invoke it with the remaining argc values as the call's own arguments
// — Index/callValue already handle prepending the receiver.
func (vm *VM) doCallOp(f *Frame, tag value.OperatorTag, argc int) error {
	extra := f.popN(argc)
	recv := f.pop()
	callee, err := recv.Index(tag.String())
	if err != nil {
		return err
	}
	result, err := callValue(vm, callee, extra)
	if err != nil {
		return err
	}
	f.push(result)
	return nil
}
