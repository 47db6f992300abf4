package vm

import "github.com/coreware/vmcore/internal/value"

// errorToValue turns whatever error step() produced into the thrown Value
// a try-handler matches against: a *thrownValue (from an explicit Throw)
// carries its payload already; any other error (a *value.DispatchError
// from a native operation, or a plain Go error from a constant-index
// bounds check) becomes an instance of the matching built-in exception
// class (spec.md §7).
func errorToValue(err error) value.Value {
	if tv, ok := err.(*thrownValue); ok {
		return tv.v
	}
	kind := "value_error"
	msg := err.Error()
	if de, ok := err.(*value.DispatchError); ok {
		kind = de.Kind
		msg = de.Message
	}
	inst := value.NewException(value.ExceptionClassForKind(kind), msg)
	return value.StandardV(inst)
}

// unwind implements spec.md §4.6's exception handling: pop try-regions off
// f until one accepts the thrown value's class (or none is left, in which
// case the exception escapes this frame uncaught), truncating the operand
// stack to the height recorded at that region's EnterTry and resuming at
// its handler pc with the thrown value pushed.
func (vm *VM) unwind(f *Frame, err error) (handled bool, rerr error) {
	thrown := errorToValue(err)
	for len(f.TryStack) > 0 {
		region := f.TryStack[len(f.TryStack)-1]
		f.TryStack = f.TryStack[:len(f.TryStack)-1]
		if !regionAccepts(region, thrown) {
			continue
		}
		f.truncateTo(region.stackHeight)
		f.push(thrown)
		f.PC = region.handlerPC
		return true, nil
	}
	return false, nil
}

func regionAccepts(region tryRegion, thrown value.Value) bool {
	if len(region.types) == 0 {
		return true
	}
	if thrown.Kind() != value.KindStandard {
		return false
	}
	class := thrown.AsStandard().Class
	for _, t := range region.types {
		for c := class; c != nil; c = c.Parent {
			if c == t {
				return true
			}
		}
	}
	return false
}
