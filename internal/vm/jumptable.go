package vm

import "github.com/coreware/vmcore/internal/value"

// doSwitch implements SwitchTable (spec.md §4.10's compact/big/string jump
// tables, collapsed here into one self-describing encoding): n was read as
// the opcode's own immediate; it is followed inline by n (key-const-index
// uint16, target-pc uint32) pairs and a trailing default-target uint32.
// Matching a case jumps straight there; the compiler chooses a dense
// integer key range for the "compact" case, an arbitrary integer or string
// constant for "big"/"string" — the match itself (value.Equal against the
// popped key) doesn't need to know which.
func (vm *VM) doSwitch(f *Frame, n int) error {
	code := f.Function.Code
	key := f.pop()
	for i := 0; i < n; i++ {
		kidx := int(readU16(code, f.PC))
		f.PC += 2
		target := int(readU32(code, f.PC))
		f.PC += 4
		eq, err := value.Equal(key, f.Module.Constants[kidx])
		if err != nil {
			return err
		}
		if eq {
			f.PC = target
			return nil
		}
	}
	def := int(readU32(code, f.PC))
	f.PC += 4
	f.PC = def
	return nil
}
