package vm

import (
	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/loader"
	"github.com/coreware/vmcore/internal/value"
)

// yieldSignal is how a Yield opcode unwinds execute() without going through
// the exception-unwind machinery: it carries the yielded values straight
// back to whichever caller is driving this frame (callBytecodeFunction for
// an ordinary call, Generator.next for a detached generator frame).
type yieldSignal struct {
	values []value.Value
}

func (y *yieldSignal) Error() string { return "yield outside a generator" }

func (vm *VM) doYield(f *Frame, n int) error {
	return &yieldSignal{values: f.popN(n)}
}

// isGeneratorFunc reports whether fn's bytecode contains a Yield
// instruction. Nothing in the module format marks a function as a
// generator up front (spec.md §4.9 doesn't reserve a flag for it), so the
// interpreter infers it the same way a reader would: by walking the
// instruction stream once, respecting each opcode's operand width so
// operand bytes are never mistaken for a Yield opcode.
func isGeneratorFunc(fn *loader.Function) bool {
	code := fn.Code
	pc := 0
	for pc < len(code) {
		op := bytecode.Opcode(code[pc])
		pc++
		if op == bytecode.Yield {
			return true
		}
		if int(op) >= len(bytecode.OperandWidths) {
			return false
		}
		w := bytecode.OperandWidths[op]
		pc += int(w[0]) + int(w[1])
		if op == bytecode.SwitchTable {
			// SwitchTable's n immediate (just consumed above) is followed
			// by n inline (key-index u16, target u32) pairs and a default
			// target u32 — none of it is opcodes, so skip it whole to
			// keep the scan aligned on real instruction boundaries.
			n := int(code[pc-2])<<8 | int(code[pc-1])
			pc += n*(2+4) + 4
		}
	}
	return false
}

// Generator implements value.Custom (spec.md §4.8): a detached call frame
// plus the at-most-one-activation invariant. Resume re-attaches the frame
// to the interpreter, runs it until the next Yield or Return, and detaches
// it again.
type Generator struct {
	vm       *VM
	frame    *Frame
	started  bool
	finished bool
	active   bool
}

func newGenerator(vm *VM, mod *loader.Module, funcID int, args []value.Value) *Generator {
	f := newFrame(mod, funcID, args, nil)
	if vm.cfg.MaxStackSize > 0 {
		f.maxStack = vm.cfg.MaxStackSize
	}
	return &Generator{vm: vm, frame: f}
}

func (g *Generator) ClassName() string { return "Generator" }

func (g *Generator) Attr(name string) (value.Value, bool) { return value.Value{}, false }

func (g *Generator) Operator(tag value.OperatorTag) (value.Callable, bool) {
	switch tag {
	case value.OpIter:
		return func(args []value.Value) (value.Value, error) { return args[0], nil }, true
	case value.OpNext:
		return func(args []value.Value) (value.Value, error) { return g.next() }, true
	default:
		return nil, false
	}
}

// next implements spec.md §4.8's resume contract: re-entering a generator
// that is already mid-activation is a programming error (the at-most-one-
// activation invariant), and resuming a finished generator always yields
// None without re-running any code.
func (g *Generator) next() (value.Value, error) {
	if g.active {
		return value.Value{}, &value.DispatchError{Kind: "invalid_state", Message: "generator is already running"}
	}
	if g.finished {
		return value.NoneAt(1), nil
	}
	g.active = true
	g.started = true
	prev := g.vm.frame
	g.vm.frame = g.frame
	results, err := g.vm.execute(g.frame)
	g.vm.frame = prev
	g.active = false

	if ys, ok := err.(*yieldSignal); ok {
		v := value.Null()
		if len(ys.values) > 0 {
			v = ys.values[0]
		}
		return value.MakeOption(1, &v), nil
	}
	if err != nil {
		g.finished = true
		return value.Value{}, err
	}
	g.finished = true
	if len(results) == 0 {
		return value.NoneAt(1), nil
	}
	return value.NoneAt(1), nil
}
