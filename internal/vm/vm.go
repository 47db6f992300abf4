// Package vm implements the bytecode interpreter: the fetch-decode-dispatch
// loop, call frames, try/except unwinding, and generator suspension
// described across spec.md §3.4, §4.1, §4.6-§4.8. It is the one package
// that knows how to actually invoke a loader.Function's bytecode, which is
// why internal/value's Function/Class values carry inert (file,index)
// pairs rather than direct code pointers.
package vm

import (
	"fmt"

	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/diag"
	"github.com/coreware/vmcore/internal/loader"
	"github.com/coreware/vmcore/internal/value"
	"github.com/coreware/vmcore/internal/vmconfig"
)

// VM is a single-threaded interpreter instance (spec.md §1 Non-goals: "no
// concurrent execution of the VM"). One VM hosts any number of loaded
// modules and resolves their cross-module imports against each other.
type VM struct {
	modules      map[string]*loader.Module
	moduleByFile []*loader.Module
	builtins     []value.Value

	cfg        vmconfig.Config
	frameDepth int

	frame *Frame
}

// New creates a VM using vmconfig.Default()'s resource limits.
func New() *VM {
	return NewWithConfig(vmconfig.Default())
}

// NewWithConfig creates a VM honoring an embedder-supplied vmcore.yaml
// configuration (spec.md §4.13): stack/frame growth ceilings only, never
// bytecode semantics.
func NewWithConfig(cfg vmconfig.Config) *VM {
	return &VM{modules: map[string]*loader.Module{}, cfg: cfg}
}

// RegisterBuiltin appends a native value to the built-in table, returning
// its index for use by a module's constant tag 5 (spec.md §4.9).
func (vm *VM) RegisterBuiltin(v value.Value) int {
	vm.builtins = append(vm.builtins, v)
	return len(vm.builtins) - 1
}

// ResolveBuiltin implements loader.Resolver.
func (vm *VM) ResolveBuiltin(index int) (value.Value, error) {
	if index < 0 || index >= len(vm.builtins) {
		return value.Value{}, fmt.Errorf("vm: builtin index %d out of range", index)
	}
	return vm.builtins[index], nil
}

// ResolveImport implements loader.Resolver.
func (vm *VM) ResolveImport(moduleName, exportName string) (value.Value, error) {
	mod, ok := vm.modules[moduleName]
	if !ok {
		return value.Value{}, fmt.Errorf("vm: module %q not loaded", moduleName)
	}
	idx, ok := mod.Exports[exportName]
	if !ok {
		return value.Value{}, fmt.Errorf("vm: module %q has no export %q", moduleName, exportName)
	}
	return mod.Constants[idx], nil
}

// LoadModule registers an already-parsed module (built by internal/loader)
// under its name so later cross-module imports can find it, assigns it a
// FileID, and rebinds every bytecode function/class-body Callable the
// loader left as a placeholder into a real frame-pushing closure — the
// loader cannot do this itself since only internal/vm knows how to invoke
// bytecode (spec.md §4.9's loader/vm split).
func (vm *VM) LoadModule(mod *loader.Module) {
	vm.modules[mod.Name] = mod
	fileID := len(vm.moduleByFile)
	vm.moduleByFile = append(vm.moduleByFile, mod)

	for _, c := range mod.Constants {
		if fn := c.AsFunction(); fn != nil && fn.Native == nil {
			fn.FileID = fileID
		}
	}

	for cls, idx := range mod.ClassBodyIndex {
		for key, funcIdx := range idx {
			caller := vm.bytecodeMethodCaller(mod, funcIdx)
			switch {
			case len(key) > 3 && key[:3] == "op:":
				if tag, ok := value.OperatorTagByName(key[3:]); ok {
					cls.Operators[tag] = caller
				}
			case len(key) > 4 && key[:4] == "sop:":
				if tag, ok := value.OperatorTagByName(key[4:]); ok {
					cls.StaticOperators[tag] = caller
				}
			case len(key) > 2 && key[:2] == "m:":
				cls.Methods[key[2:]] = caller
			case len(key) > 3 && key[:3] == "sm:":
				cls.StaticMethods[key[3:]] = caller
			case len(key) > 2 && key[:2] == "p:":
				cls.Properties[key[2:]] = caller
			}
		}
	}
}

// bytecodeMethodCaller returns a Callable that pushes a frame for mod's
// function funcIdx with args as its locals and runs it to completion —
// the shape every class-body entry (operator, method, property getter)
// needs since the receiver is always args[0] by convention.
func (vm *VM) bytecodeMethodCaller(mod *loader.Module, funcIdx int) value.Callable {
	return func(args []value.Value) (value.Value, error) {
		return vm.callBytecodeFunction(mod, funcIdx, args)
	}
}

// Run executes a module's named export as the program entry point
// (spec.md §6.2's embedder interface), returning the bottom-of-stack
// return value of that function's final Return.
func (vm *VM) Run(moduleName, entryExport string) (value.Value, error) {
	mod, ok := vm.modules[moduleName]
	if !ok {
		return value.Value{}, fmt.Errorf("vm: module %q not loaded", moduleName)
	}
	idx, ok := mod.Exports[entryExport]
	if !ok {
		return value.Value{}, fmt.Errorf("vm: module %q has no export %q", moduleName, entryExport)
	}
	entry := mod.Constants[idx]
	fn := entry.AsFunction()
	if fn == nil {
		return value.Value{}, fmt.Errorf("vm: export %q is not a function", entryExport)
	}
	return vm.callBytecodeFunction(mod, fn.FuncID, nil)
}

// callBytecodeFunction pushes a new frame for mod's function funcID, runs
// it to completion (return or uncaught throw), and pops the frame. A
// function whose body contains a Yield is never run eagerly — calling it
// produces a detached Generator instead (spec.md §4.8).
func (vm *VM) callBytecodeFunction(mod *loader.Module, funcID int, args []value.Value) (value.Value, error) {
	if isGeneratorFunc(mod.Functions[funcID]) {
		return value.CustomV(newGenerator(vm, mod, funcID, args)), nil
	}

	if vm.frameDepth >= vm.cfg.MaxFrameCount {
		return value.Value{}, diag.ErrFrameOverflow
	}

	f := newFrame(mod, funcID, args, vm.frame)
	if vm.frame == nil && vm.cfg.MaxStackSize > 0 {
		f.maxStack = vm.cfg.MaxStackSize
	}
	prev := vm.frame
	vm.frame = f
	vm.frameDepth++
	defer func() { vm.frame = prev; vm.frameDepth-- }()

	results, err := vm.execute(f)
	if err != nil {
		return value.Value{}, err
	}
	if len(results) == 0 {
		return value.Null(), nil
	}
	return results[0], nil
}

// execute runs the fetch-decode-dispatch loop over f until a Return leaves
// the frame, a Yield suspends it (propagated to the caller as a
// *yieldSignal error rather than run through exception unwinding), or an
// exception escapes uncaught (spec.md §4.1's control flow, §4.6's
// unwinding, §4.7's return-arity contract).
func (vm *VM) execute(f *Frame) (results []value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && e == diag.ErrStackOverflow {
				results, err = nil, e
				return
			}
			panic(r)
		}
	}()
	code := f.Function.Code
	for {
		if f.PC >= len(code) {
			return nil, nil
		}
		op := bytecode.Opcode(code[f.PC])
		f.PC++
		results, done, err := vm.step(f, op, code)
		if ys, ok := err.(*yieldSignal); ok {
			return nil, ys
		}
		if err != nil {
			handled, rerr := vm.unwind(f, err)
			if rerr != nil {
				return nil, rerr
			}
			if !handled {
				return nil, err
			}
			continue
		}
		if done {
			return results, nil
		}
	}
}

func readU8(code []byte, pc int) uint8 { return code[pc] }
func readU16(code []byte, pc int) uint16 {
	return uint16(code[pc])<<8 | uint16(code[pc+1])
}
func readU32(code []byte, pc int) uint32 {
	return uint32(code[pc])<<24 | uint32(code[pc+1])<<16 | uint32(code[pc+2])<<8 | uint32(code[pc+3])
}
