package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/diag"
	"github.com/coreware/vmcore/internal/loader"
	"github.com/coreware/vmcore/internal/value"
	"github.com/coreware/vmcore/internal/vmconfig"
)

// codeBuilder assembles raw bytecode using the same big-endian fixed-width
// immediate encoding imm()/readWidth() expect.
type codeBuilder struct {
	buf []byte
}

func (c *codeBuilder) op(o bytecode.Opcode) *codeBuilder {
	c.buf = append(c.buf, byte(o))
	return c
}
func (c *codeBuilder) u8(v int) *codeBuilder  { c.buf = append(c.buf, byte(v)); return c }
func (c *codeBuilder) u16(v int) *codeBuilder {
	c.buf = append(c.buf, byte(v>>8), byte(v))
	return c
}
func (c *codeBuilder) u32(v int) *codeBuilder {
	c.buf = append(c.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return c
}
func (c *codeBuilder) bytes() []byte { return c.buf }

func newTestModule(name string) *loader.Module {
	return &loader.Module{
		Name:           name,
		Exports:        map[string]int{},
		ClassBodyIndex: map[*value.Class]map[string]int{},
	}
}

func TestFramePushPopAndOverflow(t *testing.T) {
	mod := newTestModule("m")
	mod.Functions = []*loader.Function{{Name: "f", LocalCount: 0, Code: nil}}
	f := newFrame(mod, 0, nil, nil)
	f.maxStack = 2

	f.push(value.IntV(1))
	f.push(value.IntV(2))
	require.Panics(t, func() { f.push(value.IntV(3)) })

	v := f.pop()
	require.Equal(t, int64(2), v.AsBigint().Int64())
}

func TestSimpleArithmeticAddReturnsSum(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).
		op(bytecode.LoadConst).u16(1).
		op(bytecode.Plus).
		op(bytecode.Return).u8(1).
		bytes()

	mod := newTestModule("arith")
	mod.Constants = []value.Value{value.IntV(5), value.IntV(3)}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("arith", "main")
	require.NoError(t, err)
	require.Equal(t, int64(8), result.AsBigint().Int64())
}

// buildCallModule wires a two-function module: "main" calls "double" via
// CallFunction against a function constant, and returns its result.
func buildCallModule() *loader.Module {
	doubleCode := (&codeBuilder{}).
		op(bytecode.LoadValue).u16(0).
		op(bytecode.LoadValue).u16(0).
		op(bytecode.Plus).
		op(bytecode.Return).u8(1).
		bytes()

	mainCode := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).          // argument
		op(bytecode.CallFunction).u16(1).u8(1). // fnK=1 (function constant), argc=1
		op(bytecode.Return).u8(1).
		bytes()

	mod := newTestModule("calls")
	mod.Functions = []*loader.Function{
		{Name: "main", LocalCount: 0, Code: mainCode},
		{Name: "double", LocalCount: 1, Code: doubleCode},
	}
	mod.Constants = []value.Value{
		value.IntV(21),
		value.FunctionV(value.NewBytecodeFunction("double", 0, 1)),
	}
	mod.Exports["main"] = 2
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))
	return mod
}

func TestCallFunctionInvokesAnotherBytecodeFunction(t *testing.T) {
	mod := buildCallModule()
	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("calls", "main")
	require.NoError(t, err)
	require.Equal(t, int64(42), result.AsBigint().Int64())
}

// buildTryModule builds a function that enters a try region, throws a
// ValueError via ThrowQuick, and whose handler pushes a constant and
// returns it — exercising unwind()'s stack-truncation and handler resume.
func buildTryModule() *loader.Module {
	b := &codeBuilder{}
	b.op(bytecode.EnterTry).u32(0) // patched below
	b.op(bytecode.LoadConst).u16(2)
	handlerTypesStart := len(b.buf)
	_ = handlerTypesStart
	b.op(bytecode.ExceptN).u8(0)
	b.op(bytecode.LoadConst).u16(1) // message for throw
	b.op(bytecode.ThrowQuick).u16(0)
	b.op(bytecode.EndTry)
	b.op(bytecode.Return).u8(1)
	// Handler: pops the thrown value, pushes recovery constant, returns it.
	handlerPC := len(b.buf)
	b.op(bytecode.PopTop)
	b.op(bytecode.LoadConst).u16(3)
	b.op(bytecode.Return).u8(1)

	code := b.bytes()
	// Patch EnterTry's target now that handlerPC is known: EnterTry is at
	// offset 0, opcode byte + 4-byte immediate, so the immediate starts at 1.
	code[1] = byte(handlerPC >> 24)
	code[2] = byte(handlerPC >> 16)
	code[3] = byte(handlerPC >> 8)
	code[4] = byte(handlerPC)

	mod := newTestModule("tryflow")
	cls := value.ExceptionClassForKind("value_error")
	mod.Constants = []value.Value{
		value.TypeV(value.StandardType(cls)), // 0: exception type for ThrowQuick/ExceptN
		value.Str("boom"),                    // 1: thrown message
		value.IntV(999),                      // 2: pushed inside the try region, discarded by unwind's stack truncation
		value.IntV(-1),                       // 3: recovery value
	}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))
	return mod
}

func TestTryExceptUnwindsToHandler(t *testing.T) {
	mod := buildTryModule()
	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("tryflow", "main")
	require.NoError(t, err)
	require.Equal(t, int64(-1), result.AsBigint().Int64())
}

func TestUncaughtExceptionEscapesAsError(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).
		op(bytecode.ThrowQuick).u16(1).
		bytes()

	mod := newTestModule("escape")
	cls := value.ExceptionClassForKind("value_error")
	mod.Constants = []value.Value{value.Str("msg"), value.TypeV(value.StandardType(cls))}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	_, err := machine.Run("escape", "main")
	require.Error(t, err)
}

func TestGeneratorFunctionReturnsCustomInsteadOfRunning(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).
		op(bytecode.Yield).u8(1).
		op(bytecode.Return).u8(0).
		bytes()

	mod := newTestModule("gen")
	mod.Constants = []value.Value{value.IntV(7)}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("gen", "main")
	require.NoError(t, err)
	require.Equal(t, value.KindCustom, result.Kind())

	nextFn, ok := result.AsCustom().Operator(value.OpNext)
	require.True(t, ok)
	yielded, err := nextFn(nil)
	require.NoError(t, err)
	some, ok := yielded.OptSome()
	require.True(t, ok)
	require.Equal(t, int64(7), some.AsBigint().Int64())

	// Resuming again after the generator's only Yield reaches Return(0):
	// the next call must report finished (None) rather than re-running.
	done, err := nextFn(nil)
	require.NoError(t, err)
	_, ok = done.OptSome()
	require.False(t, ok)
}

func TestFrameDepthOverflowGuard(t *testing.T) {
	// A function that calls itself unconditionally blows past MaxFrameCount.
	recurseCode := (&codeBuilder{}).
		op(bytecode.CallFunction).u16(0).u8(0). // fnK=0 is this very function: unconditional self-recursion
		op(bytecode.Return).u8(1).
		bytes()

	mod := newTestModule("recurse")
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: recurseCode}}
	mod.Constants = []value.Value{value.FunctionV(value.NewBytecodeFunction("main", 0, 0))}
	mod.Exports["main"] = 0

	cfg := vmconfig.Default()
	cfg.MaxFrameCount = 3
	machine := NewWithConfig(cfg)
	machine.LoadModule(mod)
	_, err := machine.Run("recurse", "main")
	require.ErrorIs(t, err, diag.ErrFrameOverflow)
}

func TestStackOverflowGuardRecoversAsError(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadNull).
		op(bytecode.LoadNull).
		op(bytecode.LoadNull).
		op(bytecode.Return).u8(1).
		bytes()

	mod := newTestModule("overflow")
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Constants = []value.Value{value.FunctionV(value.NewBytecodeFunction("main", 0, 0))}
	mod.Exports["main"] = 0

	cfg := vmconfig.Default()
	cfg.MaxStackSize = 2
	machine := NewWithConfig(cfg)
	machine.LoadModule(mod)
	_, err := machine.Run("overflow", "main")
	require.Error(t, err)
}

func TestSwitchTableDispatchesToMatchingCase(t *testing.T) {
	b := &codeBuilder{}
	b.op(bytecode.LoadConst).u16(0) // key = 2
	b.op(bytecode.SwitchTable).u16(2)
	b.u16(1).u32(placeholderTarget) // case const[1]=1 -> target patched below
	b.u16(2).u32(placeholderTarget) // case const[2]=2 -> target patched below
	b.u32(placeholderTarget)        // default target

	caseOneStart := len(b.buf)
	b.op(bytecode.LoadConst).u16(3)
	b.op(bytecode.Return).u8(1)

	caseTwoStart := len(b.buf)
	b.op(bytecode.LoadConst).u16(4)
	b.op(bytecode.Return).u8(1)

	defaultStart := len(b.buf)
	b.op(bytecode.LoadConst).u16(5)
	b.op(bytecode.Return).u8(1)

	code := b.bytes()
	patchSwitchTargets(code, caseOneStart, caseTwoStart, defaultStart)

	mod := newTestModule("switch")
	mod.Constants = []value.Value{
		value.IntV(2), // 0: key pushed
		value.IntV(1), // 1: case key
		value.IntV(2), // 2: case key
		value.IntV(100),
		value.IntV(200),
		value.IntV(999),
	}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("switch", "main")
	require.NoError(t, err)
	require.Equal(t, int64(200), result.AsBigint().Int64())
}

const placeholderTarget = 0

// patchSwitchTargets rewrites the three 4-byte target immediates emitted by
// SwitchTable's inline (key, target) pairs plus the trailing default target.
// Layout after the opcode+n-immediate: [u16 key][u32 target] x2, [u32 default].
func patchSwitchTargets(code []byte, t1, t2, def int) {
	// The leading LoadConst (3 bytes) + SwitchTable opcode (1 byte) + its n
	// immediate (2 bytes) = 6 bytes before the first pair.
	base := 6
	patch := func(off, target int) {
		code[off] = byte(target >> 24)
		code[off+1] = byte(target >> 16)
		code[off+2] = byte(target >> 8)
		code[off+3] = byte(target)
	}
	patch(base+2, t1)      // first pair's target, after its u16 key
	patch(base+2+6, t2)    // second pair's target
	patch(base+2+6+4, def) // trailing default target
}

func TestBitwiseAndOp(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).
		op(bytecode.LoadConst).u16(1).
		op(bytecode.BitwiseAnd).
		op(bytecode.Return).u8(1).
		bytes()
	mod := newTestModule("bits")
	mod.Constants = []value.Value{value.IntV(0b1100), value.IntV(0b1010)}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("bits", "main")
	require.NoError(t, err)
	require.Equal(t, int64(0b1000), result.AsBigint().Int64())
}

func TestLessThanCompareOp(t *testing.T) {
	code := (&codeBuilder{}).
		op(bytecode.LoadConst).u16(0).
		op(bytecode.LoadConst).u16(1).
		op(bytecode.LessThan).
		op(bytecode.Return).u8(1).
		bytes()
	mod := newTestModule("cmp")
	mod.Constants = []value.Value{value.IntV(1), value.IntV(2)}
	mod.Functions = []*loader.Function{{Name: "main", LocalCount: 0, Code: code}}
	mod.Exports["main"] = len(mod.Constants)
	mod.Constants = append(mod.Constants, value.FunctionV(value.NewBytecodeFunction("main", 0, 0)))

	machine := New()
	machine.LoadModule(mod)
	result, err := machine.Run("cmp", "main")
	require.NoError(t, err)
	require.True(t, result.AsBool())
}

