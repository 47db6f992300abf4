package loader

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/coreware/vmcore/internal/bignum"
	"github.com/coreware/vmcore/internal/value"
)

// Magic is the module file's leading 32-bit tag (spec.md §4.9).
const Magic uint32 = 0x0ABADE66

// constant tags, spec.md §4.9
const (
	tagStr = iota
	tagInt
	tagBigint
	tagDecimal
	tagImport
	tagBuiltin
	tagFunction
	tagBool
	tagClass
)

type reader struct {
	r   *bufio.Reader
	err error
}

func (rd *reader) u8() uint8 {
	if rd.err != nil {
		return 0
	}
	b, err := rd.r.ReadByte()
	if err != nil {
		rd.err = err
		return 0
	}
	return b
}

func (rd *reader) u16() uint16 {
	return uint16(rd.u8())<<8 | uint16(rd.u8())
}

func (rd *reader) u32() uint32 {
	return uint32(rd.u8())<<24 | uint32(rd.u8())<<16 | uint32(rd.u8())<<8 | uint32(rd.u8())
}

func (rd *reader) bytes(n int) []byte {
	if rd.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		rd.err = err
		return nil
	}
	return buf
}

// stdString implements spec.md §4.9's "String load rule": a UTF-8 string of
// `length` code points, each code point read by consuming its lead byte
// then the continuation bytes implied by that lead byte's high bits. The
// width comes from utf8LeadWidth's bit test on the lead byte.
func (rd *reader) stdString(codePoints int) string {
	if rd.err != nil {
		return ""
	}
	var buf []byte
	for i := 0; i < codePoints; i++ {
		lead, err := rd.r.ReadByte()
		if err != nil {
			rd.err = err
			return ""
		}
		buf = append(buf, lead)
		n := utf8LeadWidth(lead)
		for j := 1; j < n; j++ {
			cont, err := rd.r.ReadByte()
			if err != nil {
				rd.err = err
				return ""
			}
			buf = append(buf, cont)
		}
	}
	if !utf8.Valid(buf) {
		rd.err = fmt.Errorf("loader: invalid UTF-8 in string constant")
	}
	return string(buf)
}

// utf8LeadWidth returns how many bytes (including b itself) a UTF-8 code
// point starting with lead byte b occupies, per spec.md §4.9: "continuation
// bytes while the most recent byte has its top two bits set" — i.e. while
// the lead byte is >= 0xC0 more bytes follow, with the exact count fixed by
// the standard UTF-8 lead-byte ranges.
func utf8LeadWidth(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// Load reads a module from r, resolving import/builtin constants and
// performing the post-load function/class fixup pass (spec.md §4.9).
func Load(r io.Reader, name string, res Resolver) (*Module, error) {
	rd := &reader{r: bufio.NewReader(r)}

	magic := rd.u32()
	if rd.err != nil {
		return nil, fmt.Errorf("loader: reading magic: %w", rd.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("loader: bad magic %#x, want %#x", magic, Magic)
	}

	m := &Module{Name: name, Exports: map[string]int{}, ClassBodyIndex: map[*value.Class]map[string]int{}}

	importCount := rd.u32()
	for i := uint32(0); i < importCount; i++ {
		modLen := rd.u32()
		modName := rd.stdString(int(modLen))
		expLen := rd.u32()
		expName := rd.stdString(int(expLen))
		m.Imports = append(m.Imports, Import{Module: modName, Export: expName})
	}

	exportCount := rd.u32()
	for i := uint32(0); i < exportCount; i++ {
		nameLen := rd.u32()
		n := rd.stdString(int(nameLen))
		idx := rd.u32()
		m.Exports[n] = int(idx)
	}

	constantCount := rd.u32()
	type pendingFixup struct {
		slot  int
		index int
		isCls bool
	}
	var fixups []pendingFixup
	m.Constants = make([]value.Value, constantCount)
	for i := uint32(0); i < constantCount; i++ {
		tag := rd.u8()
		switch tag {
		case tagStr:
			l := rd.u32()
			m.Constants[i] = value.Str(rd.stdString(int(l)))
		case tagInt:
			v := rd.u32()
			m.Constants[i] = value.Bigint(bignum.FromInt64(int64(int32(v))))
		case tagBigint:
			limbCount := rd.u32()
			limbs := make([]uint32, limbCount)
			for j := range limbs {
				limbs[j] = rd.u32()
			}
			m.Constants[i] = value.Bigint(bignum.FromLimbs(limbs, false))
		case tagDecimal:
			limbCount := rd.u32()
			scale := rd.u32()
			limbs := make([]uint32, limbCount)
			for j := range limbs {
				limbs[j] = rd.u32()
			}
			num := bignum.FromLimbs(limbs, false)
			den := bignum.FromInt64(1)
			for k := uint32(0); k < scale; k++ {
				den = den.Mul(bignum.FromInt64(10))
			}
			m.Constants[i] = value.Decimal(bignum.RationalFromFrac(num, den))
		case tagImport:
			modLen := rd.u32()
			modName := rd.stdString(int(modLen))
			expLen := rd.u32()
			expName := rd.stdString(int(expLen))
			if res == nil {
				return nil, fmt.Errorf("loader: constant %d references import %s.%s but no resolver was supplied", i, modName, expName)
			}
			v, err := res.ResolveImport(modName, expName)
			if err != nil {
				return nil, fmt.Errorf("loader: resolving import %s.%s: %w", modName, expName, err)
			}
			m.Constants[i] = v
		case tagBuiltin:
			idx := rd.u32()
			if res == nil {
				return nil, fmt.Errorf("loader: constant %d references builtin %d but no resolver was supplied", i, idx)
			}
			v, err := res.ResolveBuiltin(int(idx))
			if err != nil {
				return nil, fmt.Errorf("loader: resolving builtin %d: %w", idx, err)
			}
			m.Constants[i] = v
		case tagFunction:
			idx := rd.u32()
			fixups = append(fixups, pendingFixup{slot: int(i), index: int(idx), isCls: false})
		case tagBool:
			b := rd.u8()
			m.Constants[i] = value.Bool(b != 0)
		case tagClass:
			idx := rd.u32()
			fixups = append(fixups, pendingFixup{slot: int(i), index: int(idx), isCls: true})
		default:
			return nil, fmt.Errorf("loader: unknown constant tag %d at index %d", tag, i)
		}
		if rd.err != nil {
			return nil, fmt.Errorf("loader: reading constant %d: %w", i, rd.err)
		}
	}

	functionCount := rd.u32()
	m.Functions = make([]*Function, functionCount)
	for i := uint32(0); i < functionCount; i++ {
		nameLen := rd.u32()
		fname := rd.stdString(int(nameLen))
		localCount := rd.u16()
		byteSize := rd.u32()
		code := rd.bytes(int(byteSize))
		if rd.err != nil {
			return nil, fmt.Errorf("loader: reading function %d: %w", i, rd.err)
		}
		m.Functions[i] = &Function{Name: fname, LocalCount: int(localCount), Code: code}
	}

	classCount := rd.u32()
	m.Classes = make([]*value.Class, classCount)
	for i := uint32(0); i < classCount; i++ {
		cls, err := readClassRecord(rd, m)
		if err != nil {
			return nil, fmt.Errorf("loader: reading class %d: %w", i, err)
		}
		m.Classes[i] = cls
	}

	// Post-load fixup: sentinel function/class constants become concrete
	// Function/Type values (spec.md §4.9).
	for _, f := range fixups {
		if f.isCls {
			if f.index < 0 || f.index >= len(m.Classes) {
				return nil, fmt.Errorf("loader: class fixup index %d out of range", f.index)
			}
			m.Constants[f.slot] = value.TypeV(value.StandardType(m.Classes[f.index]))
		} else {
			if f.index < 0 || f.index >= len(m.Functions) {
				return nil, fmt.Errorf("loader: function fixup index %d out of range", f.index)
			}
			fn := m.Functions[f.index]
			m.Constants[f.slot] = value.FunctionV(value.NewBytecodeFunction(fn.Name, 0, f.index))
		}
	}

	return m, nil
}

// classBodyFunc is a function body parsed out of a class record's operator
// /method/property table: spec.md §4.9 says each entry's body is "appended
// as anonymous functions", referenced by function index within this file.
type classBodyFunc struct {
	name string
	code []byte
}

func readClassRecord(rd *reader, m *Module) (*value.Class, error) {
	nameLen := rd.u32()
	name := rd.stdString(int(nameLen))
	superCount := rd.u32()
	if superCount != 0 {
		return nil, fmt.Errorf("class %q: super_count must be 0, got %d", name, superCount)
	}
	_ = rd.u16() // generic_count: reserved, not used by the core (spec.md §4.9)

	cls := value.NewClass(value.ClassStandard, name)

	instanceVarCount := rd.u32()
	for i := uint32(0); i < instanceVarCount; i++ {
		l := rd.u32()
		cls.InstanceVars = append(cls.InstanceVars, rd.stdString(int(l)))
	}

	staticVarCount := rd.u32()
	for i := uint32(0); i < staticVarCount; i++ {
		l := rd.u32()
		vname := rd.stdString(int(l))
		bodySize := rd.u32()
		rd.bytes(int(bodySize))
		cls.StaticVars[vname] = value.Null()
	}

	readEntries := func(count uint32) []classBodyFunc {
		out := make([]classBodyFunc, 0, count)
		for i := uint32(0); i < count; i++ {
			l := rd.u32()
			ename := rd.stdString(int(l))
			bodySize := rd.u32()
			body := rd.bytes(int(bodySize))
			out = append(out, classBodyFunc{name: ename, code: body})
		}
		return out
	}

	opCount := rd.u32()
	ops := readEntries(opCount)
	staticOpCount := rd.u32()
	staticOps := readEntries(staticOpCount)
	methodCount := rd.u32()
	methods := readEntries(methodCount)
	staticMethodCount := rd.u32()
	staticMethods := readEntries(staticMethodCount)
	propCount := rd.u32()
	props := readEntries(propCount)

	if rd.err != nil {
		return nil, rd.err
	}

	bodyIndex := map[string]int{}
	m.ClassBodyIndex[cls] = bodyIndex

	attach := func(entries []classBodyFunc, reg func(name string, idx int)) {
		for _, e := range entries {
			idx := len(m.Functions)
			m.Functions = append(m.Functions, &Function{Name: name + "." + e.name, Code: e.code})
			reg(e.name, idx)
		}
	}

	attach(ops, func(n string, idx int) {
		if tag, ok := value.OperatorTagByName(n); ok {
			cls.Operators[tag] = bytecodeBodyPlaceholder(idx)
			bodyIndex["op:"+n] = idx
		}
	})
	attach(staticOps, func(n string, idx int) {
		if tag, ok := value.OperatorTagByName(n); ok {
			cls.StaticOperators[tag] = bytecodeBodyPlaceholder(idx)
			bodyIndex["sop:"+n] = idx
		}
	})
	attach(methods, func(n string, idx int) {
		cls.Methods[n] = bytecodeBodyPlaceholder(idx)
		bodyIndex["m:"+n] = idx
	})
	attach(staticMethods, func(n string, idx int) {
		cls.StaticMethods[n] = bytecodeBodyPlaceholder(idx)
		bodyIndex["sm:"+n] = idx
	})
	attach(props, func(n string, idx int) {
		cls.Properties[n] = bytecodeBodyPlaceholder(idx)
		bodyIndex["p:"+n] = idx
	})

	return cls, nil
}

// bytecodeBodyPlaceholder records the function-table index a class body was
// appended at. internal/vm rebinds every entry in a loaded class's tables
// to an actual call-into-bytecode Callable once it owns the Module (it
// alone knows how to push a frame); until then this placeholder simply
// reports where its code lives if invoked prematurely.
func bytecodeBodyPlaceholder(funcIndex int) value.Callable {
	return func(args []value.Value) (value.Value, error) {
		return value.Value{}, fmt.Errorf("loader: class body at function index %d invoked before internal/vm bound it", funcIndex)
	}
}
