package vm

import "github.com/coreware/vmcore/internal/bytecode"

// imm reads op's two fixed-width immediates (per bytecode.OperandWidths)
// starting at pc (which points just past the opcode byte itself), and
// returns them plus the pc advanced past both.
func imm(code []byte, pc int, op bytecode.Opcode) (a, b int, next int) {
	w := bytecode.OperandWidths[op]
	a, pc = readWidth(code, pc, w[0])
	b, pc = readWidth(code, pc, w[1])
	return a, b, pc
}

func readWidth(code []byte, pc int, width uint8) (int, int) {
	switch width {
	case 0:
		return 0, pc
	case 1:
		return int(readU8(code, pc)), pc + 1
	case 2:
		return int(readU16(code, pc)), pc + 2
	case 4:
		return int(readU32(code, pc)), pc + 4
	default:
		return 0, pc
	}
}
