package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeIncludesOpcodeByte(t *testing.T) {
	require.Equal(t, 1, Nop.Size())
	require.Equal(t, 3, LoadConst.Size())   // 1 + uint16
	require.Equal(t, 5, Jump.Size())        // 1 + uint32
	require.Equal(t, 4, CallMethod.Size())  // 1 + uint16 + uint8
	require.Equal(t, 3, SwapStack.Size())   // 1 + uint8 + uint8
}

func TestOperandWidthsAlwaysValidSizes(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		w := OperandWidths[op]
		for _, width := range w {
			require.Contains(t, []uint8{0, 1, 2, 4}, width, "opcode %s has invalid operand width", op)
		}
	}
}

func TestStringNamesKnownOpcodes(t *testing.T) {
	require.Equal(t, "Plus", Plus.String())
	require.Equal(t, "SwitchTable", SwitchTable.String())
}

func TestStringFallsBackForUnknownOpcode(t *testing.T) {
	require.Equal(t, "Opcode(?)", opcodeCount.String())
}
