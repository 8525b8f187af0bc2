package compiler

import "testing"

func TestOpcodeValuesMatchInstructionSet(t *testing.T) {
	tests := []struct {
		op       Opcode
		expected byte
	}{
		{OpPushNum, 0x20},
		{OpPushStr, 0x21},
		{OpPushInt, 0x22},
		{OpPushFn, 0x23},
		{OpTake, 0x24},
		{OpSwap, 0x25},
		{OpPop, 0x26},
		{OpLoad, 0x31},
		{OpStore, 0x32},
		{OpJumpIf, 0x40},
		{OpJump, 0x41},
		{OpCall, 0x42},
		{OpAdd, 0x50},
		{OpNeg, 0x55},
		{OpNot, 0x68},
		{OpGet, 0x70},
		{OpPushDict, 0x71},
		{OpPushArray, 0x72},
	}

	for _, tt := range tests {
		if byte(tt.op) != tt.expected {
			t.Errorf("%s: got %#x, want %#x", tt.op, byte(tt.op), tt.expected)
		}
	}
}

func TestOpcodeStringIsNeverEmpty(t *testing.T) {
	for op := Opcode(0x20); op < 0x80; op++ {
		if op.String() == "" {
			t.Errorf("opcode %#x stringified empty", byte(op))
		}
	}
}
