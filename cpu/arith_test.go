package cpu_test

import (
	"testing"

	"github.com/abandt/retroc64/cpu"
	"github.com/stretchr/testify/assert"
)

func TestAdcBinary(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0x69, 0x01) // ADC #$01
	c.PC = 0x0200
	c.A = 0xFF
	c.Step()
	assert.Equal(t, uint8(0x00), c.A)
	assert.True(t, c.P&cpu.FlagC != 0)
	assert.True(t, c.P&cpu.FlagZ != 0)
	assert.False(t, c.P&cpu.FlagV != 0)
}

func TestAdcBinaryOverflow(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0x69, 0x01) // ADC #$01
	c.PC = 0x0200
	c.A = 0x7F
	c.Step()
	assert.Equal(t, uint8(0x80), c.A)
	assert.True(t, c.P&cpu.FlagV != 0, "positive + positive -> negative is overflow")
	assert.True(t, c.P&cpu.FlagN != 0)
}

func TestAdcDecimal(t *testing.T) {
	// Spec scenario 2: D=1, C=0, A=0x25; ADC #$48 -> A=0x73, C=0.
	c, b := newTestCPU()
	b.load(0x0200, 0x69, 0x48)
	c.PC = 0x0200
	c.P |= cpu.FlagD
	c.P &^= cpu.FlagC
	c.A = 0x25
	c.Step()
	assert.Equal(t, uint8(0x73), c.A)
	assert.False(t, c.P&cpu.FlagC != 0)
	assert.False(t, c.P&cpu.FlagZ != 0)
	assert.False(t, c.P&cpu.FlagN != 0)
}

func TestSbcDecimalWithBorrow(t *testing.T) {
	// Spec scenario 3: D=1, C=0 (borrow); A=0x20; SBC #$10 -> A=0x09, C=1.
	c, b := newTestCPU()
	b.load(0x0200, 0xE9, 0x10)
	c.PC = 0x0200
	c.P |= cpu.FlagD
	c.P &^= cpu.FlagC
	c.A = 0x20
	c.Step()
	assert.Equal(t, uint8(0x09), c.A)
	assert.True(t, c.P&cpu.FlagC != 0)
}

func TestSbcBinaryBorrow(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xE9, 0x01) // SBC #$01, no carry set -> borrow
	c.PC = 0x0200
	c.A = 0x00
	c.Step()
	assert.Equal(t, uint8(0xFE), c.A)
	assert.False(t, c.P&cpu.FlagC != 0, "borrow occurred")
}

func TestCmpSetsCarryWhenRegGreaterOrEqual(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xC9, 0x10) // CMP #$10
	c.PC = 0x0200
	c.A = 0x10
	c.Step()
	assert.True(t, c.P&cpu.FlagC != 0)
	assert.True(t, c.P&cpu.FlagZ != 0)
}

func TestCmpClearsCarryWhenRegLess(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xC9, 0x20) // CMP #$20
	c.PC = 0x0200
	c.A = 0x10
	c.Step()
	assert.False(t, c.P&cpu.FlagC != 0)
	assert.True(t, c.P&cpu.FlagN != 0)
}

func TestCpxCpy(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xE0, 0x05, 0xC0, 0x05) // CPX #5; CPY #5
	c.PC = 0x0200
	c.X, c.Y = 5, 5
	c.Step()
	assert.True(t, c.P&cpu.FlagC != 0)
	c.Step()
	assert.True(t, c.P&cpu.FlagC != 0)
}

func TestBitSetsNVFromMemoryAndZFromAnd(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0010] = 0xC0 // bit7 and bit6 set
	b.load(0x0200, 0x24, 0x10) // BIT $10
	c.PC = 0x0200
	c.A = 0x00
	c.Step()
	assert.True(t, c.P&cpu.FlagN != 0)
	assert.True(t, c.P&cpu.FlagV != 0)
	assert.True(t, c.P&cpu.FlagZ != 0, "A & mem == 0")
}

func TestIncDecMemory(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0010] = 0xFF
	b.load(0x0200, 0xE6, 0x10, 0xC6, 0x10, 0xC6, 0x10) // INC $10; DEC $10; DEC $10
	c.PC = 0x0200
	c.Step()
	assert.Equal(t, uint8(0x00), b.mem[0x0010])
	assert.True(t, c.P&cpu.FlagZ != 0)
	c.Step()
	assert.Equal(t, uint8(0xFF), b.mem[0x0010])
	assert.True(t, c.P&cpu.FlagN != 0)
}

func TestRegisterIncDecWrapAndCostExtraCycle(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xE8) // INX
	c.PC = 0x0200
	c.X = 0xFF
	start := c.Clock.Cycles
	c.Step()
	assert.Equal(t, uint8(0x00), c.X)
	assert.Equal(t, uint64(2), c.Clock.Cycles-start, "opcode fetch + the register-op's extra cycle")
}
