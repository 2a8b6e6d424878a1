package cpu_test

import (
	"testing"

	"github.com/abandt/retroc64/cpu"
	"github.com/stretchr/testify/assert"
)

func TestAslAccumulator(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0x0A) // ASL A
	c.PC = 0x0200
	c.A = 0x81
	c.Step()
	assert.Equal(t, uint8(0x02), c.A)
	assert.True(t, c.P&cpu.FlagC != 0, "bit 7 shifted out")
}

func TestLsrMemory(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0010] = 0x01
	b.load(0x0200, 0x46, 0x10) // LSR $10
	c.PC = 0x0200
	c.Step()
	assert.Equal(t, uint8(0x00), b.mem[0x0010])
	assert.True(t, c.P&cpu.FlagC != 0)
	assert.True(t, c.P&cpu.FlagZ != 0)
}

func TestRolInsertsOldCarry(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0x2A) // ROL A
	c.PC = 0x0200
	c.A = 0x80
	c.P |= cpu.FlagC
	c.Step()
	assert.Equal(t, uint8(0x01), c.A, "old carry comes in at bit 0")
	assert.True(t, c.P&cpu.FlagC != 0, "bit 7 shifted out becomes new carry")
}

func TestRorInsertsOldCarry(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0x6A) // ROR A
	c.PC = 0x0200
	c.A = 0x01
	c.P |= cpu.FlagC
	c.Step()
	assert.Equal(t, uint8(0x80), c.A, "old carry comes in at bit 7")
	assert.True(t, c.P&cpu.FlagC != 0, "bit 0 shifted out becomes new carry")
}
