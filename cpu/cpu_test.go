package cpu_test

import (
	"testing"

	"github.com/abandt/retroc64/clock"
	"github.com/abandt/retroc64/cpu"
	"github.com/stretchr/testify/assert"
)

// testBus is a flat 64KiB array used as the cpu.Bus in unit tests; it does
// no bank switching and never rejects a write.
type testBus struct {
	mem [65536]uint8
}

func (b *testBus) Read(addr uint16) uint8        { return b.mem[addr] }
func (b *testBus) Write(addr uint16, value uint8) { b.mem[addr] = value }

func (b *testBus) load(addr uint16, data ...uint8) {
	for i, v := range data {
		b.mem[addr+uint16(i)] = v
	}
}

func newTestCPU() (*cpu.CPU, *testBus) {
	b := &testBus{}
	c := cpu.NewCPU(b, clock.New())
	return c, b
}

func TestResetVectorsPC(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0xFFFC] = 0x00
	b.mem[0xFFFD] = 0x80
	c.Reset()
	assert.Equal(t, uint16(0x8000), c.PC)
	assert.Equal(t, uint8(0xFF), c.SP)
	assert.True(t, c.P&cpu.FlagR != 0, "reserved bit always reads 1")
}

func TestStepAdvancesClockOncePerBusAccess(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xA9, 0x42) // LDA #$42
	c.PC = 0x0200
	start := c.Clock.Cycles
	c.Step()
	assert.Equal(t, uint64(2), c.Clock.Cycles-start, "opcode fetch + immediate operand fetch")
	assert.Equal(t, uint8(0x42), c.A)
}

func TestLoadImmediateAndTransferEndToEnd(t *testing.T) {
	// Spec scenario 1: A9 42 AA 8A 85 10 00, PC=0x0400.
	c, b := newTestCPU()
	b.load(0x0400, 0xA9, 0x42, 0xAA, 0x8A, 0x85, 0x10, 0x00)
	b.mem[0xFFFE], b.mem[0xFFFF] = 0x00, 0x00
	c.PC = 0x0400
	for i := 0; i < 6 && !c.Jammed; i++ {
		c.Step()
	}
	assert.Equal(t, uint8(0x42), c.A)
	assert.Equal(t, uint8(0x42), c.X)
	assert.Equal(t, uint8(0x42), b.mem[0x10])
}

func TestUnknownOpcodeJamsAndFaults(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0200] = 0xFF // unassigned in OpcodeTable
	c.PC = 0x0200

	var got cpu.Fault
	c.OnFault = func(f cpu.Fault) { got = f }
	c.Step()

	assert.True(t, c.Jammed)
	assert.Equal(t, cpu.FaultUnknownOpcode, got.Kind)
	assert.Equal(t, uint16(0x0200), got.PC)
}

func TestJamOpcodeHalts(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0200] = 0x02 // JAM
	c.PC = 0x0200

	var kind cpu.FaultKind
	c.OnFault = func(f cpu.Fault) { kind = f.Kind }
	c.Step()

	assert.True(t, c.Jammed)
	assert.Equal(t, cpu.FaultJam, kind)
}

func TestStepAfterJamIsNoop(t *testing.T) {
	c, b := newTestCPU()
	b.mem[0x0200] = 0x02
	c.PC = 0x0200
	c.Step()
	pc := c.PC
	c.Step()
	assert.Equal(t, pc, c.PC, "a jammed CPU does not fetch further instructions")
}

func TestHistoryIsBoundedAndRecordsInstructionStarts(t *testing.T) {
	c, b := newTestCPU()
	for i := 0; i < 20; i++ {
		b.mem[0x0200+uint16(i)] = 0xEA // NOP
	}
	c.PC = 0x0200
	for i := 0; i < 20; i++ {
		c.Step()
	}
	assert.LessOrEqual(t, len(c.History), 16)
	assert.Equal(t, uint16(0x0213), c.History[len(c.History)-1])
}

func TestBreakpointCallFires(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xEA, 0xEA)
	c.PC = 0x0200
	called := false
	c.Breakpoints[0x0200] = cpu.Breakpoint{Kind: cpu.BreakCall, Call: func(c *cpu.CPU) { called = true }}
	c.Step()
	assert.True(t, called)
}

func TestIRQGatedByIFlag(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xEA)
	b.mem[0xFFFE], b.mem[0xFFFF] = 0x00, 0x90
	c.PC = 0x0200
	c.P |= cpu.FlagI
	c.RaiseInterrupt(clock.LevelIRQ)
	c.Step() // NOP runs, IRQ stays pending because I is set
	assert.Equal(t, uint16(0x0201), c.PC)

	c.P &^= cpu.FlagI
	c.Step() // now IRQ is accepted before the next fetch
	assert.Equal(t, uint16(0x9000), c.PC)
}

func TestNMIPreemptsEvenWithIFlagSet(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xEA)
	b.mem[0xFFFA], b.mem[0xFFFB] = 0x00, 0x70
	c.PC = 0x0200
	c.P |= cpu.FlagI
	c.TriggerNMI()
	c.Step()
	assert.Equal(t, uint16(0x7000), c.PC)
}

func TestStuckBranchAborts(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xF0, 0xFE) // BEQ -2 -> targets its own opcode byte
	c.PC = 0x0200
	c.P |= cpu.FlagZ

	var kind cpu.FaultKind
	c.OnFault = func(f cpu.Fault) { kind = f.Kind }
	c.Step()

	assert.True(t, c.Jammed)
	assert.Equal(t, cpu.FaultStuck, kind)
}

func TestStuckCheckCanBeDisabled(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x0200, 0xF0, 0xFE)
	c.PC = 0x0200
	c.P |= cpu.FlagZ
	c.StuckCheck = false
	c.Step()
	assert.False(t, c.Jammed)
	assert.Equal(t, uint16(0x0200), c.PC)
}
