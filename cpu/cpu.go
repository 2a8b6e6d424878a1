package cpu

import (
	"fmt"

	"github.com/abandt/retroc64/clock"
)

// Bus is the minimal read/write surface the CPU drives. *bus.Bus satisfies
// this without cpu needing to import bus (which in turn would create a
// cycle through the devices that embed a *cpu.CPU for history/fault
// reporting).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// historyCapacity bounds the instruction history ring used for fault
// reporting (section 4.4, "Breakpoints and fault reporting").
const historyCapacity = 16

// FaultKind classifies a CPU-level fault (section 7).
type FaultKind int

const (
	FaultUnknownOpcode FaultKind = iota
	FaultJam
	FaultStuck
)

func (k FaultKind) String() string {
	switch k {
	case FaultUnknownOpcode:
		return "unknown opcode"
	case FaultJam:
		return "jam"
	case FaultStuck:
		return "stuck"
	default:
		return "fault"
	}
}

// Fault carries what tripped, where, and the CPU's own account of it.
type Fault struct {
	Kind    FaultKind
	PC      uint16
	Message string
}

// FaultFunc is invoked synchronously when the CPU raises a Fault.
type FaultFunc func(Fault)

// BreakpointKind names the action consulted before executing the
// instruction at a breakpointed PC (section 4.4).
type BreakpointKind int

const (
	BreakDebug BreakpointKind = iota
	BreakLog
	BreakStep
	BreakCall
)

// Breakpoint is the action associated with a PC. Call is used only for
// BreakCall; the other kinds are reported through OnBreakpoint so the
// front end decides what "debug"/"log"/"step" means.
type Breakpoint struct {
	Kind BreakpointKind
	Call func(c *CPU)
}

// CPU is a cycle-driven MOS 6502 core. It owns no memory: every read and
// write goes through Bus, and every such access ticks Clock exactly once
// (invariant 2). Interrupts are delivered by the Clock's aggregated level,
// latched into Pending and inspected between instructions (section 4.4).
type CPU struct {
	A, X, Y uint8
	PC      uint16
	SP      uint8
	P       uint8

	Bus   Bus
	Clock *clock.Clock

	// Pending is the highest interrupt level raised since it was last
	// serviced; RaiseInterrupt latches it, acceptInterrupt clears it.
	Pending clock.IRQLevel

	// StuckCheck aborts a branch or JMP whose target is the start of the
	// very same instruction (section 4.4, "Branches and jumps"). Default
	// on; a harness running deliberately spinning fixtures can disable
	// it.
	StuckCheck bool

	// Jammed is set once a JAM opcode, unknown opcode, or stuck branch
	// halts the core; the top-level run loop treats it as end-of-slice
	// (section 7).
	Jammed bool

	History []uint16

	Breakpoints  map[uint16]Breakpoint
	OnBreakpoint func(pc uint16, bp Breakpoint)

	OnFault FaultFunc
}

// NewCPU creates a CPU driven by bus b and ticking clk once per bus access.
// clk.Raise is wired to the CPU's interrupt latch.
func NewCPU(b Bus, clk *clock.Clock) *CPU {
	c := &CPU{
		Bus:         b,
		Clock:       clk,
		StuckCheck:  true,
		Breakpoints: make(map[uint16]Breakpoint),
	}
	clk.Raise = c.RaiseInterrupt
	c.Reset()
	return c
}

// RaiseInterrupt latches level if it outranks whatever is already pending.
// Peripherals reach this indirectly through Clock.Raise; front ends (e.g. a
// RESTORE/PAUSE hotkey) may call it directly for NMI.
func (c *CPU) RaiseInterrupt(level clock.IRQLevel) {
	if level > c.Pending {
		c.Pending = level
	}
}

// TriggerNMI raises NMI outside the normal per-cycle aggregation path, for
// a host-level RESTORE key.
func (c *CPU) TriggerNMI() {
	c.RaiseInterrupt(clock.LevelNMI)
}

// Reset loads SP/P/A/X/Y to their power-on values and PC from the reset
// vector at 0xFFFC/FFFD (section 4.4, "Reset"). The vector fetch bypasses
// the clock: reset is not modeled as bus cycles.
func (c *CPU) Reset() {
	c.SP = 0xFF
	c.P = FlagR | FlagI
	c.A, c.X, c.Y = 0, 0, 0
	c.PC = uint16(c.Bus.Read(0xFFFC)) | uint16(c.Bus.Read(0xFFFD))<<8
	c.Pending = clock.LevelNone
	c.Jammed = false
	c.History = c.History[:0]
}

// Run executes instructions until the clock has advanced by budget cycles
// or the core jams, per the bounded-slice cooperative loop in section 5. It
// returns the number of cycles actually advanced, which may be less than
// budget if the core jammed mid-slice (the final instruction can also
// overshoot budget slightly, since a slice only checks between
// instructions).
func (c *CPU) Run(budget uint64) uint64 {
	target := c.Clock.Cycles + budget
	for c.Clock.Cycles < target && !c.Jammed {
		c.Step()
	}
	return c.Clock.Cycles - (target - budget)
}

// Step executes exactly one instruction: interrupt acceptance, breakpoint
// consultation, history recording, fetch/decode/execute (section 4.4).
func (c *CPU) Step() {
	if c.Jammed {
		return
	}
	if c.acceptInterrupt() {
		return
	}
	c.checkBreakpoint()

	instrStart := c.PC
	c.recordHistory(instrStart)

	opcode := c.fetch()
	if jamOpcodes[opcode] {
		c.raiseFault(FaultJam, instrStart, fmt.Sprintf("JAM opcode 0x%02X", opcode))
		c.Jammed = true
		return
	}

	instr := OpcodeTable[opcode]
	if instr.Name == "" {
		c.raiseFault(FaultUnknownOpcode, instrStart, fmt.Sprintf("unassigned opcode 0x%02X", opcode))
		c.Jammed = true
		return
	}

	c.execute(instr, instrStart)
}

// acceptInterrupt services a latched NMI or (if unmasked) IRQ before the
// next instruction is fetched. NMI always preempts; IRQ is gated by the I
// flag (section 4.4, "Subroutines and interrupts").
func (c *CPU) acceptInterrupt() bool {
	switch {
	case c.Pending == clock.LevelNMI:
		c.serviceInterrupt(0xFFFA)
		c.Pending = clock.LevelNone
		return true
	case c.Pending == clock.LevelIRQ && !c.flag(FlagI):
		c.serviceInterrupt(0xFFFE)
		c.Pending = clock.LevelNone
		return true
	}
	return false
}

// serviceInterrupt runs the common IRQ/NMI prologue: push PC, then P with B
// clear and the reserved bit set, set I, and jump to vector.
func (c *CPU) serviceInterrupt(vector uint16) {
	c.push16(c.PC)
	c.pushCycle((c.P &^ FlagB) | FlagR)
	c.setFlag(FlagI, true)
	c.PC = c.readWord(vector)
}

func (c *CPU) checkBreakpoint() {
	bp, ok := c.Breakpoints[c.PC]
	if !ok {
		return
	}
	if bp.Kind == BreakCall && bp.Call != nil {
		bp.Call(c)
		return
	}
	if c.OnBreakpoint != nil {
		c.OnBreakpoint(c.PC, bp)
	}
}

func (c *CPU) recordHistory(pc uint16) {
	c.History = append(c.History, pc)
	if len(c.History) > historyCapacity {
		c.History = c.History[len(c.History)-historyCapacity:]
	}
}

func (c *CPU) raiseFault(kind FaultKind, pc uint16, msg string) {
	if c.OnFault != nil {
		c.OnFault(Fault{Kind: kind, PC: pc, Message: msg})
	}
}

// fetch reads the byte at PC, advances PC, and ticks the clock once.
func (c *CPU) fetch() uint8 {
	v := c.readByte(c.PC)
	c.PC++
	return v
}

func (c *CPU) readByte(addr uint16) uint8 {
	v := c.Bus.Read(addr)
	c.Clock.WaitCycle()
	return v
}

func (c *CPU) writeByte(addr uint16, v uint8) {
	c.Bus.Write(addr, v)
	c.Clock.WaitCycle()
}

func (c *CPU) pushCycle(v uint8) {
	c.writeByte(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pullCycle() uint8 {
	c.SP++
	return c.readByte(0x0100 | uint16(c.SP))
}

func (c *CPU) push16(value uint16) {
	c.pushCycle(uint8(value >> 8))
	c.pushCycle(uint8(value))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pullCycle())
	hi := uint16(c.pullCycle())
	return hi<<8 | lo
}
