package cpu

import "github.com/abandt/retroc64/clock"

// execute runs the decoded instruction. Addressing is resolved through
// resolveOperand for every data-bearing mode; JMP/JSR/branches read their
// operands directly since they never produce a value to read or write
// back (section 4.4, "Addressing modes").
func (c *CPU) execute(instr Instruction, instrStart uint16) {
	switch instr.Name {
	case "LDA":
		c.A = c.resolveOperand(instr.Mode).Value
		c.updateZN(c.A)
	case "LDX":
		c.X = c.resolveOperand(instr.Mode).Value
		c.updateZN(c.X)
	case "LDY":
		c.Y = c.resolveOperand(instr.Mode).Value
		c.updateZN(c.Y)
	case "STA":
		c.store(instr.Mode, c.A)
	case "STX":
		c.store(instr.Mode, c.X)
	case "STY":
		c.store(instr.Mode, c.Y)

	case "TAX":
		c.X = c.A
		c.updateZN(c.X)
	case "TAY":
		c.Y = c.A
		c.updateZN(c.Y)
	case "TXA":
		c.A = c.X
		c.updateZN(c.A)
	case "TYA":
		c.A = c.Y
		c.updateZN(c.A)
	case "TSX":
		c.X = c.SP
		c.updateZN(c.X)
	case "TXS":
		c.SP = c.X

	case "PHA":
		c.pushCycle(c.A)
	case "PHP":
		c.pushCycle(c.P | FlagB | FlagR)
	case "PLA":
		c.A = c.pullCycle()
		c.updateZN(c.A)
	case "PLP":
		c.P = c.pullCycle() | FlagR

	case "AND":
		c.A &= c.resolveOperand(instr.Mode).Value
		c.updateZN(c.A)
	case "ORA":
		c.A |= c.resolveOperand(instr.Mode).Value
		c.updateZN(c.A)
	case "EOR":
		c.A ^= c.resolveOperand(instr.Mode).Value
		c.updateZN(c.A)
	case "BIT":
		v := c.resolveOperand(instr.Mode).Value
		c.setFlag(FlagZ, c.A&v == 0)
		c.setFlag(FlagN, v&0x80 != 0)
		c.setFlag(FlagV, v&0x40 != 0)

	case "ADC":
		c.adc(c.resolveOperand(instr.Mode).Value)
	case "SBC":
		c.sbc(c.resolveOperand(instr.Mode).Value)
	case "CMP":
		c.compare(c.A, c.resolveOperand(instr.Mode).Value)
	case "CPX":
		c.compare(c.X, c.resolveOperand(instr.Mode).Value)
	case "CPY":
		c.compare(c.Y, c.resolveOperand(instr.Mode).Value)

	case "INC":
		r := c.resolveOperand(instr.Mode)
		v := r.Value + 1
		r.Save(v)
		c.updateZN(v)
	case "DEC":
		r := c.resolveOperand(instr.Mode)
		v := r.Value - 1
		r.Save(v)
		c.updateZN(v)
	case "INX":
		c.X++
		c.Clock.WaitCycle()
		c.updateZN(c.X)
	case "INY":
		c.Y++
		c.Clock.WaitCycle()
		c.updateZN(c.Y)
	case "DEX":
		c.X--
		c.Clock.WaitCycle()
		c.updateZN(c.X)
	case "DEY":
		c.Y--
		c.Clock.WaitCycle()
		c.updateZN(c.Y)

	case "ASL":
		r := c.resolveOperand(instr.Mode)
		v := c.shiftOut(r.Value&0x80 != 0, r.Value<<1)
		r.Save(v)
	case "LSR":
		r := c.resolveOperand(instr.Mode)
		v := c.shiftOut(r.Value&0x01 != 0, r.Value>>1)
		r.Save(v)
	case "ROL":
		r := c.resolveOperand(instr.Mode)
		in := uint8(0)
		if c.flag(FlagC) {
			in = 0x01
		}
		v := c.shiftOut(r.Value&0x80 != 0, (r.Value<<1)|in)
		r.Save(v)
	case "ROR":
		r := c.resolveOperand(instr.Mode)
		in := uint8(0)
		if c.flag(FlagC) {
			in = 0x80
		}
		v := c.shiftOut(r.Value&0x01 != 0, (r.Value>>1)|in)
		r.Save(v)

	case "JMP":
		target := c.jumpTarget(instr.Mode)
		c.checkStuck(instrStart, target)
		c.PC = target
	case "JSR":
		target := c.fetchAddr()
		c.push16(c.PC - 1)
		c.PC = target
	case "RTS":
		c.PC = c.pull16() + 1

	case "BCC":
		c.branch(instrStart, !c.flag(FlagC))
	case "BCS":
		c.branch(instrStart, c.flag(FlagC))
	case "BEQ":
		c.branch(instrStart, c.flag(FlagZ))
	case "BNE":
		c.branch(instrStart, !c.flag(FlagZ))
	case "BMI":
		c.branch(instrStart, c.flag(FlagN))
	case "BPL":
		c.branch(instrStart, !c.flag(FlagN))
	case "BVC":
		c.branch(instrStart, !c.flag(FlagV))
	case "BVS":
		c.branch(instrStart, c.flag(FlagV))

	case "CLC":
		c.setFlag(FlagC, false)
	case "CLD":
		c.setFlag(FlagD, false)
	case "CLI":
		c.setFlag(FlagI, false)
	case "CLV":
		c.setFlag(FlagV, false)
	case "SEC":
		c.setFlag(FlagC, true)
	case "SED":
		c.setFlag(FlagD, true)
	case "SEI":
		c.setFlag(FlagI, true)

	case "BRK":
		c.fetch() // the padding byte BRK skips
		c.push16(c.PC)
		c.pushCycle(c.P | FlagB | FlagR)
		c.setFlag(FlagI, true)
		c.PC = c.readWord(0xFFFE)
	case "RTI":
		c.P = c.pullCycle() | FlagR
		c.PC = c.pull16()
		c.Pending = clock.LevelNone

	case "NOP":
		// nothing

	default:
		c.raiseFault(FaultUnknownOpcode, instrStart, "decoded instruction with no handler: "+instr.Name)
		c.Jammed = true
	}
}

// store writes value through the addressing mode without reading the
// destination first (STA/STX/STY never load-modify-write).
func (c *CPU) store(mode AddressMode, value uint8) {
	switch mode {
	case ZeroPage:
		c.writeByte(uint16(c.fetch()), value)
	case ZeroPageX:
		addr := uint16(c.fetch() + c.X)
		c.Clock.WaitCycle()
		c.writeByte(addr, value)
	case ZeroPageY:
		addr := uint16(c.fetch() + c.Y)
		c.Clock.WaitCycle()
		c.writeByte(addr, value)
	case Absolute:
		c.writeByte(c.fetchAddr(), value)
	case AbsoluteX:
		addr := c.fetchAddr()
		c.Clock.WaitCycle()
		c.writeByte(addr+uint16(c.X), value)
	case AbsoluteY:
		addr := c.fetchAddr()
		c.Clock.WaitCycle()
		c.writeByte(addr+uint16(c.Y), value)
	case IndirectX:
		base := c.fetch() + c.X
		c.Clock.WaitCycle()
		c.writeByte(c.readZPWord(base), value)
	case IndirectY:
		base := c.fetch()
		addr := c.readZPWord(base) + uint16(c.Y)
		c.Clock.WaitCycle()
		c.writeByte(addr, value)
	default:
		panic("cpu: store called with non-operand mode")
	}
}

// jumpTarget resolves JMP's operand. Absolute reads the target directly;
// Indirect reads a pointer and then the target through it. The classic
// page-wrap bug at the low byte of the pointer is intentionally not
// reproduced (section 4.4).
func (c *CPU) jumpTarget(mode AddressMode) uint16 {
	if mode == Indirect {
		ptr := c.fetchAddr()
		return c.readWord(ptr)
	}
	return c.fetchAddr()
}

// branch always consumes the relative operand byte; it only moves PC if
// taken is true.
func (c *CPU) branch(instrStart uint16, taken bool) {
	offset := int8(c.fetch())
	if !taken {
		return
	}
	target := uint16(int32(c.PC) + int32(offset))
	c.checkStuck(instrStart, target)
	c.PC = target
}

// checkStuck aborts the run slice when a branch or JMP targets the very
// instruction it's part of, an obvious infinite loop (section 4.4, 7).
func (c *CPU) checkStuck(instrStart, target uint16) {
	if c.StuckCheck && target == instrStart {
		c.raiseFault(FaultStuck, instrStart, "branch/jump targets its own instruction")
		c.Jammed = true
	}
}

// shiftOut sets Carry from the bit pushed out and N/Z from the result.
func (c *CPU) shiftOut(carryOut bool, result uint8) uint8 {
	c.setFlag(FlagC, carryOut)
	c.updateZN(result)
	return result
}

// compare sets C = (reg >= mem) and N/Z from (reg - mem) mod 256 (section
// 4.4, "Arithmetic and flags").
func (c *CPU) compare(reg, mem uint8) {
	c.setFlag(FlagC, reg >= mem)
	c.updateZN(reg - mem)
}
