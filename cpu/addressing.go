package cpu

// AddrResult is what an addressing mode resolves to: the operand value, and
// a Save callback that writes a (possibly new) value back to wherever the
// operand came from (the accumulator, or a bus address). Read-only modes
// (Immediate) have a no-op Save.
type AddrResult struct {
	Value uint8
	Save  func(v uint8)
}

// resolveOperand fetches and resolves an operand per mode, ticking the
// clock once per actual bus access performed along the way. Indirect and
// Relative are not handled here: JMP and the branch instructions resolve
// those directly since they never produce a read/write operand.
func (c *CPU) resolveOperand(mode AddressMode) AddrResult {
	switch mode {
	case Accumulator:
		return AddrResult{Value: c.A, Save: func(v uint8) { c.A = v }}
	case Immediate:
		return AddrResult{Value: c.fetch(), Save: func(uint8) {}}
	case ZeroPage:
		addr := uint16(c.fetch())
		return c.memOperand(addr)
	case ZeroPageX:
		addr := uint16(c.fetch() + c.X)
		c.Clock.WaitCycle()
		return c.memOperand(addr)
	case ZeroPageY:
		addr := uint16(c.fetch() + c.Y)
		c.Clock.WaitCycle()
		return c.memOperand(addr)
	case Absolute:
		return c.memOperand(c.fetchAddr())
	case AbsoluteX:
		return c.memOperand(c.fetchAddr() + uint16(c.X))
	case AbsoluteY:
		return c.memOperand(c.fetchAddr() + uint16(c.Y))
	case IndirectX:
		base := c.fetch() + c.X
		c.Clock.WaitCycle()
		return c.memOperand(c.readZPWord(base))
	case IndirectY:
		base := c.fetch()
		return c.memOperand(c.readZPWord(base) + uint16(c.Y))
	default:
		panic("cpu: resolveOperand called with non-operand mode")
	}
}

func (c *CPU) memOperand(addr uint16) AddrResult {
	v := c.readByte(addr)
	return AddrResult{Value: v, Save: func(nv uint8) { c.writeByte(addr, nv) }}
}

// fetchAddr reads a little-endian 16-bit absolute address following the
// opcode byte.
func (c *CPU) fetchAddr() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(lo) | uint16(hi)<<8
}

// readZPWord reads a little-endian pointer out of zero page. The high byte
// wraps within zero page (addr 0xFF wraps to 0x00), which is correct 6502
// behavior for this addressing path (distinct from the JMP (IND) page-wrap
// bug, which this implementation does not reproduce).
func (c *CPU) readZPWord(addr uint8) uint16 {
	lo := c.readByte(uint16(addr))
	hi := c.readByte(uint16(addr + 1))
	return uint16(lo) | uint16(hi)<<8
}

// readWord reads a little-endian 16-bit value at an arbitrary bus address,
// used for vector fetches and JMP (IND). Unlike readZPWord this does not
// wrap at a page boundary.
func (c *CPU) readWord(addr uint16) uint16 {
	lo := c.readByte(addr)
	hi := c.readByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}
