// Package cia models the 6526 Complex Interface Adapter: two 16-bit timers,
// a time-of-day clock, two DDR-backed 8-bit ports, and a masked interrupt
// control register. Two instances are wired into the system — CIA1 raises
// IRQ and backs the keyboard matrix, CIA2 raises NMI and selects the VIC-II
// memory bank — grounded on the teacher's single CIA type plus the timer
// and TOD logic in cia/timera_test.go and cia/tod_test.go, adapted from a
// batched Update(cycles) call into a per-cycle clock.Clocked tick and from
// a free-standing struct into a bus.Device.
package cia

import "github.com/abandt/retroc64/clock"

// Register offsets from the CIA base address.
const (
	PRA       = 0x00
	PRB       = 0x01
	DDRA      = 0x02
	DDRB      = 0x03
	TA_LO     = 0x04
	TA_HI     = 0x05
	TB_LO     = 0x06
	TB_HI     = 0x07
	TOD_10THS = 0x08
	TOD_SEC   = 0x09
	TOD_MIN   = 0x0A
	TOD_HR    = 0x0B
	SDR       = 0x0C
	ICR       = 0x0D
	CRA       = 0x0E
	CRB       = 0x0F
)

const (
	CRA_START   uint8 = 0x01
	CRA_PBON    uint8 = 0x02
	CRA_OUTMODE uint8 = 0x04
	CRA_RUNMODE uint8 = 0x08
	CRA_FORCE   uint8 = 0x10
	CRA_INMODE  uint8 = 0x20
)

const (
	CRB_START  uint8 = 0x01
	CRB_PBON   uint8 = 0x02
	CRB_OUTMODE uint8 = 0x04
	CRB_RUNMODE uint8 = 0x08
	CRB_FORCE  uint8 = 0x10
	CRB_INMODE uint8 = 0x60
	CRB_ALARM  uint8 = 0x80
)

const (
	ICR_TA  uint8 = 0x01
	ICR_TB  uint8 = 0x02
	ICR_TOD uint8 = 0x04
	ICR_SDR uint8 = 0x08
	ICR_SET uint8 = 0x80
)

// todDivider ticks tenths every this many cycles — the spec's "15,000
// cycles as implemented" approximation of a 10Hz tick at the ~985KHz PAL
// clock (component design section 4.5), rather than deriving it from CRA's
// 50/60Hz bit.
const todDivider = 15000

// Port is one of CIA's two 8-bit ports: a DDR-gated output latch with an
// optional external input source for the bits configured as inputs. Input
// is set after construction by the top-level wiring (design note 9b) so
// CIA never imports the keyboard package directly.
type Port struct {
	ddr   uint8
	value uint8
	Input func() uint8
}

// Read returns the port's current level: output bits reflect value, input
// bits reflect the external source (or float high with none attached).
func (p *Port) Read() uint8 {
	external := uint8(0xFF)
	if p.Input != nil {
		external = p.Input()
	}
	return (p.value & p.ddr) | (external &^ p.ddr)
}

func (p *Port) Value() uint8 { return p.value }
func (p *Port) DDR() uint8   { return p.ddr }

// CIA is a bus.Device and clock.Clocked: Write/TryRead dispatch the
// register map, OnClock advances one cycle of timer/TOD state and reports
// the interrupt level it wants raised.
type CIA struct {
	Base uint16
	// Level is clock.LevelIRQ for CIA1, clock.LevelNMI for CIA2.
	Level clock.IRQLevel

	PortA Port
	PortB Port

	timerALatch, timerA uint16
	timerBLatch, timerB uint16
	cra, crb            uint8

	todTenths, todSec, todMin, todHr uint8
	todAlarm                         [4]uint8
	todDividerCount                  uint16
	todFrozen                        bool
	todFrozenSnapshot                [4]uint8
	todAlarmMode                     bool

	sdr             uint8
	icrData         uint8
	icrMask         uint8
	timerAUnderflow bool
	timerBUnderflow bool
}

func New(base uint16, level clock.IRQLevel) *CIA {
	c := &CIA{Base: base, Level: level}
	c.resetState()
	return c
}

func (c *CIA) resetState() {
	c.timerALatch, c.timerA = 0xFFFF, 0xFFFF
	c.timerBLatch, c.timerB = 0xFFFF, 0xFFFF
	c.cra, c.crb = 0, 0
	c.PortA = Port{Input: c.PortA.Input}
	c.PortB = Port{Input: c.PortB.Input}
	c.todTenths, c.todSec, c.todMin, c.todHr = 0, 0, 0, 0
	c.todAlarm = [4]uint8{}
	c.todDividerCount = 0
	c.todFrozen = false
	c.todAlarmMode = false
	c.icrData, c.icrMask = 0, 0
}

func (c *CIA) Reset() { c.resetState() }

func (c *CIA) inRange(addr uint16) bool {
	return addr >= c.Base && addr < c.Base+0x10
}

func (c *CIA) TryRead(addr uint16) (uint8, bool) {
	if !c.inRange(addr) {
		return 0, false
	}
	return c.readRegister(uint8(addr - c.Base)), true
}

func (c *CIA) Write(addr uint16, value uint8) string {
	if !c.inRange(addr) {
		return ""
	}
	c.writeRegister(uint8(addr-c.Base), value)
	return ""
}

func (c *CIA) readRegister(reg uint8) uint8 {
	switch reg {
	case PRA:
		return c.PortA.Read()
	case PRB:
		return c.readPortB()
	case DDRA:
		return c.PortA.ddr
	case DDRB:
		return c.PortB.ddr
	case TA_LO:
		return uint8(c.timerA)
	case TA_HI:
		return uint8(c.timerA >> 8)
	case TB_LO:
		return uint8(c.timerB)
	case TB_HI:
		return uint8(c.timerB >> 8)
	case TOD_10THS:
		v := c.todSnapshot()[0]
		c.todFrozen = false // reading tenths always thaws
		return v
	case TOD_SEC:
		return c.todSnapshot()[1]
	case TOD_MIN:
		return c.todSnapshot()[2]
	case TOD_HR:
		c.freezeTOD()
		return c.todSnapshot()[3]
	case SDR:
		return c.sdr
	case ICR:
		return c.readICR()
	case CRA:
		return c.cra
	case CRB:
		return c.crb
	}
	return 0
}

// readPortB overlays PB6/PB7 timer-output bits onto the port's normal
// DDR-gated read, matching what the real chip presents when CRA_PBON /
// CRB_PBON route a timer underflow pulse onto the port pin.
func (c *CIA) readPortB() uint8 {
	v := c.PortB.Read()
	if c.cra&CRA_PBON != 0 && c.timerAUnderflow {
		v ^= 0x40
	}
	if c.crb&CRB_PBON != 0 && c.timerBUnderflow {
		v ^= 0x80
	}
	return v
}

func (c *CIA) writeRegister(reg, val uint8) {
	switch reg {
	case PRA:
		c.PortA.value = val
	case PRB:
		c.PortB.value = val
	case DDRA:
		c.PortA.ddr = val
	case DDRB:
		c.PortB.ddr = val
	case TA_LO:
		c.timerALatch = (c.timerALatch & 0xFF00) | uint16(val)
	case TA_HI:
		c.timerALatch = (c.timerALatch & 0x00FF) | uint16(val)<<8
		if c.cra&CRA_START == 0 {
			c.timerA = c.timerALatch
		}
	case TB_LO:
		c.timerBLatch = (c.timerBLatch & 0xFF00) | uint16(val)
	case TB_HI:
		c.timerBLatch = (c.timerBLatch & 0x00FF) | uint16(val)<<8
		if c.crb&CRB_START == 0 {
			c.timerB = c.timerBLatch
		}
	case TOD_10THS:
		c.writeTOD(0, val&0x0F)
	case TOD_SEC:
		c.writeTOD(1, val&0x7F)
	case TOD_MIN:
		c.writeTOD(2, val&0x7F)
	case TOD_HR:
		hours := val & 0x1F
		c.writeTOD(3, hours|(val&0x80))
	case SDR:
		c.sdr = val
	case ICR:
		c.writeICR(val)
	case CRA:
		c.writeCRA(val)
	case CRB:
		c.writeCRB(val)
	}
}

// writeTOD routes 0x8/0x9/0xA/0xB to tenths/seconds/minutes/hours (design
// note 9a), targeting the alarm registers instead of the clock when CRB's
// alarm bit is set.
func (c *CIA) writeTOD(field int, val uint8) {
	if c.todAlarmMode {
		c.todAlarm[field] = val
		return
	}
	switch field {
	case 0:
		c.todTenths = val
	case 1:
		c.todSec = val
	case 2:
		c.todMin = val
	case 3:
		c.todHr = val
	}
}

func (c *CIA) writeICR(val uint8) {
	if val&ICR_SET != 0 {
		c.icrMask |= val & 0x1F
	} else {
		c.icrMask &^= val & 0x1F
	}
}

func (c *CIA) readICR() uint8 {
	value := c.icrData
	if c.icrData&c.icrMask&0x1F != 0 {
		value |= 0x80
	}
	c.icrData = 0
	return value
}

func (c *CIA) writeCRA(val uint8) {
	c.cra = val &^ CRA_FORCE
	if val&CRA_FORCE != 0 {
		c.timerA = c.timerALatch
	}
}

func (c *CIA) writeCRB(val uint8) {
	c.crb = val &^ CRB_FORCE
	c.todAlarmMode = val&CRB_ALARM != 0
	if val&CRB_FORCE != 0 {
		c.timerB = c.timerBLatch
	}
}

// todSnapshot returns the live TOD fields, or the frozen snapshot taken at
// the last hours read if one is outstanding.
func (c *CIA) todSnapshot() [4]uint8 {
	if c.todFrozen {
		return c.todFrozenSnapshot
	}
	return [4]uint8{c.todTenths, c.todSec, c.todMin, c.todHr}
}

func (c *CIA) freezeTOD() {
	if !c.todFrozen {
		c.todFrozenSnapshot = [4]uint8{c.todTenths, c.todSec, c.todMin, c.todHr}
		c.todFrozen = true
	}
}

// OnClock advances one cycle: TOD divider, both timers, then reports the
// interrupt level this chip should assert.
func (c *CIA) OnClock() clock.IRQLevel {
	c.tickTOD()
	c.timerAUnderflow = false
	c.timerBUnderflow = false
	c.tickTimerA()
	c.tickTimerB()

	if c.icrData&c.icrMask&0x1F != 0 {
		return c.Level
	}
	return clock.LevelNone
}

func (c *CIA) tickTOD() {
	c.todDividerCount++
	if c.todDividerCount < todDivider {
		return
	}
	c.todDividerCount = 0
	c.bumpTenths()
}

func (c *CIA) bumpTenths() {
	c.todTenths = (c.todTenths + 1) & 0x0F
	if c.todTenths <= 0x09 {
		c.checkAlarm()
		return
	}
	c.todTenths = 0
	c.todSec = bcdInc(c.todSec, 0x59)
	if c.todSec != 0 {
		c.checkAlarm()
		return
	}
	c.todMin = bcdInc(c.todMin, 0x59)
	if c.todMin != 0 {
		c.checkAlarm()
		return
	}
	c.todHr = bcdIncHour(c.todHr)
	c.checkAlarm()
}

func (c *CIA) checkAlarm() {
	if c.todTenths == c.todAlarm[0] && c.todSec == c.todAlarm[1] &&
		c.todMin == c.todAlarm[2] && c.todHr == c.todAlarm[3] {
		c.icrData |= ICR_TOD
	}
}

// bcdInc adds one BCD unit, wrapping to 0 past max (e.g. 0x59 -> 0x00 for
// seconds/minutes) and reporting the wrapped value so callers can detect
// carry by checking for zero.
func bcdInc(v, max uint8) uint8 {
	if v&0x0F == 0x09 {
		v += 0x10 - 0x09
	} else {
		v++
	}
	if v > max {
		return 0
	}
	return v
}

// bcdIncHour implements the 12-hour TOD clock's odd wraparound: 11->12 (PM
// toggles), 12->1, otherwise a normal BCD increment.
func bcdIncHour(v uint8) uint8 {
	hours := v & 0x1F
	pm := v & 0x80
	switch {
	case hours == 0x11:
		return 0x12 | (pm ^ 0x80)
	case hours == 0x12:
		return 0x01 | pm
	case hours&0x0F == 0x09:
		return 0x10 | pm
	default:
		return (hours + 1) | pm
	}
}

func (c *CIA) tickTimerA() {
	if c.cra&CRA_START == 0 || c.cra&CRA_INMODE != 0 {
		return // CNT-sourced timers are not modeled; no datassette/serial clock drives CNT
	}
	c.timerA--
	if c.timerA != 0 {
		return
	}
	c.timerAUnderflow = true
	c.icrData |= ICR_TA
	if c.cra&CRA_RUNMODE != 0 {
		c.cra &^= CRA_START
	} else {
		c.timerA = c.timerALatch
	}
}

func (c *CIA) tickTimerB() {
	if c.crb&CRB_START == 0 {
		return
	}
	switch (c.crb & CRB_INMODE) >> 5 {
	case 0: // system clock
	case 2: // timer A underflow
		if !c.timerAUnderflow {
			return
		}
	default: // CNT-sourced modes are not modeled
		return
	}
	c.timerB--
	if c.timerB != 0 {
		return
	}
	c.timerBUnderflow = true
	c.icrData |= ICR_TB
	if c.crb&CRB_RUNMODE != 0 {
		c.crb &^= CRB_START
	} else {
		c.timerB = c.timerBLatch
	}
}
