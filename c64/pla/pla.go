// Package pla models the 7702 PLA's memory-configuration role: a DDR latch
// and a data latch at 0x0000/0x0001 that gate which ROM/IO regions are
// visible on the bus, derived from the logic the teacher's
// c64/memory.Manager used to fold into one monolithic Read/Write switch
// (LORAM/HIRAM/CHAREN bit extraction, region-enable booleans).
package pla

import "github.com/abandt/retroc64/bus"

// Region identifies one of the four bank-switched spans the PLA arbitrates.
type Region int

const (
	RegionBASIC Region = iota
	RegionKernal
	RegionChargen
	RegionIO
	numRegions
)

const (
	ddrBit    = 0x00
	latchBit  = 0x01
	loramMask = 0x01
	hiramMask = 0x02
	charenMask = 0x04

	// Bit 4 of the latch read-back is the cassette sense line; hardwired low
	// since no datassette device is modeled (spec design note 9d).
	cassetteSenseBit = 0x10
)

// PLA is a bus.Device claiming only 0x0000/0x0001. It does not itself gate
// reads/writes to the banked regions — it recomputes each region's enabled
// state on the owning Bus via the handles given to Attach, the same way the
// real chip toggles chip-select lines rather than storage.
type PLA struct {
	ddr   uint8
	latch uint8

	b       *bus.Bus
	handles [numRegions]bus.Handle
	bound   bool
}

// New creates a PLA with the post-reset DDR/latch defaults (0x2F/0x37,
// matching a real C64: all three control lines configured as outputs and
// driven high, so LORAM=HIRAM=CHAREN=1: BASIC and KERNAL are mapped in and
// D000-DFFF shows I/O rather than CHARGEN).
func New() *PLA {
	return &PLA{ddr: 0x2F, latch: 0x37}
}

// Attach records the bus and the handles of the four regions this PLA
// arbitrates, then applies the current (reset) configuration immediately.
func (p *PLA) Attach(b *bus.Bus, basic, kernal, chargen, io bus.Handle) {
	p.b = b
	p.handles[RegionBASIC] = basic
	p.handles[RegionKernal] = kernal
	p.handles[RegionChargen] = chargen
	p.handles[RegionIO] = io
	p.bound = true
	p.apply()
}

func (p *PLA) TryRead(addr uint16) (uint8, bool) {
	switch addr {
	case ddrBit:
		return p.ddr, true
	case latchBit:
		// Output bits read back the driven latch value; input bits (DDR=0)
		// float. No input devices are wired to this port, so they read 1,
		// except the hardwired-low cassette sense bit.
		value := (p.latch & p.ddr) | (^p.ddr &^ cassetteSenseBit)
		return value, true
	}
	return 0, false
}

func (p *PLA) Write(addr uint16, value uint8) string {
	switch addr {
	case ddrBit:
		p.ddr = value
		p.apply()
	case latchBit:
		p.latch = (p.latch &^ p.ddr) | (value & p.ddr)
		p.apply()
	default:
		return ""
	}
	return ""
}

func (p *PLA) Reset() {
	p.ddr = 0x2F
	p.latch = 0x37
	p.apply()
}

// lines returns the three control bits as driven onto the bus: an input bit
// (DDR=0) floats high, same as the latch read-back.
func (p *PLA) lines() (loram, hiram, charen bool) {
	effective := (p.latch & p.ddr) | (^p.ddr)
	return effective&loramMask != 0, effective&hiramMask != 0, effective&charenMask != 0
}

// apply recomputes the four region-enable booleans per the table in
// component design section 4.3 and pushes them onto the bus.
func (p *PLA) apply() {
	if !p.bound {
		return
	}
	loram, hiram, charen := p.lines()

	p.b.SetEnabled(p.handles[RegionBASIC], loram && hiram)
	p.b.SetEnabled(p.handles[RegionKernal], hiram)
	p.b.SetEnabled(p.handles[RegionChargen], (loram || hiram) && !charen)
	p.b.SetEnabled(p.handles[RegionIO], (loram || hiram) && charen)
}
