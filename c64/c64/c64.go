// Package c64 wires the bus, CPU, PLA, CIAs, VIC-II register bank,
// keyboard matrix and program injector into the machine described by the
// memory map in component design section 6, replacing the teacher's
// monolithic C64 struct (which owned an SDL window directly and drove a
// single flat memory.Manager). Rendering and event polling now live
// entirely in c64emu; System itself has no host dependency, matching
// the concurrency model in section 5: a cooperative, single-threaded core
// that the host drives in bounded cycle slices.
package c64

import (
	"fmt"

	"github.com/abandt/retroc64/bus"
	"github.com/abandt/retroc64/c64/cia"
	"github.com/abandt/retroc64/c64/inject"
	"github.com/abandt/retroc64/c64/keyboard"
	"github.com/abandt/retroc64/c64/multiplex"
	"github.com/abandt/retroc64/c64/pla"
	"github.com/abandt/retroc64/c64/sid"
	"github.com/abandt/retroc64/c64/vic"
	"github.com/abandt/retroc64/clock"
	"github.com/abandt/retroc64/cpu"
)

// Memory map addresses, per component design section 6.
const (
	ramLowStart, ramLowEnd   = 0x0000, 0x9FFF
	basicStart, basicEnd     = 0xA000, 0xBFFF
	ramHighStart, ramHighEnd = 0xC000, 0xCFFF
	ioStart, ioEnd           = 0xD000, 0xDFFF
	kernalStart, kernalEnd   = 0xE000, 0xFFFF

	basicSize   = basicEnd - basicStart + 1
	chargenSize = 0x1000
	kernalSize  = kernalEnd - kernalStart + 1
)

// ROMImages holds the raw ROM images a System is built from; each must
// match its declared segment length exactly (section 6).
type ROMImages struct {
	Basic   []byte
	Kernal  []byte
	Chargen []byte
}

// System is the fully wired C64: bus, clock, CPU, PLA-gated ROM/IO
// regions, both CIAs, the VIC-II register bank, the keyboard matrix and a
// program injector. It owns no rendering surface.
type System struct {
	Bus   *bus.Bus
	Clock *clock.Clock
	CPU   *cpu.CPU

	PLA      *pla.PLA
	CIA1     *cia.CIA
	CIA2     *cia.CIA
	VIC      *vic.VIC
	SID      *sid.SID
	Keyboard *keyboard.Matrix
	Injector *inject.Injector

	ram *bus.RAM

	// LastFault records the most recent bus fault reported to FaultSink,
	// for a front end's F10 "dump history" hotkey.
	LastFault string
}

// New builds a System from the given ROM images. It returns an error if
// any image doesn't match its required size (section 6, section 7 init
// failures).
func New(roms ROMImages) (*System, error) {
	if len(roms.Basic) != basicSize {
		return nil, fmt.Errorf("c64: BASIC ROM must be %d bytes, got %d", basicSize, len(roms.Basic))
	}
	if len(roms.Chargen) != chargenSize {
		return nil, fmt.Errorf("c64: CHARGEN ROM must be %d bytes, got %d", chargenSize, len(roms.Chargen))
	}
	if len(roms.Kernal) != kernalSize {
		return nil, fmt.Errorf("c64: KERNAL ROM must be %d bytes, got %d", kernalSize, len(roms.Kernal))
	}

	s := &System{
		Clock:    clock.New(),
		PLA:      pla.New(),
		CIA1:     cia.New(0xDC00, clock.LevelIRQ),
		CIA2:     cia.New(0xDD00, clock.LevelNMI),
		VIC:      vic.New(),
		SID:      sid.New(),
		Keyboard: keyboard.New(),
		Injector: inject.New(),
	}

	s.Bus = bus.New()
	s.Bus.FaultSink = func(pc uint16, msg string) {
		s.LastFault = fmt.Sprintf("0x%04X: %s", pc, msg)
	}

	basicROM := bus.NewROM("basic", basicStart, roms.Basic)
	kernalROM := bus.NewROM("kernal", kernalStart, roms.Kernal)
	chargenROM := bus.NewROM("chargen", ioStart, roms.Chargen)

	colorRAM := bus.NewRAM(vic.ColorRAMBase, vic.ColorRAMEnd, 0x00)

	io := multiplex.New(ioStart, ioEnd)
	io.Add(s.VIC)
	io.Add(colorRAM)
	io.Add(s.CIA1)
	io.Add(s.CIA2)
	io.Add(s.SID)

	basicHandle := s.Bus.Register(basicROM, true)
	kernalHandle := s.Bus.Register(kernalROM, true)
	chargenHandle := s.Bus.Register(chargenROM, true)
	ioHandle := s.Bus.Register(io, true)

	s.PLA.Attach(s.Bus, basicHandle, kernalHandle, chargenHandle, ioHandle)
	s.Bus.Register(s.PLA, true)

	s.ram = bus.NewRAM(0x0000, 0xFFFF, 0x00)
	s.Bus.Register(s.ram, true)

	s.wireKeyboard()
	s.wireVICMemoryBank()

	s.CPU = cpu.NewCPU(s.Bus, s.Clock)
	s.Clock.Register(s.CIA1)
	s.Clock.Register(s.CIA2)

	s.Reset()
	return s, nil
}

// wireKeyboard closes CIA1's port duality: port A is the row strobe
// (CPU-driven output), port B reads back the columns the keyboard matrix
// asserts for whichever rows are currently strobed low (component design
// section 4.6/9b).
func (s *System) wireKeyboard() {
	s.CIA1.PortB.Input = func() uint8 {
		return s.Keyboard.ReadColumns(s.CIA1.PortA.Read())
	}
}

// wireVICMemoryBank keeps VIC's 16 KiB bank selection in sync with CIA2
// port A's low two bits (section 4.7); polled once per run slice rather
// than on every write, since only the renderer's next snapshot depends on
// it (section 5).
func (s *System) wireVICMemoryBank() {
	s.VIC.SetMemoryBank(s.CIA2.PortA.Read())
}

// Reset restores every device to its post-power-on state and reloads the
// CPU's PC from the reset vector.
func (s *System) Reset() {
	s.Bus.Reset()
	s.Clock.Reset()
	s.wireVICMemoryBank()
	if s.CPU != nil {
		s.CPU.Reset()
	}
}

// Run advances the machine by up to budget cycles, per the cooperative
// slice loop in section 5: the host calls Run repeatedly and handles
// events/rendering between calls. It returns early if the CPU jams.
func (s *System) Run(budget uint64) uint64 {
	advanced := s.CPU.Run(budget)
	s.wireVICMemoryBank()
	return advanced
}

// InjectNext copies the next queued program image into RAM and primes
// BASIC's pointers, per component design section 4.9.
func (s *System) InjectNext() {
	s.Injector.InjectNext(s.Bus)
}

// TriggerRestore raises NMI directly, for a host RESTORE/PAUSE hotkey.
func (s *System) TriggerRestore() {
	s.CPU.TriggerNMI()
}

// DumpRAM returns a snapshot of the full 64 KiB RAM image, bypassing bus
// dispatch, for a host F12 "dump RAM" hotkey.
func (s *System) DumpRAM() []byte {
	out := make([]byte, 0x10000)
	for addr := 0; addr < 0x10000; addr++ {
		out[addr] = s.ram.Peek(uint16(addr))
	}
	return out
}

// DisassemblyHistory returns the CPU's recent instruction-start PCs, most
// recent last, for a host F10 "dump history" hotkey.
func (s *System) DisassemblyHistory() []uint16 {
	return s.CPU.History
}

// C64Colors is the standard 16-entry C64 palette, carried over unchanged
// from the teacher's c64.go for c64emu's palette-index-to-RGBA blit.
var C64Colors = []uint32{
	0x000000, // Black
	0xFFFFFF, // White
	0x880000, // Red
	0xAAFFEE, // Cyan
	0xCC44CC, // Purple
	0x00CC55, // Green
	0x0000AA, // Blue
	0xEEEE77, // Yellow
	0xDD8855, // Orange
	0x664400, // Brown
	0xFF7777, // Light red
	0x333333, // Dark grey
	0x777777, // Medium grey
	0xAAFF66, // Light green
	0x0088FF, // Light blue
	0xBBBBBB, // Light grey
}
