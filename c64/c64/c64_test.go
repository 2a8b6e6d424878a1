package c64

import (
	"testing"

	"github.com/abandt/retroc64/c64/inject"
	"github.com/stretchr/testify/assert"
)

func fixtureROMs() ROMImages {
	basic := make([]byte, basicSize)
	kernal := make([]byte, kernalSize)
	chargen := make([]byte, chargenSize)
	// Reset vector: start execution at 0x0400, mirroring the end-to-end
	// scenarios in component design section 8.
	kernal[0xFFFC-kernalStart] = 0x00
	kernal[0xFFFD-kernalStart] = 0x04
	return ROMImages{Basic: basic, Kernal: kernal, Chargen: chargen}
}

func TestNewRejectsWrongSizedROMs(t *testing.T) {
	roms := fixtureROMs()
	roms.Basic = roms.Basic[:100]
	_, err := New(roms)
	assert.Error(t, err)
}

func TestResetLoadsPCFromKernalVector(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0400), sys.CPU.PC)
}

func TestLoadImmediateAndTransferScenario(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)

	program := []byte{0xA9, 0x42, 0xAA, 0x8A, 0x85, 0x10, 0x00}
	for i, b := range program {
		sys.Bus.Write(0x0400+uint16(i), b)
	}

	sys.Run(1000)

	assert.Equal(t, uint8(0x42), sys.CPU.A)
	assert.Equal(t, uint8(0x42), sys.CPU.X)
	assert.Equal(t, uint8(0x42), sys.Bus.Read(0x10))
	assert.True(t, sys.CPU.Jammed, "BRK with no IRQ vector set up halts as an unassigned trap here")
}

func TestBankSwitchExposesRAMUnderROMWhenLoramOff(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)

	romByte := sys.Bus.Read(basicStart)
	assert.NotEqual(t, uint8(0xCC), romByte)

	sys.Bus.Write(0x0001, 0x36) // LORAM off
	sys.Bus.Write(basicStart, 0xCC)
	assert.Equal(t, uint8(0xCC), sys.Bus.Read(basicStart), "RAM is now visible and writable")

	sys.Bus.Write(0x0001, 0x37) // LORAM back on
	assert.NotEqual(t, uint8(0xCC), sys.Bus.Read(basicStart), "BASIC ROM shadows the RAM byte again")
}

func TestInjectNextWritesIntoRAMThroughTheBus(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)

	sys.Injector.Add(inject.Image{LoadAddr: 0x0801, Data: []byte{0x01, 0x02, 0x03}})
	sys.InjectNext()

	assert.Equal(t, uint8(0x01), sys.Bus.Read(0x0801))
	assert.Equal(t, uint8('R'), sys.Bus.Read(0x277))
}

func TestKeyboardMatrixReadableThroughCIA1Ports(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)

	sys.Keyboard.Press("A") // row 1, col 2
	sys.CIA1.Write(0xDC02, 0xFF)         // DDRA all output
	sys.CIA1.Write(0xDC00, ^uint8(1<<1)) // strobe row 1 low
	sys.CIA1.Write(0xDC03, 0x00)         // DDRB all input

	cols, ok := sys.CIA1.TryRead(0xDC01)
	assert.True(t, ok)
	assert.Equal(t, uint8(0), cols&(1<<2), "A's column bit reads low while pressed")
}

func TestDumpRAMSnapshotsFullAddressSpace(t *testing.T) {
	sys, err := New(fixtureROMs())
	assert.NoError(t, err)

	sys.Bus.Write(0x0001, 0x36) // expose RAM under BASIC
	sys.Bus.Write(basicStart, 0x99)
	dump := sys.DumpRAM()
	assert.Equal(t, uint8(0x99), dump[basicStart])
}
