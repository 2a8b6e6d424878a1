// Package sid is a register-storage stub for the 0xD400-0xD7FF SID chip
// window. Audio synthesis is an explicit non-goal (spec overview); this
// exists only so the memory map has something that owns the region and
// behaves like real hardware for register read/write, mirrored every
// 0x20 bytes as on real silicon. Adapted from the teacher's sid.go, which
// modeled voice/filter state for its own (likewise silent) synthesis
// loop — the fields are kept so a future synthesizer has somewhere to
// read from, but nothing drives them from OnClock.
package sid

import "github.com/abandt/retroc64/bus"

const (
	Base     uint16 = 0xD400
	End      uint16 = 0xD7FF
	bankSize        = 0x20
)

type voice struct {
	freqLo, freqHi uint8
	pwLo, pwHi     uint8
	control        uint8
	attackDecay    uint8
	sustainRelease uint8
}

// SID is a bus.Device that stores whatever is written to its 25 writable
// registers ($00-$18). Reads never return the stored values: the write-only
// registers read back as 0, and $19 onwards (including the paddle,
// oscillator and envelope read-back registers) reads 0xFF.
type SID struct {
	voices [3]voice

	filterCutoffLo, filterCutoffHi uint8
	filterResControl               uint8
	modeVolume                     uint8
}

var _ bus.Device = (*SID)(nil)

func New() *SID { return &SID{} }

func (s *SID) Reset() { *s = SID{} }

func (s *SID) inRange(addr uint16) bool { return addr >= Base && addr <= End }

func (s *SID) TryRead(addr uint16) (uint8, bool) {
	if !s.inRange(addr) {
		return 0, false
	}
	reg := (addr - Base) % bankSize
	if reg >= 0x19 {
		return 0xFF, true // envelope/oscillator readback not modeled; unused tail floats high
	}
	return 0, true // write-only registers read back as 0
}

func (s *SID) Write(addr uint16, value uint8) string {
	if !s.inRange(addr) {
		return ""
	}
	reg := (addr - Base) % bankSize
	if reg < 0x15 {
		voiceIdx := reg / 7
		field := reg % 7
		v := &s.voices[voiceIdx]
		switch field {
		case 0:
			v.freqLo = value
		case 1:
			v.freqHi = value
		case 2:
			v.pwLo = value
		case 3:
			v.pwHi = value
		case 4:
			v.control = value
		case 5:
			v.attackDecay = value
		case 6:
			v.sustainRelease = value
		}
		return ""
	}
	switch reg {
	case 0x15:
		s.filterCutoffLo = value
	case 0x16:
		s.filterCutoffHi = value
	case 0x17:
		s.filterResControl = value
	case 0x18:
		s.modeVolume = value
	}
	return ""
}
