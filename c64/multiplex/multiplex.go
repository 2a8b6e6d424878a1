// Package multiplex composites the I/O devices sharing the 0xD000-0xDFFF
// chip-select region (VIC-II, the two CIAs, SID, Color RAM) behind a single
// bus.Device, per component design section 4.8. It is a miniature version
// of bus.Bus's own first-claim-wins/fan-out dispatch, grounded on that same
// package rather than the teacher (the teacher's c64/memory.Manager baked
// I/O dispatch directly into its giant Read/Write switch; this pulls that
// concern out into its own composable device).
package multiplex

import "github.com/abandt/retroc64/bus"

// Multiplex is itself a bus.Device: it claims the 0xD000-0xDFFF region as
// a whole from the outer bus, then re-dispatches within it to whichever
// member device owns the specific address.
type Multiplex struct {
	start, end uint16
	members    []bus.Device
}

// New creates a Multiplex covering [start, end] inclusive. Members are
// scanned in the order they're added; the first to claim a read wins, and
// every member sees each write.
func New(start, end uint16) *Multiplex {
	return &Multiplex{start: start, end: end}
}

// Add appends a device to the dispatch order.
func (m *Multiplex) Add(d bus.Device) {
	m.members = append(m.members, d)
}

func (m *Multiplex) inRange(addr uint16) bool {
	return addr >= m.start && addr <= m.end
}

func (m *Multiplex) TryRead(addr uint16) (uint8, bool) {
	if !m.inRange(addr) {
		return 0, false
	}
	for _, d := range m.members {
		if value, ok := d.TryRead(addr); ok {
			return value, true
		}
	}
	return 0, false
}

func (m *Multiplex) Write(addr uint16, value uint8) string {
	if !m.inRange(addr) {
		return ""
	}
	var fault string
	for _, d := range m.members {
		if msg := d.Write(addr, value); msg != "" && fault == "" {
			fault = msg
		}
	}
	return fault
}

func (m *Multiplex) Reset() {
	for _, d := range m.members {
		d.Reset()
	}
}
