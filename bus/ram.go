package bus

// RAM is a flat byte array (up to 64 KiB) claiming a contiguous span. Reset fills
// the span with FillByte (0x00 for C64 RAM, unlike the BASIC/KERNAL source
// material this was distilled from, which used 0xFF).
type RAM struct {
	Start, End uint16
	FillByte   uint8
	data       []uint8
}

// NewRAM creates a RAM device covering [start,end] inclusive.
func NewRAM(start, end uint16, fill uint8) *RAM {
	r := &RAM{Start: start, End: end, FillByte: fill}
	r.data = make([]uint8, int(end)-int(start)+1)
	r.Reset()
	return r
}

func (r *RAM) inRange(addr uint16) bool {
	return addr >= r.Start && addr <= r.End
}

func (r *RAM) TryRead(addr uint16) (uint8, bool) {
	if !r.inRange(addr) {
		return 0, false
	}
	return r.data[addr-r.Start], true
}

func (r *RAM) Write(addr uint16, value uint8) string {
	if !r.inRange(addr) {
		return ""
	}
	r.data[addr-r.Start] = value
	return ""
}

func (r *RAM) Reset() {
	for i := range r.data {
		r.data[i] = r.FillByte
	}
}

// Peek/Poke give direct access for program injection and test fixtures,
// bypassing dispatch (useful before the device is wired onto a Bus, or for
// snapshotting by a renderer that should not pay claim-scan overhead).
func (r *RAM) Peek(addr uint16) uint8 {
	if !r.inRange(addr) {
		return 0
	}
	return r.data[addr-r.Start]
}

func (r *RAM) Poke(addr uint16, value uint8) {
	if !r.inRange(addr) {
		return
	}
	r.data[addr-r.Start] = value
}
