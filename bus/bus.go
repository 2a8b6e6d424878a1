// Package bus implements the shared address space devices attach to: an
// ordered list of claim-based readers and fan-out writers, modeled after a
// real C64's bus plus PLA-driven bank switching.
package bus

// Device is the capability interface every bus participant implements.
// TryRead signals "not mine" by returning ok=false rather than a sentinel
// byte value, so a device that legitimately returns 0 is distinguished
// from one that claims nothing only by the bool.
type Device interface {
	// TryRead attempts to satisfy a read at addr. ok is false if this
	// device does not own addr.
	TryRead(addr uint16) (value uint8, ok bool)
	// Write offers a write at addr to the device. If the device rejects
	// the write (e.g. a ROM), it returns a non-empty fault message.
	Write(addr uint16, value uint8) (fault string)
	// Reset returns the device to its post-power-on state.
	Reset()
}

// Handle identifies a registered device for SetEnabled/Find.
type Handle int

type entry struct {
	device         Device
	enabled        bool
	defaultEnabled bool
}

// FaultFunc receives a fault message and the PC at the time of the fault.
// It is invoked synchronously from Write; it must not panic.
type FaultFunc func(pc uint16, message string)

// Bus is the ordered device aggregation described in component design
// section 4.1: first-claim-wins reads, fan-out writes, two breakpoint sets.
type Bus struct {
	devices []entry

	// PC mirrors the CPU's program counter so fault reports carry context
	// without the bus needing a back-reference to the CPU.
	PC uint16

	FaultSink FaultFunc

	ReadBreakpoints  map[uint16]bool
	WriteBreakpoints map[uint16]bool

	// OnReadBreakpoint and OnWriteBreakpoint fire when an access lands on
	// an address present in the corresponding breakpoint set (component
	// design section 4.1, "two breakpoint sets ... are consulted"). Both
	// are optional; a front end wires them to its own debug UI.
	OnReadBreakpoint  func(addr uint16)
	OnWriteBreakpoint func(addr uint16, value uint8)
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		ReadBreakpoints:  make(map[uint16]bool),
		WriteBreakpoints: make(map[uint16]bool),
	}
}

// Register adds a device at the end of the dispatch order and returns a
// handle for later SetEnabled calls.
func (b *Bus) Register(d Device, defaultEnabled bool) Handle {
	b.devices = append(b.devices, entry{device: d, enabled: defaultEnabled, defaultEnabled: defaultEnabled})
	return Handle(len(b.devices) - 1)
}

// SetEnabled toggles whether a registered device participates in dispatch.
func (b *Bus) SetEnabled(h Handle, enabled bool) {
	if int(h) < 0 || int(h) >= len(b.devices) {
		return
	}
	b.devices[h].enabled = enabled
}

// Enabled reports whether a registered device currently participates.
func (b *Bus) Enabled(h Handle) bool {
	if int(h) < 0 || int(h) >= len(b.devices) {
		return false
	}
	return b.devices[h].enabled
}

// Read scans devices in registration order and returns the first claimed
// value. An unclaimed read resolves to 0, modeling a floating bus.
func (b *Bus) Read(addr uint16) uint8 {
	if b.ReadBreakpoints[addr] && b.OnReadBreakpoint != nil {
		b.OnReadBreakpoint(addr)
	}
	for _, e := range b.devices {
		if !e.enabled {
			continue
		}
		if value, ok := e.device.TryRead(addr); ok {
			return value
		}
	}
	return 0
}

// Write offers the value to every enabled device in order. Any device that
// rejects the write is routed to the fault sink together with the current
// PC; the write still proceeds to the remaining devices.
func (b *Bus) Write(addr uint16, value uint8) {
	if b.WriteBreakpoints[addr] && b.OnWriteBreakpoint != nil {
		b.OnWriteBreakpoint(addr, value)
	}
	for _, e := range b.devices {
		if !e.enabled {
			continue
		}
		if msg := e.device.Write(addr, value); msg != "" && b.FaultSink != nil {
			b.FaultSink(b.PC, msg)
		}
	}
}

// Reset resets every device and restores default-enabled flags.
func (b *Bus) Reset() {
	for i := range b.devices {
		b.devices[i].enabled = b.devices[i].defaultEnabled
		b.devices[i].device.Reset()
	}
}

// Find returns the first registered device for which match returns true.
func (b *Bus) Find(match func(Device) bool) Device {
	for _, e := range b.devices {
		if match(e.device) {
			return e.device
		}
	}
	return nil
}
