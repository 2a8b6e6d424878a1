// Package keyboard models the C64's 8x8 keyboard matrix and its strobe
// handshake with CIA1's two ports, grounded on the port-duality design in
// component design section 4.6 and the teacher's cia.Port read/DDR model
// (c64/cia/cia.go's getPortAInput/getPortBInput, generalized here into a
// real row/column matrix instead of a hardcoded constant).
package keyboard

// keyNames is the canonical 64-entry key table, row-major (row*8+column),
// matching the C64 keyboard matrix wiring.
var keyNames = [8][8]string{
	{"DELETE", "RETURN", "CURSOR_LR", "F7", "F1", "F3", "F5", "CURSOR_UD"},
	{"3", "W", "A", "4", "Z", "S", "E", "LSHIFT"},
	{"5", "R", "D", "6", "C", "F", "T", "X"},
	{"7", "Y", "G", "8", "B", "H", "U", "V"},
	{"9", "I", "J", "0", "M", "K", "O", "N"},
	{"+", "P", "L", "-", ".", ":", "@", ","},
	{"£", "*", ";", "HOME", "RSHIFT", "=", "^", "/"},
	{"1", "LEFTARROW", "CTRL", "2", "SPACE", "COMMODORE", "Q", "RUNSTOP"},
}

type position struct{ row, col uint8 }

var keyPositions map[string]position

func init() {
	keyPositions = make(map[string]position, 64)
	for row := range keyNames {
		for col, name := range keyNames[row] {
			keyPositions[name] = position{uint8(row), uint8(col)}
		}
	}
}

// Matrix is the 8x8 press-state grid with precomputed collapsed vectors:
// byColumn[c] ORs the row-bits of every pressed key in column c; byRow[r]
// ORs the column-bits of every pressed key in row r.
type Matrix struct {
	pressed  [8][8]bool
	byColumn [8]uint8
	byRow    [8]uint8
}

func New() *Matrix {
	return &Matrix{}
}

// Press marks a named key down. Unknown names are ignored — the host
// key-to-name mapping (c64emu's SDL keycode table) is expected to only
// emit names from the canonical table.
func (m *Matrix) Press(name string) {
	m.setKey(name, true)
}

func (m *Matrix) Release(name string) {
	m.setKey(name, false)
}

func (m *Matrix) setKey(name string, down bool) {
	pos, ok := keyPositions[name]
	if !ok {
		return
	}
	m.pressed[pos.row][pos.col] = down
	m.recomputeVectors()
}

func (m *Matrix) recomputeVectors() {
	m.byColumn = [8]uint8{}
	m.byRow = [8]uint8{}
	for row := uint8(0); row < 8; row++ {
		for col := uint8(0); col < 8; col++ {
			if !m.pressed[row][col] {
				continue
			}
			m.byColumn[col] |= 1 << row
			m.byRow[row] |= 1 << col
		}
	}
}

// ReadColumns returns the active-low column read for the given row strobe
// (active-low bits on rowStrobe select which rows are being scanned, as
// CIA1 port A drives them). Bits for unstrobed rows read high (no key
// asserts them), matching real hardware's open-collector wiring.
func (m *Matrix) ReadColumns(rowStrobe uint8) uint8 {
	var cols uint8
	for row := uint8(0); row < 8; row++ {
		if rowStrobe&(1<<row) == 0 { // active low: this row is selected
			cols |= m.byRow[row]
		}
	}
	return ^cols
}

// ReadRows is the mirror operation for the (uncommon) reversed wiring,
// where port B drives the column strobe and port A reads rows back.
func (m *Matrix) ReadRows(colStrobe uint8) uint8 {
	var rows uint8
	for col := uint8(0); col < 8; col++ {
		if colStrobe&(1<<col) == 0 {
			rows |= m.byColumn[col]
		}
	}
	return ^rows
}
