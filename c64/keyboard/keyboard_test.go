package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressAssertsColumnBitOnStrobedRow(t *testing.T) {
	m := New()
	m.Press("A") // row 1, col 2 per the canonical table

	strobeRow1 := uint8(0xFF) &^ (1 << 1) // only row 1 selected (active low)
	cols := m.ReadColumns(strobeRow1)
	assert.Equal(t, uint8(0), cols&(1<<2), "A's column bit reads low while pressed")
}

func TestUnstrobedRowNeverAssertsColumn(t *testing.T) {
	m := New()
	m.Press("A") // row 1

	strobeRow0 := uint8(0xFF) &^ (1 << 0) // only row 0 selected, not row 1
	cols := m.ReadColumns(strobeRow0)
	assert.Equal(t, uint8(1<<2), cols&(1<<2), "unstrobed row leaves the column bit high")
}

func TestReleaseClearsAssertion(t *testing.T) {
	m := New()
	m.Press("A")
	m.Release("A")

	strobeRow1 := uint8(0xFF) &^ (1 << 1)
	cols := m.ReadColumns(strobeRow1)
	assert.Equal(t, uint8(1<<2), cols&(1<<2))
}

func TestNoKeysPressedReadsAllHigh(t *testing.T) {
	m := New()
	assert.Equal(t, uint8(0xFF), m.ReadColumns(0x00))
}

func TestUnknownKeyNameIgnored(t *testing.T) {
	m := New()
	m.Press("NOSUCHKEY")
	assert.Equal(t, uint8(0xFF), m.ReadColumns(0x00))
}

func TestRowColumnReciprocity(t *testing.T) {
	m := New()
	m.Press("RETURN") // row 0, col 1
	strobeCol1 := uint8(0xFF) &^ (1 << 1)
	rows := m.ReadRows(strobeCol1)
	assert.Equal(t, uint8(0), rows&(1<<0))
}
