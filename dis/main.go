package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abandt/retroc64/bus"
	"github.com/abandt/retroc64/dis/disassembler"
)

func main() {
	// Command line flags
	inputFile := flag.String("i", "", "Input binary file")
	startAddr := flag.String("a", "", "Start address")
	flag.Parse()

	addrStr := *startAddr
	if strings.HasPrefix(addrStr, "$") {
		addrStr = "0x" + addrStr[1:]
	}
	startAddrInt, err := strconv.ParseUint(addrStr, 0, 16)
	if err != nil {
		fmt.Printf("Error parsing start address: %v\n", err)
		return
	}

	b, length, err := loadBinary(*inputFile, int(startAddrInt))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(disassembler.DisassembleMemory(b, int(startAddrInt), length))
}

// loadBinary wraps the file contents in a flat 64KiB RAM bus starting at
// startAddr, for feeding to the disassembler.
func loadBinary(filename string, startAddr int) (*bus.Bus, int, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read binary file: %v", err)
	}
	if startAddr+len(data) > 0x10000 {
		return nil, 0, fmt.Errorf("binary file too large for available memory")
	}

	ram := bus.NewRAM(0x0000, 0xFFFF, 0x00)
	b := bus.New()
	b.Register(ram, true)
	for i, v := range data {
		ram.Poke(uint16(startAddr+i), v)
	}

	return b, len(data), nil
}
