package encoder

// CHIP-8 memory model constants
const (
	// MemorySize is the flat address space of the machine
	MemorySize = 4096

	// LoadAddress is where the interpreter loads programs
	LoadAddress = 0x200

	// OpcodeSize is the width of every encoded instruction in bytes
	OpcodeSize = 2

	// MaxAddress is the largest valid byte address
	MaxAddress = MemorySize - 1
)
