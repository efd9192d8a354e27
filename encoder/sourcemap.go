package encoder

import "github.com/c8tools/c8asm/parser"

// ListingEntry pairs one expression with the address and bytes it
// produced. Label and org expressions record an address and no bytes.
type ListingEntry struct {
	Address uint32
	Bytes   []byte
	Expr    parser.Expression
}

// SourceMap records listing entries in source order during generation.
// Entries for deferred instructions are patched on the second pass.
type SourceMap struct {
	entries []ListingEntry
}

// add appends an entry and returns its index for later patching
func (sm *SourceMap) add(entry ListingEntry) int {
	sm.entries = append(sm.entries, entry)
	return len(sm.entries) - 1
}

// patch replaces the bytes of a previously added entry
func (sm *SourceMap) patch(index int, bytes []byte) {
	sm.entries[index].Bytes = bytes
}

// Entries returns the recorded entries in source order
func (sm *SourceMap) Entries() []ListingEntry {
	return sm.entries
}
