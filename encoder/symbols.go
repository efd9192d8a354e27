package encoder

import (
	"fmt"
	"sort"

	"github.com/c8tools/c8asm/parser"
)

// Symbol represents a defined label
type Symbol struct {
	Name    string
	Address uint32
	Pos     parser.Position
}

// SymbolTable maps label names to the byte address at which each was
// defined. A label may be defined at most once per program.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
	}
}

// Define inserts a label at the given address. Defining the same name
// twice is an error.
func (st *SymbolTable) Define(name string, address uint32, pos parser.Position) error {
	if sym, exists := st.symbols[name]; exists {
		return fmt.Errorf("label %q already defined at %s", name, sym.Pos)
	}

	st.symbols[name] = &Symbol{
		Name:    name,
		Address: address,
		Pos:     pos,
	}
	return nil
}

// Lookup returns the symbol for name, if defined
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}

// Get returns the address of name, if defined
func (st *SymbolTable) Get(name string) (uint32, bool) {
	sym, exists := st.symbols[name]
	if !exists {
		return 0, false
	}
	return sym.Address, true
}

// Len returns the number of defined symbols
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// All returns every symbol sorted by name
func (st *SymbolTable) All() []*Symbol {
	syms := make([]*Symbol, 0, len(st.symbols))
	for _, sym := range st.symbols {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Name < syms[j].Name
	})
	return syms
}
