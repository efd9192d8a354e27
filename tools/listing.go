// Package tools provides reporting utilities built on the assembler's
// output: an address/bytes/source listing and a label cross-reference.
package tools

import (
	"fmt"
	"strings"

	"github.com/c8tools/c8asm/encoder"
	"github.com/c8tools/c8asm/parser"
)

// ListingOptions controls listing layout
type ListingOptions struct {
	AddressWidth int // Hex digits in the address column
	BytesColumn  int // Column where the byte dump starts
	SourceColumn int // Column where the source text starts
}

// DefaultListingOptions returns the standard listing layout
func DefaultListingOptions() *ListingOptions {
	return &ListingOptions{
		AddressWidth: 4,
		BytesColumn:  6,
		SourceColumn: 20,
	}
}

// GenerateListing renders a per-expression assembly listing:
// address, emitted bytes, canonical source. Labels and org lines show
// an address and no bytes.
func GenerateListing(entries []encoder.ListingEntry, opts *ListingOptions) string {
	if opts == nil {
		opts = DefaultListingOptions()
	}

	var sb strings.Builder
	for _, entry := range entries {
		line := fmt.Sprintf("%0*X", opts.AddressWidth, entry.Address)
		line = padTo(line, opts.BytesColumn)

		for i, b := range entry.Bytes {
			if i > 0 {
				line += " "
			}
			line += fmt.Sprintf("%02X", b)
		}

		line = padTo(line, opts.SourceColumn)

		source := entry.Expr.String()
		if entry.Expr.First().Type != parser.TokenLabel {
			source = "  " + source
		}
		line += source

		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatSymbols renders the symbol table as a sorted name/address dump
func FormatSymbols(symbols *encoder.SymbolTable) string {
	var sb strings.Builder
	for _, sym := range symbols.All() {
		sb.WriteString(fmt.Sprintf("%-16s %04X\n", sym.Name, sym.Address))
	}
	return sb.String()
}

func padTo(s string, column int) string {
	if len(s) >= column {
		return s + " "
	}
	return s + strings.Repeat(" ", column-len(s))
}
