package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c8tools/c8asm/encoder"
	"github.com/c8tools/c8asm/parser"
)

// ReferenceType indicates how a label is used
type ReferenceType int

const (
	RefDefinition ReferenceType = iota // Label defined here
	RefJump                            // JP/JR target
	RefCall                            // CALL target
	RefData                            // LD I, #name address reference
)

func (r ReferenceType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefJump:
		return "jump"
	case RefCall:
		return "call"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference represents a single use of a label
type Reference struct {
	Type ReferenceType
	Pos  parser.Position
}

// XrefEntry collects every reference to one label
type XrefEntry struct {
	Name       string
	Address    uint32
	Defined    bool
	References []Reference
}

// BuildXref scans the expression list for label definitions and
// references and returns one entry per label, sorted by name.
func BuildXref(exprs []parser.Expression, symbols *encoder.SymbolTable) []*XrefEntry {
	entries := make(map[string]*XrefEntry)

	get := func(name string) *XrefEntry {
		if e, ok := entries[name]; ok {
			return e
		}
		e := &XrefEntry{Name: name}
		entries[name] = e
		return e
	}

	for _, expr := range exprs {
		first := expr.First()

		if first.Type == parser.TokenLabel {
			e := get(first.Literal)
			e.References = append(e.References, Reference{Type: RefDefinition, Pos: first.Pos})
			if addr, ok := symbols.Get(first.Literal); ok {
				e.Address = addr
				e.Defined = true
			}
			continue
		}

		refType := referenceType(first.Literal)
		for _, tok := range expr.Operands() {
			if tok.Type != parser.TokenLabelOperand {
				continue
			}
			e := get(tok.Name())
			e.References = append(e.References, Reference{Type: refType, Pos: tok.Pos})
		}
	}

	sorted := make([]*XrefEntry, 0, len(entries))
	for _, e := range entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func referenceType(mnemonic string) ReferenceType {
	switch mnemonic {
	case "CALL":
		return RefCall
	case "LD":
		return RefData
	default:
		return RefJump
	}
}

// FormatXref renders a cross-reference report
func FormatXref(entries []*XrefEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.Defined {
			sb.WriteString(fmt.Sprintf("%s (%04X)\n", e.Name, e.Address))
		} else {
			sb.WriteString(fmt.Sprintf("%s (undefined)\n", e.Name))
		}
		for _, ref := range e.References {
			sb.WriteString(fmt.Sprintf("    %-10s %s\n", ref.Type, ref.Pos))
		}
	}
	return sb.String()
}
