package encoder

import (
	"errors"
	"fmt"

	"github.com/c8tools/c8asm/parser"
)

// deferredInstruction is an instruction captured on the first pass
// because an operand referred to a label not yet defined. The two-byte
// slot at Address has already been reserved.
type deferredInstruction struct {
	Address  uint32
	Expr     parser.Expression
	MapIndex int
}

// Options controls code generation behavior
type Options struct {
	// StrictByteRange rejects db values over 0xFF instead of
	// truncating them with a warning.
	StrictByteRange bool
}

// CodeGenerator translates validated expressions into the byte image.
// It operates in two sequential passes over the expression list,
// sharing one symbol table and one opcode buffer.
type CodeGenerator struct {
	enc       *Encoder
	symbols   *SymbolTable
	diags     *parser.ErrorList
	image     []byte
	addr      uint32
	highWater uint32
	deferred  []deferredInstruction
	sourceMap SourceMap
	opts      Options
	warnedLow bool
}

// NewCodeGenerator creates a generator with a zeroed 4 KiB image
func NewCodeGenerator(opts Options) *CodeGenerator {
	symbols := NewSymbolTable()
	diags := &parser.ErrorList{}
	return &CodeGenerator{
		enc:     NewEncoder(symbols, diags),
		symbols: symbols,
		diags:   diags,
		image:   make([]byte, MemorySize),
		opts:    opts,
	}
}

// Symbols returns the symbol table populated during generation
func (g *CodeGenerator) Symbols() *SymbolTable {
	return g.symbols
}

// Diags returns warnings accumulated during generation
func (g *CodeGenerator) Diags() *parser.ErrorList {
	return g.diags
}

// SourceMap returns the address/bytes record per expression
func (g *CodeGenerator) SourceMap() []ListingEntry {
	return g.sourceMap.Entries()
}

// Generate runs both passes over the expression list and returns the
// trimmed program image. The first error aborts generation.
func (g *CodeGenerator) Generate(exprs []parser.Expression) ([]byte, error) {
	for _, expr := range exprs {
		if err := g.processExpression(expr); err != nil {
			return nil, err
		}
	}

	// Second pass: revisit deferred instructions in recorded order.
	// Every label they reference must be defined by now.
	for _, d := range g.deferred {
		g.addr = d.Address
		opcode, err := g.enc.EncodeInstruction(d.Expr)
		if err != nil {
			if errors.Is(err, ErrUnresolvedLabel) {
				name := unresolvedLabel(d.Expr, g.symbols)
				return nil, parser.NewError(d.Expr.Pos(), parser.ErrorUndefinedLabel,
					fmt.Sprintf("label %q is never defined", name))
			}
			return nil, err
		}
		g.emitOpcode(opcode)
		g.sourceMap.patch(d.MapIndex, []byte{byte(opcode >> 8), byte(opcode)})
	}

	return g.trim(), nil
}

// processExpression handles one expression on the first pass
func (g *CodeGenerator) processExpression(expr parser.Expression) error {
	switch expr.First().Type {
	case parser.TokenLabel:
		return g.processLabel(expr)
	case parser.TokenDirective:
		return g.processDirective(expr)
	case parser.TokenInstruction:
		return g.processInstruction(expr)
	default:
		return parser.NewError(expr.Pos(), parser.ErrorSemantic,
			fmt.Sprintf("expression cannot start with %s", expr.First().Type))
	}
}

func (g *CodeGenerator) processLabel(expr parser.Expression) error {
	tok := expr.First()
	if err := g.symbols.Define(tok.Literal, g.addr, tok.Pos); err != nil {
		return parser.NewError(tok.Pos, parser.ErrorDuplicateLabel, err.Error())
	}
	g.sourceMap.add(ListingEntry{Address: g.addr, Expr: expr})
	return nil
}

func (g *CodeGenerator) processDirective(expr parser.Expression) error {
	name := expr.First().Literal
	args := expr.Operands()

	switch name {
	case "org":
		target := args[0].Value
		if target > MaxAddress {
			return parser.NewError(args[0].Pos, parser.ErrorSemantic,
				fmt.Sprintf("org address %s exceeds the 4 KiB address space", args[0].Literal))
		}
		g.addr = target
		g.sourceMap.add(ListingEntry{Address: g.addr, Expr: expr})

	case "db":
		entry := ListingEntry{Address: g.addr, Expr: expr}
		for _, arg := range args {
			if arg.Value > 0xFF {
				if g.opts.StrictByteRange {
					return parser.NewError(arg.Pos, parser.ErrorSemantic,
						fmt.Sprintf("db value %s does not fit in a byte", arg.Literal))
				}
				g.diags.AddWarning(&parser.Warning{
					Pos:     arg.Pos,
					Message: fmt.Sprintf("db value %s is truncated to 8 bits", arg.Literal),
				})
			}
			if g.addr > MaxAddress {
				return parser.NewError(arg.Pos, parser.ErrorSemantic,
					"db writes past the end of the 4 KiB address space")
			}
			g.checkLowEmission(arg.Pos)
			g.image[g.addr] = byte(arg.Value)
			entry.Bytes = append(entry.Bytes, byte(arg.Value))
			g.advance(1)
		}
		g.sourceMap.add(entry)
	}

	return nil
}

func (g *CodeGenerator) processInstruction(expr parser.Expression) error {
	if g.addr+1 > MaxAddress {
		return parser.NewError(expr.Pos(), parser.ErrorSemantic,
			"instruction writes past the end of the 4 KiB address space")
	}

	opcode, err := g.enc.EncodeInstruction(expr)
	if err != nil {
		if errors.Is(err, ErrUnresolvedLabel) {
			// Reserve the slot and revisit on the second pass so the
			// addresses of everything that follows stay correct.
			g.checkLowEmission(expr.Pos())
			index := g.sourceMap.add(ListingEntry{Address: g.addr, Expr: expr})
			g.deferred = append(g.deferred, deferredInstruction{
				Address:  g.addr,
				Expr:     expr,
				MapIndex: index,
			})
			g.advance(OpcodeSize)
			return nil
		}
		return err
	}

	g.checkLowEmission(expr.Pos())
	g.sourceMap.add(ListingEntry{
		Address: g.addr,
		Bytes:   []byte{byte(opcode >> 8), byte(opcode)},
		Expr:    expr,
	})
	g.emitOpcode(opcode)
	return nil
}

// emitOpcode writes the two opcode bytes, most significant first, and
// advances the address counter
func (g *CodeGenerator) emitOpcode(opcode uint16) {
	g.image[g.addr] = byte(opcode >> 8)
	g.image[g.addr+1] = byte(opcode)
	g.advance(OpcodeSize)
}

// advance moves the address counter and maintains the high-water mark
func (g *CodeGenerator) advance(n uint32) {
	g.addr += n
	if g.addr > g.highWater {
		g.highWater = g.addr
	}
}

// checkLowEmission warns once when bytes land below the interpreter
// load address; the trim step will discard them for images that reach
// past 0x200.
func (g *CodeGenerator) checkLowEmission(pos parser.Position) {
	if g.warnedLow || g.addr >= LoadAddress {
		return
	}
	g.warnedLow = true
	g.diags.AddWarning(&parser.Warning{
		Pos:     pos,
		Message: fmt.Sprintf("bytes emitted below the interpreter load address 0x%X", LoadAddress),
	})
}

// trim discards everything at or above the high-water mark, then the
// leading 0x200 bytes when the image reaches the load address.
func (g *CodeGenerator) trim() []byte {
	image := g.image[:g.highWater]
	if len(image) >= LoadAddress {
		image = image[LoadAddress:]
	}
	out := make([]byte, len(image))
	copy(out, image)
	return out
}

// unresolvedLabel names the first label operand in expr that is not in
// the symbol table
func unresolvedLabel(expr parser.Expression, symbols *SymbolTable) string {
	for _, tok := range expr.Operands() {
		if tok.Type == parser.TokenLabelOperand {
			if _, ok := symbols.Get(tok.Name()); !ok {
				return tok.Name()
			}
		}
	}
	return ""
}
