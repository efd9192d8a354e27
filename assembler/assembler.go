// Package assembler drives the CHIP-8 assembly pipeline: it feeds
// source bytes through the lexer, the expression parser, the semantic
// checker and the two-pass code generator, and returns the program
// image. The pipeline is one synchronous call; every stage fails fast
// and no partial output is produced.
package assembler

import (
	"github.com/c8tools/c8asm/encoder"
	"github.com/c8tools/c8asm/parser"
)

// Options configures a single Assemble call
type Options struct {
	// Filename is used in diagnostics only
	Filename string

	// StrictByteRange rejects db values over 0xFF
	StrictByteRange bool
}

// Result holds the output of a successful Assemble call
type Result struct {
	// Image is the program image. Its first byte corresponds to
	// address 0x200 when the source reaches that address, and to
	// address 0 otherwise.
	Image []byte

	// Symbols maps label names to their definition addresses
	Symbols *encoder.SymbolTable

	// SourceMap pairs each expression with the bytes it produced
	SourceMap []encoder.ListingEntry

	// Expressions is the validated expression sequence
	Expressions []parser.Expression

	// Warnings holds non-fatal diagnostics from all stages
	Warnings []*parser.Warning
}

// Assemble turns CHIP-8 assembly source text into a byte image
// suitable for loading at 0x200. The first error from any stage
// aborts assembly.
func Assemble(src []byte, opts Options) (*Result, error) {
	lexer := parser.NewLexer(string(src), opts.Filename)
	tokens := lexer.TokenizeAll()
	if lexer.Errors().HasErrors() {
		return nil, lexer.Errors().First()
	}

	p := parser.NewParser(tokens)
	exprs, err := p.Parse()
	if err != nil {
		return nil, err
	}

	for _, expr := range exprs {
		if serr := parser.CheckSemantics(expr); serr != nil {
			return nil, serr
		}
	}

	gen := encoder.NewCodeGenerator(encoder.Options{
		StrictByteRange: opts.StrictByteRange,
	})
	image, err := gen.Generate(exprs)
	if err != nil {
		return nil, err
	}

	warnings := make([]*parser.Warning, 0)
	warnings = append(warnings, lexer.Errors().Warnings...)
	warnings = append(warnings, p.Errors().Warnings...)
	warnings = append(warnings, gen.Diags().Warnings...)

	return &Result{
		Image:       image,
		Symbols:     gen.Symbols(),
		SourceMap:   gen.SourceMap(),
		Expressions: exprs,
		Warnings:    warnings,
	}, nil
}
