package encoder

import (
	"errors"
	"fmt"

	"github.com/c8tools/c8asm/parser"
)

// ErrUnresolvedLabel is returned by EncodeInstruction when an operand
// refers to a label that is not yet in the symbol table. The code
// generator defers such instructions to the second pass.
var ErrUnresolvedLabel = errors.New("unresolved label")

// Encoder converts validated expressions into 16-bit CHIP-8 opcodes.
// Encoding is selected by operand shape: one mnemonic such as LD maps
// to eleven distinct opcodes.
type Encoder struct {
	symbols *SymbolTable
	diags   *parser.ErrorList
}

// NewEncoder creates a new encoder instance. Warnings (operands wider
// than their field) are reported through diags.
func NewEncoder(symbols *SymbolTable, diags *parser.ErrorList) *Encoder {
	return &Encoder{
		symbols: symbols,
		diags:   diags,
	}
}

// EncodeInstruction converts a single instruction expression into an
// opcode. The high byte of the result is emitted first.
func (e *Encoder) EncodeInstruction(expr parser.Expression) (uint16, error) {
	mnemonic := expr.First().Literal

	switch mnemonic {
	case "CLS":
		return 0x00E0, nil
	case "RET":
		return 0x00EE, nil

	case "JP":
		return e.encodeJump(0x1, expr)
	case "JR":
		return e.encodeJump(0xB, expr)
	case "CALL":
		return e.encodeJump(0x2, expr)

	case "SE":
		return e.encodeSkipEqual(0x3, 0x5, expr)
	case "SNE":
		return e.encodeSkipEqual(0x4, 0x9, expr)

	case "OR":
		return e.encodeALU(0x1, expr)
	case "AND":
		return e.encodeALU(0x2, expr)
	case "XOR":
		return e.encodeALU(0x3, expr)
	case "SUB":
		return e.encodeALU(0x5, expr)
	case "SHR":
		return e.encodeALU(0x6, expr)
	case "SUBN":
		return e.encodeALU(0x7, expr)
	case "SHL":
		return e.encodeALU(0xE, expr)

	case "ADD":
		return e.encodeAdd(expr)
	case "LD":
		return e.encodeLoad(expr)

	case "RND":
		return e.encodeRandom(expr)
	case "DRW":
		return e.encodeDraw(expr)

	case "SKP":
		return e.encodeSkipKey(0x9E, expr)
	case "SKNP":
		return e.encodeSkipKey(0xA1, expr)

	default:
		// SYS is lexed for compatibility but has no encoding row.
		return 0, NewEncodingError(expr, fmt.Sprintf("no encoding for mnemonic %s", mnemonic))
	}
}

// regIndex returns the 4-bit index of a general purpose register operand
func (e *Encoder) regIndex(expr parser.Expression, tok parser.Token) (uint16, error) {
	idx, ok := parser.RegisterIndex(tok.Literal)
	if !ok {
		return 0, NewEncodingError(expr,
			fmt.Sprintf("operand %s must be a general purpose register", tok.Literal))
	}
	return uint16(idx), nil
}

// resolveAddr returns the 12-bit address an operand denotes. A label
// operand whose target is undefined yields ErrUnresolvedLabel.
func (e *Encoder) resolveAddr(expr parser.Expression, tok parser.Token) (uint16, error) {
	switch tok.Type {
	case parser.TokenNumber:
		e.warnWide(tok, tok.Value, 12)
		return uint16(tok.Value & 0xFFF), nil
	case parser.TokenLabelOperand:
		addr, ok := e.symbols.Get(tok.Name())
		if !ok {
			return 0, ErrUnresolvedLabel
		}
		return uint16(addr & 0xFFF), nil
	default:
		return 0, NewEncodingError(expr,
			fmt.Sprintf("operand %s is not address-like", tok.Literal))
	}
}

// imm8 returns the low 8 bits of a numeric operand
func (e *Encoder) imm8(tok parser.Token) uint16 {
	e.warnWide(tok, tok.Value, 8)
	return uint16(tok.Value & 0xFF)
}

// imm4 returns the low 4 bits of a numeric operand
func (e *Encoder) imm4(tok parser.Token) uint16 {
	e.warnWide(tok, tok.Value, 4)
	return uint16(tok.Value & 0xF)
}

// warnWide reports a numeric operand that exceeds its field width
func (e *Encoder) warnWide(tok parser.Token, value uint32, bits uint) {
	if e.diags == nil {
		return
	}
	if value>>bits != 0 {
		e.diags.AddWarning(&parser.Warning{
			Pos:     tok.Pos,
			Message: fmt.Sprintf("operand %s exceeds its %d-bit field and is truncated", tok.Literal, bits),
		})
	}
}

// encodeJump handles JP (1nnn), CALL (2nnn) and JR (Bnnn)
func (e *Encoder) encodeJump(op uint16, expr parser.Expression) (uint16, error) {
	target := expr.Operands()[0]
	nnn, err := e.resolveAddr(expr, target)
	if err != nil {
		return 0, err
	}
	return op<<12 | nnn, nil
}

// encodeSkipEqual handles SE (3xnn / 5xy0) and SNE (4xnn / 9xy0)
func (e *Encoder) encodeSkipEqual(immOp, regOp uint16, expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	x, err := e.regIndex(expr, ops[0])
	if err != nil {
		return 0, err
	}

	if ops[1].Type == parser.TokenNumber {
		return immOp<<12 | x<<8 | e.imm8(ops[1]), nil
	}

	y, err := e.regIndex(expr, ops[1])
	if err != nil {
		return 0, err
	}
	return regOp<<12 | x<<8 | y<<4, nil
}

// encodeALU handles the 8xyN register-register family
func (e *Encoder) encodeALU(fn uint16, expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	x, err := e.regIndex(expr, ops[0])
	if err != nil {
		return 0, err
	}
	y, err := e.regIndex(expr, ops[1])
	if err != nil {
		return 0, err
	}
	return 0x8<<12 | x<<8 | y<<4 | fn, nil
}

// encodeAdd dispatches ADD by operand shape:
// Vx, Vy -> 8xy4; Vx, nn -> 7xnn; I, Vx -> Fx1E
func (e *Encoder) encodeAdd(expr parser.Expression) (uint16, error) {
	ops := expr.Operands()

	if parser.IsGeneralPurposeRegister(ops[0].Literal) {
		x, err := e.regIndex(expr, ops[0])
		if err != nil {
			return 0, err
		}
		if ops[1].Type == parser.TokenNumber {
			return 0x7<<12 | x<<8 | e.imm8(ops[1]), nil
		}
		y, err := e.regIndex(expr, ops[1])
		if err != nil {
			return 0, err
		}
		return 0x8<<12 | x<<8 | y<<4 | 0x4, nil
	}

	if ops[0].Literal == "I" && ops[1].Type == parser.TokenRegister {
		x, err := e.regIndex(expr, ops[1])
		if err != nil {
			return 0, err
		}
		return 0xF<<12 | x<<8 | 0x1E, nil
	}

	return 0, NewEncodingError(expr, "no encoding for this ADD operand shape")
}

// encodeLoad dispatches LD by operand shape, selecting one of its
// eleven encodings.
func (e *Encoder) encodeLoad(expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	dst, src := ops[0], ops[1]

	if parser.IsGeneralPurposeRegister(dst.Literal) {
		x, err := e.regIndex(expr, dst)
		if err != nil {
			return 0, err
		}

		switch {
		case src.Type == parser.TokenNumber:
			return 0x6<<12 | x<<8 | e.imm8(src), nil
		case parser.IsGeneralPurposeRegister(src.Literal):
			y, err := e.regIndex(expr, src)
			if err != nil {
				return 0, err
			}
			return 0x8<<12 | x<<8 | y<<4, nil
		case src.Literal == "DT":
			return 0xF<<12 | x<<8 | 0x07, nil
		case src.Literal == "K":
			return 0xF<<12 | x<<8 | 0x0A, nil
		case src.Literal == "[I]":
			return 0xF<<12 | x<<8 | 0x65, nil
		default:
			return 0, NewEncodingError(expr,
				fmt.Sprintf("no encoding for LD %s, %s", dst.Literal, src.Literal))
		}
	}

	// Destination is a special register
	if dst.Literal == "I" {
		nnn, err := e.resolveAddr(expr, src)
		if err != nil {
			if errors.Is(err, ErrUnresolvedLabel) {
				return 0, err
			}
			return 0, NewEncodingError(expr,
				fmt.Sprintf("no encoding for LD I, %s", src.Literal))
		}
		return 0xA<<12 | nnn, nil
	}

	if src.Type != parser.TokenRegister || !parser.IsGeneralPurposeRegister(src.Literal) {
		return 0, NewEncodingError(expr,
			fmt.Sprintf("no encoding for LD %s, %s", dst.Literal, src.Literal))
	}

	x, err := e.regIndex(expr, src)
	if err != nil {
		return 0, err
	}

	switch dst.Literal {
	case "DT":
		return 0xF<<12 | x<<8 | 0x15, nil
	case "ST":
		return 0xF<<12 | x<<8 | 0x18, nil
	case "F":
		return 0xF<<12 | x<<8 | 0x29, nil
	case "B":
		return 0xF<<12 | x<<8 | 0x33, nil
	case "[I]":
		return 0xF<<12 | x<<8 | 0x55, nil
	default:
		return 0, NewEncodingError(expr,
			fmt.Sprintf("no encoding for LD %s, %s", dst.Literal, src.Literal))
	}
}

// encodeRandom handles RND Vx, nn (Cxnn)
func (e *Encoder) encodeRandom(expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	x, err := e.regIndex(expr, ops[0])
	if err != nil {
		return 0, err
	}
	return 0xC<<12 | x<<8 | e.imm8(ops[1]), nil
}

// encodeDraw handles DRW Vx, Vy, n (Dxyn)
func (e *Encoder) encodeDraw(expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	x, err := e.regIndex(expr, ops[0])
	if err != nil {
		return 0, err
	}
	y, err := e.regIndex(expr, ops[1])
	if err != nil {
		return 0, err
	}
	return 0xD<<12 | x<<8 | y<<4 | e.imm4(ops[2]), nil
}

// encodeSkipKey handles SKP (Ex9E) and SKNP (ExA1)
func (e *Encoder) encodeSkipKey(fn uint16, expr parser.Expression) (uint16, error) {
	ops := expr.Operands()
	x, err := e.regIndex(expr, ops[0])
	if err != nil {
		return 0, err
	}
	return 0xE<<12 | x<<8 | fn, nil
}
