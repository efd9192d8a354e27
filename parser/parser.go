package parser

import (
	"fmt"
	"strings"
)

// Expression is an ordered group of tokens representing one logical
// source line: a bare label, a directive with its arguments, or an
// instruction with its operands. Commas never appear in an expression;
// the parser consumes and discards them.
type Expression struct {
	Tokens []Token
}

// First returns the leading token of the expression
func (e Expression) First() Token {
	return e.Tokens[0]
}

// Operands returns the tokens following the leading token
func (e Expression) Operands() []Token {
	return e.Tokens[1:]
}

// Pos returns the source position of the expression
func (e Expression) Pos() Position {
	return e.Tokens[0].Pos
}

// String reconstructs a canonical source form of the expression
func (e Expression) String() string {
	var sb strings.Builder
	sb.WriteString(e.Tokens[0].Literal)
	for i, tok := range e.Tokens[1:] {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(tok.Literal)
	}
	return sb.String()
}

// Parser groups a token stream into an ordered sequence of expressions.
// It is pattern-driven, one line per step.
type Parser struct {
	tokens       []Token
	pos          int
	currentToken Token
	peekToken    Token
	errors       *ErrorList
}

// NewParser creates a parser over a token stream
func NewParser(tokens []Token) *Parser {
	p := &Parser{
		tokens: tokens,
		pos:    0,
		errors: &ErrorList{},
	}

	// Initialize current and peek tokens
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the accumulated error list
func (p *Parser) Errors() *ErrorList {
	return p.errors
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = Token{Type: TokenEOF, Pos: p.currentToken.Pos}
	}
}

// skipNewlines skips newline tokens
func (p *Parser) skipNewlines() {
	for p.currentToken.Type == TokenNewline {
		p.nextToken()
	}
}

// fail records a parse error at the current token
func (p *Parser) fail(message string) {
	// p.pos stops advancing once the peek slot holds the synthesized
	// EOF, so the index is taken from the stream length there
	index := p.pos - 2
	if p.peekToken.Type == TokenEOF {
		index = len(p.tokens) - 1
		if p.currentToken.Type == TokenEOF {
			index = len(p.tokens)
		}
	}
	p.errors.AddError(NewError(p.currentToken.Pos, ErrorParse,
		fmt.Sprintf("%s (token %d)", message, index)))
}

// Parse consumes the token stream and returns the expression sequence.
// A label declaration followed on the same line by an instruction
// yields two expressions: the bare label, then the instruction.
func (p *Parser) Parse() ([]Expression, error) {
	exprs := make([]Expression, 0)

	for p.currentToken.Type != TokenEOF {
		p.skipNewlines()

		if p.currentToken.Type == TokenEOF {
			break
		}

		switch p.currentToken.Type {
		case TokenLabel:
			exprs = append(exprs, Expression{Tokens: []Token{p.currentToken}})
			p.nextToken()
			// The rest of the line, if any, is parsed as its own
			// expression on the next iteration.

		case TokenDirective:
			expr, ok := p.parseDirective()
			if !ok {
				return nil, p.errors.First()
			}
			exprs = append(exprs, expr)

		case TokenInstruction:
			expr, ok := p.parseInstruction()
			if !ok {
				return nil, p.errors.First()
			}
			exprs = append(exprs, expr)

		default:
			p.fail(fmt.Sprintf("expression cannot start with %s", p.currentToken.Type))
			return nil, p.errors.First()
		}
	}

	if p.errors.HasErrors() {
		return nil, p.errors.First()
	}
	return exprs, nil
}

// parseDirective parses a directive and its numeric arguments. Commas
// between arguments are consumed and discarded.
func (p *Parser) parseDirective() (Expression, bool) {
	tokens := []Token{p.currentToken}
	p.nextToken() // consume directive name

	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		if p.currentToken.Type == TokenComma {
			p.nextToken()
			continue
		}
		if p.currentToken.Type != TokenNumber {
			p.fail(fmt.Sprintf("directive %q takes numeric arguments, found %s",
				tokens[0].Literal, p.currentToken.Type))
			return Expression{}, false
		}
		tokens = append(tokens, p.currentToken)
		p.nextToken()
	}

	if len(tokens) == 1 {
		p.fail(fmt.Sprintf("directive %q requires at least one argument", tokens[0].Literal))
		return Expression{}, false
	}

	return Expression{Tokens: tokens}, true
}

// parseInstruction parses a mnemonic and its operands. Commas between
// operands are consumed and discarded. DRW accepts a third operand;
// every other mnemonic accepts at most two.
func (p *Parser) parseInstruction() (Expression, bool) {
	tokens := []Token{p.currentToken}
	mnemonic := p.currentToken.Literal
	p.nextToken() // consume mnemonic

	maxOperands := 2
	if mnemonic == "DRW" {
		maxOperands = MaxOperands
	}

	operands := 0
	for p.currentToken.Type != TokenNewline && p.currentToken.Type != TokenEOF {
		if p.currentToken.Type == TokenComma {
			p.nextToken()
			continue
		}

		if !isOperandToken(p.currentToken.Type) {
			p.fail(fmt.Sprintf("invalid operand for %s: %s", mnemonic, p.currentToken.Type))
			return Expression{}, false
		}
		if operands >= maxOperands {
			p.fail(fmt.Sprintf("too many operands for %s", mnemonic))
			return Expression{}, false
		}
		if operands > 0 && p.currentToken.Type == TokenLabelOperand && mnemonic != "LD" {
			// Only the first operand position accepts a label reference,
			// except LD I, #name.
			p.fail(fmt.Sprintf("label operand not allowed here for %s", mnemonic))
			return Expression{}, false
		}

		tokens = append(tokens, p.currentToken)
		operands++
		p.nextToken()
	}

	return Expression{Tokens: tokens}, true
}

func isOperandToken(t TokenType) bool {
	return t == TokenRegister || t == TokenNumber || t == TokenLabelOperand
}
