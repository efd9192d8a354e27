package parser

import "fmt"

// Operand kinds used by the semantic rules. kindAddr accepts either a
// numeric literal or a label operand.
type operandKind int

const (
	kindReg operandKind = iota
	kindNum
	kindAddr
)

func (k operandKind) String() string {
	switch k {
	case kindReg:
		return "register"
	case kindNum:
		return "numeric literal"
	case kindAddr:
		return "address"
	default:
		return "operand"
	}
}

// semanticRules maps each mnemonic to its acceptable operand patterns.
// An expression is valid if any pattern matches.
var semanticRules = map[string][][]operandKind{
	"CLS":  {{}},
	"RET":  {{}},
	"SYS":  {{kindAddr}},
	"JP":   {{kindAddr}},
	"JR":   {{kindAddr}},
	"CALL": {{kindAddr}},
	"SE":   {{kindReg, kindNum}, {kindReg, kindReg}},
	"SNE":  {{kindReg, kindNum}, {kindReg, kindReg}},
	"LD":   {{kindReg, kindReg}, {kindReg, kindAddr}},
	"OR":   {{kindReg, kindReg}},
	"AND":  {{kindReg, kindReg}},
	"XOR":  {{kindReg, kindReg}},
	"ADD":  {{kindReg, kindReg}, {kindReg, kindNum}},
	"SUB":  {{kindReg, kindReg}},
	"SUBN": {{kindReg, kindReg}},
	"SHR":  {{kindReg, kindReg}},
	"SHL":  {{kindReg, kindReg}},
	"RND":  {{kindReg, kindNum}},
	"DRW":  {{kindReg, kindReg, kindNum}},
	"SKP":  {{kindReg}},
	"SKNP": {{kindReg}},
}

// CheckSemantics validates one expression against the per-mnemonic
// arity and operand-kind table. It is pure: no state is read or
// written beyond the expression itself.
func CheckSemantics(expr Expression) *Error {
	switch expr.First().Type {
	case TokenLabel:
		// Any non-duplicate identifier is valid; duplicates are caught
		// by the symbol table during generation.
		return nil

	case TokenDirective:
		return checkDirective(expr)

	case TokenInstruction:
		return checkInstruction(expr)

	default:
		return NewError(expr.Pos(), ErrorSemantic,
			fmt.Sprintf("expression cannot start with %s", expr.First().Type))
	}
}

func checkDirective(expr Expression) *Error {
	name := expr.First().Literal
	args := expr.Operands()

	for _, arg := range args {
		if arg.Type != TokenNumber {
			return NewError(arg.Pos, ErrorSemantic,
				fmt.Sprintf("directive %q takes numeric arguments, found %s", name, arg.Type))
		}
	}

	switch name {
	case "org":
		if len(args) != 1 {
			return NewError(expr.Pos(), ErrorSemantic,
				fmt.Sprintf("directive \"org\" takes exactly one argument, found %d", len(args)))
		}
	case "db":
		if len(args) < 1 {
			return NewError(expr.Pos(), ErrorSemantic,
				"directive \"db\" requires at least one argument")
		}
	default:
		return NewError(expr.Pos(), ErrorSemantic,
			fmt.Sprintf("unknown directive %q", name))
	}

	return nil
}

func checkInstruction(expr Expression) *Error {
	mnemonic := expr.First().Literal
	operands := expr.Operands()

	patterns, ok := semanticRules[mnemonic]
	if !ok {
		return NewError(expr.Pos(), ErrorSemantic,
			fmt.Sprintf("unknown mnemonic %q", mnemonic))
	}

	for _, pattern := range patterns {
		if matchPattern(pattern, operands) {
			return nil
		}
	}

	// Report the first operand that breaks the closest pattern by
	// arity, or the arity itself if none matches.
	for _, pattern := range patterns {
		if len(pattern) != len(operands) {
			continue
		}
		for i, kind := range pattern {
			if !matchKind(kind, operands[i].Type) {
				return NewError(operands[i].Pos, ErrorSemantic,
					fmt.Sprintf("%s operand %d must be a %s, found %s",
						mnemonic, i+1, kind, operands[i].Type))
			}
		}
	}

	return NewError(expr.Pos(), ErrorSemantic,
		fmt.Sprintf("%s takes %s, found %d operand(s)",
			mnemonic, describeArity(patterns), len(operands)))
}

func matchPattern(pattern []operandKind, operands []Token) bool {
	if len(pattern) != len(operands) {
		return false
	}
	for i, kind := range pattern {
		if !matchKind(kind, operands[i].Type) {
			return false
		}
	}
	return true
}

func matchKind(kind operandKind, t TokenType) bool {
	switch kind {
	case kindReg:
		return t == TokenRegister
	case kindNum:
		return t == TokenNumber
	case kindAddr:
		return t == TokenNumber || t == TokenLabelOperand
	default:
		return false
	}
}

func describeArity(patterns [][]operandKind) string {
	n := len(patterns[0])
	for _, p := range patterns[1:] {
		if len(p) != n {
			return "a different number of operands"
		}
	}
	return fmt.Sprintf("%d operand(s)", n)
}
