package parser_test

import (
	"testing"

	"github.com/c8tools/c8asm/parser"
)

func parse(t *testing.T, input string) []parser.Expression {
	t.Helper()
	lexer := parser.NewLexer(input, "test.c8")
	tokens := lexer.TokenizeAll()
	if lexer.Errors().HasErrors() {
		t.Fatalf("lexer failed: %v", lexer.Errors())
	}
	exprs, err := parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return exprs
}

func parseError(t *testing.T, input string) error {
	t.Helper()
	lexer := parser.NewLexer(input, "test.c8")
	tokens := lexer.TokenizeAll()
	if lexer.Errors().HasErrors() {
		t.Fatalf("lexer failed: %v", lexer.Errors())
	}
	_, err := parser.NewParser(tokens).Parse()
	if err == nil {
		t.Fatalf("input %q: expected a parse error", input)
	}
	return err
}

func TestParser_LabelExpression(t *testing.T) {
	exprs := parse(t, "start\n")

	if len(exprs) != 1 {
		t.Fatalf("expected 1 expression, got %d", len(exprs))
	}
	if exprs[0].First().Type != parser.TokenLabel || exprs[0].First().Literal != "start" {
		t.Errorf("expected label expression, got %v", exprs[0].Tokens)
	}
}

func TestParser_LabelWithInstructionIsTwoExpressions(t *testing.T) {
	exprs := parse(t, "loop  JP #loop\n")

	if len(exprs) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(exprs))
	}
	if exprs[0].First().Type != parser.TokenLabel {
		t.Errorf("expected first expression to be a label, got %v", exprs[0].First().Type)
	}
	if exprs[1].First().Type != parser.TokenInstruction {
		t.Errorf("expected second expression to be an instruction, got %v", exprs[1].First().Type)
	}
}

func TestParser_CommasAreDiscarded(t *testing.T) {
	exprs := parse(t, "  LD V0, $FF\n  DRW V0, V1, $F\n  db 1, 2, 3\n")

	for _, expr := range exprs {
		for _, tok := range expr.Tokens {
			if tok.Type == parser.TokenComma {
				t.Errorf("comma leaked into expression %v", expr.Tokens)
			}
		}
	}

	if len(exprs[0].Tokens) != 3 {
		t.Errorf("LD: expected 3 tokens, got %d", len(exprs[0].Tokens))
	}
	if len(exprs[1].Tokens) != 4 {
		t.Errorf("DRW: expected 4 tokens, got %d", len(exprs[1].Tokens))
	}
	if len(exprs[2].Tokens) != 4 {
		t.Errorf("db: expected 4 tokens, got %d", len(exprs[2].Tokens))
	}
}

func TestParser_DirectiveArguments(t *testing.T) {
	exprs := parse(t, "  org $200\n  db $01 $02 $03\n")

	if len(exprs) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(exprs))
	}

	org := exprs[0]
	if org.First().Literal != "org" || len(org.Operands()) != 1 {
		t.Errorf("org: unexpected expression %v", org.Tokens)
	}
	if org.Operands()[0].Value != 0x200 {
		t.Errorf("org: expected value 0x200, got %#x", org.Operands()[0].Value)
	}

	db := exprs[1]
	if db.First().Literal != "db" || len(db.Operands()) != 3 {
		t.Errorf("db: unexpected expression %v", db.Tokens)
	}
}

func TestParser_InstructionOperandShapes(t *testing.T) {
	tests := []struct {
		input    string
		operands int
	}{
		{"  CLS\n", 0},
		{"  RET\n", 0},
		{"  JP $200\n", 1},
		{"  JP #loop\n", 1},
		{"  SKP V0\n", 1},
		{"  LD V0, $FF\n", 2},
		{"  LD I, #data\n", 2},
		{"  ADD V0 V1\n", 2}, // comma is optional
		{"  DRW V0, V1, $F\n", 3},
	}

	for _, tt := range tests {
		exprs := parse(t, tt.input)
		if len(exprs) != 1 {
			t.Errorf("input %q: expected 1 expression, got %d", tt.input, len(exprs))
			continue
		}
		if got := len(exprs[0].Operands()); got != tt.operands {
			t.Errorf("input %q: expected %d operands, got %d", tt.input, tt.operands, got)
		}
	}
}

func TestParser_Failures(t *testing.T) {
	tests := []string{
		"  DRW V0, V1, V2, V3\n", // too many operands
		"  LD V0, V1, V2\n",      // third operand only for DRW
		"  org\n",                // directive without argument
		"  org V0\n",             // directive with register argument
		"  ,\n",                  // expression cannot start with a comma
		"  JP V0 #x\n",           // label operand in second position
	}

	for _, input := range tests {
		parseError(t, input)
	}
}

func TestParser_NoTrailingNewline(t *testing.T) {
	exprs := parse(t, "  org $200\n  CLS")

	if len(exprs) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(exprs))
	}
	if exprs[1].First().Literal != "CLS" {
		t.Errorf("expected CLS, got %q", exprs[1].First().Literal)
	}
}

func TestExpression_String(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  LD V0, $FF\n", "LD V0, $FF"},
		{"  CLS\n", "CLS"},
		{"  DRW V0, V1, $F\n", "DRW V0, V1, $F"},
		{"  org $200\n", "org $200"},
		{"start\n", "start"},
	}

	for _, tt := range tests {
		exprs := parse(t, tt.input)
		if got := exprs[0].String(); got != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
