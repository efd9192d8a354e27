package assembler_test

import (
	"bytes"
	"testing"

	"github.com/c8tools/c8asm/assembler"
	"github.com/c8tools/c8asm/parser"
)

func assemble(t *testing.T, src string) *assembler.Result {
	t.Helper()
	result, err := assembler.Assemble([]byte(src), assembler.Options{Filename: "test.c8"})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return result
}

// TestScenarios covers the canonical small programs end to end
func TestScenarios(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []byte
	}{
		{
			"cls",
			"  org $200\n  CLS\n",
			[]byte{0x00, 0xE0},
		},
		{
			"jp absolute",
			"  org $200\n  JP $200\n",
			[]byte{0x12, 0x00},
		},
		{
			"ld and add",
			"  org $200\n  LD V0, $FF\n  ADD V0, V1\n",
			[]byte{0x60, 0xFF, 0x80, 0x14},
		},
		{
			"drw",
			"  org $200\n  DRW V0, V1, $F\n",
			[]byte{0xD0, 0x1F},
		},
		{
			"self loop",
			"  org $200\nloop  JP #loop\n",
			[]byte{0x12, 0x00},
		},
		{
			"load address of data",
			"  org $200\n  LD I, #data\ndata  db $AB\n",
			[]byte{0xA2, 0x02, 0xAB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := assemble(t, tt.src)
			if !bytes.Equal(result.Image, tt.expected) {
				t.Errorf("expected % X, got % X", tt.expected, result.Image)
			}
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	src := "  org $200\n  LD V0, 10\n  db 1, 2, 3\n  RND V1, $0F\n"

	first := assemble(t, src)
	second := assemble(t, src)

	if !bytes.Equal(first.Image, second.Image) {
		t.Error("assembly is not deterministic")
	}
}

func TestAssemble_StageErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind parser.ErrorKind
	}{
		{"lexical", "  LD V0, @bad\n", parser.ErrorLexical},
		{"parse", "  DRW V0, V1, V2, V3\n", parser.ErrorParse},
		{"semantic", "  OR V0, $10\n", parser.ErrorSemantic},
		{"duplicate label", "x\nx\n", parser.ErrorDuplicateLabel},
		{"undefined label", "  JP #gone\n", parser.ErrorUndefinedLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := assembler.Assemble([]byte(tt.src), assembler.Options{Filename: "test.c8"})
			if err == nil {
				t.Fatal("expected an error")
			}
			asmErr, ok := err.(*parser.Error)
			if !ok {
				t.Fatalf("expected *parser.Error, got %T: %v", err, err)
			}
			if asmErr.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, asmErr.Kind)
			}
		})
	}
}

func TestAssemble_InvalidEncodingError(t *testing.T) {
	// SYS passes the validator but has no encoding row
	_, err := assembler.Assemble([]byte("  org $200\n  SYS $200\n"),
		assembler.Options{Filename: "test.c8"})
	if err == nil {
		t.Fatal("expected an encoding error")
	}
}

func TestAssemble_StrictByteRange(t *testing.T) {
	src := "  org $200\n  db $1FF\n"

	if _, err := assembler.Assemble([]byte(src), assembler.Options{}); err != nil {
		t.Fatalf("lenient mode should truncate, got %v", err)
	}

	if _, err := assembler.Assemble([]byte(src), assembler.Options{StrictByteRange: true}); err == nil {
		t.Fatal("strict mode should reject db values over 0xFF")
	}
}

func TestAssemble_Warnings(t *testing.T) {
	result := assemble(t, "  org $200\n  LD V0, $1FF\n")

	if len(result.Warnings) == 0 {
		t.Error("expected a truncation warning")
	}
}

func TestAssemble_EmptySource(t *testing.T) {
	result := assemble(t, "\n\n; nothing but comments\n")

	if len(result.Image) != 0 {
		t.Errorf("expected empty image, got %d bytes", len(result.Image))
	}
	if result.Symbols.Len() != 0 {
		t.Errorf("expected empty symbol table, got %d symbols", result.Symbols.Len())
	}
}

func TestAssemble_LargerProgram(t *testing.T) {
	src := `  org $200
start  CLS
  LD V0, 0
  LD V1, 5
mainloop  ADD V0, 1
  SE V0, V1
  JP #mainloop
  LD I, #sprite
  DRW V2, V3, $5
  CALL #wait
  JP #start
wait  LD V4, K
  RET
sprite  db $F0 $90 $90 $90 $F0
`
	result := assemble(t, src)

	// 12 instructions (24 bytes) + 5 data bytes
	if len(result.Image) != 29 {
		t.Fatalf("expected 29 bytes, got %d", len(result.Image))
	}

	// Entry point: CLS
	if result.Image[0] != 0x00 || result.Image[1] != 0xE0 {
		t.Errorf("expected CLS at entry, got %02X%02X", result.Image[0], result.Image[1])
	}

	// mainloop is at 0x206; the backward JP at 0x20A encodes 0x1206
	if result.Image[0x0A] != 0x12 || result.Image[0x0B] != 0x06 {
		t.Errorf("expected JP #mainloop = 1206, got %02X%02X",
			result.Image[0x0A], result.Image[0x0B])
	}

	// sprite data sits at the end
	if !bytes.Equal(result.Image[24:], []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}) {
		t.Errorf("unexpected sprite bytes % X", result.Image[24:])
	}

	addr, ok := result.Symbols.Get("sprite")
	if !ok || addr != 0x218 {
		t.Errorf("expected sprite at 0x218, got %#x (defined=%v)", addr, ok)
	}
}
