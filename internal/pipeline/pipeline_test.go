package pipeline

import (
	"testing"

	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/token"
)

func span() token.Span { return token.Span{} }

// program builds `let x = 1 in x` as a single top-level block, the
// smallest tree that exercises every phase Run wires together.
func program() *ast.Block {
	target := &ast.Name{Sp: span(), Text: "x"}
	value := &ast.Scalar{Sp: span(), Kind: ast.ScalarInt, Value: int64(1)}
	body := &ast.Name{Sp: span(), Text: "x"}
	def := &ast.Define{Sp: span(), Target: target, Value: value, Body: body}
	return &ast.Block{Sp: span(), Body: []ast.Expression{def}}
}

func TestRunProducesBytecode(t *testing.T) {
	result, err := Run(program(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Halted {
		t.Fatalf("Run halted unexpectedly: %+v", result.Halt)
	}
	if len(result.Bytecode) == 0 {
		t.Fatalf("Run produced no bytecode")
	}
	if string(result.Bytecode[:2]) != "M:" {
		t.Fatalf("bytecode does not start with a header: %q", result.Bytecode[:2])
	}
}

func TestRunShowASTHalts(t *testing.T) {
	result, err := Run(program(), Options{ShowAST: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Halted {
		t.Fatalf("expected Run to halt for ShowAST")
	}
	if result.Halt.Phase != "ast" {
		t.Fatalf("Halt.Phase = %q, want %q", result.Halt.Phase, "ast")
	}
}

func TestRunShowTypesHalts(t *testing.T) {
	result, err := Run(program(), Options{ShowTypes: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Halted {
		t.Fatalf("expected Run to halt for ShowTypes")
	}
	if result.Halt.Phase != "types" {
		t.Fatalf("Halt.Phase = %q, want %q", result.Halt.Phase, "types")
	}
}

func TestRunUnboundNameFails(t *testing.T) {
	bad := &ast.Block{Sp: span(), Body: []ast.Expression{
		&ast.Name{Sp: span(), Text: "undefined"},
	}}
	if _, err := Run(bad, Options{}); err == nil {
		t.Fatalf("expected an error for an unbound name")
	}
}

func TestRunRespectsCompressAndLibMode(t *testing.T) {
	plain, err := Run(program(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	compressed, err := Run(program(), Options{Compress: true})
	if err != nil {
		t.Fatalf("Run (compressed): %v", err)
	}
	if len(compressed.Bytecode) == 0 {
		t.Fatalf("compressed Run produced no bytecode")
	}
	libMode, err := Run(program(), Options{LibMode: true})
	if err != nil {
		t.Fatalf("Run (lib mode): %v", err)
	}
	if libMode.Bytecode[2] != 0xff {
		t.Fatalf("lib mode byte = %#x, want 0xff", libMode.Bytecode[2])
	}
	if plain.Bytecode[2] != 0x00 {
		t.Fatalf("non-lib mode byte = %#x, want 0x00", plain.Bytecode[2])
	}
}
