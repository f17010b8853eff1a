package codegen

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/lowered"
)

func TestGenerateScalarsAndName(t *testing.T) {
	tree := &lowered.Block{Body: []lowered.Expression{
		&lowered.Define{Target: &lowered.Name{Text: "x"}, Value: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(1)}},
		&lowered.Name{Text: "x"},
	}}
	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []Instruction{
		{Op: OpLoadInt, A: 1},
		{Op: OpStoreName, A: 1},
		{Op: OpLoadName, A: 0, B: 1},
	}
	assertInstructions(t, mod.Instructions, want)
}

func TestGenerateUnresolvedNameFails(t *testing.T) {
	tree := &lowered.Block{Body: []lowered.Expression{&lowered.Name{Text: "nope"}}}
	if _, err := Generate(tree); err == nil {
		t.Fatalf("expected an error for an unresolved name")
	}
}

func TestGenerateCond(t *testing.T) {
	tree := &lowered.Cond{
		Pred: &lowered.Scalar{Kind: ast.ScalarBool, Value: true},
		Cons: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(1)},
		Else: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(2)},
	}
	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []Instruction{
		{Op: OpLoadBool, A: 1},
		{Op: OpBranch, A: 2},
		{Op: OpLoadInt, A: 1},
		{Op: OpJump, A: 1},
		{Op: OpLoadInt, A: 2},
	}
	assertInstructions(t, mod.Instructions, want)
}

func TestGenerateNativeOperandsEmitRightToLeft(t *testing.T) {
	tree := &lowered.NativeOperation{
		Op:    lowered.OpSub,
		Left:  &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(10)},
		Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(3)},
	}
	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []Instruction{
		{Op: OpLoadInt, A: 3},
		{Op: OpLoadInt, A: 10},
		{Op: OpNative, A: int64(lowered.OpSub)},
	}
	assertInstructions(t, mod.Instructions, want)
}

func TestGenerateCallEmitsArgsThenCallee(t *testing.T) {
	tree := &lowered.FuncCall{
		Func: &lowered.Name{Text: "f"},
		Args: []lowered.Expression{
			&lowered.Scalar{Kind: ast.ScalarInt, Value: int64(1)},
			&lowered.Scalar{Kind: ast.ScalarInt, Value: int64(2)},
		},
	}
	root := &lowered.Block{Body: []lowered.Expression{
		&lowered.Define{Target: &lowered.Name{Text: "f"}, Value: &lowered.Function{
			Params: []*lowered.Name{{Text: "a"}, {Text: "b"}},
			Body:   &lowered.Name{Text: "a"},
		}},
		tree,
	}}
	mod, err := Generate(root)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []Instruction{
		{Op: OpLoadFunc, A: 0},
		{Op: OpStoreName, A: 1},
		{Op: OpLoadInt, A: 1},
		{Op: OpLoadInt, A: 2},
		{Op: OpLoadName, A: 0, B: 1},
		{Op: OpCall, A: 2},
	}
	assertInstructions(t, mod.Instructions, want)
	if len(mod.Functions) != 1 {
		t.Fatalf("Functions = %d, want 1", len(mod.Functions))
	}
	// The function's own first parameter resolves at depth 1 from its
	// body, since genFunction pushes a param scope and a body scope.
	wantBody := []Instruction{{Op: OpLoadName, A: 1, B: 0}}
	assertInstructions(t, mod.Functions[0], wantBody)
}

func TestGenerateStringAddsToPool(t *testing.T) {
	tree := &lowered.Block{Body: []lowered.Expression{
		&lowered.Scalar{Kind: ast.ScalarString, Value: "hi"},
		&lowered.Scalar{Kind: ast.ScalarString, Value: "hi"},
	}}
	mod, err := Generate(tree)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(mod.Strings) != 2 {
		t.Fatalf("Strings = %v, want two entries (one per occurrence)", mod.Strings)
	}
	want := []Instruction{
		{Op: OpLoadString, A: 0},
		{Op: OpLoadString, A: 1},
	}
	assertInstructions(t, mod.Instructions, want)
}

// TestGenerateCollatzS1 pins the instruction dump of a two-function,
// Collatz-style program modelled on spec.md §8's scenario S1. It
// exercises the package doc's implementation-defined choices
// (NativeOperation operand order, scope slot numbering, Cond's
// BRANCH/JUMP offsets).
func TestGenerateCollatzS1(t *testing.T) {
	// let collatz = \n -> if n % 2 = 0 then n / 2 else n * 3 + 1
	// let step = \n -> collatz n
	// step
	collatzParam := &lowered.Name{Text: "n"}
	collatz := &lowered.Function{
		Params: []*lowered.Name{collatzParam},
		Body: &lowered.Cond{
			Pred: &lowered.NativeOperation{
				Op:   lowered.OpEqual,
				Left: &lowered.NativeOperation{Op: lowered.OpMod, Left: &lowered.Name{Text: "n"}, Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(2)}},
				Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(0)},
			},
			Cons: &lowered.NativeOperation{Op: lowered.OpDiv, Left: &lowered.Name{Text: "n"}, Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(2)}},
			Else: &lowered.NativeOperation{
				Op:   lowered.OpAdd,
				Left: &lowered.NativeOperation{Op: lowered.OpMul, Left: &lowered.Name{Text: "n"}, Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(3)}},
				Right: &lowered.Scalar{Kind: ast.ScalarInt, Value: int64(1)},
			},
		},
	}
	step := &lowered.Function{
		Params: []*lowered.Name{{Text: "n"}},
		Body: &lowered.FuncCall{
			Func: &lowered.Name{Text: "collatz"},
			Args: []lowered.Expression{&lowered.Name{Text: "n"}},
		},
	}
	program := &lowered.Block{Body: []lowered.Expression{
		&lowered.Define{Target: &lowered.Name{Text: "collatz"}, Value: collatz},
		&lowered.Define{Target: &lowered.Name{Text: "step"}, Value: step},
		&lowered.Name{Text: "step"},
	}}

	mod, err := Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(mod.Functions) != 2 {
		t.Fatalf("Functions = %d, want 2", len(mod.Functions))
	}

	var dump string
	for _, in := range mod.Instructions {
		dump += in.String() + "\n"
	}
	dump += "--- collatz ---\n"
	for _, in := range mod.Functions[0] {
		dump += in.String() + "\n"
	}
	dump += "--- step ---\n"
	for _, in := range mod.Functions[1] {
		dump += in.String() + "\n"
	}
	snaps.MatchSnapshot(t, dump)
}

func assertInstructions(t *testing.T, got, want []Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("instruction count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("instruction %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOpcodeStringUnknown(t *testing.T) {
	var unknown Opcode = 200
	if unknown.String() != "UNKNOWN" {
		t.Fatalf("String() = %q, want UNKNOWN", unknown.String())
	}
	got := fmt.Sprintf("%s", OpLoadFloat)
	if got != "LOAD_FLOAT" {
		t.Fatalf("String() = %q, want LOAD_FLOAT", got)
	}
}
