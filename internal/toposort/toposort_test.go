package toposort

import (
	"testing"

	"github.com/cwbudde/livyc/internal/ast"
)

func def(target string, value ast.Expression) *ast.Define {
	return &ast.Define{Target: &ast.Name{Text: target}, Value: value}
}

func nm(text string) *ast.Name { return &ast.Name{Text: text} }

func targets(body []ast.Expression) []string {
	out := make([]string, 0, len(body))
	for _, e := range body {
		if d, ok := e.(*ast.Define); ok {
			out = append(out, d.Target.Text)
		}
	}
	return out
}

// TestSortReordersByDependency covers spec.md §8 property 5: a
// definition always ends up after every other top-level definition its
// value references, regardless of the order they were written in.
func TestSortReordersByDependency(t *testing.T) {
	// b depends on a, written before it; a has no dependency.
	block := &ast.Block{Body: []ast.Expression{
		def("b", nm("a")),
		def("a", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(1)}),
	}}
	got := targets(Sort(block).Body)
	want := []string{"a", "b"}
	if got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

// TestSortIsStableWithinTextualOrder checks that independent definitions
// (no edges between them) keep their original relative order rather than
// being shuffled by the SCC pass.
func TestSortIsStableWithinTextualOrder(t *testing.T) {
	block := &ast.Block{Body: []ast.Expression{
		def("z", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(1)}),
		def("y", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(2)}),
		def("x", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(3)}),
	}}
	got := targets(Sort(block).Body)
	want := []string{"z", "y", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v (unrelated defines must keep textual order)", got, want)
		}
	}
}

// TestSortKeepsCycleInTextualOrder covers the no-sort-failure half of
// property 5: a cycle between sibling Defines (mutual reference) is not
// an error, and the members of the cycle are emitted in their original
// textual order rather than reordered arbitrarily.
func TestSortKeepsCycleInTextualOrder(t *testing.T) {
	block := &ast.Block{Body: []ast.Expression{
		def("odd", nm("even")),
		def("even", nm("odd")),
	}}
	got := targets(Sort(block).Body)
	want := []string{"odd", "even"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v (cyclic group keeps textual order)", got, want)
		}
	}
}

// TestSortPreservesNonDefineInterleaving makes sure a non-Define
// expression sitting between two independent Define runs stays anchored
// to the run that preceded it rather than migrating across the block.
func TestSortPreservesNonDefineInterleaving(t *testing.T) {
	marker := nm("marker")
	block := &ast.Block{Body: []ast.Expression{
		def("b", nm("a")),
		def("a", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(1)}),
		marker,
		def("d", nm("c")),
		def("c", &ast.Scalar{Kind: ast.ScalarInt, Value: int64(2)}),
	}}
	out := Sort(block).Body
	if len(out) != 5 {
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
	if out[2] != marker {
		t.Fatalf("marker moved: out[2] = %#v", out[2])
	}
	firstGroup := targets(out[:2])
	if firstGroup[0] != "a" || firstGroup[1] != "b" {
		t.Fatalf("first group = %v, want [a b]", firstGroup)
	}
	secondGroup := targets(out[3:])
	if secondGroup[0] != "c" || secondGroup[1] != "d" {
		t.Fatalf("second group = %v, want [c d]", secondGroup)
	}
}
