package expander

import (
	"os"
	"testing"

	"github.com/cwbudde/livyc/internal/ast"
)

func expandOne(s string) string {
	scalar := &ast.Scalar{Kind: ast.ScalarString, Value: s}
	out := Expand(scalar).(*ast.Scalar)
	return out.Value.(string)
}

// TestExpandPlainStringIsIdentity covers spec.md §8 property 6: a string
// with no backslash expands to itself.
func TestExpandPlainStringIsIdentity(t *testing.T) {
	for _, s := range []string{"", "hello", "hello world", "1 2 3 collatz"} {
		if got := expandOne(s); got != s {
			t.Fatalf("expandOne(%q) = %q, want identity", s, got)
		}
	}
}

func TestExpandNamedEscapes(t *testing.T) {
	cases := map[string]string{
		`\n`:     "\n",
		`\t`:     "\t",
		`\\`:     `\`,
		`\"`:     `"`,
		`a\nb`:   "a\nb",
		`\a\b\f`: "\a\b\f",
	}
	for in, want := range cases {
		if got := expandOne(in); got != want {
			t.Fatalf("expandOne(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandPathSeparatorEscape(t *testing.T) {
	want := string(os.PathSeparator)
	if got := expandOne(`\/`); got != want {
		t.Fatalf("expandOne(%q) = %q, want %q", `\/`, got, want)
	}
}

func TestExpandHexEscapes(t *testing.T) {
	if got := expandOne(`\41`); got != "A" {
		t.Fatalf("one-byte hex escape: got %q, want %q", got, "A")
	}
	if got := expandOne("\\u0041"); got != "A" {
		t.Fatalf("two-byte hex escape: got %q, want %q", got, "A")
	}
	if got := expandOne(`\U000041`); got != "A" {
		t.Fatalf("three-byte hex escape: got %q, want %q", got, "A")
	}
}

func TestExpandUnrecognizedEscapeIsLeftAlone(t *testing.T) {
	if got := expandOne(`\q`); got != `\q` {
		t.Fatalf("expandOne(%q) = %q, want it left untouched", `\q`, got)
	}
}

// TestExpandRecursesThroughStructure checks that non-string nodes are
// reconstructed with their shape intact and every nested string scalar
// expanded, including inside a Define's Value and Body.
func TestExpandRecursesThroughStructure(t *testing.T) {
	tree := &ast.Block{Body: []ast.Expression{
		&ast.Define{
			Target: &ast.Name{Text: "greeting"},
			Value:  &ast.Scalar{Kind: ast.ScalarString, Value: `hi\tthere`},
			Body: &ast.Cond{
				Pred: &ast.Scalar{Kind: ast.ScalarBool, Value: true},
				Cons: &ast.Name{Text: "greeting"},
				Else: &ast.Scalar{Kind: ast.ScalarString, Value: `bye\n`},
			},
		},
	}}
	got := Expand(tree).(*ast.Block)
	def := got.Body[0].(*ast.Define)
	if def.Value.(*ast.Scalar).Value.(string) != "hi\tthere" {
		t.Fatalf("Value not expanded: %#v", def.Value)
	}
	cond := def.Body.(*ast.Cond)
	if cond.Else.(*ast.Scalar).Value.(string) != "bye\n" {
		t.Fatalf("Body's nested string not expanded: %#v", cond.Else)
	}
	if cond.Cons.(*ast.Name).Text != "greeting" {
		t.Fatalf("Name node was not passed through unchanged: %#v", cond.Cons)
	}
}
