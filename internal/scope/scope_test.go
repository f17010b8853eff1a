package scope

import (
	"testing"

	"github.com/cwbudde/livyc/internal/token"
	"github.com/cwbudde/livyc/internal/types"
)

func TestResolveWalksParentChain(t *testing.T) {
	root := New(nil)
	root.Define("x", types.Int(token.Zero))
	child := New(root)
	child.Define("y", types.Bool(token.Zero))

	if _, ok := child.Lookup("x"); ok {
		t.Fatalf("Lookup should not see the parent's bindings")
	}
	if _, ok := child.Resolve("x"); !ok {
		t.Fatalf("Resolve should walk to the parent and find x")
	}
	if _, ok := child.Resolve("z"); ok {
		t.Fatalf("Resolve found a binding for z that was never defined")
	}
}

func TestDefineShadowsParent(t *testing.T) {
	root := New(nil)
	root.Define("x", types.Int(token.Zero))
	child := New(root)
	child.Define("x", types.Bool(token.Zero))

	got, ok := child.Resolve("x")
	if !ok {
		t.Fatalf("Resolve(x) not found")
	}
	gt, ok := got.(*types.GenericType)
	if !ok || gt.Base != "Bool" {
		t.Fatalf("child's x = %#v, want the shadowing Bool binding", got)
	}
}

func TestRootSeedsOperators(t *testing.T) {
	root := Root()
	for _, op := range []string{"+", "-", "*", "/", "<", ">", "=", "<>"} {
		if _, ok := root.Resolve(op); !ok {
			t.Fatalf("Root() scope has no binding for operator %q", op)
		}
	}
}
