// Package resolver implements the type-variable resolver (spec.md
// §4.2): it walks the surface AST, finds every user-written type
// annotation, and canonicalizes textually identical annotation names to
// the same fresh [types.TypeVar] within a single annotation scope.
// Different scopes mint distinct variables even for the same spelling.
// This pass performs no inference; it only produces a lookup table the
// equation generator ([internal/infer]) consults when it encounters an
// annotated [ast.Name].
//
// A `Define`'s value establishes a fresh annotation scope; every
// annotation textually inside that value (including the parameter
// annotations of any curried Function it contains, since currying keeps
// a whole surface signature in one Value subtree) shares it. A
// `Define`'s body, if present, gets its own fresh scope, since it is a
// separate expression. This boundary is a resolved Open Question: the
// surface grammar's exact annotation syntax and scoping rule are
// parser-specific and out of scope (spec.md §4.2); see DESIGN.md.
package resolver

import (
	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/types"
)

// Resolution maps each annotation node to its canonicalized type term.
// internal/infer's equation generator (Generator) consults this table instead of re-deriving
// type terms from TypeExpr itself.
type Resolution map[*ast.TypeExpr]types.Type

// Resolve walks tree and returns the resolution table for every
// annotation it finds.
func Resolve(tree ast.Expression, counter *types.Counter) Resolution {
	res := Resolution{}
	walk(tree, map[string]*types.TypeVar{}, counter, res)
	return res
}

func walk(n ast.Expression, env map[string]*types.TypeVar, counter *types.Counter, res Resolution) {
	switch node := n.(type) {
	case *ast.Name:
		if node.Annotation != nil {
			resolveAnnotation(node.Annotation, env, counter, res)
		}
	case *ast.Scalar:
		// no annotations possible
	case *ast.Vector:
		for _, e := range node.Elements {
			walk(e, env, counter, res)
		}
	case *ast.Cond:
		walk(node.Pred, env, counter, res)
		walk(node.Cons, env, counter, res)
		walk(node.Else, env, counter, res)
	case *ast.Function:
		walk(node.Param, env, counter, res)
		walk(node.Body, env, counter, res)
	case *ast.FuncCall:
		walk(node.Caller, env, counter, res)
		walk(node.Callee, env, counter, res)
	case *ast.Define:
		valueEnv := map[string]*types.TypeVar{}
		walk(node.Target, valueEnv, counter, res)
		walk(node.Value, valueEnv, counter, res)
		if node.Body != nil {
			bodyEnv := map[string]*types.TypeVar{}
			walk(node.Body, bodyEnv, counter, res)
		}
	case *ast.Block:
		for _, e := range node.Body {
			if d, ok := e.(*ast.Define); ok {
				walk(d, env, counter, res)
				continue
			}
			walk(e, env, counter, res)
		}
	}
}

// resolveAnnotation records the resolved type for expr and, recursively,
// for every nested type-expression argument, reusing env's existing
// TypeVar for any name already seen in this scope.
func resolveAnnotation(expr *ast.TypeExpr, env map[string]*types.TypeVar, counter *types.Counter, res Resolution) types.Type {
	if len(expr.Args) == 0 && isTypeVarName(expr.Name) {
		v, ok := env[expr.Name]
		if !ok {
			v = counter.Fresh(expr.Sp)
			env[expr.Name] = v
		}
		res[expr] = v
		return v
	}
	args := make([]types.Type, len(expr.Args))
	for i, a := range expr.Args {
		args[i] = resolveAnnotation(a, env, counter, res)
	}
	t := &types.GenericType{Sp: expr.Sp, Base: expr.Name, Args: args}
	res[expr] = t
	return t
}

// isTypeVarName applies the conventional ML rule: a lowercase leading
// letter names a type variable, an uppercase one names a constructor
// (Int, Bool, List, a user type, ...).
func isTypeVarName(name string) bool {
	return len(name) > 0 && name[0] >= 'a' && name[0] <= 'z'
}
