// Package infer implements the Hindley-Milner type inferer (spec.md
// §4.4): three sub-passes run in order over the surface AST — Insert
// assigns every node a fresh type variable, Generate walks the
// annotated tree accumulating type equations, and Substitute performs
// the final traversal that replaces every node's type with its fully
// solved form (re-generalizing at Define and Function boundaries so the
// resulting typed AST carries the right schemes).
//
// Grounded on original_source/hasdrubal/type_inferer.py's three visitor
// classes (_Inserter, _EquationGenerator, _Substitutor), translated from
// visitor-dispatch into type switches to match this module's style.
//
// One deliberate correction from the original: at a Define, this
// package binds the scope entry for target directly to the generalized
// value type (target.SetType(generalized)) rather than leaving target
// bound to its own independent, never-generalized fresh variable. The
// original's _EquationGenerator.visit_define stores
// `target.type_` (always a bare TypeVar, since only `value.type_` is
// reassigned to the scheme) in current_scope, which means every later
// use of the name is equated against that bare var rather than against
// the TypeScheme — collapsing let-polymorphism to a single monomorphic
// instantiation shared across all uses, and so failing spec.md §8's
// explicit `let id = \x -> x in (id 1, id "a")` property. Binding the
// scope entry to the already-generalized type instead lets
// internal/types.Unify's existing instantiate-both-operands behavior
// mint an independent fresh instantiation at every use site, which is
// the standard and correct let-polymorphism construction. See
// DESIGN.md.
//
// A second correction: the original's visit_define types value under
// the scope current at the Define, which does not yet bind target, so
// a self-referencing value (`let x = x x`) fails as an unbound name
// rather than reaching Unify's occurs check. This package instead types
// Value under a child scope that already binds target to its own
// pre-generalization fresh var, so self-reference resolves and
// unification is what rejects the recursive value (spec.md §8 property
// 2). See DESIGN.md.
package infer

import (
	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/compileerr"
	"github.com/cwbudde/livyc/internal/resolver"
	"github.com/cwbudde/livyc/internal/scope"
	"github.com/cwbudde/livyc/internal/types"
)

// Insert walks tree, assigning every node a fresh TypeVar as its Type
// (spec.md §4.4.1). Function nodes receive a FuncType over their own
// param's and body's (also freshly assigned) vars; a List Vector
// receives GenericType(List, [fresh]); a Tuple Vector receives a bare
// fresh var, its structure generated later by Generate.
func Insert(n ast.Expression, counter *types.Counter) {
	switch node := n.(type) {
	case *ast.Scalar:
		node.SetType(counter.Fresh(node.Sp))
	case *ast.Name:
		node.SetType(counter.Fresh(node.Sp))
	case *ast.Vector:
		for _, e := range node.Elements {
			Insert(e, counter)
		}
		if node.Kind == ast.VectorList {
			elem := counter.Fresh(node.Sp)
			node.SetType(&types.GenericType{Sp: node.Sp, Base: "List", Args: []types.Type{elem}})
		} else {
			node.SetType(counter.Fresh(node.Sp))
		}
	case *ast.Cond:
		Insert(node.Pred, counter)
		Insert(node.Cons, counter)
		Insert(node.Else, counter)
		node.SetType(counter.Fresh(node.Sp))
	case *ast.Function:
		Insert(node.Param, counter)
		Insert(node.Body, counter)
		node.SetType(&types.FuncType{Sp: node.Sp, Left: node.Param.GetType(), Right: node.Body.GetType()})
	case *ast.FuncCall:
		Insert(node.Caller, counter)
		Insert(node.Callee, counter)
		node.SetType(counter.Fresh(node.Sp))
	case *ast.Define:
		Insert(node.Target, counter)
		Insert(node.Value, counter)
		if node.Body != nil {
			Insert(node.Body, counter)
		}
		node.SetType(counter.Fresh(node.Sp))
	case *ast.Block:
		for _, e := range node.Body {
			Insert(e, counter)
		}
		node.SetType(counter.Fresh(node.Sp))
	}
}

// Generator accumulates the type equations produced by walking the
// inserted tree (spec.md §4.4.2).
type Generator struct {
	counter    *types.Counter
	resolution resolver.Resolution
	equations  []types.Equation
	mono       []types.Type // enclosing Function params' types, never generalized
}

// NewGenerator returns a Generator sharing counter with the rest of this
// compilation and consulting resolution (from internal/resolver) for
// any user-written annotations it encounters; resolution may be nil if
// no annotations are in use.
func NewGenerator(counter *types.Counter, resolution resolver.Resolution) *Generator {
	return &Generator{counter: counter, resolution: resolution}
}

// Generate walks tree under root (normally [scope.Root]) and returns
// the accumulated equations, or the first unbound-name error found.
func (g *Generator) Generate(tree ast.Expression, root *scope.Scope) ([]types.Equation, error) {
	if err := g.visit(tree, root); err != nil {
		return nil, err
	}
	return g.equations, nil
}

func (g *Generator) push(eqs ...types.Equation) {
	g.equations = append(g.equations, eqs...)
}

func (g *Generator) visit(n ast.Expression, sc *scope.Scope) error {
	switch node := n.(type) {
	case *ast.Scalar:
		g.push(types.Equation{Left: node.Type, Right: &types.GenericType{Sp: node.Sp, Base: node.Kind.TypeName()}})
		return nil

	case *ast.Name:
		t, ok := sc.Resolve(node.Text)
		if !ok {
			return compileerr.UnboundName(node.Sp, node.Text)
		}
		g.push(types.Equation{Left: node.Type, Right: t})
		if node.Annotation != nil && g.resolution != nil {
			if annotated, ok := g.resolution[node.Annotation]; ok {
				g.push(types.Equation{Left: node.Type, Right: annotated})
			}
		}
		return nil

	case *ast.Vector:
		for _, e := range node.Elements {
			if err := g.visit(e, sc); err != nil {
				return err
			}
		}
		if node.Kind == ast.VectorList {
			gt := node.Type.(*types.GenericType)
			elemVar := gt.Args[0]
			for _, e := range node.Elements {
				g.push(types.Equation{Left: e.GetType(), Right: elemVar})
			}
			return nil
		}
		elemTypes := make([]types.Type, len(node.Elements))
		for i, e := range node.Elements {
			elemTypes[i] = e.GetType()
		}
		if len(elemTypes) == 0 {
			g.push(types.Equation{Left: node.Type, Right: types.Unit(node.Sp)})
		} else {
			g.push(types.Equation{Left: node.Type, Right: types.Tuple(node.Sp, elemTypes)})
		}
		return nil

	case *ast.Cond:
		if err := g.visit(node.Pred, sc); err != nil {
			return err
		}
		if err := g.visit(node.Cons, sc); err != nil {
			return err
		}
		if err := g.visit(node.Else, sc); err != nil {
			return err
		}
		g.push(
			types.Equation{Left: node.Pred.GetType(), Right: types.Bool(node.Pred.Span())},
			types.Equation{Left: node.Type, Right: node.Cons.GetType()},
			types.Equation{Left: node.Type, Right: node.Else.GetType()},
		)
		return nil

	case *ast.Function:
		inner := scope.New(sc)
		inner.Define(node.Param.Text, node.Param.GetType())
		g.mono = append(g.mono, node.Param.GetType())
		defer func() { g.mono = g.mono[:len(g.mono)-1] }()
		if err := g.visit(node.Body, inner); err != nil {
			return err
		}
		actual := &types.FuncType{Sp: node.Sp, Left: node.Param.GetType(), Right: node.Body.GetType()}
		g.push(types.Equation{Left: node.Type, Right: actual})
		return nil

	case *ast.FuncCall:
		if err := g.visit(node.Caller, sc); err != nil {
			return err
		}
		if err := g.visit(node.Callee, sc); err != nil {
			return err
		}
		actual := &types.FuncType{Sp: node.Sp, Left: node.Callee.GetType(), Right: node.Type}
		g.push(types.Equation{Left: node.Caller.GetType(), Right: actual})
		return nil

	case *ast.Define:
		// Value is typed under a scope that already sees target bound to
		// its own (pre-generalization) fresh var, so a self-reference
		// inside Value resolves instead of failing as unbound and can
		// reach Unify's occurs check (spec.md §8 property 2, e.g. `let x
		// = x x`). The binding lives in a throwaway child scope, not sc
		// itself, so it doesn't leak into whatever follows this Define
		// when Body is present.
		valueScope := scope.New(sc)
		valueScope.Define(node.Target.Text, node.Target.GetType())
		if err := g.visit(node.Value, valueScope); err != nil {
			return err
		}
		sub, err := types.Solve(g.equations, g.counter)
		if err != nil {
			return err
		}
		generalized := types.Generalize(types.Substitute(node.Value.GetType(), sub))
		if scheme, ok := generalized.(*types.TypeScheme); ok {
			for _, m := range g.mono {
				for id := range types.FreeVars(types.Substitute(m, sub)) {
					delete(scheme.Bound, id)
				}
			}
		}
		node.Value.SetType(generalized)
		node.Target.SetType(generalized)
		if prior, ok := sc.Lookup(node.Target.Text); ok {
			target, name, span := node.Target.GetType(), node.Target.Text, node.Target.Sp
			g.push(types.Equation{
				Left:  target,
				Right: prior,
				OnMismatch: func(types.Type, types.Type) error {
					return compileerr.Redefinition(span, name)
				},
			})
		}
		// A top-level Define (no Body) IS its binding: the node's own type
		// is the bound value's type. A let-in Define (Body present) is an
		// expression whose type is whatever Body evaluates to — the
		// binding itself only threads through scope, so Body's type, not
		// Value's, is what node.Type must equate to here.
		if node.Body == nil {
			g.push(types.Equation{Left: node.Type, Right: node.Value.GetType()})
			sc.Define(node.Target.Text, node.Target.GetType())
			return nil
		}
		inner := scope.New(sc)
		inner.Define(node.Target.Text, node.Target.GetType())
		if err := g.visit(node.Body, inner); err != nil {
			return err
		}
		g.push(types.Equation{Left: node.Type, Right: node.Body.GetType()})
		return nil

	case *ast.Block:
		inner := scope.New(sc)
		var last ast.Expression
		for _, e := range node.Body {
			if err := g.visit(e, inner); err != nil {
				return err
			}
			last = e
		}
		g.push(types.Equation{Left: node.Type, Right: last.GetType()})
		return nil
	}
	return nil
}

// Substitute performs the final traversal: every node's Type is
// replaced by its fully-applied form under sub, and Define/Function
// nodes are re-generalized so the typed AST carries the right schemes
// (spec.md §4.4.5).
func Substitute(n ast.Expression, sub types.Substitution) {
	switch node := n.(type) {
	case *ast.Scalar:
		node.SetType(types.Substitute(node.Type, sub))
	case *ast.Name:
		node.SetType(types.Substitute(node.Type, sub))
	case *ast.Vector:
		for _, e := range node.Elements {
			Substitute(e, sub)
		}
		node.SetType(types.Substitute(node.Type, sub))
	case *ast.Cond:
		Substitute(node.Pred, sub)
		Substitute(node.Cons, sub)
		Substitute(node.Else, sub)
		node.SetType(types.Substitute(node.Type, sub))
	case *ast.Function:
		Substitute(node.Param, sub)
		Substitute(node.Body, sub)
		node.SetType(types.Generalize(types.Substitute(node.Type, sub)))
	case *ast.FuncCall:
		Substitute(node.Caller, sub)
		Substitute(node.Callee, sub)
		node.SetType(types.Substitute(node.Type, sub))
	case *ast.Define:
		Substitute(node.Target, sub)
		Substitute(node.Value, sub)
		if node.Body != nil {
			Substitute(node.Body, sub)
		}
		node.SetType(types.Generalize(types.Substitute(node.Type, sub)))
	case *ast.Block:
		for _, e := range node.Body {
			Substitute(e, sub)
		}
		node.SetType(types.Substitute(node.Type, sub))
	}
}

// Infer runs all three sub-passes over tree in place and returns the
// closed substitution they produced, or the first error encountered
// (unbound name, occurs check, or type mismatch).
func Infer(tree ast.Expression, counter *types.Counter, resolution resolver.Resolution) (types.Substitution, error) {
	Insert(tree, counter)
	gen := NewGenerator(counter, resolution)
	equations, err := gen.Generate(tree, scope.Root())
	if err != nil {
		return nil, err
	}
	sub, err := types.Solve(equations, counter)
	if err != nil {
		return nil, err
	}
	Substitute(tree, sub)
	return sub, nil
}
