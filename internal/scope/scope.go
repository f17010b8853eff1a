// Package scope implements the lexical scope chain used during type
// inference (spec.md §3.4). A scope maps a Name's textual identity to a
// type term, with an optional parent; lookups walk outward until a
// binding is found or the chain is exhausted.
//
// Grounded on the teacher's internal/semantic.Scope/PassContext
// parent-chain pattern, adapted from case-insensitive Pascal identifiers
// to this language's plain (case-sensitive) names, and from a
// scope-stack-on-a-context shape to a scope value threaded explicitly by
// the caller — the equation generator (internal/infer) owns the
// current *Scope the way the teacher's PassContext owns ScopeStack, but
// without the global mutable stack, since each compilation's inferer
// already carries its own state (spec.md §9 redesign note on explicit
// per-compilation state).
package scope

import (
	"github.com/cwbudde/livyc/internal/token"
	"github.com/cwbudde/livyc/internal/types"
)

// Scope is one lexical level: a set of bindings plus a link to the
// enclosing scope. The zero value is not usable; construct with [New] or
// [Root].
type Scope struct {
	bindings map[string]types.Type
	parent   *Scope
}

// New pushes a fresh, empty scope on top of parent. Pushed on entry to a
// Block, a Function's body, or a Define with an inline body (spec.md
// §3.4).
func New(parent *Scope) *Scope {
	return &Scope{bindings: make(map[string]types.Type), parent: parent}
}

// Root returns a fresh top-level scope pre-populated with the default
// operator types (spec.md §3.4): each operator name is bound to a
// generalized function type, e.g. `+ : forall a. a -> a -> a`.
func Root() *Scope {
	s := New(nil)
	for name, build := range defaultOperatorTypes {
		s.Define(name, build(token.Zero))
	}
	return s
}

// Define binds name to t in this scope, shadowing any binding of the
// same name in an enclosing scope.
func (s *Scope) Define(name string, t types.Type) {
	s.bindings[name] = t
}

// Lookup searches this scope only, not its parents.
func (s *Scope) Lookup(name string) (types.Type, bool) {
	t, ok := s.bindings[name]
	return t, ok
}

// Resolve searches this scope and every enclosing scope, innermost
// first, returning the first match.
func (s *Scope) Resolve(name string) (types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.bindings[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Parent returns the enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// binaryOpType builds the monomorphic scheme `operand -> operand ->
// result`, a building block for the default operator type table.
func binaryOpType(operand, result func(token.Span) *types.GenericType) func(token.Span) types.Type {
	return func(span token.Span) types.Type {
		a := operand(span)
		return types.Generalize(&types.FuncType{
			Sp:   span,
			Left: a,
			Right: &types.FuncType{
				Sp:    span,
				Left:  a,
				Right: result(span),
			},
		})
	}
}

// numericBinaryOpType builds the generalized scheme `forall a (numeric).
// a -> a -> result(a)`, used for the arithmetic and comparison operators
// (spec.md §3.4: operators "accept only numeric types", enforced by
// directly unifying with Int/Float where applicable). a is minted with
// [types.Counter.FreshNumeric], so it unifies successfully only against
// Int, Float, or another numeric variable; both operand positions share
// the same a, so the two operands of one call must still agree with
// each other (3 + 1.0 does not type-check) even though either may be
// Int or Float. Generalizing over a means every call site instantiates
// its own independent copy, the same let-polymorphism mechanism
// internal/infer relies on for ordinary bindings.
func numericBinaryOpType(result func(token.Span, types.Type) types.Type) func(token.Span) types.Type {
	return func(span token.Span) types.Type {
		counter := types.NewCounter()
		a := counter.FreshNumeric(span)
		fn := &types.FuncType{
			Sp:   span,
			Left: a,
			Right: &types.FuncType{
				Sp:    span,
				Left:  a,
				Right: result(span, a),
			},
		}
		return types.Generalize(fn)
	}
}

func sameAsOperand(_ token.Span, operand types.Type) types.Type { return operand }
func boolResult(span token.Span, _ types.Type) types.Type      { return types.Bool(span) }

// defaultOperatorTypes gives the generalized type scheme for every
// built-in operator name, seeded into the root scope (spec.md §3.4).
// Arithmetic and comparison operators are numeric-restricted (Int or
// Float per call, see numericBinaryOpType); `<>` (string join) is
// monomorphic over String, `=` is polymorphic over any type, and `~` is
// unary, so these three are built separately.
var defaultOperatorTypes = map[string]func(token.Span) types.Type{
	"+":  numericBinaryOpType(sameAsOperand),
	"-":  numericBinaryOpType(sameAsOperand),
	"*":  numericBinaryOpType(sameAsOperand),
	"/":  numericBinaryOpType(sameAsOperand),
	"^":  numericBinaryOpType(sameAsOperand),
	"%":  numericBinaryOpType(sameAsOperand),
	"<":  numericBinaryOpType(boolResult),
	">":  numericBinaryOpType(boolResult),
	"<>": binaryOpType(types.String, types.String),
	"~": func(span token.Span) types.Type {
		counter := types.NewCounter()
		a := counter.FreshNumeric(span)
		return types.Generalize(&types.FuncType{Sp: span, Left: a, Right: a})
	},
	"=": func(span token.Span) types.Type {
		counter := types.NewCounter()
		a := counter.Fresh(span)
		fn := &types.FuncType{Sp: span, Left: a, Right: &types.FuncType{Sp: span, Left: a, Right: types.Bool(span)}}
		return types.Generalize(fn)
	},
}
