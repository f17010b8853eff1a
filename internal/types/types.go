// Package types implements the type terms and substitution machinery of
// the Hindley-Milner inference engine described in spec.md §3.2 and §4.4.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cwbudde/livyc/internal/token"
)

// Type is any one of the four type-term variants: TypeVar, GenericType,
// FuncType, TypeScheme.
type Type interface {
	Span() token.Span
	String() string
	isType()
}

// TypeVar is an unknown type awaiting unification. ID is minted from a
// [Counter] owned by a single compilation; ids are never reused within
// that compilation (spec.md §3.2).
type TypeVar struct {
	Sp token.Span
	ID int
	// Numeric restricts this variable to unify only with Int, Float, or
	// another Numeric variable (spec.md §3.4: the built-in operators
	// "accept only numeric types"). An ordinary TypeVar (Numeric == false)
	// unifies with anything, as usual.
	Numeric bool
}

func (t *TypeVar) Span() token.Span { return t.Sp }
func (t *TypeVar) String() string   { return fmt.Sprintf("t%d", t.ID) }
func (*TypeVar) isType()            {}

// GenericType is a named type constructor applied to zero or more type
// arguments. The constructors "List" and "Tuple" have special status in
// the inferer (spec.md §3.2); everything else (Int, Bool, Float, String,
// Unit, and any user-defined nullary constructor) is opaque to unification
// beyond structural equality of Base and pairwise unification of Args.
type GenericType struct {
	Sp   token.Span
	Base string
	Args []Type
}

func (t *GenericType) Span() token.Span { return t.Sp }
func (*GenericType) isType()            {}
func (t *GenericType) String() string {
	if len(t.Args) == 0 {
		return t.Base
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Base + "(" + strings.Join(parts, ", ") + ")"
}

// FuncType is a function type. Multi-argument surface functions are
// represented right-associatively (spec.md §3.2), mirroring AST currying.
type FuncType struct {
	Sp    token.Span
	Left  Type
	Right Type
}

func (t *FuncType) Span() token.Span { return t.Sp }
func (*FuncType) isType()            {}
func (t *FuncType) String() string {
	return fmt.Sprintf("(%s -> %s)", t.Left.String(), t.Right.String())
}

// TypeScheme is universal quantification over a set of TypeVars. It
// appears only as the type of a generalized let-bound identifier, never
// nested inside another type constructor's arguments (spec.md §3.3,
// invariant 2).
type TypeScheme struct {
	Actual Type
	Bound  map[int]*TypeVar
}

func (t *TypeScheme) Span() token.Span { return t.Actual.Span() }
func (*TypeScheme) isType()            {}
func (t *TypeScheme) String() string {
	ids := make([]int, 0, len(t.Bound))
	for id := range t.Bound {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = fmt.Sprintf("t%d", id)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), t.Actual.String())
}

// Counter mints fresh, compilation-local TypeVar ids. Each compilation
// owns exactly one Counter (spec.md §5: "each compilation owns its own
// counter for fresh TypeVar ids"), which is the redesign spec.md §9 calls
// for in place of the original implementation's module-wide mutable
// counter.
type Counter struct {
	next int
}

// NewCounter returns a Counter starting from id 1 (0 is reserved so the
// zero value of TypeVar is recognizably "no id assigned").
func NewCounter() *Counter {
	return &Counter{next: 0}
}

// Fresh mints a new, unrestricted TypeVar at the given span.
func (c *Counter) Fresh(span token.Span) *TypeVar {
	c.next++
	return &TypeVar{Sp: span, ID: c.next}
}

// FreshNumeric mints a new TypeVar restricted to Int/Float (spec.md
// §3.4), used to build the native arithmetic and comparison operators'
// schemes.
func (c *Counter) FreshNumeric(span token.Span) *TypeVar {
	c.next++
	return &TypeVar{Sp: span, ID: c.next, Numeric: true}
}

// Built-in nullary and unary constructors (spec.md §3.2).

func Bool(span token.Span) *GenericType   { return &GenericType{Sp: span, Base: "Bool"} }
func Int(span token.Span) *GenericType    { return &GenericType{Sp: span, Base: "Int"} }
func Float(span token.Span) *GenericType  { return &GenericType{Sp: span, Base: "Float"} }
func String(span token.Span) *GenericType { return &GenericType{Sp: span, Base: "String"} }
func Unit(span token.Span) *GenericType   { return &GenericType{Sp: span, Base: "Unit"} }

// List builds the distinguished unary List constructor.
func List(span token.Span, elem Type) *GenericType {
	return &GenericType{Sp: span, Base: "List", Args: []Type{elem}}
}

// Tuple builds the distinguished n-ary Tuple constructor. An empty
// argument list is not a valid Tuple; callers must use Unit for `()`
// (spec.md §4.4.2).
func Tuple(span token.Span, elems []Type) *GenericType {
	return &GenericType{Sp: span, Base: "Tuple", Args: elems}
}

// IsEqual reports structural equality of two types up to TypeVar id
// identity (not up to renaming). It ignores spans. Used to detect real
// conflicts during substitution composition (spec.md §4.4.3).
func IsEqual(a, b Type) bool {
	switch av := a.(type) {
	case *TypeVar:
		bv, ok := b.(*TypeVar)
		return ok && av.ID == bv.ID
	case *GenericType:
		bv, ok := b.(*GenericType)
		if !ok || av.Base != bv.Base || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !IsEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *FuncType:
		bv, ok := b.(*FuncType)
		return ok && IsEqual(av.Left, bv.Left) && IsEqual(av.Right, bv.Right)
	case *TypeScheme:
		bv, ok := b.(*TypeScheme)
		if !ok || len(av.Bound) != len(bv.Bound) {
			return false
		}
		for id := range av.Bound {
			if _, ok := bv.Bound[id]; !ok {
				return false
			}
		}
		return IsEqual(av.Actual, bv.Actual)
	default:
		return false
	}
}
