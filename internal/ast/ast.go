// Package ast defines the surface abstract syntax tree produced by the
// (external) parser, per spec.md §3.1. Every node carries a source span
// and, once type inference has run (internal/infer), a resolved
// [types.Type] in its Type field. Before inference runs, Type is nil; the
// typed-AST invariant (spec.md §3.3, invariant 1) is that after inference
// completes Type is never nil and contains no outstanding TypeVar.
//
// The surface AST and the typed AST share exactly this Go representation
// — there is no separate typed-AST struct family, matching spec.md §3.1's
// "structurally identical... but each node additionally carries a type_
// attribute."
package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/livyc/internal/token"
	"github.com/cwbudde/livyc/internal/types"
)

// Node is the interface every AST node implements.
type Node interface {
	Span() token.Span
	String() string
	GetType() types.Type
	SetType(types.Type)
}

// Expression is any node that produces a value. In this language every
// node is an expression; there is no separate statement hierarchy
// (spec.md §3.1).
type Expression interface {
	Node
	exprNode()
}

// ScalarKind tags the literal kind carried by a Scalar node.
type ScalarKind int

const (
	ScalarBool ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarString
)

func (k ScalarKind) TypeName() string {
	switch k {
	case ScalarBool:
		return "Bool"
	case ScalarInt:
		return "Int"
	case ScalarFloat:
		return "Float"
	case ScalarString:
		return "String"
	default:
		return "?"
	}
}

// VectorKind distinguishes list literals from tuple literals.
type VectorKind int

const (
	VectorList VectorKind = iota
	VectorTuple
)

// TypeExpr is a user-written surface type annotation: a name optionally
// applied to further type-expression arguments (e.g. `a` or `List a`).
// The exact annotation grammar is parser-specific and out of scope
// (spec.md §4.2); this is the minimal shape the type-variable resolver
// needs to canonicalize annotation names within a scope. See DESIGN.md.
type TypeExpr struct {
	Sp   token.Span
	Name string
	Args []*TypeExpr
}

// Scalar is a literal of kind Bool, Int, Float, or String.
type Scalar struct {
	Sp    token.Span
	Kind  ScalarKind
	Value any
	Type  types.Type
}

func (n *Scalar) exprNode()            {}
func (n *Scalar) Span() token.Span     { return n.Sp }
func (n *Scalar) GetType() types.Type  { return n.Type }
func (n *Scalar) SetType(t types.Type) { n.Type = t }
func (n *Scalar) String() string       { return fmt.Sprintf("%v", n.Value) }

// Name is an identifier reference. Annotation is non-nil when the surface
// syntax attached an explicit type annotation to this occurrence
// (spec.md §4.2).
type Name struct {
	Sp         token.Span
	Text       string
	Annotation *TypeExpr
	Type       types.Type
}

func (n *Name) exprNode()            {}
func (n *Name) Span() token.Span     { return n.Sp }
func (n *Name) GetType() types.Type  { return n.Type }
func (n *Name) SetType(t types.Type) { n.Type = t }
func (n *Name) String() string       { return n.Text }

// Vector is an ordered sequence, either a List or a Tuple literal.
type Vector struct {
	Sp       token.Span
	Kind     VectorKind
	Elements []Expression
	Type     types.Type
}

func (n *Vector) exprNode()            {}
func (n *Vector) Span() token.Span     { return n.Sp }
func (n *Vector) GetType() types.Type  { return n.Type }
func (n *Vector) SetType(t types.Type) { n.Type = t }
func (n *Vector) String() string {
	parts := make([]string, len(n.Elements))
	for i, e := range n.Elements {
		parts[i] = e.String()
	}
	open, close := "[", "]"
	if n.Kind == VectorTuple {
		open, close = "(", ")"
	}
	return open + strings.Join(parts, ", ") + close
}

// Cond is a conditional expression: if Pred then Cons else Else.
type Cond struct {
	Sp    token.Span
	Pred  Expression
	Cons  Expression
	Else  Expression
	Type  types.Type
}

func (n *Cond) exprNode()            {}
func (n *Cond) Span() token.Span     { return n.Sp }
func (n *Cond) GetType() types.Type  { return n.Type }
func (n *Cond) SetType(t types.Type) { n.Type = t }
func (n *Cond) String() string {
	return fmt.Sprintf("if %s then %s else %s", n.Pred, n.Cons, n.Else)
}

// Function is a single-parameter abstraction. Multi-parameter surface
// syntax is desugared by the parser into right-nested Function nodes
// (currying, spec.md §3.1).
type Function struct {
	Sp    token.Span
	Param *Name
	Body  Expression
	Type  types.Type
}

func (n *Function) exprNode()            {}
func (n *Function) Span() token.Span     { return n.Sp }
func (n *Function) GetType() types.Type  { return n.Type }
func (n *Function) SetType(t types.Type) { n.Type = t }
func (n *Function) String() string {
	return fmt.Sprintf("(\\%s -> %s)", n.Param, n.Body)
}

// FuncCall is single-argument application. Multi-argument surface syntax
// is desugared into left-nested FuncCall nodes (spec.md §3.1).
type FuncCall struct {
	Sp     token.Span
	Caller Expression
	Callee Expression
	Type   types.Type
}

func (n *FuncCall) exprNode()            {}
func (n *FuncCall) Span() token.Span     { return n.Sp }
func (n *FuncCall) GetType() types.Type  { return n.Type }
func (n *FuncCall) SetType(t types.Type) { n.Type = t }
func (n *FuncCall) String() string {
	return fmt.Sprintf("(%s %s)", n.Caller, n.Callee)
}

// Define is a let-binding. Body absent (nil) means a top-level
// (block-statement) definition whose scope extends to the end of its
// enclosing block (spec.md §3.1).
type Define struct {
	Sp     token.Span
	Target *Name
	Value  Expression
	Body   Expression // nil for a top-level definition
	Type   types.Type
}

func (n *Define) exprNode()            {}
func (n *Define) Span() token.Span     { return n.Sp }
func (n *Define) GetType() types.Type  { return n.Type }
func (n *Define) SetType(t types.Type) { n.Type = t }
func (n *Define) String() string {
	if n.Body == nil {
		return fmt.Sprintf("let %s = %s", n.Target, n.Value)
	}
	return fmt.Sprintf("let %s = %s in %s", n.Target, n.Value, n.Body)
}

// Block is a non-empty ordered sequence of expressions; its value is the
// value of its last expression (spec.md §3.1, §3.3 invariant 4).
type Block struct {
	Sp   token.Span
	Body []Expression
	Type types.Type
}

func (n *Block) exprNode()            {}
func (n *Block) Span() token.Span     { return n.Sp }
func (n *Block) GetType() types.Type  { return n.Type }
func (n *Block) SetType(t types.Type) { n.Type = t }
func (n *Block) Last() Expression     { return n.Body[len(n.Body)-1] }
func (n *Block) String() string {
	parts := make([]string, len(n.Body))
	for i, e := range n.Body {
		parts[i] = e.String()
	}
	return strings.Join(parts, "\n")
}
