// Package lowered defines the lowered AST (spec.md §3.1, §4.5): the
// shape produced by the simplifier. Block, Cond, Define, Name, Scalar,
// and Vector reappear with the same shape as internal/ast's nodes,
// declared again here (rather than shared across packages) so this
// package's Expression children are unambiguously lowered-stage nodes;
// FuncCall and Function change shape (arguments and parameters are
// materialized into flat slices instead of curried one-at-a-time
// nesting), and NativeOperation is new: a left-nested FuncCall chain
// whose ultimate callee is a built-in operator name collapses into one
// of these.
//
// Grounded on original_source/hasdrubal/asts/lowered.py, which takes the
// identical approach of re-declaring the unchanged node shapes
// alongside the two that change and the one that is new.
package lowered

import (
	"fmt"
	"strings"

	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/token"
	"github.com/cwbudde/livyc/internal/types"
)

// Expression is any lowered-AST node.
type Expression interface {
	Span() token.Span
	String() string
	GetType() types.Type
	SetType(types.Type)
	exprNode()
}

// NativeOp enumerates the built-in binary and unary operators that
// collapse into a NativeOperation during lowering (spec.md §4.5). The
// numeric assignment is alphabetical by constant name and is fixed at
// compile time for the bytecode's NATIVE operand (spec.md §4.8); it
// must stay in lock-step with whatever table the VM uses to dispatch
// NATIVE, which is why it is declared as a plain, explicit enumeration
// rather than left to derive from iteration order over a map.
type NativeOp int

const (
	OpAdd NativeOp = iota + 1
	OpDiv
	OpEqual
	OpExponent
	OpGreater
	OpJoin
	OpLess
	OpMod
	OpMul
	OpNeg
	OpSub
)

func (op NativeOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpDiv:
		return "/"
	case OpEqual:
		return "="
	case OpExponent:
		return "^"
	case OpGreater:
		return ">"
	case OpJoin:
		return "<>"
	case OpLess:
		return "<"
	case OpMod:
		return "%"
	case OpMul:
		return "*"
	case OpNeg:
		return "~"
	case OpSub:
		return "-"
	default:
		return "?"
	}
}

// IsUnary reports whether op takes a single operand (only negation).
func (op NativeOp) IsUnary() bool { return op == OpNeg }

// NativeOpBySymbol maps an operator's surface spelling to its NativeOp
// code, the table the simplifier (internal/lower) consults when folding
// a FuncCall chain into a NativeOperation.
var NativeOpBySymbol = map[string]NativeOp{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "^": OpExponent,
	"%": OpMod, "<": OpLess, ">": OpGreater, "<>": OpJoin, "=": OpEqual,
	"~": OpNeg,
}

// Scalar reappears unchanged in shape from internal/ast.Scalar.
type Scalar struct {
	Sp    token.Span
	Kind  ast.ScalarKind
	Value any
	Type  types.Type
}

func (n *Scalar) exprNode()            {}
func (n *Scalar) Span() token.Span     { return n.Sp }
func (n *Scalar) GetType() types.Type  { return n.Type }
func (n *Scalar) SetType(t types.Type) { n.Type = t }
func (n *Scalar) String() string       { return fmt.Sprintf("%v", n.Value) }

// Name reappears unchanged in shape from internal/ast.Name, minus the
// surface Annotation field (annotations have already been consumed by
// internal/resolver and internal/infer by the time lowering runs).
type Name struct {
	Sp   token.Span
	Text string
	Type types.Type
}

func (n *Name) exprNode()            {}
func (n *Name) Span() token.Span     { return n.Sp }
func (n *Name) GetType() types.Type  { return n.Type }
func (n *Name) SetType(t types.Type) { n.Type = t }
func (n *Name) String() string       { return n.Text }

// Vector reappears unchanged in shape from internal/ast.Vector.
type Vector struct {
	Sp       token.Span
	Kind     ast.VectorKind
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
	if n.Kind == ast.VectorTuple {
		open, close = "(", ")"
	}
	return open + strings.Join(parts, ", ") + close
}

// Cond reappears unchanged in shape from internal/ast.Cond.
type Cond struct {
	Sp   token.Span
	Pred Expression
	Cons Expression
	Else Expression
	Type types.Type
}

func (n *Cond) exprNode()            {}
func (n *Cond) Span() token.Span     { return n.Sp }
func (n *Cond) GetType() types.Type  { return n.Type }
func (n *Cond) SetType(t types.Type) { n.Type = t }
func (n *Cond) String() string {
	return fmt.Sprintf("if %s then %s else %s", n.Pred, n.Cons, n.Else)
}

// Define reappears unchanged in shape from internal/ast.Define.
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

// Block reappears unchanged in shape from internal/ast.Block.
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

// FuncCall changes shape from internal/ast.FuncCall: arguments are
// materialized into a flat slice in source order instead of left-nested
// one-argument-at-a-time application (spec.md §4.5). Note this is a
// genuine field, not the bug spec.md §9 describes in the original
// implementation's FuncCall.args (see DESIGN.md's Open Question
// resolution).
type FuncCall struct {
	Sp   token.Span
	Func Expression
	Args []Expression
	Type types.Type
}

func (n *FuncCall) exprNode()            {}
func (n *FuncCall) Span() token.Span     { return n.Sp }
func (n *FuncCall) GetType() types.Type  { return n.Type }
func (n *FuncCall) SetType(t types.Type) { n.Type = t }
func (n *FuncCall) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", n.Func, strings.Join(parts, " "))
}

// Function changes shape from internal/ast.Function: parameters are
// materialized into a flat slice instead of one-parameter-at-a-time
// currying (spec.md §4.5).
type Function struct {
	Sp     token.Span
	Params []*Name
	Body   Expression
	Type   types.Type
}

func (n *Function) exprNode()            {}
func (n *Function) Span() token.Span     { return n.Sp }
func (n *Function) GetType() types.Type  { return n.Type }
func (n *Function) SetType(t types.Type) { n.Type = t }
func (n *Function) String() string {
	parts := make([]string, len(n.Params))
	for i, p := range n.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(\\%s -> %s)", strings.Join(parts, " "), n.Body)
}

// NativeOperation is a call to a built-in operator, collapsed from a
// FuncCall chain whose ultimate callee was an operator Name (spec.md
// §4.5). Right is nil exactly when Op is unary.
type NativeOperation struct {
	Sp    token.Span
	Op    NativeOp
	Left  Expression
	Right Expression
	Type  types.Type
}

func (n *NativeOperation) exprNode()            {}
func (n *NativeOperation) Span() token.Span     { return n.Sp }
func (n *NativeOperation) GetType() types.Type  { return n.Type }
func (n *NativeOperation) SetType(t types.Type) { n.Type = t }
func (n *NativeOperation) String() string {
	if n.Right == nil {
		return fmt.Sprintf("(%s%s)", n.Op, n.Left)
	}
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
