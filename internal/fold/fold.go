// Package fold implements the constant folder (spec.md §4.6): it walks
// the lowered AST and replaces any NativeOperation whose operands are
// compile-time literal Scalars with the evaluated Scalar. Integer
// arithmetic is evaluated exactly (int64); division and modulus by zero
// are left unfolded for the runtime to handle. String `<>` (join) folds
// when both operands are string literals.
//
// Authored directly from spec.md §4.6 — no corresponding Python pass
// survived in original_source/hasdrubal for this module, so this is
// written from the spec text in the type-switch tree-rewrite style the
// rest of this module uses (internal/lower, internal/inline).
package fold

import (
	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/lowered"
)

// Fold rewrites tree, folding every foldable NativeOperation bottom-up.
// Folding is applied repeatedly to each subtree as it is built, so a
// chain such as (1 + 2) + 3 collapses fully in one traversal.
func Fold(tree lowered.Expression) lowered.Expression {
	switch n := tree.(type) {
	case *lowered.Scalar:
		return n

	case *lowered.Name:
		return n

	case *lowered.Vector:
		elems := make([]lowered.Expression, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Fold(e)
		}
		return &lowered.Vector{Sp: n.Sp, Kind: n.Kind, Elements: elems, Type: n.Type}

	case *lowered.Cond:
		return &lowered.Cond{Sp: n.Sp, Pred: Fold(n.Pred), Cons: Fold(n.Cons), Else: Fold(n.Else), Type: n.Type}

	case *lowered.Function:
		return &lowered.Function{Sp: n.Sp, Params: n.Params, Body: Fold(n.Body), Type: n.Type}

	case *lowered.FuncCall:
		args := make([]lowered.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = Fold(a)
		}
		return &lowered.FuncCall{Sp: n.Sp, Func: Fold(n.Func), Args: args, Type: n.Type}

	case *lowered.Define:
		value := Fold(n.Value)
		var body lowered.Expression
		if n.Body != nil {
			body = Fold(n.Body)
		}
		return &lowered.Define{Sp: n.Sp, Target: n.Target, Value: value, Body: body, Type: n.Type}

	case *lowered.Block:
		body := make([]lowered.Expression, len(n.Body))
		for i, e := range n.Body {
			body[i] = Fold(e)
		}
		return &lowered.Block{Sp: n.Sp, Body: body, Type: n.Type}

	case *lowered.NativeOperation:
		left := Fold(n.Left)
		var right lowered.Expression
		if n.Right != nil {
			right = Fold(n.Right)
		}
		if folded, ok := evaluate(n, left, right); ok {
			return folded
		}
		return &lowered.NativeOperation{Sp: n.Sp, Op: n.Op, Left: left, Right: right, Type: n.Type}

	default:
		return n
	}
}

// evaluate attempts to fold one NativeOperation whose (already-folded)
// operands are left and right. It returns ok == false whenever either
// operand is not a literal Scalar, or the operation is an integer
// division or modulus by zero (spec.md §4.6 leaves those for runtime).
func evaluate(n *lowered.NativeOperation, left, right lowered.Expression) (*lowered.Scalar, bool) {
	leftLit, ok := left.(*lowered.Scalar)
	if !ok {
		return nil, false
	}

	if n.Op == lowered.OpNeg {
		return evaluateNeg(n, leftLit)
	}

	rightLit, ok := right.(*lowered.Scalar)
	if !ok {
		return nil, false
	}

	switch n.Op {
	case lowered.OpJoin:
		return evaluateJoin(n, leftLit, rightLit)
	default:
		return evaluateArith(n, leftLit, rightLit)
	}
}

func evaluateNeg(n *lowered.NativeOperation, operand *lowered.Scalar) (*lowered.Scalar, bool) {
	switch v := operand.Value.(type) {
	case int64:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: -v, Type: n.Type}, true
	case float64:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarFloat, Value: -v, Type: n.Type}, true
	default:
		return nil, false
	}
}

func evaluateJoin(n *lowered.NativeOperation, left, right *lowered.Scalar) (*lowered.Scalar, bool) {
	ls, ok := left.Value.(string)
	if !ok {
		return nil, false
	}
	rs, ok := right.Value.(string)
	if !ok {
		return nil, false
	}
	return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarString, Value: ls + rs, Type: n.Type}, true
}

// evaluateArith folds the numeric binary operators over two literal
// operands. Both operands must be int64, or both float64; mixed-kind
// operands are not folded here — they are already a type error the
// inferer would have reported before this pass runs.
func evaluateArith(n *lowered.NativeOperation, left, right *lowered.Scalar) (*lowered.Scalar, bool) {
	li, lIsInt := left.Value.(int64)
	ri, rIsInt := right.Value.(int64)
	if lIsInt && rIsInt {
		return evaluateIntArith(n, li, ri)
	}

	lf, lIsFloat := left.Value.(float64)
	rf, rIsFloat := right.Value.(float64)
	if lIsFloat && rIsFloat {
		return evaluateFloatArith(n, lf, rf)
	}

	return nil, false
}

func evaluateIntArith(n *lowered.NativeOperation, l, r int64) (*lowered.Scalar, bool) {
	switch n.Op {
	case lowered.OpAdd:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: l + r, Type: n.Type}, true
	case lowered.OpSub:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: l - r, Type: n.Type}, true
	case lowered.OpMul:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: l * r, Type: n.Type}, true
	case lowered.OpDiv:
		if r == 0 {
			return nil, false
		}
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: l / r, Type: n.Type}, true
	case lowered.OpMod:
		if r == 0 {
			return nil, false
		}
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: l % r, Type: n.Type}, true
	case lowered.OpExponent:
		if r < 0 {
			return nil, false
		}
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarInt, Value: intPow(l, r), Type: n.Type}, true
	case lowered.OpLess:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l < r, Type: n.Type}, true
	case lowered.OpGreater:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l > r, Type: n.Type}, true
	case lowered.OpEqual:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l == r, Type: n.Type}, true
	default:
		return nil, false
	}
}

func evaluateFloatArith(n *lowered.NativeOperation, l, r float64) (*lowered.Scalar, bool) {
	switch n.Op {
	case lowered.OpAdd:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarFloat, Value: l + r, Type: n.Type}, true
	case lowered.OpSub:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarFloat, Value: l - r, Type: n.Type}, true
	case lowered.OpMul:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarFloat, Value: l * r, Type: n.Type}, true
	case lowered.OpDiv:
		if r == 0 {
			return nil, false
		}
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarFloat, Value: l / r, Type: n.Type}, true
	case lowered.OpLess:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l < r, Type: n.Type}, true
	case lowered.OpGreater:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l > r, Type: n.Type}, true
	case lowered.OpEqual:
		return &lowered.Scalar{Sp: n.Sp, Kind: ast.ScalarBool, Value: l == r, Type: n.Type}, true
	default:
		return nil, false
	}
}

// intPow computes l^r for a non-negative exponent using exact int64
// arithmetic. Callers must not pass a negative r.
func intPow(l, r int64) int64 {
	var result int64 = 1
	for i := int64(0); i < r; i++ {
		result *= l
	}
	return result
}
