// Package lower implements the simplifier (spec.md §4.5): it rewrites a
// typed surface-AST tree (internal/ast) into the lowered AST
// (internal/lowered) that every later pass — constant folding, inline
// expansion, and instruction generation — operates on.
//
// Grounded on original_source/hasdrubal's split between asts/base.py
// (surface) and asts/lowered.py (lowered): there is no single Python
// "lowerer" module in the retrieved sources to port directly (the
// transformation is implied by the two AST shapes and spec.md §4.5's
// bullet list), so this is authored directly from the spec, in the
// type-switch-driven tree-rewrite style the rest of this module uses.
package lower

import (
	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/lowered"
)

// Lower rewrites tree into its lowered form.
func Lower(tree ast.Expression) lowered.Expression {
	switch n := tree.(type) {
	case *ast.Scalar:
		return &lowered.Scalar{Sp: n.Sp, Kind: n.Kind, Value: n.Value, Type: n.Type}

	case *ast.Name:
		return &lowered.Name{Sp: n.Sp, Text: n.Text, Type: n.Type}

	case *ast.Vector:
		elems := make([]lowered.Expression, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Lower(e)
		}
		if n.Kind == ast.VectorTuple && len(elems) == 1 {
			// (e,) is a grouping quirk of the surface grammar, not a
			// singleton tuple (spec.md §4.5).
			return elems[0]
		}
		return &lowered.Vector{Sp: n.Sp, Kind: n.Kind, Elements: elems, Type: n.Type}

	case *ast.Cond:
		return &lowered.Cond{
			Sp:   n.Sp,
			Pred: Lower(n.Pred),
			Cons: Lower(n.Cons),
			Else: Lower(n.Else),
			Type: n.Type,
		}

	case *ast.Function:
		return collapseFunction(n)

	case *ast.FuncCall:
		return collapseCall(n)

	case *ast.Define:
		value := Lower(n.Value)
		target := &lowered.Name{Sp: n.Target.Sp, Text: n.Target.Text, Type: n.Target.Type}
		def := &lowered.Define{Sp: n.Sp, Target: target, Value: value, Type: n.Type}
		if n.Body == nil {
			return def
		}
		body := Lower(n.Body)
		return &lowered.Block{
			Sp:   n.Sp,
			Body: []lowered.Expression{def, body},
			Type: body.GetType(),
		}

	case *ast.Block:
		exprs := make([]lowered.Expression, len(n.Body))
		for i, e := range n.Body {
			exprs[i] = Lower(e)
		}
		return &lowered.Block{Sp: n.Sp, Body: exprs, Type: n.Type}

	default:
		panic("lower: unhandled surface node")
	}
}

// collapseFunction flattens a curried chain of single-parameter
// Functions into one lowered Function with a full parameter list
// (spec.md §4.5).
func collapseFunction(n *ast.Function) *lowered.Function {
	var params []*lowered.Name
	var body ast.Expression = n
	span := n.Sp
	for {
		fn, ok := body.(*ast.Function)
		if !ok {
			break
		}
		params = append(params, &lowered.Name{Sp: fn.Param.Sp, Text: fn.Param.Text, Type: fn.Param.Type})
		body = fn.Body
	}
	return &lowered.Function{Sp: span, Params: params, Body: Lower(body), Type: n.Type}
}

// collapseCall flattens a left-nested chain of single-argument FuncCall
// applications into one lowered node: a NativeOperation if the ultimate
// caller is a built-in operator Name, otherwise a FuncCall with a
// materialized argument list (spec.md §4.5).
func collapseCall(n *ast.FuncCall) lowered.Expression {
	var args []ast.Expression
	var caller ast.Expression = n
	span := n.Sp
	for {
		call, ok := caller.(*ast.FuncCall)
		if !ok {
			break
		}
		args = append([]ast.Expression{call.Callee}, args...)
		caller = call.Caller
	}

	if name, ok := caller.(*ast.Name); ok {
		if op, ok := lowered.NativeOpBySymbol[name.Text]; ok {
			wantArgs := 2
			if op.IsUnary() {
				wantArgs = 1
			}
			if len(args) == wantArgs {
				if op.IsUnary() {
					return &lowered.NativeOperation{Sp: span, Op: op, Left: Lower(args[0]), Type: n.Type}
				}
				return &lowered.NativeOperation{Sp: span, Op: op, Left: Lower(args[0]), Right: Lower(args[1]), Type: n.Type}
			}
			// A partial or over-saturated application of an operator
			// name is not an operator call; fall through to treating
			// it as a plain function value below.
		}
	}

	loweredArgs := make([]lowered.Expression, len(args))
	for i, a := range args {
		loweredArgs[i] = Lower(a)
	}
	return &lowered.FuncCall{Sp: span, Func: Lower(caller), Args: loweredArgs, Type: n.Type}
}
