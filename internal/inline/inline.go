// Package inline implements the inline expander (spec.md §4.7): a
// driver-configurable pass over the lowered AST that substitutes small,
// let-bound function bodies directly at their call sites, up to a
// configured depth. Substitution renames every name a copied function
// body binds (its parameters and any nested Define targets) to a fresh
// name before splicing it in, so a copied body can never capture a free
// name from the arguments it receives or from the call site's own
// scope.
//
// Authored directly from spec.md §4.7 — no corresponding pass survived
// in original_source/hasdrubal for this module — in the type-switch
// tree-rewrite style the rest of this module uses (internal/lower,
// internal/fold).
package inline

import (
	"fmt"

	"github.com/cwbudde/livyc/internal/lowered"
)

// maxInlineSize bounds how large (in node count) a candidate function's
// body may be per unit of remaining depth before it is inlined; spec.md
// §4.7 leaves the exact threshold implementation-chosen, "bounded above
// by the depth setting".
const maxInlineSize = 12

// Expand returns tree with eligible calls inlined, to a maximum nesting
// depth of level. level <= 0 disables the pass and returns tree
// unchanged.
func Expand(tree lowered.Expression, level int) lowered.Expression {
	if level <= 0 {
		return tree
	}
	ex := &expander{fresh: 0}
	return ex.walk(tree, map[string]*lowered.Function{}, level)
}

type expander struct {
	fresh int
}

func (ex *expander) nextName(base string) string {
	ex.fresh++
	return fmt.Sprintf("%s$%d", base, ex.fresh)
}

// env maps a let-bound name to the Function value it was defined with,
// for names still in scope and still eligible (small enough) to inline.
func (ex *expander) walk(n lowered.Expression, env map[string]*lowered.Function, depth int) lowered.Expression {
	switch node := n.(type) {
	case *lowered.Scalar:
		return node

	case *lowered.Name:
		return node

	case *lowered.Vector:
		elems := make([]lowered.Expression, len(node.Elements))
		for i, e := range node.Elements {
			elems[i] = ex.walk(e, env, depth)
		}
		return &lowered.Vector{Sp: node.Sp, Kind: node.Kind, Elements: elems, Type: node.Type}

	case *lowered.Cond:
		return &lowered.Cond{
			Sp:   node.Sp,
			Pred: ex.walk(node.Pred, env, depth),
			Cons: ex.walk(node.Cons, env, depth),
			Else: ex.walk(node.Else, env, depth),
			Type: node.Type,
		}

	case *lowered.Function:
		return &lowered.Function{Sp: node.Sp, Params: node.Params, Body: ex.walk(node.Body, env, depth), Type: node.Type}

	case *lowered.NativeOperation:
		left := ex.walk(node.Left, env, depth)
		var right lowered.Expression
		if node.Right != nil {
			right = ex.walk(node.Right, env, depth)
		}
		return &lowered.NativeOperation{Sp: node.Sp, Op: node.Op, Left: left, Right: right, Type: node.Type}

	case *lowered.FuncCall:
		args := make([]lowered.Expression, len(node.Args))
		for i, a := range node.Args {
			args[i] = ex.walk(a, env, depth)
		}
		fn := ex.walk(node.Func, env, depth)
		if depth > 0 {
			if name, ok := fn.(*lowered.Name); ok {
				if candidate, ok := env[name.Text]; ok && len(candidate.Params) == len(args) {
					return ex.walk(ex.inlineCall(candidate, args, node), env, depth-1)
				}
			}
		}
		return &lowered.FuncCall{Sp: node.Sp, Func: fn, Args: args, Type: node.Type}

	case *lowered.Define:
		value := ex.walk(node.Value, env, depth)
		inner := env
		if fn, ok := value.(*lowered.Function); ok && size(fn.Body) <= maxInlineSize*depth {
			inner = cloneEnv(env)
			inner[node.Target.Text] = fn
		}
		var body lowered.Expression
		if node.Body != nil {
			body = ex.walk(node.Body, inner, depth)
		}
		return &lowered.Define{Sp: node.Sp, Target: node.Target, Value: value, Body: body, Type: node.Type}

	case *lowered.Block:
		body := make([]lowered.Expression, len(node.Body))
		cur := env
		for i, e := range node.Body {
			body[i] = ex.walk(e, cur, depth)
			if d, ok := e.(*lowered.Define); ok {
				if fn, ok := body[i].(*lowered.Define).Value.(*lowered.Function); ok && size(fn.Body) <= maxInlineSize*depth {
					cur = cloneEnv(cur)
					cur[d.Target.Text] = fn
				}
			}
		}
		return &lowered.Block{Sp: node.Sp, Body: body, Type: node.Type}

	default:
		return n
	}
}

func cloneEnv(env map[string]*lowered.Function) map[string]*lowered.Function {
	out := make(map[string]*lowered.Function, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}

// inlineCall splices fn's (freshly alpha-renamed) body in place of a
// call, binding each of fn's parameters to the corresponding argument
// via a nested chain of Defines so argument expressions are evaluated
// exactly once, left to right, before the body runs.
func (ex *expander) inlineCall(fn *lowered.Function, args []lowered.Expression, call *lowered.FuncCall) lowered.Expression {
	rename := map[string]string{}
	freshParams := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		freshParams[i] = ex.nextName(p.Text)
		rename[p.Text] = freshParams[i]
	}
	body := ex.alphaRename(fn.Body, rename)

	result := body
	for i := len(fn.Params) - 1; i >= 0; i-- {
		target := &lowered.Name{Sp: fn.Params[i].Sp, Text: freshParams[i], Type: fn.Params[i].Type}
		result = &lowered.Define{Sp: call.Sp, Target: target, Value: args[i], Body: result, Type: result.GetType()}
	}
	return result
}

// alphaRename copies expr, renaming every bound name it introduces
// (Function parameters, Define targets) to a fresh name not used
// anywhere else in the program, and rewriting Name references per the
// active rename map. rename is extended, never mutated in place, when
// entering a nested binder, so a shadowing inner binding cannot leak
// its fresh name back out to a sibling subtree.
func (ex *expander) alphaRename(n lowered.Expression, rename map[string]string) lowered.Expression {
	switch node := n.(type) {
	case *lowered.Scalar:
		return node

	case *lowered.Name:
		if fresh, ok := rename[node.Text]; ok {
			return &lowered.Name{Sp: node.Sp, Text: fresh, Type: node.Type}
		}
		return node

	case *lowered.Vector:
		elems := make([]lowered.Expression, len(node.Elements))
		for i, e := range node.Elements {
			elems[i] = ex.alphaRename(e, rename)
		}
		return &lowered.Vector{Sp: node.Sp, Kind: node.Kind, Elements: elems, Type: node.Type}

	case *lowered.Cond:
		return &lowered.Cond{
			Sp:   node.Sp,
			Pred: ex.alphaRename(node.Pred, rename),
			Cons: ex.alphaRename(node.Cons, rename),
			Else: ex.alphaRename(node.Else, rename),
			Type: node.Type,
		}

	case *lowered.Function:
		inner := extend(rename)
		params := make([]*lowered.Name, len(node.Params))
		for i, p := range node.Params {
			freshName := ex.nextName(p.Text)
			inner[p.Text] = freshName
			params[i] = &lowered.Name{Sp: p.Sp, Text: freshName, Type: p.Type}
		}
		return &lowered.Function{Sp: node.Sp, Params: params, Body: ex.alphaRename(node.Body, inner), Type: node.Type}

	case *lowered.FuncCall:
		args := make([]lowered.Expression, len(node.Args))
		for i, a := range node.Args {
			args[i] = ex.alphaRename(a, rename)
		}
		return &lowered.FuncCall{Sp: node.Sp, Func: ex.alphaRename(node.Func, rename), Args: args, Type: node.Type}

	case *lowered.NativeOperation:
		left := ex.alphaRename(node.Left, rename)
		var right lowered.Expression
		if node.Right != nil {
			right = ex.alphaRename(node.Right, rename)
		}
		return &lowered.NativeOperation{Sp: node.Sp, Op: node.Op, Left: left, Right: right, Type: node.Type}

	case *lowered.Define:
		value := ex.alphaRename(node.Value, rename)
		inner := extend(rename)
		freshName := ex.nextName(node.Target.Text)
		inner[node.Target.Text] = freshName
		target := &lowered.Name{Sp: node.Target.Sp, Text: freshName, Type: node.Target.Type}
		var body lowered.Expression
		if node.Body != nil {
			body = ex.alphaRename(node.Body, inner)
		}
		return &lowered.Define{Sp: node.Sp, Target: target, Value: value, Body: body, Type: node.Type}

	case *lowered.Block:
		inner := extend(rename)
		body := make([]lowered.Expression, len(node.Body))
		for i, e := range node.Body {
			if d, ok := e.(*lowered.Define); ok {
				renamed := ex.alphaRename(d, inner)
				body[i] = renamed
				inner[d.Target.Text] = renamed.(*lowered.Define).Target.Text
				continue
			}
			body[i] = ex.alphaRename(e, inner)
		}
		return &lowered.Block{Sp: node.Sp, Body: body, Type: node.Type}

	default:
		return n
	}
}

func extend(rename map[string]string) map[string]string {
	out := make(map[string]string, len(rename)+1)
	for k, v := range rename {
		out[k] = v
	}
	return out
}

// size counts the nodes in expr, used to bound what gets inlined.
func size(expr lowered.Expression) int {
	switch node := expr.(type) {
	case *lowered.Scalar, *lowered.Name:
		return 1
	case *lowered.Vector:
		n := 1
		for _, e := range node.Elements {
			n += size(e)
		}
		return n
	case *lowered.Cond:
		return 1 + size(node.Pred) + size(node.Cons) + size(node.Else)
	case *lowered.Function:
		return 1 + size(node.Body)
	case *lowered.FuncCall:
		n := 1 + size(node.Func)
		for _, a := range node.Args {
			n += size(a)
		}
		return n
	case *lowered.NativeOperation:
		n := 1 + size(node.Left)
		if node.Right != nil {
			n += size(node.Right)
		}
		return n
	case *lowered.Define:
		n := 1 + size(node.Value)
		if node.Body != nil {
			n += size(node.Body)
		}
		return n
	case *lowered.Block:
		n := 0
		for _, e := range node.Body {
			n += size(e)
		}
		return n
	default:
		return 1
	}
}
