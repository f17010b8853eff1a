// Package expander implements the string-escape expansion pass
// (spec.md §4.1): the first lowering step, run before type variable
// resolution, topological sorting, or inference. It rewrites every
// String [ast.Scalar] so that `\n`, `\t`, `\41`, `\u` followed by four
// hex digits, `\U000041` and friends become the literal runes they
// denote, leaving every other
// node unchanged.
//
// Grounded on original_source/hasdrubal/visitors/string_expander.py,
// translated from a visitor-dispatch tree walk into a Go type-switch
// over [ast.Expression], matching how this module expresses AST passes
// throughout (see internal/fold, internal/inline, internal/lower).
package expander

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/cwbudde/livyc/internal/ast"
)

// escapePattern recognizes the four escape shapes the surface grammar
// allows inside a string literal: a named single-character escape, a
// one-byte \xx hex escape, a two-byte \uxxxx escape, and a three-byte
// \Uxxxxxx escape.
var escapePattern = regexp.MustCompile(
	`\\[abfnrvt/'"\\]` +
		`|\\[0-9A-Fa-f]{2}` +
		`|\\u[0-9A-Fa-f]{4}` +
		`|\\U[0-9A-Fa-f]{6}`,
)

// specialEscapes maps the single-character escape forms to the rune
// they denote. `\/` expands to the host's path separator, matching the
// original's platform_path_separator rather than a literal slash.
var specialEscapes = map[string]string{
	`\a`:  "\a",
	`\b`:  "\b",
	`\f`:  "\f",
	`\n`:  "\n",
	`\r`:  "\r",
	`\v`:  "\v",
	`\t`:  "\t",
	`\'`:  "'",
	`\"`:  `"`,
	`\\`:  `\`,
	`\/`:  string(os.PathSeparator),
}

// Expand rewrites every String Scalar in tree, returning a new tree
// with escapes expanded. Non-string nodes are reconstructed with the
// same shape, children expanded recursively.
func Expand(tree ast.Expression) ast.Expression {
	switch n := tree.(type) {
	case *ast.Scalar:
		if n.Kind != ast.ScalarString {
			return n
		}
		s, ok := n.Value.(string)
		if !ok {
			return n
		}
		return &ast.Scalar{Sp: n.Sp, Kind: n.Kind, Value: expandString(s), Type: n.Type}
	case *ast.Name:
		return n
	case *ast.Vector:
		elems := make([]ast.Expression, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Expand(e)
		}
		return &ast.Vector{Sp: n.Sp, Kind: n.Kind, Elements: elems, Type: n.Type}
	case *ast.Cond:
		return &ast.Cond{Sp: n.Sp, Pred: Expand(n.Pred), Cons: Expand(n.Cons), Else: Expand(n.Else), Type: n.Type}
	case *ast.Function:
		return &ast.Function{Sp: n.Sp, Param: n.Param, Body: Expand(n.Body), Type: n.Type}
	case *ast.FuncCall:
		return &ast.FuncCall{Sp: n.Sp, Caller: Expand(n.Caller), Callee: Expand(n.Callee), Type: n.Type}
	case *ast.Define:
		body := n.Body
		if body != nil {
			body = Expand(body)
		}
		return &ast.Define{Sp: n.Sp, Target: n.Target, Value: Expand(n.Value), Body: body, Type: n.Type}
	case *ast.Block:
		exprs := make([]ast.Expression, len(n.Body))
		for i, e := range n.Body {
			exprs[i] = Expand(e)
		}
		return &ast.Block{Sp: n.Sp, Body: exprs, Type: n.Type}
	default:
		return n
	}
}

// expandString replaces every escape sequence in s with the rune it
// denotes, leaving unrecognized backslash sequences untouched (the
// parser is responsible for rejecting those; this pass only expands).
func expandString(s string) string {
	var out strings.Builder
	prevEnd := 0
	for _, loc := range escapePattern.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		out.WriteString(s[prevEnd:start])
		out.WriteString(processMatch(s[start:end]))
		prevEnd = end
	}
	out.WriteString(s[prevEnd:])
	return out.String()
}

// processMatch turns one matched escape sequence into the rune(s) it
// denotes.
func processMatch(escape string) string {
	if r, ok := specialEscapes[escape]; ok {
		return r
	}
	switch {
	case strings.HasPrefix(escape, `\u`) || strings.HasPrefix(escape, `\U`):
		code, err := strconv.ParseInt(escape[2:], 16, 32)
		if err != nil {
			return escape
		}
		return string(rune(code))
	default:
		// \xx one-byte hex escape.
		code, err := strconv.ParseInt(escape[1:], 16, 32)
		if err != nil {
			return escape
		}
		return string(rune(code))
	}
}
