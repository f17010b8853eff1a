// Package pipeline wires the phases a lexer/parser hand the rest of
// this module's surface AST through: string expansion, type-variable
// resolution, an optional topological sort, Hindley-Milner inference,
// lowering, constant folding, inline expansion, instruction generation,
// and binary encoding (spec.md §4, data-flow diagram in §2).
//
// Grounded on spec.md §9's "Error-as-control-flow" redesign note: the
// original driver used a sentinel exception to short-circuit the
// pipeline for `--show-*`-style flags. This package instead returns a
// tagged Result from each phase boundary — either the value to feed the
// next phase, or a Halt carrying whatever the driver asked to print —
// so a caller never needs to inspect an error type to tell "stop and
// print this" apart from "stop, something failed". The teacher's own
// cmd/dwscript driver prints intermediate representations behind flags
// the same way (see its --ast/--disasm handling), just via early
// returns rather than a shared Halt type, since its CLI doesn't need to
// compose phases as a pure function the way this one does.
package pipeline

import (
	"fmt"

	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/codegen"
	"github.com/cwbudde/livyc/internal/compileerr"
	"github.com/cwbudde/livyc/internal/encoding"
	"github.com/cwbudde/livyc/internal/expander"
	"github.com/cwbudde/livyc/internal/fold"
	"github.com/cwbudde/livyc/internal/infer"
	"github.com/cwbudde/livyc/internal/inline"
	"github.com/cwbudde/livyc/internal/lower"
	"github.com/cwbudde/livyc/internal/resolver"
	"github.com/cwbudde/livyc/internal/toposort"
	"github.com/cwbudde/livyc/internal/types"
)

// Options configures a single compilation, one per spec.md §5's "pure
// function from source bytes to bytecode bytes given a configuration".
type Options struct {
	SortDefs       bool
	ExpansionLevel int
	Compress       bool
	LibMode        bool
	Encoding       string

	// ShowAST and ShowTypes request an early Halt carrying a rendered
	// form of the AST after string expansion (and the optional sort),
	// or immediately after inference, instead of continuing to encoding (spec.md §6.1's
	// --ast / --types flags).
	ShowAST   bool
	ShowTypes bool
}

// Halt is returned by Run when the driver asked to stop early and
// print something, rather than because a phase failed. A Halt is not
// an error: Run's err return is nil whenever Result.Halted is true.
type Halt struct {
	Phase   string
	Message string
}

// Result is the tagged outcome of a compilation: either Bytecode is
// set (success), or Halted is true and Halt explains what to print,
// mutually exclusive outcomes of a call to Run that returned a nil
// error.
type Result struct {
	Bytecode []byte
	Halted   bool
	Halt     Halt
}

// Run compiles tree (the surface AST a parser produced) through every
// phase spec.md §2's data-flow diagram names, in order.
func Run(tree ast.Expression, opts Options) (Result, error) {
	expanded := expander.Expand(tree)

	if opts.SortDefs {
		if block, ok := expanded.(*ast.Block); ok {
			expanded = toposort.Sort(block)
		}
	}

	if opts.ShowAST {
		return Result{Halted: true, Halt: Halt{Phase: "ast", Message: fmt.Sprintf("%v", expanded)}}, nil
	}

	counter := types.NewCounter()
	resolution := resolver.Resolve(expanded, counter)

	if _, err := infer.Infer(expanded, counter, resolution); err != nil {
		return Result{}, err
	}

	if opts.ShowTypes {
		return Result{Halted: true, Halt: Halt{Phase: "types", Message: fmt.Sprintf("%v", expanded)}}, nil
	}

	loweredTree := lower.Lower(expanded)
	loweredTree = fold.Fold(loweredTree)
	loweredTree = inline.Expand(loweredTree, opts.ExpansionLevel)
	loweredTree = fold.Fold(loweredTree)

	mod, err := codegen.Generate(loweredTree)
	if err != nil {
		return Result{}, compileerr.Fatal(tree.Span(), "codegen: %v", err)
	}

	out, err := encoding.Encode(mod, encoding.Options{
		LibMode:  opts.LibMode,
		Encoding: opts.Encoding,
		Compress: opts.Compress,
	})
	if err != nil {
		return Result{}, compileerr.Fatal(tree.Span(), "encoding: %v", err)
	}

	return Result{Bytecode: out}, nil
}
