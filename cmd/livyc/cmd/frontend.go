// Package cmd implements the livyc driver CLI (spec.md §6.1): flags, an
// optional `.livyc` project file, and the phase boundaries
// internal/pipeline exposes.
//
// Lexing and parsing are out-of-scope collaborators here (spec.md §1):
// this module owns everything from the surface AST onward, not the
// text -> AST step itself. Frontend is the seam a concrete lexer/parser
// plugs into. The driver ships an unwired default that reports the
// boundary plainly rather than faking tokens or an AST, the way a thin
// shell should fail loudly instead of quietly doing the wrong thing.
package cmd

import (
	"fmt"

	"github.com/cwbudde/livyc/internal/ast"
)

// Frontend turns decoded source text into the surface AST
// internal/pipeline consumes. An embedding program that owns a real
// lexer and parser should assign this before calling Execute; livyc's
// own main package leaves it unwired, since neither component lives in
// this repository.
var Frontend func(source, filename string) (ast.Expression, error) = unwiredFrontend

func unwiredFrontend(_, filename string) (ast.Expression, error) {
	return nil, fmt.Errorf("livyc: no lexer/parser wired for %s (this module starts at the surface AST; see spec.md §1 and cmd.Frontend)", filename)
}
