// Package token holds the small, stable types shared across the lexer,
// parser, and compiler core.
//
// The lexer and parser themselves are out of scope for this module (see
// spec.md §1): they are external collaborators, named here only by the
// interface they provide. A [Span] is that interface's load-bearing piece,
// since every AST and type-term node in this compiler carries one.
package token

import "fmt"

// Span is a byte-offset interval into the original source text.
// Start is inclusive, End is exclusive, both measured in bytes (not runes
// or UTF-16 units), matching spec.md §3's "(start_offset, end_offset)".
type Span struct {
	Start int
	End   int
}

// String renders the span as "start:end" for error messages and debug dumps.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Zero is the span used for synthetic nodes introduced by a compiler pass
// (e.g. a fresh name created during inlining) that have no source text of
// their own.
var Zero = Span{}

// Kind classifies a token produced by the (external) lexer. The compiler
// core only needs enough of the lexer's vocabulary to classify tokens for
// EOL inference (spec.md §6.2); it does not implement lexing.
type Kind int

const (
	KindOther Kind = iota
	KindNewline
	KindEOF
)

// Token is the minimal shape the lexer/parser interface is documented
// against. The core never constructs lexer tokens; this type exists so
// the EOL-inference contract (spec.md §6.2) can be stated precisely
// without pulling in a concrete lexer implementation.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
}

// IsExpressionEnder reports whether a token of the given literal can be
// the last token of a complete expression, one of the two conditions the
// (external) lexer's EOL-inference pass uses to decide whether a newline
// at paren-depth zero should become a virtual end-of-line token. This is
// documented here, not implemented, since EOL inference is purely
// syntactic and lives in the lexer (spec.md §6.2, supplemented from
// original_source/hasdrubal/lex/eol_inference.py).
func IsExpressionEnder(literal string) bool {
	switch literal {
	case "", "(", "[", ",", "->", "=":
		return false
	default:
		return true
	}
}

// IsExpressionStarter reports whether a token of the given literal can
// begin a new expression. See [IsExpressionEnder].
func IsExpressionStarter(literal string) bool {
	switch literal {
	case ")", "]", ",", "then", "else", "->", "=":
		return false
	default:
		return true
	}
}
