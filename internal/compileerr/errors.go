// Package compileerr implements the error taxonomy described in spec.md
// §7. Every error the core can raise carries a [Kind], a source [Span],
// and a human-readable message; none are recovered inside the core — a
// phase either completes cleanly or returns an error that aborts the
// current compilation immediately (no partial output), mirroring the
// teacher's internal/errors.CompilerError but widened to the taxonomy
// this language needs.
package compileerr

import (
	"fmt"
	"strings"

	"github.com/cwbudde/livyc/internal/token"
)

// Kind classifies a compiler error (spec.md §7).
type Kind int

const (
	KindLex Kind = iota
	KindParse
	KindUnboundName
	KindTypeMismatch
	KindOccursCheck
	KindRedefinition
	KindCLI
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex error"
	case KindParse:
		return "parse error"
	case KindUnboundName:
		return "unbound name"
	case KindTypeMismatch:
		return "type mismatch"
	case KindOccursCheck:
		return "occurs check"
	case KindRedefinition:
		return "redefinition conflict"
	case KindCLI:
		return "cli error"
	case KindFatal:
		return "fatal internal error"
	default:
		return "error"
	}
}

// Term is the minimal shape a type term must have to appear inside a
// TypeMismatch or OccursCheck error. internal/types.Type satisfies this
// interface structurally; compileerr does not import internal/types to
// avoid a dependency cycle (internal/types itself constructs these
// errors).
type Term interface {
	String() string
}

// Error is the single error type every core phase returns.
type Error struct {
	Kind    Kind
	Message string
	Span    token.Span
	// SecondSpan is set for errors that relate two spans, such as a
	// TypeMismatch between two differently-located expressions.
	SecondSpan *token.Span
}

func (e *Error) Error() string {
	if e.SecondSpan != nil {
		return fmt.Sprintf("%s at %s (related: %s): %s", e.Kind, e.Span, *e.SecondSpan, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Span, e.Message)
}

// Format renders the error against the original source text, underlining
// the offending span with carets, in the style of the teacher's
// CompilerError.Format.
func (e *Error) Format(source string) string {
	var sb strings.Builder
	line, col, lineText := locate(source, e.Span.Start)
	fmt.Fprintf(&sb, "%s at line %d, column %d\n", e.Kind, line, col)
	if lineText != "" {
		prefix := fmt.Sprintf("%4d | ", line)
		sb.WriteString(prefix)
		sb.WriteString(lineText)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteString("^\n")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func locate(source string, offset int) (line, col int, lineText string) {
	if offset < 0 || offset > len(source) {
		return 1, 1, ""
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = offset - lineStart + 1
	lineEnd := strings.IndexByte(source[lineStart:], '\n')
	if lineEnd < 0 {
		lineText = source[lineStart:]
	} else {
		lineText = source[lineStart : lineStart+lineEnd]
	}
	return line, col, lineText
}

// New builds a generic error of the given kind.
func New(kind Kind, span token.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// UnboundName reports an identifier with no binding in any enclosing
// scope (spec.md §7).
func UnboundName(span token.Span, name string) *Error {
	return New(KindUnboundName, span, "unbound name %q", name)
}

// spanOf extracts a span from a Term when the concrete type also
// implements the (structurally matched) Spanner interface; types.Type
// always does, but the fallback keeps this package independent of it.
type spanner interface {
	Span() token.Span
}

func spanOf(t Term) token.Span {
	if s, ok := t.(spanner); ok {
		return s.Span()
	}
	return token.Zero
}

// TypeMismatch reports a unification failure, with both offending type
// terms and both spans (spec.md §7).
func TypeMismatch(left, right Term) *Error {
	leftSpan := spanOf(left)
	rightSpan := spanOf(right)
	return &Error{
		Kind:       KindTypeMismatch,
		Span:       leftSpan,
		SecondSpan: &rightSpan,
		Message:    fmt.Sprintf("cannot unify %s with %s", left, right),
	}
}

// OccursCheck reports an infinite-type failure: a type variable unifying
// with a type that contains it (spec.md §7, §8 property 2). It is a
// TypeMismatch subkind carrying an explanatory message.
func OccursCheck(variable, other Term) *Error {
	return &Error{
		Kind:    KindOccursCheck,
		Span:    spanOf(variable),
		Message: fmt.Sprintf("infinite type: %s occurs in %s", variable, other),
	}
}

// Redefinition reports a definition whose type cannot be reconciled with
// a prior binding of the same name in the same scope (spec.md §7).
func Redefinition(span token.Span, name string) *Error {
	return New(KindRedefinition, span, "cannot reconcile redefinition of %q with its prior type", name)
}

// Fatal reports an invariant breach. Fatal errors are not meant to be
// catchable at the user level (spec.md §7); callers should treat them as
// a compiler bug report, not a diagnostic to show the end user verbatim.
func Fatal(span token.Span, format string, args ...any) *Error {
	e := New(KindFatal, span, format, args...)
	e.Kind = KindFatal
	return e
}

// CLI reports a driver-level error: a missing file, permission denied, or
// an unknown encoding name (spec.md §7).
func CLI(format string, args ...any) *Error {
	return New(KindCLI, token.Zero, format, args...)
}
