// Package codegen implements the instruction generator (spec.md §4.8):
// it walks the lowered, folded, and (optionally) inlined AST and emits a
// linear Instruction stream, plus the function and string pools that
// LOAD_FUNC and LOAD_STRING index into.
//
// Grounded on the teacher's internal/bytecode package for texture (an
// Opcode byte enum with a per-opcode doc comment naming its operand
// format and stack effect, and an OpCodeNames table for disassembly) —
// the wire shape itself differs, since this format is a fixed 8-byte
// instruction (spec.md §4.9) rather than the teacher's packed 32-bit
// word, so Instruction here is a small struct of typed operand fields
// instead of a single packed integer; internal/encoding is what narrows
// these fields down to the wire's fixed-width byte layout.
//
// Several details spec.md §4.8 leaves implementation-defined were
// pinned down by hand-tracing the worked Collatz example (spec.md §8,
// scenario S1) against the lowered-AST shape it must have come from:
//
//   - Binary NativeOperation operands emit right-to-left (emit(Right),
//     then emit(Left), then NATIVE(op)) — not left-to-right as §4.8's
//     prose literally reads. That prose describes ordinary call-argument
//     emission (args left-to-right, callee pushed last so CALL(n) finds
//     it on top); S1's instruction sequence for `n % 2 = 0` only
//     reproduces if NativeOperation is the mirror image of that. The VM
//     convention this assumes: the first pop is the left operand, the
//     second pop is the right operand.
//   - STORE_NAME slot numbering: the root scope reserves slot 0, so the
//     first top-level definition is STORE_NAME 1 (S1's final
//     instruction). Every other scope this package pushes starts
//     numbering at 0. A Function pushes two nested scopes for its
//     body — one holding its parameters, one for the body itself — which
//     is what makes a function's own parameter resolve as LOAD_NAME(1,
//     0) from inside its body rather than LOAD_NAME(0, 0); all three
//     function bodies in S1 show depth 1 for their own parameter.
//   - STORE_NAME is only ever emitted in its single-operand (slot) form;
//     the two-operand STORE_NAME(depth, slot) form spec.md §4.8
//     mentions has no use in this language, since `let` only ever
//     introduces a new binding in the current scope, never reassigns an
//     outer one.
package codegen

import (
	"fmt"

	"github.com/cwbudde/livyc/internal/ast"
	"github.com/cwbudde/livyc/internal/lowered"
)

// Opcode identifies one instruction kind (spec.md §4.8).
type Opcode byte

const (
	// OpLoadBool pushes an immediate boolean (0 or 1 in A).
	// Format: [opcode][A: 0|1]
	OpLoadBool Opcode = iota

	// OpLoadInt pushes an immediate integer (A, signed).
	// Format: [opcode][A: int32]
	OpLoadInt

	// OpLoadFloat pushes an immediate float (Float, narrowed to binary32
	// on the wire — see DESIGN.md).
	// Format: [opcode][Float: float32]
	OpLoadFloat

	// OpLoadString pushes the string pool entry at index A.
	// Format: [opcode][A: pool index]
	OpLoadString

	// OpLoadFunc pushes the function pool entry at index A as a
	// callable value.
	// Format: [opcode][A: pool index]
	OpLoadFunc

	// OpLoadName pushes the value bound at slot B of the scope A
	// lexical hops outward from the current one.
	// Format: [opcode][A: depth][B: slot]
	OpLoadName

	// OpStoreName pops TOS and binds it to slot A in the current scope.
	// Format: [opcode][A: slot]
	OpStoreName

	// OpBuildList pops A items and pushes them as one list, in the order
	// they were pushed (first-popped is the last element).
	// Format: [opcode][A: n]
	OpBuildList

	// OpBuildTuple pops A items and pushes them as one tuple.
	// Format: [opcode][A: n]
	OpBuildTuple

	// OpCall pops a callee and the A arguments below it, and pushes the
	// call's result.
	// Format: [opcode][A: n]
	OpCall

	// OpNative invokes the built-in operation numbered A (a
	// lowered.NativeOp value) over the 1 or 2 operands already on the
	// stack.
	// Format: [opcode][A: native op code]
	OpNative

	// OpJump unconditionally skips the following A instructions.
	// Format: [opcode][A: n]
	OpJump

	// OpBranch pops a boolean and, if false, skips the following A
	// instructions.
	// Format: [opcode][A: n]
	OpBranch
)

// OpcodeNames maps an Opcode to its mnemonic, for disassembly.
var OpcodeNames = [...]string{
	OpLoadBool:   "LOAD_BOOL",
	OpLoadInt:    "LOAD_INT",
	OpLoadFloat:  "LOAD_FLOAT",
	OpLoadString: "LOAD_STRING",
	OpLoadFunc:   "LOAD_FUNC",
	OpLoadName:   "LOAD_NAME",
	OpStoreName:  "STORE_NAME",
	OpBuildList:  "BUILD_LIST",
	OpBuildTuple: "BUILD_TUPLE",
	OpCall:       "CALL",
	OpNative:     "NATIVE",
	OpJump:       "JUMP",
	OpBranch:     "BRANCH",
}

func (op Opcode) String() string {
	if int(op) < len(OpcodeNames) && OpcodeNames[op] != "" {
		return OpcodeNames[op]
	}
	return "UNKNOWN"
}

// Instruction is one emitted opcode plus its operands. Which fields are
// meaningful depends on Op; see the per-opcode comments above.
type Instruction struct {
	Op    Opcode
	A     int64
	B     int64
	Float float64
}

func (i Instruction) String() string {
	switch i.Op {
	case OpLoadFloat:
		return fmt.Sprintf("%s %v", i.Op, i.Float)
	case OpLoadName:
		return fmt.Sprintf("%s (%d,%d)", i.Op, i.A, i.B)
	default:
		return fmt.Sprintf("%s %d", i.Op, i.A)
	}
}

// Module is the output of Generate: a root instruction stream plus the
// pools its LOAD_FUNC and LOAD_STRING instructions index into.
type Module struct {
	Instructions []Instruction
	Functions    [][]Instruction
	Strings      []string
}

func (m *Module) addFunction(body []Instruction) int {
	idx := len(m.Functions)
	m.Functions = append(m.Functions, body)
	return idx
}

func (m *Module) addString(s string) int {
	idx := len(m.Strings)
	m.Strings = append(m.Strings, s)
	return idx
}

// scope is a codegen-local lexical scope, distinct from internal/scope
// (which only ever tracks types, for inference). Each scope numbers its
// own slots starting at 0, except the root scope, which reserves slot 0
// so the first user-level binding starts at 1.
type scope struct {
	parent *scope
	slots  map[string]int
	next   int
}

func newRootScope() *scope {
	return &scope{slots: map[string]int{}, next: 1}
}

func newChildScope(parent *scope) *scope {
	return &scope{parent: parent, slots: map[string]int{}, next: 0}
}

func (s *scope) define(name string) int {
	idx := s.next
	s.slots[name] = idx
	s.next++
	return idx
}

func (s *scope) resolve(name string) (depth, slot int, ok bool) {
	for cur, d := s, 0; cur != nil; cur, d = cur.parent, d+1 {
		if idx, found := cur.slots[name]; found {
			return d, idx, true
		}
	}
	return 0, 0, false
}

type generator struct {
	mod *Module
}

// Generate compiles tree into a Module. tree is normally the top-level
// program Block; its immediate statements are generated directly under
// the root scope rather than a scope the Block case would otherwise
// push, so that top-level definitions land in the root scope spec.md's
// S1 scenario assumes (see the package doc).
func Generate(tree lowered.Expression) (*Module, error) {
	g := &generator{mod: &Module{}}
	root := newRootScope()

	var instrs []Instruction
	var err error
	if block, ok := tree.(*lowered.Block); ok {
		for _, e := range block.Body {
			var part []Instruction
			part, err = g.gen(e, root)
			if err != nil {
				return nil, err
			}
			instrs = append(instrs, part...)
		}
	} else {
		instrs, err = g.gen(tree, root)
		if err != nil {
			return nil, err
		}
	}
	g.mod.Instructions = instrs
	return g.mod, nil
}

func (g *generator) gen(n lowered.Expression, sc *scope) ([]Instruction, error) {
	switch node := n.(type) {
	case *lowered.Scalar:
		return g.genScalar(node)

	case *lowered.Name:
		depth, slot, ok := sc.resolve(node.Text)
		if !ok {
			return nil, fmt.Errorf("codegen: unresolved name %q at %s", node.Text, node.Sp)
		}
		return []Instruction{{Op: OpLoadName, A: int64(depth), B: int64(slot)}}, nil

	case *lowered.Vector:
		var out []Instruction
		for _, e := range node.Elements {
			part, err := g.gen(e, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
		}
		op := OpBuildList
		if node.Kind == ast.VectorTuple {
			op = OpBuildTuple
		}
		out = append(out, Instruction{Op: op, A: int64(len(node.Elements))})
		return out, nil

	case *lowered.Cond:
		return g.genCond(node, sc)

	case *lowered.Function:
		return g.genFunction(node, sc)

	case *lowered.FuncCall:
		return g.genCall(node, sc)

	case *lowered.NativeOperation:
		return g.genNative(node, sc)

	case *lowered.Define:
		return g.genDefine(node, sc)

	case *lowered.Block:
		inner := newChildScope(sc)
		var out []Instruction
		for _, e := range node.Body {
			part, err := g.gen(e, inner)
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("codegen: unhandled lowered node %T", n)
	}
}

func (g *generator) genScalar(node *lowered.Scalar) ([]Instruction, error) {
	switch node.Kind {
	case ast.ScalarBool:
		v, ok := node.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("codegen: Bool scalar with non-bool value %T", node.Value)
		}
		a := int64(0)
		if v {
			a = 1
		}
		return []Instruction{{Op: OpLoadBool, A: a}}, nil

	case ast.ScalarInt:
		v, ok := node.Value.(int64)
		if !ok {
			return nil, fmt.Errorf("codegen: Int scalar with non-int64 value %T", node.Value)
		}
		return []Instruction{{Op: OpLoadInt, A: v}}, nil

	case ast.ScalarFloat:
		v, ok := node.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("codegen: Float scalar with non-float64 value %T", node.Value)
		}
		return []Instruction{{Op: OpLoadFloat, Float: v}}, nil

	case ast.ScalarString:
		v, ok := node.Value.(string)
		if !ok {
			return nil, fmt.Errorf("codegen: String scalar with non-string value %T", node.Value)
		}
		idx := g.mod.addString(v)
		return []Instruction{{Op: OpLoadString, A: int64(idx)}}, nil

	default:
		return nil, fmt.Errorf("codegen: unhandled scalar kind %v", node.Kind)
	}
}

// genCond emits `<pred> BRANCH k <cons> JUMP m <else>`, k = len(cons)+1
// and m = len(else) (spec.md §4.8), confirmed against S1's BRANCH 2 /
// JUMP 1.
func (g *generator) genCond(node *lowered.Cond, sc *scope) ([]Instruction, error) {
	pred, err := g.gen(node.Pred, sc)
	if err != nil {
		return nil, err
	}
	cons, err := g.gen(node.Cons, sc)
	if err != nil {
		return nil, err
	}
	els, err := g.gen(node.Else, sc)
	if err != nil {
		return nil, err
	}

	out := make([]Instruction, 0, len(pred)+len(cons)+len(els)+2)
	out = append(out, pred...)
	out = append(out, Instruction{Op: OpBranch, A: int64(len(cons) + 1)})
	out = append(out, cons...)
	out = append(out, Instruction{Op: OpJump, A: int64(len(els))})
	out = append(out, els...)
	return out, nil
}

// genFunction generates node's body into its own sub-stream (stored in
// the function pool) under two freshly pushed scopes: one binding its
// parameters, nested inside which is the scope the body itself runs in.
// This is why LOAD_NAME(1, 0) is how a function's own first parameter
// resolves from the body (see the package doc).
func (g *generator) genFunction(node *lowered.Function, sc *scope) ([]Instruction, error) {
	paramScope := newChildScope(sc)
	for _, p := range node.Params {
		paramScope.define(p.Text)
	}
	bodyScope := newChildScope(paramScope)
	body, err := g.gen(node.Body, bodyScope)
	if err != nil {
		return nil, err
	}
	idx := g.mod.addFunction(body)
	return []Instruction{{Op: OpLoadFunc, A: int64(idx)}}, nil
}

// genCall emits arguments left to right, then the callee, then CALL(n),
// so CALL finds the callee on top of the n arguments below it.
func (g *generator) genCall(node *lowered.FuncCall, sc *scope) ([]Instruction, error) {
	var out []Instruction
	for _, a := range node.Args {
		part, err := g.gen(a, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	callee, err := g.gen(node.Func, sc)
	if err != nil {
		return nil, err
	}
	out = append(out, callee...)
	out = append(out, Instruction{Op: OpCall, A: int64(len(node.Args))})
	return out, nil
}

// genNative emits a NativeOperation's operands right-to-left (Right,
// then Left) for a binary operator, or just the single operand for a
// unary one, then NATIVE(op). See the package doc for why this is the
// mirror image of ordinary call-argument emission.
func (g *generator) genNative(node *lowered.NativeOperation, sc *scope) ([]Instruction, error) {
	left, err := g.gen(node.Left, sc)
	if err != nil {
		return nil, err
	}
	if node.Right == nil {
		return append(left, Instruction{Op: OpNative, A: int64(node.Op)}), nil
	}
	right, err := g.gen(node.Right, sc)
	if err != nil {
		return nil, err
	}
	out := make([]Instruction, 0, len(right)+len(left)+1)
	out = append(out, right...)
	out = append(out, left...)
	out = append(out, Instruction{Op: OpNative, A: int64(node.Op)})
	return out, nil
}

// genDefine binds node.Target to a freshly reserved slot before
// generating node.Value, so a recursive Function value can resolve its
// own name from inside its body. A present node.Body pushes its own
// scope first (spec.md §3.3); an absent one binds directly into sc, the
// scope its enclosing Block already pushed.
func (g *generator) genDefine(node *lowered.Define, sc *scope) ([]Instruction, error) {
	target := sc
	if node.Body != nil {
		target = newChildScope(sc)
	}
	slot := target.define(node.Target.Text)
	value, err := g.gen(node.Value, target)
	if err != nil {
		return nil, err
	}
	out := append(value, Instruction{Op: OpStoreName, A: int64(slot)})
	if node.Body == nil {
		return out, nil
	}
	body, err := g.gen(node.Body, target)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}
