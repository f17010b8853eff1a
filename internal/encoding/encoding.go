// Package encoding implements the binary wire format (spec.md §4.9): a
// header, the main instruction stream, a string pool, and a function
// pool, optionally run-length compressed end to end.
//
// No Python encoder module survived retrieval under original_source/
// (only its test file did, tests/test_codegen.py, 415 lines of
// byte-exact fixtures). Those fixtures are the primary grounding for
// this package — several of them contradict spec.md §4.9's own prose
// in ways spec.md's own worked scenarios quietly confirm:
//
//   - String pool entry lengths are 3 bytes, not the u16_be §4.9's
//     prose claims. Scenario S3 already encodes them that way
//     (`\x00\x00\x0dHello, World!;` — 3 length bytes, not 2), and
//     tests/test_codegen.py's test_encode_pool agrees across three
//     more cases (lengths 8, 1, and 301 all lead with three bytes).
//   - LOAD_NAME's depth field is 3 bytes, not the u16_be §4.9's prose
//     claims. test_encode_operands encodes LOAD_NAME(3, 26) as
//     `\x00\x00\x03` (depth) + `\x00\x00\x00\x1a` (slot) — 7 bytes
//     total, matching the "every instruction's operand payload fits in
//     7 bytes" invariant that same test asserts directly
//     (`len(actual_code) <= 7`). STORE_NAME's two-operand form encodes
//     identically; this package always emits STORE_NAME that way, with
//     depth 0, since this language's STORE_NAME is always a
//     current-scope store (see internal/codegen's package doc).
//   - LOAD_INT is sign-and-magnitude, not plain two's complement: a
//     1-byte sign marker (0x00 non-negative, 0xf0 negative) followed by
//     a 4-byte unsigned big-endian magnitude, 5 bytes total — recovered
//     from test_encode_operands's LOAD_INT(-4200) case
//     (`\xf0\x00\x00\x10\x68`, whose last 4 bytes are exactly
//     4200's unsigned big-endian form) and confirmed by the positive
//     LOAD_INT(2)/LOAD_INT(5) instructions embedded in that same test's
//     expected function-pool sub-stream, which both lead with 0x00.
//   - Those same embedded function-pool instructions are the only place
//     an opcode byte value appears directly in the fixtures: 0x03 where
//     a LOAD_INT is expected, 0x0b where a NATIVE is expected. That is
//     not enough of the 13-opcode table to reconstruct in full (no
//     simple ordering — declaration order, alphabetical, or otherwise —
//     reproduces both data points at once), so opcode byte values here
//     are fixed independently by internal/codegen's own Opcode
//     declaration order, matching spec.md §4.8's bullet-list order.
//     This is implementation-defined in exactly the sense spec.md §4.8
//     already concedes for the NATIVE sub-code, just extended to the
//     opcode byte itself — there is no VM in scope to interoperate
//     with, only the requirement that the mapping be fixed and
//     internally consistent.
//   - LOAD_FLOAT's own test case is marked xfail with a TODO about
//     unhandled overflow, i.e. the original author never finished it;
//     see DESIGN.md's Open Question note for the IEEE-754
//     binary32 choice made instead.
//
// Function pool entries are encoded the way spec.md §4.9 prose states
// (`<length:u32_be><encoded_sub_stream>;`); no fixture directly covers
// that outer wrapping for functions (test_encode_pool only exercises
// string pool entries), so the prose is followed as-is there.
package encoding

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cwbudde/livyc/internal/codegen"
)

// Options controls the header fields and whether the output is
// run-length compressed.
type Options struct {
	LibMode  bool
	Encoding string
	Compress bool
}

// Encode serializes mod per spec.md §4.9: header, instruction stream,
// string pool, function pool, optionally run-length compressed.
func Encode(mod *codegen.Module, opts Options) ([]byte, error) {
	stream, err := encodeStream(mod.Instructions)
	if err != nil {
		return nil, fmt.Errorf("encoding: instruction stream: %w", err)
	}
	stringPool, err := encodeStringPool(mod.Strings)
	if err != nil {
		return nil, fmt.Errorf("encoding: string pool: %w", err)
	}
	functionPool, err := encodeFunctionPool(mod.Functions)
	if err != nil {
		return nil, fmt.Errorf("encoding: function pool: %w", err)
	}
	header, err := EncodeHeader(len(stream), len(functionPool), len(stringPool), opts.LibMode, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("encoding: header: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(stream)
	buf.Write(stringPool)
	buf.Write(functionPool)

	if opts.Compress {
		return Compress(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

// EncodeHeader builds the fixed-width header (spec.md §4.9, scenario
// S6): `M:<mode>;F:<u32be>;S:<u32be>;C:<u32be>;E:<16-byte name>;`.
func EncodeHeader(streamSize, functionPoolSize, stringPoolSize int, libMode bool, encodingName string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("M:")
	if libMode {
		buf.WriteByte(0xff)
	} else {
		buf.WriteByte(0x00)
	}
	buf.WriteByte(';')

	buf.WriteString("F:")
	field, err := encodeUint(int64(functionPoolSize), 4)
	if err != nil {
		return nil, fmt.Errorf("function pool size: %w", err)
	}
	buf.Write(field)
	buf.WriteByte(';')

	buf.WriteString("S:")
	field, err = encodeUint(int64(stringPoolSize), 4)
	if err != nil {
		return nil, fmt.Errorf("string pool size: %w", err)
	}
	buf.Write(field)
	buf.WriteByte(';')

	buf.WriteString("C:")
	field, err = encodeUint(int64(streamSize), 4)
	if err != nil {
		return nil, fmt.Errorf("stream size: %w", err)
	}
	buf.Write(field)
	buf.WriteByte(';')

	buf.WriteString("E:")
	name, err := encodeEncodingName(encodingName)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	buf.WriteByte(';')

	return buf.Bytes(), nil
}

const encodingNameWidth = 16

// encodingAliases normalizes the driver's --encoding flag value to the
// canonical name the header carries (spec.md scenario S6: "UTF8" ->
// "utf-8"; tests/test_codegen.py's header fixture: "Latin-1" ->
// "iso8859-1").
var encodingAliases = map[string]string{
	"utf8":      "utf-8",
	"utf-8":     "utf-8",
	"latin1":    "iso8859-1",
	"latin-1":   "iso8859-1",
	"iso8859-1": "iso8859-1",
}

// NormalizeEncodingName maps a driver-facing encoding name (as given to
// -e/--encoding, e.g. "UTF8" or "Latin-1") to the canonical name this
// wire format's header carries. internal/config uses the same table to
// pick a golang.org/x/text decoder, so a name the header can represent
// is always a name the source transcoder understands, and vice versa.
func NormalizeEncodingName(name string) string {
	if normalized, ok := encodingAliases[strings.ToLower(name)]; ok {
		return normalized
	}
	return strings.ToLower(name)
}

func encodeEncodingName(name string) ([]byte, error) {
	normalized := NormalizeEncodingName(name)
	if len(normalized) > encodingNameWidth {
		return nil, fmt.Errorf("encoding name %q longer than %d bytes", normalized, encodingNameWidth)
	}
	out := make([]byte, encodingNameWidth)
	copy(out, normalized)
	return out, nil
}

func encodeStringPool(strs []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range strs {
		length, err := encodeUint(int64(len(s)), 3)
		if err != nil {
			return nil, fmt.Errorf("string pool entry too long: %w", err)
		}
		buf.Write(length)
		buf.WriteString(s)
		buf.WriteByte(';')
	}
	return buf.Bytes(), nil
}

func encodeFunctionPool(functions [][]codegen.Instruction) ([]byte, error) {
	var buf bytes.Buffer
	for _, body := range functions {
		sub, err := encodeStream(body)
		if err != nil {
			return nil, err
		}
		length, err := encodeUint(int64(len(sub)), 4)
		if err != nil {
			return nil, fmt.Errorf("function pool entry too long: %w", err)
		}
		buf.Write(length)
		buf.Write(sub)
		buf.WriteByte(';')
	}
	return buf.Bytes(), nil
}

func encodeStream(instrs []codegen.Instruction) ([]byte, error) {
	var buf bytes.Buffer
	for _, instr := range instrs {
		frame, err := encodeInstruction(instr)
		if err != nil {
			return nil, err
		}
		buf.Write(frame)
	}
	return buf.Bytes(), nil
}
