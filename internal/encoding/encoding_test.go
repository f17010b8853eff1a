package encoding

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/livyc/internal/codegen"
)

// TestEncodeHeader reproduces spec.md scenario S6 and the second
// header case from tests/test_codegen.py's test_generate_header.
func TestEncodeHeader(t *testing.T) {
	got, err := EncodeHeader(111, 18, 53, false, "UTF8")
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	want := []byte("M:\x00;F:\x00\x00\x00\x12;S:\x00\x00\x00\x35;C:\x00\x00\x00\x6f;" +
		"E:utf-8\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00;")
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeHeader(S6) = %q, want %q", got, want)
	}

	got, err = EncodeHeader(0, 84, 101, true, "Latin-1")
	if err != nil {
		t.Fatalf("EncodeHeader: %v", err)
	}
	want = []byte("M:\xff;F:\x00\x00\x00\x54;S:\x00\x00\x00\x65;C:\x00\x00\x00\x00;" +
		"E:iso8859-1\x00\x00\x00\x00\x00\x00\x00;")
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeHeader(lib mode, Latin-1) = %q, want %q", got, want)
	}
}

// TestEncodeStringPool reproduces spec.md scenario S3.
func TestEncodeStringPool(t *testing.T) {
	got, err := encodeStringPool([]string{"Hello, World!", "Test #3", strings.Repeat("z", 301)})
	if err != nil {
		t.Fatalf("encodeStringPool: %v", err)
	}
	var want bytes.Buffer
	want.WriteString("\x00\x00\x0dHello, World!;")
	want.WriteString("\x00\x00\x07Test #3;")
	want.WriteString("\x00\x01\x2d")
	want.WriteString(strings.Repeat("z", 301))
	want.WriteByte(';')
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("encodeStringPool = %q, want %q", got, want.Bytes())
	}
}

func TestCompressS2(t *testing.T) {
	got := Compress([]byte("aaaabbcccccdeeeeeeeeee"))
	want := []byte("\x04a\x02b\x05c\x01d\x0ae")
	if !bytes.Equal(got, want) {
		t.Fatalf("Compress(S2) = %q, want %q", got, want)
	}
	back, err := Decompress(got)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(back) != "aaaabbcccccdeeeeeeeeee" {
		t.Fatalf("Decompress(Compress(S2)) = %q", back)
	}
}

func TestCompressSplitsLongRuns(t *testing.T) {
	input := bytes.Repeat([]byte("x"), 265)
	input = append(input, bytes.Repeat([]byte("y"), 16)...)
	input = append(input, bytes.Repeat([]byte("z"), 782)...)

	got := Compress(input)
	want := []byte("\xffx\x0ax\x10y\xffz\xffz\xffz\x11z")
	if !bytes.Equal(got, want) {
		t.Fatalf("Compress(long runs) = %q, want %q", got, want)
	}

	back, err := Decompress(got)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(back, input) {
		t.Fatalf("Decompress(Compress(long runs)) round-trip mismatch")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		[]byte("abcabcabc"),
		bytes.Repeat([]byte{0x42}, 600),
	}
	for _, in := range inputs {
		back, err := Decompress(Compress(in))
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if !bytes.Equal(back, in) {
			t.Fatalf("round trip mismatch for %v: got %v", in, back)
		}
	}
}

// TestEncodeOperand reproduces tests/test_codegen.py's
// test_encode_operands byte-exact cases.
func TestEncodeOperand(t *testing.T) {
	cases := []struct {
		name string
		in   codegen.Instruction
		want []byte
	}{
		{"load bool true", codegen.Instruction{Op: codegen.OpLoadBool, A: 1}, []byte{0xff}},
		{"load bool false", codegen.Instruction{Op: codegen.OpLoadBool, A: 0}, []byte{0x00}},
		{"load int negative", codegen.Instruction{Op: codegen.OpLoadInt, A: -4200}, []byte{0xf0, 0x00, 0x00, 0x10, 0x68}},
		{"load int positive", codegen.Instruction{Op: codegen.OpLoadInt, A: 2}, []byte{0x00, 0x00, 0x00, 0x00, 0x02}},
		{"build list", codegen.Instruction{Op: codegen.OpBuildList, A: 200}, []byte{0x00, 0x00, 0x00, 0xc8}},
		{"build tuple", codegen.Instruction{Op: codegen.OpBuildTuple, A: 2}, []byte{0x02}},
		{"load name", codegen.Instruction{Op: codegen.OpLoadName, A: 3, B: 26}, []byte{0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x1a}},
		{"store name", codegen.Instruction{Op: codegen.OpStoreName, A: 10, B: 8}, []byte{0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x08}},
		{"call", codegen.Instruction{Op: codegen.OpCall, A: 5}, []byte{0x05}},
		{"native", codegen.Instruction{Op: codegen.OpNative, A: 10}, []byte{0x0a}},
		{"jump", codegen.Instruction{Op: codegen.OpJump, A: 12}, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0c}},
		{"branch", codegen.Instruction{Op: codegen.OpBranch, A: 52}, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x34}},
	}
	for _, c := range cases {
		got, err := encodeOperand(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("%s: encodeOperand = %v, want %v", c.name, got, c.want)
		}
		if len(got) > operandWidth {
			t.Errorf("%s: operand %d bytes exceeds %d-byte budget", c.name, len(got), operandWidth)
		}
	}
}

func TestEncodeInstructionPadsToEightBytes(t *testing.T) {
	got, err := encodeInstruction(codegen.Instruction{Op: codegen.OpCall, A: 5})
	if err != nil {
		t.Fatalf("encodeInstruction: %v", err)
	}
	if len(got) != instructionWidth {
		t.Fatalf("encodeInstruction length = %d, want %d", len(got), instructionWidth)
	}
	want := []byte{byte(codegen.OpCall), 0x05, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("encodeInstruction = %v, want %v", got, want)
	}
}

// TestEncodeModuleS1 reproduces the Collatz scenario's full encode,
// checking only that every phase (header, stream, pools) concatenates
// without error and that decompression inverts compression end to end.
func TestEncodeModuleS1(t *testing.T) {
	mod := &codegen.Module{
		Instructions: []codegen.Instruction{
			{Op: codegen.OpLoadInt, A: 0},
			{Op: codegen.OpLoadInt, A: 2},
			{Op: codegen.OpLoadName, A: 1, B: 0},
			{Op: codegen.OpNative, A: 8},
			{Op: codegen.OpNative, A: 3},
			{Op: codegen.OpBranch, A: 2},
			{Op: codegen.OpLoadFunc, A: 0},
			{Op: codegen.OpJump, A: 1},
			{Op: codegen.OpLoadFunc, A: 1},
			{Op: codegen.OpStoreName, A: 1},
		},
		Functions: [][]codegen.Instruction{
			{
				{Op: codegen.OpLoadInt, A: 1},
				{Op: codegen.OpLoadName, A: 1, B: 0},
				{Op: codegen.OpLoadInt, A: 3},
				{Op: codegen.OpNative, A: 9},
				{Op: codegen.OpNative, A: 1},
			},
			{
				{Op: codegen.OpLoadName, A: 1, B: 0},
			},
		},
	}

	raw, err := Encode(mod, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	compressed, err := Encode(mod, Options{Compress: true})
	if err != nil {
		t.Fatalf("Encode (compressed): %v", err)
	}
	back, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(back, raw) {
		t.Fatalf("compress/decompress round trip mismatch for encoded module")
	}
}
