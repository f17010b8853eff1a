package encoding

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/livyc/internal/codegen"
)

// TestEncodeModuleS1Snapshot pins the full byte-exact encoding of the
// Collatz scenario (spec.md §8, S1) with a go-snaps golden fixture,
// the way the teacher pins its own fixture output in
// internal/interp/fixture_test.go. TestEncodeModuleS1 already checks
// that the compressed stream decompresses back intact; this snapshot
// pins the bytes themselves and catches any unintended byte-for-byte drift in the header,
// stream, or pool layout across future changes.
func TestEncodeModuleS1Snapshot(t *testing.T) {
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
		Strings: []string{"collatz"},
	}

	raw, err := Encode(mod, Options{Encoding: "UTF8"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%x", raw))

	compressed, err := Encode(mod, Options{Encoding: "UTF8", Compress: true})
	if err != nil {
		t.Fatalf("Encode (compressed): %v", err)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%x", compressed))
}

// TestEncodeHeaderSnapshot pins every header field layout combination
// this package exercises elsewhere with byte-exact assertions
// (TestEncodeHeader), giving a single place future header-format
// changes show up as a diff rather than a silent pass.
func TestEncodeHeaderSnapshot(t *testing.T) {
	cases := []struct {
		name                                         string
		streamSize, functionPoolSize, stringPoolSize int
		libMode                                      bool
		encodingName                                 string
	}{
		{"utf8", 111, 18, 53, false, "UTF8"},
		{"latin1 lib mode", 0, 84, 101, true, "Latin-1"},
	}
	for _, c := range cases {
		got, err := EncodeHeader(c.streamSize, c.functionPoolSize, c.stringPoolSize, c.libMode, c.encodingName)
		if err != nil {
			t.Fatalf("%s: EncodeHeader: %v", c.name, err)
		}
		snaps.MatchSnapshot(t, c.name, fmt.Sprintf("%x", got))
	}
}
