package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/livyc/internal/codegen"
)

// instructionWidth is the fixed size of one encoded instruction: one
// opcode byte plus a 7-byte operand payload, zero-padded on the right
// when the operand is narrower (spec.md §4.9).
const instructionWidth = 8

// operandWidth is the operand payload budget every opcode must fit
// within.
const operandWidth = instructionWidth - 1

func encodeInstruction(instr codegen.Instruction) ([]byte, error) {
	operand, err := encodeOperand(instr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", instr.Op, err)
	}
	if len(operand) > operandWidth {
		return nil, fmt.Errorf("%s: operand %d bytes exceeds the %d-byte budget", instr.Op, len(operand), operandWidth)
	}
	frame := make([]byte, instructionWidth)
	frame[0] = byte(instr.Op)
	copy(frame[1:], operand)
	return frame, nil
}

// encodeOperand returns only the operand payload for instr — never the
// opcode byte, and never right-padded to the full width (the caller
// does both). Mirrors tests/test_codegen.py's test_encode_operands,
// which asserts exactly this about the original encoder.
func encodeOperand(instr codegen.Instruction) ([]byte, error) {
	switch instr.Op {
	case codegen.OpLoadBool:
		if instr.A != 0 {
			return []byte{0xff}, nil
		}
		return []byte{0x00}, nil

	case codegen.OpLoadInt:
		return encodeSignMagnitude(instr.A)

	case codegen.OpLoadFloat:
		bits := math.Float32bits(float32(instr.Float))
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, bits)
		return buf, nil

	case codegen.OpLoadString, codegen.OpLoadFunc:
		return encodeUint(instr.A, 7)

	case codegen.OpLoadName, codegen.OpStoreName:
		depth, err := encodeUint(instr.A, 3)
		if err != nil {
			return nil, fmt.Errorf("depth: %w", err)
		}
		slot, err := encodeUint(instr.B, 4)
		if err != nil {
			return nil, fmt.Errorf("slot: %w", err)
		}
		return append(depth, slot...), nil

	case codegen.OpBuildList:
		return encodeUint(instr.A, 4)

	case codegen.OpBuildTuple, codegen.OpCall, codegen.OpNative:
		return encodeUint(instr.A, 1)

	case codegen.OpJump, codegen.OpBranch:
		return encodeUint(instr.A, 7)

	default:
		return nil, fmt.Errorf("unhandled opcode %v", instr.Op)
	}
}

// encodeUint writes v as an unsigned big-endian integer in exactly
// width bytes. v must be representable in that width.
func encodeUint(v int64, width int) ([]byte, error) {
	if v < 0 {
		return nil, fmt.Errorf("value %d is negative", v)
	}
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], uint64(v))
	out := full[8-width:]
	for _, b := range full[:8-width] {
		if b != 0 {
			return nil, fmt.Errorf("value %d does not fit in %d bytes", v, width)
		}
	}
	return append([]byte(nil), out...), nil
}

// encodeSignMagnitude is LOAD_INT's operand format: a 1-byte sign
// marker (0x00 non-negative, 0xf0 negative) followed by a 4-byte
// unsigned big-endian magnitude. Recovered from
// tests/test_codegen.py's LOAD_INT(-4200) and the positive LOAD_INT
// instructions embedded in its LOAD_FUNC case — see the package doc.
func encodeSignMagnitude(v int64) ([]byte, error) {
	sign := byte(0x00)
	mag := v
	if v < 0 {
		sign = 0xf0
		mag = -v
	}
	if mag > math.MaxUint32 {
		return nil, fmt.Errorf("value %d's magnitude does not fit in 4 bytes", v)
	}
	buf := make([]byte, 5)
	buf[0] = sign
	binary.BigEndian.PutUint32(buf[1:], uint32(mag))
	return buf, nil
}
