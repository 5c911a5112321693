package code

import (
	"errors"
	"fmt"
)

type Opcode int64

const (
	OpAdd                Opcode = 1
	OpMul                Opcode = 2
	OpInput              Opcode = 3
	OpOutput             Opcode = 4
	OpJumpIfTrue         Opcode = 5
	OpJumpIfFalse        Opcode = 6
	OpLessThan           Opcode = 7
	OpEquals             Opcode = 8
	OpAdjustRelativeBase Opcode = 9
	OpHalt               Opcode = 99
)

// Mode is an operand addressing mode.
type Mode int8

const (
	ModePosition  Mode = 0
	ModeImmediate Mode = 1
	ModeRelative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	case ModeRelative:
		return "relative"
	default:
		return fmt.Sprintf("mode(%d)", int8(m))
	}
}

// MaxOperands is the widest operand list of any opcode.
const MaxOperands = 3

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrInvalidMode   = errors.New("invalid addressing mode")
)

type Definition struct {
	Name     string
	Operands int
	// Write is the index of the operand written by the instruction, or -1.
	Write int
}

// Width is the instruction length in words, opcode included.
func (d *Definition) Width() int { return 1 + d.Operands }

var definitions = map[Opcode]*Definition{
	OpAdd:                {"ADD", 3, 2},
	OpMul:                {"MUL", 3, 2},
	OpInput:              {"IN", 1, 0},
	OpOutput:             {"OUT", 1, -1},
	OpJumpIfTrue:         {"JNZ", 2, -1},
	OpJumpIfFalse:        {"JZ", 2, -1},
	OpLessThan:           {"LT", 3, 2},
	OpEquals:             {"EQ", 3, 2},
	OpAdjustRelativeBase: {"ARB", 1, -1},
	OpHalt:               {"HALT", 0, -1},
}

func Lookup(op Opcode) (*Definition, bool) {
	def, ok := definitions[op]
	return def, ok
}

func (op Opcode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("Opcode(%d)", int64(op))
}

// Make encodes an instruction word and its operands. Missing modes default
// to position mode.
func Make(op Opcode, modes []Mode, operands ...int64) []int64 {
	word := int64(op)
	scale := int64(100)
	for _, m := range modes {
		word += int64(m) * scale
		scale *= 10
	}
	out := make([]int64, 0, 1+len(operands))
	out = append(out, word)
	return append(out, operands...)
}
