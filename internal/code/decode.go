package code

import "fmt"

// Instruction is a decoded instruction word. It is never stored; the VM
// decodes it from memory at every step.
type Instruction struct {
	Op    Opcode
	Def   *Definition
	Modes [MaxOperands]Mode
}

// Decode splits a raw word into its opcode and per-operand modes. Mode
// digits beyond the opcode's operand count are ignored.
func Decode(word int64) (Instruction, error) {
	if word < 0 {
		return Instruction{}, fmt.Errorf("%w %d", ErrUnknownOpcode, word)
	}
	op := Opcode(word % 100)
	def, ok := Lookup(op)
	if !ok {
		return Instruction{}, fmt.Errorf("%w %d", ErrUnknownOpcode, word)
	}

	ins := Instruction{Op: op, Def: def}
	digits := word / 100
	for k := 0; k < def.Operands; k++ {
		m := Mode(digits % 10)
		digits /= 10
		switch m {
		case ModePosition, ModeRelative:
		case ModeImmediate:
			if k == def.Write {
				return Instruction{}, fmt.Errorf("%w: %s operand %d is an immediate write target (word %d)", ErrInvalidMode, def.Name, k+1, word)
			}
		default:
			return Instruction{}, fmt.Errorf("%w %d: %s operand %d (word %d)", ErrInvalidMode, int8(m), def.Name, k+1, word)
		}
		ins.Modes[k] = m
	}
	return ins, nil
}

func (ins Instruction) Width() int { return ins.Def.Width() }
