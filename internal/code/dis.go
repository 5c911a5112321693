package code

import (
	"bytes"
	"fmt"
)

// Line is one entry of a linear sweep over a program. Words that do not
// decode are reported as single-word data lines with Err set.
type Line struct {
	Addr     int
	Ins      Instruction
	Operands []int64
	Err      error
}

func (l Line) Width() int {
	if l.Err != nil {
		return 1
	}
	return l.Ins.Width()
}

// Walk decodes the program from address 0 assuming instructions are laid
// out back to back. It cannot see jump targets or self-modification, so
// it is a static view only.
func Walk(p Program) []Line {
	var lines []Line
	for i := 0; i < len(p); {
		ins, err := Decode(p[i])
		if err != nil {
			lines = append(lines, Line{Addr: i, Operands: []int64{p[i]}, Err: err})
			i++
			continue
		}
		end := i + ins.Width()
		if end > len(p) {
			end = len(p)
		}
		lines = append(lines, Line{Addr: i, Ins: ins, Operands: append([]int64(nil), p[i+1:end]...)})
		i += ins.Width()
	}
	return lines
}

// LineAt returns the sweep line covering addr.
func LineAt(lines []Line, addr int) (Line, bool) {
	for _, l := range lines {
		if addr >= l.Addr && addr < l.Addr+l.Width() {
			return l, true
		}
	}
	return Line{}, false
}

func FormatOperand(m Mode, v int64) string {
	switch m {
	case ModeImmediate:
		return fmt.Sprintf("%d", v)
	case ModeRelative:
		if v < 0 {
			return fmt.Sprintf("[rb%d]", v)
		}
		return fmt.Sprintf("[rb+%d]", v)
	default:
		return fmt.Sprintf("[%d]", v)
	}
}

func (l Line) String() string {
	if l.Err != nil {
		return fmt.Sprintf("%04d DATA %d", l.Addr, l.Operands[0])
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "%04d %s", l.Addr, l.Ins.Def.Name)
	for k, v := range l.Operands {
		fmt.Fprintf(&out, " %s", FormatOperand(l.Ins.Modes[k], v))
	}
	if missing := l.Ins.Def.Operands - len(l.Operands); missing > 0 {
		fmt.Fprintf(&out, " <truncated %d>", missing)
	}
	return out.String()
}

func Disassemble(p Program) string {
	var out bytes.Buffer
	for _, l := range Walk(p) {
		out.WriteString(l.String())
		out.WriteByte('\n')
	}
	return out.String()
}
