package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"intcode/internal/code"
	"intcode/internal/limits"
	"intcode/internal/logging"
)

var (
	ErrNegativeAddress = errors.New("negative address")
	ErrReadOutOfInput  = errors.New("read out of input")
	ErrAlreadyHalted   = errors.New("already halted")
)

type State int

const (
	Running State = iota
	Halted
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return "faulted"
	}
}

// Fault is a runtime error raised by the instruction at IP. Once a VM has
// faulted every further run returns the same Fault.
type Fault struct {
	IP   int64
	Word int64
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at ip %d (word %d): %v", f.IP, f.Word, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Patch is a memory write applied before execution starts.
type Patch struct {
	Addr  int64
	Value int64
}

// VM executes one Intcode program. It is not safe for concurrent use; create
// one per run.
type VM struct {
	mem   *Memory
	ip    int64
	base  int64
	state State
	fault error

	input  []int64
	source Source
	output []int64
	sink   Sink

	steps limits.Steps
	log   commonlog.Logger
}

// New returns a VM over a private copy of p with empty I/O.
func New(p code.Program) *VM {
	return &VM{
		mem: NewMemory(p),
		log: logging.Get("vm"),
	}
}

// ReadVec queues input values. It may be called between runs to feed a
// suspended program.
func (m *VM) ReadVec(vals ...int64) *VM {
	m.input = append(m.input, vals...)
	return m
}

// ReadFrom sets a fallback source consulted when the input queue is empty.
func (m *VM) ReadFrom(src Source) *VM {
	m.source = src
	return m
}

func (m *VM) WriteTo(s Sink) *VM {
	m.sink = s
	return m
}

func (m *VM) SetMaxSteps(max int64) {
	m.steps = limits.NewSteps(max)
}

// SetMaxMemory caps how many cells the tape may grow by. Zero is unlimited.
func (m *VM) SetMaxMemory(max int64) {
	m.mem.SetBudget(limits.NewBudget(max))
}

func (m *VM) State() State          { return m.state }
func (m *VM) IP() int64             { return m.ip }
func (m *VM) RelativeBase() int64   { return m.base }
func (m *VM) Steps() int64          { return m.steps.Count() }
func (m *VM) Memory() *Memory       { return m.mem }
func (m *VM) PendingInput() []int64 { return append([]int64(nil), m.input...) }

// Output returns every value produced so far.
func (m *VM) Output() []int64 {
	return append([]int64(nil), m.output...)
}

// At reads memory for inspection. Negative addresses read as zero.
func (m *VM) At(addr int64) int64 {
	v, err := m.mem.Get(addr)
	if err != nil {
		return 0
	}
	return v
}

func (m *VM) runnable() error {
	switch m.state {
	case Halted:
		return ErrAlreadyHalted
	case Faulted:
		return m.fault
	}
	return nil
}

func (m *VM) raise(word int64, err error) error {
	f := &Fault{IP: m.ip, Word: word, Err: err}
	m.state = Faulted
	m.fault = f
	m.log.Debugf("%v (steps=%d)", f, m.steps.Count())
	return f
}

// step executes one instruction and reports the value it output, if any.
func (m *VM) step() (int64, bool, error) {
	if err := m.runnable(); err != nil {
		return 0, false, err
	}

	word, err := m.mem.Get(m.ip)
	if err != nil {
		return 0, false, m.raise(0, err)
	}
	if err := m.steps.Tick(); err != nil {
		return 0, false, m.raise(word, err)
	}
	ins, err := code.Decode(word)
	if err != nil {
		return 0, false, m.raise(word, err)
	}

	switch ins.Op {
	case code.OpAdd, code.OpMul, code.OpLessThan, code.OpEquals:
		a, b, dst, err := m.binary(ins)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		var v int64
		switch ins.Op {
		case code.OpAdd:
			v = a + b
		case code.OpMul:
			v = a * b
		case code.OpLessThan:
			v = boolWord(a < b)
		case code.OpEquals:
			v = boolWord(a == b)
		}
		if err := m.mem.Set(dst, v); err != nil {
			return 0, false, m.raise(word, err)
		}

	case code.OpInput:
		dst, err := m.target(ins, 0)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		v, err := m.nextInput()
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		if err := m.mem.Set(dst, v); err != nil {
			return 0, false, m.raise(word, err)
		}

	case code.OpOutput:
		v, err := m.param(ins, 0)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		m.output = append(m.output, v)
		if m.sink != nil {
			if err := m.sink.Emit(v); err != nil {
				return 0, false, m.raise(word, fmt.Errorf("output sink: %w", err))
			}
		}
		m.ip += int64(ins.Width())
		return v, true, nil

	case code.OpJumpIfTrue, code.OpJumpIfFalse:
		cond, err := m.param(ins, 0)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		dest, err := m.param(ins, 1)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		if (cond != 0) == (ins.Op == code.OpJumpIfTrue) {
			m.ip = dest
			return 0, false, nil
		}

	case code.OpAdjustRelativeBase:
		delta, err := m.param(ins, 0)
		if err != nil {
			return 0, false, m.raise(word, err)
		}
		m.base += delta

	case code.OpHalt:
		m.state = Halted
		m.log.Debugf("halted at ip %d after %d steps", m.ip, m.steps.Count())
		return 0, false, nil
	}

	m.ip += int64(ins.Width())
	return 0, false, nil
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// param resolves read operand k of the instruction at ip.
func (m *VM) param(ins code.Instruction, k int) (int64, error) {
	raw, err := m.mem.Get(m.ip + 1 + int64(k))
	if err != nil {
		return 0, err
	}
	switch ins.Modes[k] {
	case code.ModeImmediate:
		return raw, nil
	case code.ModeRelative:
		return m.mem.Get(m.base + raw)
	default:
		return m.mem.Get(raw)
	}
}

// target resolves write operand k to an address. Decode has already
// rejected immediate mode here.
func (m *VM) target(ins code.Instruction, k int) (int64, error) {
	raw, err := m.mem.Get(m.ip + 1 + int64(k))
	if err != nil {
		return 0, err
	}
	addr := raw
	if ins.Modes[k] == code.ModeRelative {
		addr = m.base + raw
	}
	if addr < 0 {
		return 0, fmt.Errorf("%w %d", ErrNegativeAddress, addr)
	}
	return addr, nil
}

func (m *VM) binary(ins code.Instruction) (int64, int64, int64, error) {
	a, err := m.param(ins, 0)
	if err != nil {
		return 0, 0, 0, err
	}
	b, err := m.param(ins, 1)
	if err != nil {
		return 0, 0, 0, err
	}
	dst, err := m.target(ins, 2)
	if err != nil {
		return 0, 0, 0, err
	}
	return a, b, dst, nil
}

func (m *VM) nextInput() (int64, error) {
	if len(m.input) > 0 {
		v := m.input[0]
		m.input = m.input[1:]
		return v, nil
	}
	if m.source == nil {
		return 0, ErrReadOutOfInput
	}
	v, err := m.source.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrReadOutOfInput
		}
		return 0, fmt.Errorf("input source: %w", err)
	}
	return v, nil
}
