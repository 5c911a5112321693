package progtest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"intcode/internal/code"
	"intcode/internal/limits"
	"intcode/internal/runtimeio"
	"intcode/internal/vm"
)

type Mode string

const (
	// ModeRun executes with RunWith.
	ModeRun Mode = "run"
	// ModeStep pumps RunToOut until the program halts.
	ModeStep Mode = "step"
	// ModeImage round-trips the program through a CBOR image first.
	ModeImage Mode = "image"
)

type Options struct {
	Mode      Mode
	Source    string
	Inputs    []int64
	Patches   []vm.Patch
	ASCII     bool
	MaxSteps  int64
	MaxMemory int64
}

type Expectation struct {
	Stdout      string
	ErrKind     string
	ErrContains string
	// Memory lists cells that must hold the given values after the run.
	Memory map[int64]int64
}

type Result struct {
	Stdout  string
	Output  []int64
	ErrKind string
	ErrMsg  string
	VM      *vm.VM
}

// Kind names the error category of err, or "" for nil.
func Kind(err error) string {
	var stepErr limits.MaxStepsError
	var memErr limits.MaxMemoryError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, code.ErrParse):
		return "parse"
	case errors.Is(err, vm.ErrNegativeAddress):
		return "negative_address"
	case errors.Is(err, code.ErrInvalidMode):
		return "invalid_mode"
	case errors.Is(err, code.ErrUnknownOpcode):
		return "unknown_opcode"
	case errors.Is(err, vm.ErrReadOutOfInput):
		return "read_out_of_input"
	case errors.Is(err, vm.ErrAlreadyHalted):
		return "already_halted"
	case errors.As(err, &stepErr):
		return "max_steps"
	case errors.As(err, &memErr):
		return "max_memory"
	default:
		return "other"
	}
}

func Run(t *testing.T, opts Options) Result {
	t.Helper()

	res := Result{}
	prog, err := code.Parse(opts.Source)
	if err != nil {
		res.ErrKind = Kind(err)
		res.ErrMsg = err.Error()
		return res
	}
	if opts.Mode == ModeImage {
		data, err := code.MarshalImage(prog, t.Name())
		if err != nil {
			t.Fatalf("marshal image: %v", err)
		}
		prog, err = code.Load(data)
		if err != nil {
			t.Fatalf("load image: %v", err)
		}
	}

	m := vm.New(prog).ReadVec(opts.Inputs...)
	m.SetMaxSteps(opts.MaxSteps)
	m.SetMaxMemory(opts.MaxMemory)
	res.VM = m

	switch opts.Mode {
	case ModeRun, ModeImage:
		err = m.RunWith(opts.Patches...)
	case ModeStep:
		err = pump(m, opts.Patches)
	default:
		t.Fatalf("unknown mode: %q", opts.Mode)
	}
	res.Output = m.Output()
	if err != nil {
		res.ErrKind = Kind(err)
		res.ErrMsg = err.Error()
	}

	var b strings.Builder
	for _, v := range res.Output {
		b.WriteString(runtimeio.FormatValue(v, opts.ASCII))
	}
	res.Stdout = b.String()
	return res
}

// pump drives m one output at a time. Values stay in m.Output.
func pump(m *vm.VM, patches []vm.Patch) error {
	for _, p := range patches {
		if err := m.Memory().Set(p.Addr, p.Value); err != nil {
			return fmt.Errorf("patch [%d]=%d: %w", p.Addr, p.Value, err)
		}
	}
	for {
		_, ok, err := m.RunToOut()
		if err != nil || !ok {
			return err
		}
	}
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	ok, reason := MatchStdout(res.Stdout, StdoutExpectation{
		Mode:  StdoutExact,
		Value: exp.Stdout,
	})
	if !ok {
		t.Fatal(reason)
	}

	wantErr := exp.ErrKind != "" || exp.ErrContains != ""
	gotErr := res.ErrKind != ""

	if wantErr && !gotErr {
		t.Fatalf("expected error %q/%q, got none", exp.ErrKind, exp.ErrContains)
	}
	if !wantErr && gotErr {
		t.Fatalf("unexpected error: kind=%q msg=%q", res.ErrKind, res.ErrMsg)
	}

	if exp.ErrKind != "" && res.ErrKind != exp.ErrKind {
		t.Fatalf("error kind mismatch: expected %q, got %q (%s)", exp.ErrKind, res.ErrKind, res.ErrMsg)
	}
	if exp.ErrContains != "" && !strings.Contains(res.ErrMsg, exp.ErrContains) {
		t.Fatalf("error message mismatch: expected to contain %q, got %q", exp.ErrContains, res.ErrMsg)
	}

	for addr, want := range exp.Memory {
		if res.VM == nil {
			t.Fatalf("no VM to inspect memory [%d]", addr)
		}
		if got := res.VM.At(addr); got != want {
			t.Fatalf("memory [%d]: expected %d, got %d", addr, want, got)
		}
	}
}

func ExpectAll(exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{
		ModeRun:   exp,
		ModeStep:  exp,
		ModeImage: exp,
	}
}

func Expect(mode Mode, exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{mode: exp}
}
