package repl

import (
	"fmt"
	"io"

	"intcode/internal/code"
	"intcode/internal/logging"
	"intcode/internal/runtimeio"
	"intcode/internal/vm"
)

const prompt = "in> "

type Limits struct {
	MaxSteps  int64
	MaxMemory int64
}

type Options struct {
	ASCII  bool
	Inputs []int64
	Limits Limits
}

// Start runs prog interactively: outputs are written to out as they are
// produced and a line is read from in whenever the program wants input and
// the preset inputs are used up. It returns the VM so callers can inspect
// final memory.
func Start(in io.Reader, out io.Writer, prog code.Program, opts Options) (*vm.VM, error) {
	log := logging.Get("repl")

	m := vm.New(prog).ReadVec(opts.Inputs...)
	m.SetMaxSteps(opts.Limits.MaxSteps)
	m.SetMaxMemory(opts.Limits.MaxMemory)
	m.ReadFrom(runtimeio.NewLineSource(in, out, prompt, opts.ASCII))

	fmt.Fprintf(out, "Intcode session: %d words (Ctrl+D to end input)\n", len(prog))
	for {
		v, ok, err := m.RunToOut()
		if err != nil {
			fmt.Fprintln(out, "vm error:", err)
			return m, err
		}
		if !ok {
			break
		}
		fmt.Fprint(out, runtimeio.FormatValue(v, opts.ASCII))
	}
	log.Infof("session halted after %d steps (relative base %d)", m.Steps(), m.RelativeBase())
	if left := m.PendingInput(); len(left) > 0 {
		fmt.Fprintf(out, "unread inputs: %v\n", left)
	}
	fmt.Fprintf(out, "halted after %d steps\n", m.Steps())
	return m, nil
}
