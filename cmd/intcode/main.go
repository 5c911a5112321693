package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"intcode/internal/code"
	"intcode/internal/config"
	"intcode/internal/diag"
	"intcode/internal/gfx"
	"intcode/internal/logging"
	"intcode/internal/repl"
	"intcode/internal/runtimeio"
	"intcode/internal/screen"
	"intcode/internal/tools"
	"intcode/internal/vm"
)

type cli struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
}

func main() {
	c := &cli{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: runtimeio.IsInteractive(),
	}
	os.Exit(c.run(os.Args[1:]))
}

var commands = map[string]func(*cli, []string) int{
	"run":    (*cli).runProgram,
	"dis":    (*cli).runDis,
	"check":  (*cli).runCheck,
	"pack":   (*cli).runPack,
	"repl":   (*cli).runRepl,
	"screen": (*cli).runScreen,
	"tools":  (*cli).runTools,
}

func (c *cli) run(args []string) int {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd(c, args[1:])
		}
	}
	return c.runProgram(args)
}

func (c *cli) fail(stage string, err error) int {
	fmt.Fprintf(c.stderr, "%s error: %v\n", stage, err)
	return 1
}

// patchFlags collects repeated -patch addr=value arguments.
type patchFlags []vm.Patch

func (p *patchFlags) String() string {
	parts := make([]string, len(*p))
	for i, pt := range *p {
		parts[i] = fmt.Sprintf("%d=%d", pt.Addr, pt.Value)
	}
	return strings.Join(parts, ",")
}

func (p *patchFlags) Set(s string) error {
	addr, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("patch %q: want addr=value", s)
	}
	a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
	if err != nil || a < 0 {
		return fmt.Errorf("patch %q: invalid address", s)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("patch %q: invalid value", s)
	}
	*p = append(*p, vm.Patch{Addr: a, Value: v})
	return nil
}

// options is the merged view of the manifest and the command line.
type options struct {
	program   string
	inputs    []int64
	patches   []vm.Patch
	ascii     bool
	maxSteps  int64
	maxMemory int64
	verbosity int
	logFile   string
	peek      []int64
}

type runFlags struct {
	fs        *flag.FlagSet
	in        *string
	patches   patchFlags
	ascii     *bool
	maxSteps  *int64
	maxMemory *int64
	config    *string
	verbosity *int
	logFile   *string
	peek      *string
	text      *bool
}

func newRunFlags(name string) *runFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &runFlags{fs: fs}
	f.in = fs.String("in", "", "comma-separated input values")
	fs.Var(&f.patches, "patch", "addr=value written before the run (repeatable)")
	f.ascii = fs.Bool("ascii", false, "text input and output as character codes")
	f.maxSteps = fs.Int64("max-steps", 0, "instruction limit (0 = unlimited)")
	f.maxMemory = fs.Int64("max-mem", 0, "memory limit in cells (0 = unlimited)")
	f.config = fs.String("config", "", "path to "+config.FileName)
	f.verbosity = fs.Int("v", 0, "log verbosity")
	f.logFile = fs.String("log", "", "log file (default stderr)")
	f.peek = fs.String("peek", "", "comma-separated addresses to print after halt")
	if name == "screen" {
		f.text = fs.Bool("text", false, "print the final screen instead of opening a window")
	}
	return f
}

// resolve merges manifest settings with flags; flags that were set win.
func (f *runFlags) resolve() (*options, error) {
	opts := &options{}
	if f.fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one program, got %d", f.fs.NArg())
	}
	if f.fs.NArg() == 1 {
		opts.program = f.fs.Arg(0)
	}

	var man *config.Manifest
	var err error
	switch {
	case *f.config != "":
		man, err = config.Load(*f.config)
	case opts.program != "":
		man, err = config.FindAndLoad(filepath.Dir(opts.program))
	default:
		cwd, cerr := os.Getwd()
		if cerr != nil {
			cwd = "."
		}
		man, err = config.FindAndLoad(cwd)
	}
	if err != nil {
		return nil, err
	}

	if man != nil {
		if opts.program == "" {
			opts.program = man.ProgramPath()
		}
		opts.inputs = man.Inputs
		opts.ascii = man.ASCII
		opts.maxSteps = man.Limits.MaxSteps
		opts.maxMemory = man.Limits.MaxMemory
		opts.verbosity = man.Log.Verbosity
		opts.logFile = man.Log.File
		if opts.logFile != "" && !filepath.IsAbs(opts.logFile) {
			opts.logFile = filepath.Join(man.Dir, opts.logFile)
		}
		patches, err := man.PatchList()
		if err != nil {
			return nil, err
		}
		for _, p := range patches {
			opts.patches = append(opts.patches, vm.Patch{Addr: p.Addr, Value: p.Value})
		}
	}
	if opts.program == "" {
		return nil, errors.New("no program given and no " + config.FileName + " found")
	}

	var setErr error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "in":
			vals, err := runtimeio.ParseValues(*f.in, false)
			if err != nil && setErr == nil {
				setErr = err
			}
			opts.inputs = vals
		case "ascii":
			opts.ascii = *f.ascii
		case "max-steps":
			opts.maxSteps = *f.maxSteps
		case "max-mem":
			opts.maxMemory = *f.maxMemory
		case "v":
			opts.verbosity = *f.verbosity
		case "log":
			opts.logFile = *f.logFile
		case "peek":
			vals, err := runtimeio.ParseValues(*f.peek, false)
			if err != nil && setErr == nil {
				setErr = err
			}
			opts.peek = vals
		}
	})
	if setErr != nil {
		return nil, setErr
	}
	if opts.maxSteps < 0 || opts.maxMemory < 0 {
		return nil, errors.New("limits must not be negative")
	}
	// Command-line patches are applied after the manifest's.
	opts.patches = append(opts.patches, f.patches...)
	return opts, nil
}

func (c *cli) setup(f *runFlags, args []string) (*options, code.Program, int) {
	if err := f.fs.Parse(args); err != nil {
		fmt.Fprintf(c.stderr, "usage: intcode %s [flags] [program]: %v\n", f.fs.Name(), err)
		return nil, nil, 1
	}
	opts, err := f.resolve()
	if err != nil {
		return nil, nil, c.fail("config", err)
	}
	logging.Configure(opts.verbosity, opts.logFile)

	prog, err := loadProgram(opts.program)
	if err != nil {
		return nil, nil, c.fail("load", err)
	}
	logging.Get("cli").Infof("loaded %d words from %s", len(prog), opts.program)
	return opts, prog, 0
}

func loadProgram(path string) (code.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := code.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func (c *cli) newVM(opts *options, prog code.Program) *vm.VM {
	m := vm.New(prog).ReadVec(opts.inputs...)
	m.SetMaxSteps(opts.maxSteps)
	m.SetMaxMemory(opts.maxMemory)
	return m
}

func (c *cli) runProgram(args []string) int {
	opts, prog, status := c.setup(newRunFlags("run"), args)
	if status != 0 {
		return status
	}

	var prompt io.Writer
	if c.interactive {
		prompt = c.stderr
	}
	m := c.newVM(opts, prog).
		ReadFrom(runtimeio.NewLineSource(c.stdin, prompt, "in> ", opts.ascii)).
		WriteTo(vm.SinkFunc(func(v int64) error {
			_, err := fmt.Fprint(c.stdout, runtimeio.FormatValue(v, opts.ascii))
			return err
		}))

	if err := m.RunWith(opts.patches...); err != nil {
		return c.fail("vm", err)
	}
	logging.Get("cli").Infof("halted after %d steps", m.Steps())
	for _, addr := range opts.peek {
		fmt.Fprintf(c.stdout, "[%d] = %d\n", addr, m.At(addr))
	}
	return 0
}

func (c *cli) runDis(args []string) int {
	_, prog, status := c.setup(newRunFlags("dis"), args)
	if status != 0 {
		return status
	}
	fmt.Fprint(c.stdout, code.Disassemble(prog))
	return 0
}

func (c *cli) runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "usage: intcode check <program>...")
		return 1
	}

	status := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return c.fail("read", err)
		}
		for _, d := range diag.Check(string(data)) {
			fmt.Fprintln(c.stdout, d.Format(path))
			if d.Severity == diag.SeverityError {
				status = 1
			}
		}
	}
	return status
}

func (c *cli) runPack(args []string) int {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "output image (default <program>.icb)")
	name := fs.String("name", "", "program name stored in the image")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: intcode pack [-o <file>] [-name <name>] <program>")
		return 1
	}

	src := fs.Arg(0)
	prog, err := loadProgram(src)
	if err != nil {
		return c.fail("load", err)
	}
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if *out == "" {
		*out = strings.TrimSuffix(src, filepath.Ext(src)) + ".icb"
	}

	data, err := code.MarshalImage(prog, *name)
	if err != nil {
		return c.fail("pack", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return c.fail("pack", err)
	}
	fmt.Fprintf(c.stdout, "wrote %s (%d words)\n", *out, len(prog))
	return 0
}

func (c *cli) runRepl(args []string) int {
	opts, prog, status := c.setup(newRunFlags("repl"), args)
	if status != 0 {
		return status
	}
	if !c.interactive {
		return c.fail("repl", runtimeio.ErrInputUnavailable)
	}
	m, err := repl.Start(c.stdin, c.stdout, prog, repl.Options{
		ASCII:  opts.ascii,
		Inputs: opts.inputs,
		Limits: repl.Limits{MaxSteps: opts.maxSteps, MaxMemory: opts.maxMemory},
	})
	if err != nil {
		return 1
	}
	for _, addr := range opts.peek {
		fmt.Fprintf(c.stdout, "[%d] = %d\n", addr, m.At(addr))
	}
	return 0
}

func (c *cli) runScreen(args []string) int {
	f := newRunFlags("screen")
	opts, prog, status := c.setup(f, args)
	if status != 0 {
		return status
	}

	m := c.newVM(opts, prog)
	for _, p := range opts.patches {
		if err := m.Memory().Set(p.Addr, p.Value); err != nil {
			return c.fail("vm", fmt.Errorf("patch [%d]=%d: %w", p.Addr, p.Value, err))
		}
	}

	if *f.text {
		grid, err := screen.Collect(m)
		if err != nil {
			return c.fail("vm", err)
		}
		fmt.Fprint(c.stdout, grid.String())
		fmt.Fprintf(c.stdout, "status: %d\n", grid.Status)
		return 0
	}

	if err := gfx.Run(m, gfx.Options{Title: filepath.Base(opts.program)}); err != nil {
		return c.fail("screen", err)
	}
	return 0
}

func (c *cli) runTools(args []string) int {
	const usage = "usage: intcode tools install [-bin <dir>]"
	if len(args) == 0 || args[0] != "install" {
		fmt.Fprintln(c.stderr, usage)
		return 2
	}

	fs := flag.NewFlagSet("tools install", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	binDir := fs.String("bin", "bin", "output directory for tools")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(c.stderr, usage)
		return 2
	}

	if err := tools.Install(tools.InstallOptions{BinDir: *binDir, Output: c.stderr}); err != nil {
		return c.fail("install", err)
	}
	return 0
}
