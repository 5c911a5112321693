package tools

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"intcode/internal/logging"
)

// Binaries are the commands installed by Install, as package paths
// relative to the module root.
var Binaries = []string{"./cmd/intcode", "./cmd/intcode-lsp"}

type InstallOptions struct {
	BinDir string
	// Output receives the go tool's output. Nil means os.Stderr.
	Output io.Writer
}

type Target struct {
	Package string
	Out     string
}

// Targets lists where each binary will be written.
func Targets(binDir string) []Target {
	if binDir == "" {
		binDir = "bin"
	}
	out := make([]Target, 0, len(Binaries))
	for _, pkg := range Binaries {
		name := filepath.Base(pkg)
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		out = append(out, Target{Package: pkg, Out: filepath.Join(binDir, name)})
	}
	return out
}

func Install(opts InstallOptions) error {
	if opts.BinDir == "" {
		opts.BinDir = "bin"
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if err := os.MkdirAll(opts.BinDir, 0o755); err != nil {
		return err
	}

	log := logging.Get("tools")
	for _, t := range Targets(opts.BinDir) {
		log.Infof("building %s -> %s", t.Package, t.Out)
		cmd := exec.Command("go", "build", "-o", t.Out, t.Package)
		cmd.Stdout = opts.Output
		cmd.Stderr = opts.Output
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("build %s: %w", filepath.Base(t.Package), err)
		}
	}
	return nil
}
