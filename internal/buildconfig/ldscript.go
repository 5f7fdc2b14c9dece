package buildconfig

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/vk/mbedpio/internal/ctxlog"
)

// CommandRunner runs an external program and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Preprocessor expands the target's linker script with the link flags, as
// GNU ld cannot evaluate the macros the scripts use.
type Preprocessor struct {
	// CPP is the C preprocessor of the toolchain.
	CPP    string
	Runner CommandRunner
}

// NewPreprocessor returns a Preprocessor running cpp through os/exec.
func NewPreprocessor(cpp string) *Preprocessor {
	return &Preprocessor{CPP: cpp, Runner: ExecRunner{}}
}

// CPPFromGDB derives the preprocessor from the debugger of the same
// toolchain: arm-none-eabi-gdb becomes arm-none-eabi-cpp.
func CPPFromGDB(gdb string) string {
	return strings.Replace(gdb, "-gdb", "-cpp", 1)
}

// LinkerScriptOutput is where the preprocessed copy of script is written.
func LinkerScriptOutput(buildDir, script string) string {
	return filepath.Join(buildDir, filepath.Base(script)+".link_script.ld")
}

// Run writes the preprocessed script into buildDir and returns its path. A
// failing preprocessor is fatal and not retried.
func (p *Preprocessor) Run(ctx context.Context, script, buildDir string, ldflags []string) (string, error) {
	if p.CPP == "" {
		return "", fmt.Errorf("no preprocessor configured")
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", err
	}
	out := LinkerScriptOutput(buildDir, script)

	args := append([]string{"-E", "-P"}, ldflags...)
	args = append(args, script, "-o", out)

	ctxlog.FromContext(ctx).Debug("Generating linker script.", "cmd", p.CPP, "args", args)
	runner := p.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	if output, err := runner.Run(ctx, p.CPP, args...); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", p.CPP, err, strings.TrimSpace(string(output)))
	}
	return out, nil
}
