package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
)

// waitDelay bounds how long Run waits for output pipes after the context
// kills the process. git may leave a child (ssh, credential helper) holding them.
const waitDelay = 2 * time.Second

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec
func NewExecRunner() interfaces.CommandRunner {
	return &execRunner{}
}

// Run executes name with args in dir. The returned output is never nil; err
// is non-nil when the process could not start or exited non-zero.
func (r *execRunner) Run(ctx context.Context, dir, name string, args ...string) (*interfaces.CommandOutput, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	// never block on an interactive credential prompt
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	err := cmd.Run()

	out := &interfaces.CommandOutput{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	return out, err
}
