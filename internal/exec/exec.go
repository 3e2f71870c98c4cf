// Package exec runs the external collaborators (nvidia-smi, scontrol,
// docker) and captures their output. A Runner abstracts where the command
// runs so the same snapshot code serves the local machine and remote
// machines reached over SSH.
package exec

import (
	"bytes"
	"context"
	"fmt"
	osexec "os/exec"
	"strings"

	"github.com/yvan674/dgx-tools/internal/errors"
	"github.com/yvan674/dgx-tools/internal/logger"
)

// Runner executes a command and returns its stdout.
type Runner interface {
	// Output runs name with args and returns captured stdout. A missing
	// binary fails with the COLLAB code, a non-zero exit with EXEC.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Local runs commands on this machine.
type Local struct {
	log logger.Logger
}

// NewLocal creates a local runner.
func NewLocal() *Local {
	return &Local{log: logger.Default()}
}

// Output implements Runner.
func (l *Local) Output(ctx context.Context, name string, args ...string) (string, error) {
	l.log.Debug("exec: %s %s", name, strings.Join(args, " "))

	cmd := osexec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*osexec.ExitError); ok {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = err.Error()
			}
			return "", errors.WrapWithCode(
				fmt.Errorf("%s", detail),
				errors.ErrExec,
				fmt.Sprintf("%s exited with status %d", name, exitErr.ExitCode()),
				"")
		}
		return "", errors.WrapWithCode(err, errors.ErrCollab,
			fmt.Sprintf("Couldn't run %s", name),
			fmt.Sprintf("Make sure %s is installed and on your PATH.", name))
	}

	return stdout.String(), nil
}
