package sshutil

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/yvan674/dgx-tools/internal/errors"
)

// Runner runs commands on one connected machine. It satisfies the same
// contract as the local runner: stdout on success, COLLAB/EXEC errors on
// failure, so the snapshot code doesn't care where it executes.
type Runner struct {
	client *Client
}

// NewRunner wraps a connected client.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client}
}

// Output runs the command on the remote machine and captures stdout.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session on "+r.client.Alias,
			"The connection may have dropped. Try again.")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	cmd := commandLine(name, args)

	// ssh sessions have no context support; close the session to unblock
	// Run when the context expires.
	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		session.Close()
		<-done
		return "", errors.WrapWithCode(ctx.Err(), errors.ErrSSH,
			fmt.Sprintf("Timed out running %s on %s", name, r.client.Alias),
			"The machine may be overloaded. Try a longer interval.")
	case err = <-done:
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = err.Error()
			}
			return "", errors.WrapWithCode(
				fmt.Errorf("%s", detail),
				errors.ErrExec,
				fmt.Sprintf("%s exited with status %d on %s",
					name, exitErr.ExitStatus(), r.client.Alias),
				"")
		}
		return "", errors.WrapWithCode(err, errors.ErrCollab,
			fmt.Sprintf("Couldn't run %s on %s", name, r.client.Alias),
			fmt.Sprintf("Make sure %s is installed on the remote machine.", name))
	}

	return stdout.String(), nil
}

// commandLine joins a command and its arguments for the remote shell,
// quoting anything that needs it.
func commandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, a := range args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

// quoteArg single-quotes an argument when it contains shell metacharacters.
func quoteArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$&|;<>()*?[]#~%") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
