package openqa

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// A Runner invokes an external helper command, returning its standard output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

// A CommandError is returned when an external helper command fails.
// It carries the command's captured error output so callers can recognize
// known failure signatures.
type CommandError struct {
	Name string
	Args []string

	Stderr string // The command's captured error output

	Err error // The underlying execution failure
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s failed - %v: %s", e.Name, strings.Join(e.Args, " "), e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExecRunner runs helper commands as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Name:   name,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}
