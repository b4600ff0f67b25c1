//go:build !unix

package relay

import (
	"os"
	"os/exec"
)

// execReplace approximates process replacement where exec is unavailable:
// spawn the interpreter with passthrough stdio, wait, and surface its exit
// code for the caller to propagate.
func execReplace(argv0 string, argv []string, env []string) error {
	cmd := exec.Command(argv0, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitStatusError{Code: exitErr.ExitCode()}
		}
		return err
	}
	return &ExitStatusError{Code: 0}
}
