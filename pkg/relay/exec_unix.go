//go:build unix

package relay

import "golang.org/x/sys/unix"

// execReplace replaces the current process image. On success it never
// returns; stdio and the environment pass through to the interpreter.
func execReplace(argv0 string, argv []string, env []string) error {
	return unix.Exec(argv0, argv, env)
}
