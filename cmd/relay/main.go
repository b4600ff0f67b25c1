// relay is the run-time dispatcher for scripts patched by rebang. The kernel
// invokes it as the interpreter named on a patched script's first line; it
// recovers the original directive from line 2 and execs the real interpreter.
//
// Its argv contract is fixed (relay [-d] <script> [args...]) and everything
// after the script path must pass through untouched, so argument handling is
// done by hand rather than through a flag framework.
package main

import (
	"fmt"
	"os"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/relay"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	inv, err := relay.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "relay:", err)
		return 1
	}

	d := relay.New(filesystem.NewOS(), relay.Options{})
	if err := d.Run(inv); err != nil {
		var exit *relay.ExitStatusError
		if errors.As(err, &exit) {
			return exit.Code
		}
		fmt.Fprintln(os.Stderr, "relay:", err)
		return 1
	}
	return 0
}
