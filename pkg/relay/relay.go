package relay

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/logging"
	"github.com/rebang/rebang/pkg/paths"
	"github.com/rebang/rebang/pkg/shebang"
)

// execFlags is the closed mapping from interpreter program name to the flag
// that makes it execute the following file. Perl and Ruby need an explicit
// "run this file" flag in this invocation style; shells and Python take the
// script path as-is.
var execFlags = map[string]string{
	"perl": "-x",
	"ruby": "-x",
}

// Invocation is one dispatcher run, as constructed from the kernel's argv:
// relay [-d] <script> [forwarded args...].
type Invocation struct {
	Script string
	Args   []string
	Debug  bool
}

// ParseArgs interprets argv (excluding argv[0]). The only flag is -d, and it
// must precede the script path; everything after the script is forwarded
// untouched, dashes and all.
func ParseArgs(argv []string) (Invocation, error) {
	var inv Invocation
	rest := argv
	if len(rest) > 0 && rest[0] == "-d" {
		inv.Debug = true
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return Invocation{}, errors.New(errors.ErrUsage, "usage: relay [-d] <script> [args...]")
	}
	inv.Script = rest[0]
	inv.Args = rest[1:]
	return inv, nil
}

// ExitStatusError carries a child's exit code on platforms where the process
// image cannot be replaced and the interpreter is spawned instead.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string { return "interpreter exited nonzero" }

// Options configures a Dispatcher. Zero values are filled from the running
// executable.
type Options struct {
	// SelfPath is the dispatcher's own resolved path, for the
	// self-reference check.
	SelfPath string

	// SelfName is the dispatcher's program name. Defaults to the basename
	// of SelfPath, or paths.DispatcherName.
	SelfName string

	// Stdout receives the -d debug line. Defaults to os.Stdout.
	Stdout io.Writer

	// Exec replaces the process image. Defaults to the platform primitive.
	Exec func(argv0 string, argv []string, env []string) error
}

// Dispatcher recovers a patched script's original directive and transfers
// control to it.
type Dispatcher struct {
	fs     filesystem.FS
	opts   Options
	logger zerolog.Logger
}

// New creates a Dispatcher. fs is the filesystem the script is read from.
func New(fsys filesystem.FS, opts Options) *Dispatcher {
	if opts.SelfPath == "" {
		if exe, err := os.Executable(); err == nil {
			opts.SelfPath = exe
		}
	}
	if opts.SelfName == "" {
		if opts.SelfPath != "" {
			opts.SelfName = filepath.Base(opts.SelfPath)
		} else {
			opts.SelfName = paths.DispatcherName
		}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Exec == nil {
		opts.Exec = execReplace
	}
	return &Dispatcher{fs: fsys, opts: opts, logger: logging.GetLogger("relay")}
}

// Run executes one invocation: read the script, recover the directive,
// check for self-reference, then either print the resolved command (-d) or
// hand the process over to the interpreter. On success without -d it does
// not return.
func (d *Dispatcher) Run(inv Invocation) error {
	directive, err := d.readDirective(inv.Script)
	if err != nil {
		return err
	}

	if d.isSelf(directive) {
		return errors.Newf(errors.ErrSelfReference,
			"%s: line 2 points back at the dispatcher; refusing to recurse", inv.Script)
	}

	argv := directive.Argv()
	if flag, ok := execFlags[directive.Program()]; ok {
		argv = append(argv, flag)
	}
	argv = append(argv, inv.Script)

	if inv.Debug {
		// Pure query: print what would run, execute nothing. Forwarded
		// arguments are not part of the printed command.
		if _, err := io.WriteString(d.opts.Stdout, strings.Join(argv, " ")+"\n"); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot write debug output")
		}
		return nil
	}

	argv = append(argv, inv.Args...)
	d.logger.Debug().Strs("argv", argv).Msg("replacing process image")
	if err := d.opts.Exec(argv[0], argv, os.Environ()); err != nil {
		var exit *ExitStatusError
		if errors.As(err, &exit) {
			return err
		}
		return errors.Wrapf(err, errors.ErrInterpreterNotFound,
			"cannot execute interpreter %s", argv[0])
	}
	return nil
}

// readDirective returns the parsed directive from line 2 of the script.
// A script without a parseable second-line directive is reported as an
// interpreter-resolution failure rather than guessed at.
func (d *Dispatcher) readDirective(script string) (shebang.DirectiveLine, error) {
	f, err := d.fs.Open(script)
	if err != nil {
		return shebang.DirectiveLine{}, errors.Wrapf(err, errors.ErrInterpreterNotFound,
			"cannot open script %s", script)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	if _, err := r.ReadString('\n'); err != nil {
		return shebang.DirectiveLine{}, errors.Newf(errors.ErrInterpreterNotFound,
			"%s: no directive on line 2", script)
	}
	line2, err := r.ReadString('\n')
	if err != nil && line2 == "" {
		return shebang.DirectiveLine{}, errors.Newf(errors.ErrInterpreterNotFound,
			"%s: no directive on line 2", script)
	}
	line2 = strings.TrimRight(line2, "\r\n")

	directive, ok := shebang.ParseDirective(line2)
	if !ok {
		return shebang.DirectiveLine{}, errors.Newf(errors.ErrInterpreterNotFound,
			"%s: line 2 %q is not an interpreter directive", script, line2)
	}
	return directive, nil
}

// isSelf reports whether the directive resolves to the dispatcher itself,
// directly or through an env indirection.
func (d *Dispatcher) isSelf(directive shebang.DirectiveLine) bool {
	if directive.Program() == d.opts.SelfName {
		return true
	}
	if !directive.IsEnv() && d.opts.SelfPath != "" {
		return filepath.Clean(directive.InterpreterPath()) == d.opts.SelfPath
	}
	return false
}
