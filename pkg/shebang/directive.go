package shebang

import (
	"path/filepath"
	"strings"
)

// DirectiveLine is the logical interpreter directive extracted from a script,
// independent of comment syntax.
type DirectiveLine struct {
	// Marker is the literal prefix used: "#!", "--!" or "//!".
	Marker string

	// Interpreter is the interpreter invocation: an absolute path such as
	// "/opt/store/bin/perl", or an env indirection such as
	// "/usr/bin/env perl".
	Interpreter string

	// Args are the flags following the interpreter token, e.g. ["-w"].
	Args []string
}

// ParseDirective parses a raw directive line (without trailing newline).
// ok is false when the line carries no recognized marker or names no
// interpreter.
func ParseDirective(line string) (d DirectiveLine, ok bool) {
	var rest string
	for _, m := range markerTable {
		if strings.HasPrefix(line, m.prefix) {
			d.Marker = m.prefix
			rest = line[len(m.prefix):]
			ok = true
			break
		}
	}
	if !ok {
		return DirectiveLine{}, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return DirectiveLine{}, false
	}

	if filepath.Base(fields[0]) == "env" && len(fields) >= 2 {
		d.Interpreter = fields[0] + " " + fields[1]
		fields = fields[2:]
	} else {
		d.Interpreter = fields[0]
		fields = fields[1:]
	}
	if len(fields) > 0 {
		d.Args = fields
	}
	return d, true
}

// String re-emits the directive. For directives written with single spaces
// this reproduces the parsed line byte-identically.
func (d DirectiveLine) String() string {
	parts := append([]string{d.Interpreter}, d.Args...)
	return d.Marker + strings.Join(parts, " ")
}

// IsEnv reports whether the directive runs through an env indirection.
func (d DirectiveLine) IsEnv() bool {
	return strings.Contains(d.Interpreter, " ")
}

// Program returns the interpreter's program name: the basename of the
// interpreter path, or the name given to env.
func (d DirectiveLine) Program() string {
	if i := strings.IndexByte(d.Interpreter, ' '); i >= 0 {
		return filepath.Base(d.Interpreter[i+1:])
	}
	return filepath.Base(d.Interpreter)
}

// InterpreterPath returns the token naming the interpreter itself: the
// directive's path, or the name passed to env when indirected.
func (d DirectiveLine) InterpreterPath() string {
	if i := strings.IndexByte(d.Interpreter, ' '); i >= 0 {
		return d.Interpreter[i+1:]
	}
	return d.Interpreter
}

// Argv returns the tokens that invoke the interpreter, e.g.
// ["/usr/bin/env", "perl", "-w"].
func (d DirectiveLine) Argv() []string {
	return append(strings.Fields(d.Interpreter), d.Args...)
}
