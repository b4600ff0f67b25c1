// Package shebang classifies script files by their first-line interpreter
// directive and parses directives independently of their comment syntax.
//
// Classification looks at line 1 only, through a bounded read, and is a pure
// function of those bytes: running it on an already-patched file reports
// KindAlreadyDispatched, never KindLongShebang again.
package shebang
