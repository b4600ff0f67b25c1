// Package relay implements the run-time dispatcher. When the kernel invokes
// the dispatcher as a patched script's interpreter, this package recovers the
// original directive from the script's second line, refuses to re-enter
// itself, and replaces the process with the real interpreter.
package relay
