// Package patcher rewrites installed scripts whose interpreter directive the
// kernel cannot execute, routing them through the fixed-path dispatcher.
//
// A patched script has exactly this shape: line 1 is the dispatcher shebang,
// line 2 is the original directive (re-commented for languages that cannot
// parse #!), and every byte after that is untouched. File modes survive the
// rewrite, including read-only ones, and each file is replaced atomically so
// a failure never leaves a half-written script behind.
package patcher
