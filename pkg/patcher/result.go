package patcher

import "github.com/rebang/rebang/pkg/shebang"

// FileResult records what happened to one regular file during a tree walk.
type FileResult struct {
	Path    string
	Kind    shebang.Kind
	Patched bool
	Err     error
}

// Result aggregates a PatchTree run. One file's failure does not abort the
// walk; failures are collected here and reported together.
type Result struct {
	Files []FileResult
}

func (r *Result) record(fr FileResult) {
	r.Files = append(r.Files, fr)
}

// PatchedCount returns the number of files rewritten.
func (r *Result) PatchedCount() int {
	n := 0
	for _, f := range r.Files {
		if f.Patched {
			n++
		}
	}
	return n
}

// SkippedCount returns the number of files visited but left untouched.
func (r *Result) SkippedCount() int {
	n := 0
	for _, f := range r.Files {
		if !f.Patched && f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the per-file failures.
func (r *Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Ok reports whether every visited file was handled without error.
func (r *Result) Ok() bool {
	return len(r.Failed()) == 0
}
