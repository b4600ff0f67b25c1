// Package filesystem provides filesystem implementations for rebang.
//
// This package contains the FS interface used by the classifier, patcher and
// installer, along with the standard OS implementation and an afero-backed
// implementation for tests.
package filesystem
