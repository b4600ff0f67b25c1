// Package testutil provides shared helpers for rebang's tests, most notably
// the canonical script-tree fixture exercising every classification kind.
package testutil
