package patcher_test

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/patcher"
	"github.com/rebang/rebang/pkg/shebang"
	"github.com/rebang/rebang/pkg/testutil"
)

const dispatcherPath = "/opt/store/bin/relay"

func newPatcher(t *testing.T, opts patcher.Options) *patcher.Patcher {
	t.Helper()
	p, err := patcher.New(filesystem.NewOS(), dispatcherPath, opts)
	require.NoError(t, err)
	return p
}

func TestNewRejectsLongDispatcherPath(t *testing.T) {
	long := "/" + strings.Repeat("x", shebang.MaxDirectiveLen)
	_, err := patcher.New(filesystem.NewOS(), long, patcher.Options{})
	require.Error(t, err)
}

func TestPatchTree(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	require.True(t, result.Ok())

	// Short shebang: byte-identical.
	require.Equal(t, testutil.ShortLine+"\n"+testutil.LastLine, testutil.ReadFile(t, st.Short))

	// Long shebang: dispatcher line, then the original directive unchanged.
	require.Equal(t,
		"#!"+dispatcherPath+"\n"+testutil.LongLine("bash")+"\n"+testutil.LastLine,
		testutil.ReadFile(t, st.Long))

	// Lua: the demoted directive gets the Lua comment marker.
	require.Equal(t,
		"#!"+dispatcherPath+"\n"+"--!"+strings.TrimPrefix(testutil.LongLine("lua"), "#!")+"\n"+testutil.LastLine,
		testutil.ReadFile(t, st.Lua))

	// Node: same with the C-style marker.
	require.Equal(t,
		"#!"+dispatcherPath+"\n"+"//!"+strings.TrimPrefix(testutil.LongLine("node"), "#!")+"\n"+testutil.LastLine,
		testutil.ReadFile(t, st.Node))

	// Markers deep in file bodies never trigger a rewrite.
	require.Equal(t, testutil.ReadFile(t, st.LuaInText), testutil.ReadFile(t, st.NodeInText))
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.LuaInText), testutil.ShortLine+"\n"))

	// Already-dispatched, binary and plain files untouched.
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.Dispatched), "#!"+dispatcherPath+"\n"))
	require.Equal(t, "\x7fELF\x02\x01\x01\x00junk", testutil.ReadFile(t, st.Binary))
	require.Equal(t, "no directive here\n", testutil.ReadFile(t, st.PlainText))
}

func TestPatchTreeIdempotent(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	_, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	firstPass := testutil.ReadFile(t, st.Long)

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	require.True(t, result.Ok())
	require.Zero(t, result.PatchedCount())
	require.Equal(t, firstPass, testutil.ReadFile(t, st.Long))
}

func TestPatchPreservesMode(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	require.True(t, result.Ok())

	// Read-only files are patched and come out read-only again.
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.ReadOnly), "#!"+dispatcherPath+"\n"))
	require.Equal(t, uint32(0444), uint32(testutil.Mode(t, st.ReadOnly)))
	require.Equal(t, uint32(0755), uint32(testutil.Mode(t, st.Long)))
}

func TestPatchClassificationAfterPatch(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	_, err := p.PatchTree(st.Root)
	require.NoError(t, err)

	c := shebang.NewClassifier(filesystem.NewOS(), dispatcherPath)
	cls, err := c.Classify(st.Long)
	require.NoError(t, err)
	require.Equal(t, shebang.KindAlreadyDispatched, cls.Kind)
}

func TestPatchTreeDryRun(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{DryRun: true})

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	require.Equal(t, 4, result.PatchedCount()) // long, lua, node, readonly

	// Nothing actually written.
	require.Equal(t, testutil.LongLine("bash")+"\n"+testutil.LastLine, testutil.ReadFile(t, st.Long))
}

func TestPatchTreeExclude(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{Exclude: []string{"lua*", "node*"}})

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)
	require.True(t, result.Ok())

	// Excluded files keep their original directives.
	require.Equal(t, testutil.LongLine("lua")+"\n"+testutil.LastLine, testutil.ReadFile(t, st.Lua))
	require.Equal(t, testutil.LongLine("node")+"\n"+testutil.LastLine, testutil.ReadFile(t, st.Node))

	// Everything else still patched.
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.Long), "#!"+dispatcherPath+"\n"))
}

func TestPatchFileSingle(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	require.NoError(t, p.PatchFile(st.Long))
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.Long), "#!"+dispatcherPath+"\n"))

	// A file that needs no patch is a no-op, not an error.
	require.NoError(t, p.PatchFile(st.Short))
	require.Equal(t, testutil.ShortLine+"\n"+testutil.LastLine, testutil.ReadFile(t, st.Short))
}

// readDirFailFS denies listing of one directory, standing in for an
// unreadable subtree.
type readDirFailFS struct {
	filesystem.FS
	deny string
}

func (f *readDirFailFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name == f.deny {
		return nil, fs.ErrPermission
	}
	return f.FS.ReadDir(name)
}

func TestPatchTreeUnreadableSubdir(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	fsys := &readDirFailFS{FS: filesystem.NewOS(), deny: st.Dir}
	p, err := patcher.New(fsys, dispatcherPath, patcher.Options{})
	require.NoError(t, err)

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)

	// The failure is recorded, not fatal.
	require.False(t, result.Ok())
	require.Len(t, result.Failed(), 1)
	require.Equal(t, st.Dir, result.Failed()[0].Path)

	// Siblings of the unreadable directory are still patched.
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.Long), "#!"+dispatcherPath+"\n"))
	require.True(t, strings.HasPrefix(testutil.ReadFile(t, st.Node), "#!"+dispatcherPath+"\n"))
}

func TestPatchTreeMissingRoot(t *testing.T) {
	p := newPatcher(t, patcher.Options{})
	_, err := p.PatchTree(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestPatchTreeCountsSkips(t *testing.T) {
	st := testutil.NewScriptTree(t, dispatcherPath)
	p := newPatcher(t, patcher.Options{})

	result, err := p.PatchTree(st.Root)
	require.NoError(t, err)

	// 4 rewritten (long, lua, node, readonly); the rest visited and skipped.
	require.Equal(t, 4, result.PatchedCount())
	require.Equal(t, len(result.Files)-4, result.SkippedCount())
	require.Empty(t, result.Failed())
}
