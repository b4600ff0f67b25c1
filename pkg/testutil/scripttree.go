package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Canonical fixture content. One file per classification kind, plus the
// marker-in-body traps that must never be touched.
const (
	ShortLine = "#!/this/is/short/bin/bash"
	LastLine  = "last!\n"
)

// LongLine returns a #! directive well past the portable length limit,
// ending in the given interpreter name.
func LongLine(interp string) string {
	return "#!/this/" + strings.Repeat("x", 200) + "/is/" + interp
}

// ScriptTree is a directory of test scripts covering every classification.
type ScriptTree struct {
	Root string

	Dir        string // a subdirectory
	Short      string // short #! script
	Long       string // long #! script
	Lua        string // long #! script whose interpreter is lua
	Node       string // long #! script whose interpreter is node
	LuaInText  string // short script with --! deep in the body
	NodeInText string // short script with //! deep in the body
	Dispatched string // script already routed through the dispatcher
	Binary     string // fake ELF binary
	ReadOnly   string // long #! script with mode 0444
	PlainText  string // text file without any directive
}

// NewScriptTree builds the fixture under a fresh temp directory.
// dispatcherPath is the path the "already patched" script points at.
func NewScriptTree(t *testing.T, dispatcherPath string) *ScriptTree {
	t.Helper()

	root := t.TempDir()
	st := &ScriptTree{Root: root}

	st.Dir = filepath.Join(root, "dir")
	require.NoError(t, os.MkdirAll(st.Dir, 0755))

	write := func(name, content string, mode os.FileMode) string {
		path := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(path, []byte(content), mode))
		return path
	}

	st.Short = write("short", ShortLine+"\n"+LastLine, 0755)
	st.Long = write("long", LongLine("bash")+"\n"+LastLine, 0755)
	st.Lua = write("lua", LongLine("lua")+"\n"+LastLine, 0755)
	st.Node = write("node", LongLine("node")+"\n"+LastLine, 0755)

	inText := strings.Repeat("line\n", 100) + "--!/not/a/directive\n//!/also/not\n" + strings.Repeat("line\n", 100)
	st.LuaInText = write("lua_in_text", ShortLine+"\n"+inText+LastLine, 0755)
	st.NodeInText = write("node_in_text", ShortLine+"\n"+inText+LastLine, 0755)

	st.Dispatched = write("dispatched", "#!"+dispatcherPath+"\n"+LongLine("bash")+"\n"+LastLine, 0755)
	st.Binary = write("binary", "\x7fELF\x02\x01\x01\x00junk", 0755)
	st.ReadOnly = write("readonly", LongLine("bash")+"\n"+LastLine, 0444)
	st.PlainText = write("plain", "no directive here\n", 0644)

	return st
}

// ReadFile returns the file's content, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Mode returns the file's permission bits, failing the test on error.
func Mode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Mode().Perm()
}
