package installer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/installer"
	"github.com/rebang/rebang/pkg/paths"
)

func setup(t *testing.T) (filesystem.FS, string, paths.Paths) {
	t.Helper()
	fs := filesystem.NewOS()
	work := t.TempDir()

	source := filepath.Join(work, "relay-build")
	require.NoError(t, fs.WriteFile(source, []byte("dispatcher binary bytes"), 0755))

	p, err := paths.New(filepath.Join(work, "store"))
	require.NoError(t, err)
	return fs, source, p
}

func TestInstall(t *testing.T) {
	fs, source, p := setup(t)

	require.NoError(t, installer.Install(fs, source, p))

	info, err := fs.Stat(p.DispatcherPath())
	require.NoError(t, err)
	require.Equal(t, uint32(0755), uint32(info.Mode().Perm()))

	dirInfo, err := fs.Stat(p.DispatcherDir())
	require.NoError(t, err)
	require.Equal(t, uint32(0755), uint32(dirInfo.Mode().Perm()))

	require.NoError(t, installer.Check(fs, p))
}

func TestInstallIdempotent(t *testing.T) {
	fs, source, p := setup(t)

	require.NoError(t, installer.Install(fs, source, p))
	require.NoError(t, installer.Install(fs, source, p))
	require.NoError(t, installer.Check(fs, p))
}

func TestInstallRepairsCorruptDispatcher(t *testing.T) {
	fs, source, p := setup(t)

	require.NoError(t, fs.MkdirAll(p.DispatcherDir(), 0755))
	require.NoError(t, fs.WriteFile(p.DispatcherPath(), []byte("foo"), 0644))

	require.NoError(t, installer.Install(fs, source, p))

	data, err := fs.ReadFile(p.DispatcherPath())
	require.NoError(t, err)
	require.Equal(t, "dispatcher binary bytes", string(data))
	require.NoError(t, installer.Check(fs, p))
}

func TestInstallMissingSource(t *testing.T) {
	fs, _, p := setup(t)
	err := installer.Install(fs, "/no/such/binary", p)
	require.Error(t, err)
}

func TestCheckMissing(t *testing.T) {
	fs, _, p := setup(t)
	require.Error(t, installer.Check(fs, p))
}

func TestCheckNotExecutable(t *testing.T) {
	fs, source, p := setup(t)
	require.NoError(t, installer.Install(fs, source, p))
	require.NoError(t, fs.Chmod(p.DispatcherPath(), 0644))
	require.Error(t, installer.Check(fs, p))
}
