package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rebang/rebang/pkg/paths"
	"github.com/rebang/rebang/pkg/shebang"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		installRoot string
		envSetup    map[string]string
		validate    func(t *testing.T, p paths.Paths)
	}{
		{
			name:        "explicit install root",
			installRoot: "/opt/store",
			validate: func(t *testing.T, p paths.Paths) {
				require.Equal(t, "/opt/store", p.InstallRoot())
				require.False(t, p.UsedFallback())
			},
		},
		{
			name: "from REBANG_ROOT env",
			envSetup: map[string]string{
				paths.EnvInstallRoot: "/env/store",
			},
			validate: func(t *testing.T, p paths.Paths) {
				require.Equal(t, "/env/store", p.InstallRoot())
				require.False(t, p.UsedFallback())
			},
		},
		{
			name: "fallback to cwd",
			validate: func(t *testing.T, p paths.Paths) {
				require.True(t, p.UsedFallback())
				require.True(t, filepath.IsAbs(p.InstallRoot()))
			},
		},
		{
			name:        "expand tilde in explicit root",
			installRoot: "~/store",
			validate: func(t *testing.T, p paths.Paths) {
				home, _ := os.UserHomeDir()
				require.Equal(t, filepath.Join(home, "store"), p.InstallRoot())
			},
		},
		{
			name:        "custom config and state dirs",
			installRoot: "/opt/store",
			envSetup: map[string]string{
				paths.EnvConfigDir: "/custom/config",
				paths.EnvStateDir:  "/custom/state",
			},
			validate: func(t *testing.T, p paths.Paths) {
				require.Equal(t, "/custom/config", p.ConfigDir())
				require.Equal(t, "/custom/state", p.StateDir())
				require.Equal(t, "/custom/state/rebang.log", p.LogFilePath())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(paths.EnvInstallRoot, "")
			t.Setenv(paths.EnvConfigDir, "")
			t.Setenv(paths.EnvStateDir, "")
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := paths.New(tt.installRoot)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestDispatcherPath(t *testing.T) {
	p, err := paths.New("/opt/store")
	require.NoError(t, err)

	require.Equal(t, "/opt/store/bin", p.DispatcherDir())
	require.Equal(t, "/opt/store/bin/relay", p.DispatcherPath())
	require.Equal(t, "#!/opt/store/bin/relay", p.ShebangLine())
}

func TestShebangLineStaysShort(t *testing.T) {
	// The whole point of the fixed dispatcher location: for any sane root,
	// the rewritten first line must itself satisfy the kernel limit.
	p, err := paths.New("/opt/software/store")
	require.NoError(t, err)
	require.LessOrEqual(t, len(p.ShebangLine()), shebang.MaxDirectiveLen)
}

func TestConfigFilePaths(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, "/custom/config")
	p, err := paths.New("/opt/store")
	require.NoError(t, err)

	require.Equal(t, []string{
		"/opt/store/rebang.toml",
		"/custom/config/rebang.toml",
	}, p.ConfigFilePaths())
}
