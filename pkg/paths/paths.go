// Package paths provides centralized path handling for rebang.
// It resolves the install root once per invocation and derives every other
// path from it, with XDG Base Directory compliance for config and state.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/rebang/rebang/pkg/errors"
)

// Environment variable names
const (
	// EnvInstallRoot is the primary environment variable for the install root
	EnvInstallRoot = "REBANG_ROOT"

	// EnvConfigDir overrides the XDG config directory for rebang
	EnvConfigDir = "REBANG_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for rebang
	EnvStateDir = "REBANG_STATE_DIR"
)

// Fixed names under the install root.
// IMPORTANT: these are NOT user-configurable. Patched scripts embed the
// dispatcher path on their first line, so it must stay identical across every
// installation that shares a root.
const (
	// BinDirName is the directory under the root holding the dispatcher
	BinDirName = "bin"

	// DispatcherName is the dispatcher binary's name. Deliberately short:
	// the whole shebang line must fit the portable length limit.
	DispatcherName = "relay"

	// ConfigFileName is the per-root configuration file
	ConfigFileName = "rebang.toml"

	// LogFileName is the name of the log file
	LogFileName = "rebang.log"
)

// appDirName is the subdirectory used under XDG base directories.
const appDirName = "rebang"

// Paths provides centralized path management for rebang
type Paths interface {
	InstallRoot() string
	UsedFallback() bool
	DispatcherDir() string
	DispatcherPath() string
	ShebangLine() string
	ConfigDir() string
	StateDir() string
	ConfigFilePaths() []string
	LogFilePath() string
}

type paths struct {
	installRoot  string
	configDir    string
	stateDir     string
	usedFallback bool
}

// New creates a new Paths instance with the given install root.
// If installRoot is empty it is taken from REBANG_ROOT, falling back to the
// current working directory (UsedFallback reports when that happened).
func New(installRoot string) (Paths, error) {
	p := &paths{}

	root := installRoot
	if root == "" {
		root = os.Getenv(EnvInstallRoot)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "cannot determine install root")
		}
		root = cwd
		p.usedFallback = true
	}

	root, err := expandTilde(root)
	if err != nil {
		return nil, err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid install root %q", root)
	}
	p.installRoot = root

	p.configDir = os.Getenv(EnvConfigDir)
	if p.configDir == "" {
		p.configDir = filepath.Join(xdg.ConfigHome, appDirName)
	}
	p.stateDir = os.Getenv(EnvStateDir)
	if p.stateDir == "" {
		p.stateDir = filepath.Join(xdg.StateHome, appDirName)
	}

	return p, nil
}

func expandTilde(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInvalidInput, "cannot expand ~ in install root")
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func (p *paths) InstallRoot() string { return p.installRoot }

func (p *paths) UsedFallback() bool { return p.usedFallback }

func (p *paths) DispatcherDir() string {
	return filepath.Join(p.installRoot, BinDirName)
}

func (p *paths) DispatcherPath() string {
	return filepath.Join(p.installRoot, BinDirName, DispatcherName)
}

// ShebangLine is the exact first line the patcher writes, without newline.
func (p *paths) ShebangLine() string {
	return "#!" + p.DispatcherPath()
}

func (p *paths) ConfigDir() string { return p.configDir }

func (p *paths) StateDir() string { return p.stateDir }

// ConfigFilePaths lists candidate config files in load order: per-root config
// first, then the user-level config.
func (p *paths) ConfigFilePaths() []string {
	return []string{
		filepath.Join(p.installRoot, ConfigFileName),
		filepath.Join(p.configDir, ConfigFileName),
	}
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}
