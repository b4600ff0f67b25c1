// Package installer places the dispatcher binary at its fixed short path
// under the install root and verifies the installation contract: the binary
// exists, is executable (0755), and its shebang line fits the portable limit.
package installer

import (
	"bytes"
	"io/fs"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/logging"
	"github.com/rebang/rebang/pkg/paths"
	"github.com/rebang/rebang/pkg/shebang"
)

const dispatcherMode fs.FileMode = 0755

// Install copies the dispatcher binary at sourcePath to p.DispatcherPath().
// It is idempotent: a valid existing installation is left alone, and a
// corrupt or non-executable one is replaced.
func Install(fsys filesystem.FS, sourcePath string, p paths.Paths) error {
	logger := logging.GetLogger("installer")

	if len(p.ShebangLine()) > shebang.MaxDirectiveLen {
		return errors.Newf(errors.ErrInstallFailed,
			"install root %s leaves no room for a portable dispatcher shebang", p.InstallRoot())
	}

	data, err := fsys.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "cannot read dispatcher binary %s", sourcePath)
	}

	target := p.DispatcherPath()
	if existing, err := fsys.ReadFile(target); err == nil {
		if bytes.Equal(existing, data) && modeOK(fsys, target) {
			logger.Debug().Str("path", target).Msg("dispatcher already installed")
			return nil
		}
		logger.Info().Str("path", target).Msg("replacing stale dispatcher")
		if err := fsys.Remove(target); err != nil {
			return errors.Wrapf(err, errors.ErrInstallFailed, "cannot remove stale dispatcher %s", target)
		}
	}

	if err := fsys.MkdirAll(p.DispatcherDir(), dispatcherMode); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "cannot create %s", p.DispatcherDir())
	}
	if err := fsys.Chmod(p.DispatcherDir(), dispatcherMode); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "cannot set mode on %s", p.DispatcherDir())
	}

	if err := fsys.WriteFile(target, data, dispatcherMode); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "cannot write %s", target)
	}
	// WriteFile's perm is subject to umask; the contract is exactly 0755.
	if err := fsys.Chmod(target, dispatcherMode); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "cannot set mode on %s", target)
	}

	logger.Info().Str("path", target).Msg("dispatcher installed")
	return nil
}

// Check verifies the installation contract without modifying anything.
func Check(fsys filesystem.FS, p paths.Paths) error {
	target := p.DispatcherPath()
	info, err := fsys.Stat(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDispatcherMissing, "dispatcher not installed at %s", target)
	}
	if info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return errors.Newf(errors.ErrDispatcherMissing, "dispatcher at %s is not executable", target)
	}
	return nil
}

func modeOK(fsys filesystem.FS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.Mode().Perm() == dispatcherMode
}
