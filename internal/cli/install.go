package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/installer"
	"github.com/rebang/rebang/pkg/paths"
)

func newInstallCmd(flags *rootFlags) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "install",
		Short: MsgInstallShort,
		Long:  MsgInstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := resolveEnvironment(flags)
			if err != nil {
				return err
			}

			source := from
			if source == "" {
				source, err = defaultDispatcherSource()
				if err != nil {
					return err
				}
			}

			if flags.dryRun {
				cmd.Printf("would install %s to %s\n", source, p.DispatcherPath())
				return nil
			}
			if err := installer.Install(filesystem.NewOS(), source, p); err != nil {
				return err
			}
			cmd.Printf("dispatcher installed at %s\n", p.DispatcherPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", MsgFlagFrom)
	return cmd
}

// defaultDispatcherSource looks for the relay binary next to the running
// executable, where release archives place it.
func defaultDispatcherSource() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInstallFailed, "cannot locate the running executable")
	}
	source := filepath.Join(filepath.Dir(exe), paths.DispatcherName)
	if _, err := os.Stat(source); err != nil {
		return "", errors.Wrapf(err, errors.ErrInstallFailed,
			"no dispatcher binary at %s (use --from)", source)
	}
	return source, nil
}
