package cli

import (
	"github.com/spf13/cobra"

	"github.com/rebang/rebang/pkg/config"
	"github.com/rebang/rebang/pkg/display"
	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/installer"
	"github.com/rebang/rebang/pkg/logging"
	"github.com/rebang/rebang/pkg/patcher"
	"github.com/rebang/rebang/pkg/paths"
)

func newPatchCmd(flags *rootFlags) *cobra.Command {
	var (
		excludes []string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "patch <dir>...",
		Short: MsgPatchShort,
		Long:  MsgPatchLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli")

			p, cfg, err := resolveEnvironment(flags)
			if err != nil {
				return err
			}

			fs := filesystem.NewOS()
			if err := installer.Check(fs, p); err != nil {
				if !force {
					return errors.Wrap(err, errors.ErrDispatcherMissing,
						"refusing to patch without an installed dispatcher (use --force to override)")
				}
				logger.Warn().Str("path", p.DispatcherPath()).Msg("patching without an installed dispatcher")
			}

			pt, err := patcher.New(fs, p.DispatcherPath(), patcher.Options{
				Exclude: append(cfg.Patch.Exclude, excludes...),
				DryRun:  flags.dryRun,
			})
			if err != nil {
				return err
			}

			results := make(map[string]*patcher.Result, len(args))
			for _, root := range args {
				res, err := pt.PatchTree(root)
				if err != nil {
					return err
				}
				results[root] = res
			}

			return display.NewRenderer(cmd.OutOrStdout()).PatchSummary(results, flags.dryRun)
		},
	}

	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, MsgFlagExclude)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

// resolveEnvironment loads the layered config and resolves the install root.
// Precedence: --root flag, then REBANG_ROOT, then the config file's root key,
// then the current directory (with a warning).
func resolveEnvironment(flags *rootFlags) (paths.Paths, *config.Config, error) {
	p, err := paths.New(flags.installRoot)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, nil, err
	}
	if p.UsedFallback() && cfg.Root != "" {
		if p, err = paths.New(cfg.Root); err != nil {
			return nil, nil, err
		}
	}
	if p.UsedFallback() {
		logger := logging.GetLogger("cli")
		logger.Warn().
			Str("root", p.InstallRoot()).
			Msg("no install root configured; falling back to current directory")
	}
	return p, cfg, nil
}
