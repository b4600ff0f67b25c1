// Package cli wires up the rebang command tree.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rebang/rebang/internal/version"
	"github.com/rebang/rebang/pkg/config"
	"github.com/rebang/rebang/pkg/logging"
	"github.com/rebang/rebang/pkg/paths"
)

// global flag state shared by subcommands
type rootFlags struct {
	verbosity   int
	dryRun      bool
	installRoot string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "rebang",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity, logToFile(flags))
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&flags.installRoot, "root", "", MsgFlagRoot)

	rootCmd.AddCommand(newPatchCmd(flags))
	rootCmd.AddCommand(newClassifyCmd(flags))
	rootCmd.AddCommand(newInstallCmd(flags))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// logToFile reports whether the config enables the state-directory log file.
// Config errors are surfaced later by the command itself; logger setup just
// keeps the default.
func logToFile(flags *rootFlags) bool {
	p, err := paths.New(flags.installRoot)
	if err != nil {
		return true
	}
	cfg, err := config.Load(p)
	if err != nil {
		return true
	}
	return cfg.Log.File
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("rebang version %s\n", version.Version)
			cmd.Printf("  commit: %s\n", version.Commit)
			cmd.Printf("  built:  %s\n", version.Date)
		},
	}
}
