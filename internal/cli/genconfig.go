package cli

import (
	"github.com/spf13/cobra"

	"github.com/rebang/rebang/pkg/config"
)

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-config",
		Short: MsgGenConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.DefaultTOML()
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	}
}
