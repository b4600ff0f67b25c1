package cli

import (
	"github.com/spf13/cobra"

	"github.com/rebang/rebang/pkg/display"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/shebang"
)

func newClassifyCmd(flags *rootFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify <path>...",
		Short: MsgClassifyShort,
		Long:  MsgClassifyLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := display.ParseFormat(format)
			if err != nil {
				return err
			}
			p, _, err := resolveEnvironment(flags)
			if err != nil {
				return err
			}

			classifier := shebang.NewClassifier(filesystem.NewOS(), p.DispatcherPath())
			entries := make([]display.Entry, 0, len(args))
			for _, path := range args {
				entry := display.Entry{Path: path}
				cls, err := classifier.Classify(path)
				if err != nil {
					entry.Error = err.Error()
				} else {
					entry.Kind = cls.Kind.String()
					if cls.Kind == shebang.KindCommentShebang {
						entry.Style = string(cls.Style)
					}
				}
				entries = append(entries, entry)
			}

			return display.NewRenderer(cmd.OutOrStdout()).Classifications(entries, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(display.FormatText), MsgFlagFormat)
	return cmd
}
