package cli

import (
	"embed"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/rebang/rebang/pkg/errors"
)

//go:embed docs/*.md
var docsFS embed.FS

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     MsgDocsShort,
		Long:      MsgDocsLong,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docTopics(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Println("Available topics:")
				for _, topic := range docTopics() {
					cmd.Printf("  %s\n", topic)
				}
				return nil
			}

			content, err := docsFS.ReadFile("docs/" + args[0] + ".md")
			if err != nil {
				return errors.Newf(errors.ErrNotFound, "no documentation topic %q", args[0])
			}

			rendered, err := renderMarkdown(string(content))
			if err != nil {
				// Rendering is cosmetic; fall back to the raw markdown.
				rendered = string(content)
			}
			cmd.Print(rendered)
			return nil
		},
	}
}

func docTopics() []string {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics
}

func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
