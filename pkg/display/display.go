// Package display renders classification and patch results for the terminal,
// degrading to plain text when stdout is not a TTY, plus JSON/YAML output for
// scripting.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/patcher"
	"github.com/rebang/rebang/pkg/shebang"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown format %q", s)
	}
}

var (
	kindStyles = map[shebang.Kind]lipgloss.Style{
		shebang.KindLongShebang:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		shebang.KindCommentShebang:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		shebang.KindAlreadyDispatched: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		shebang.KindShortShebang:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Renderer writes human or machine readable reports.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a renderer for out. Color is enabled only when out is
// a terminal that supports it.
func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) && termenv.NewOutput(f).ColorProfile() != termenv.Ascii
	}
	return &Renderer{out: out, color: color}
}

// Entry is one path's classification, as rendered by `rebang classify`.
type Entry struct {
	Path  string `json:"path" yaml:"path"`
	Kind  string `json:"kind" yaml:"kind"`
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Classifications renders classify results in the requested format.
func (r *Renderer) Classifications(entries []Entry, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		return yaml.NewEncoder(r.out).Encode(entries)
	}

	for _, e := range entries {
		label := e.Kind
		if e.Style != "" {
			label = fmt.Sprintf("%s (%s)", e.Kind, e.Style)
		}
		if e.Error != "" {
			label = "error: " + e.Error
			if r.color {
				label = errStyle.Render(label)
			}
		} else if r.color {
			if style, ok := kindStyles[shebang.Kind(e.Kind)]; ok {
				label = style.Render(label)
			} else {
				label = mutedStyle.Render(label)
			}
		}
		if _, err := fmt.Fprintf(r.out, "%-20s %s\n", label, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// PatchSummary renders the outcome of a patch run.
func (r *Renderer) PatchSummary(results map[string]*patcher.Result, dryRun bool) error {
	verb := "patched"
	if dryRun {
		verb = "would patch"
	}

	rows := pterm.TableData{{"ROOT", "PATCHED", "SKIPPED", "FAILED"}}
	totalFailed := 0
	for root, res := range results {
		failed := len(res.Failed())
		totalFailed += failed
		rows = append(rows, []string{
			root,
			strconv.Itoa(res.PatchedCount()),
			strconv.Itoa(res.SkippedCount()),
			strconv.Itoa(failed),
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(rows)
	rendered, err := table.Srender()
	if err != nil {
		// pterm rendering is cosmetic; fall back to a plain line per root.
		var b strings.Builder
		for root, res := range results {
			fmt.Fprintf(&b, "%s: %d %s, %d skipped, %d failed\n",
				root, res.PatchedCount(), verb, res.SkippedCount(), len(res.Failed()))
		}
		rendered = b.String()
	}
	if _, err := fmt.Fprintln(r.out, rendered); err != nil {
		return err
	}

	for _, res := range results {
		for _, f := range res.Failed() {
			line := fmt.Sprintf("failed: %s: %v", f.Path, f.Err)
			if r.color {
				line = errStyle.Render(line)
			}
			if _, err := fmt.Fprintln(r.out, line); err != nil {
				return err
			}
		}
	}

	if totalFailed > 0 {
		return errors.Newf(errors.ErrPatchWrite, "%d file(s) failed to patch", totalFailed)
	}
	return nil
}
