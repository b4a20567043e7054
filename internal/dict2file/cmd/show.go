package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"dict2file/internal/dict2file/styles"
	"dict2file/internal/dictionary"
)

var showCmd = &cobra.Command{
	Use:   "show <dict>",
	Short: "List the entries of a dictionary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := dictionary.ReadFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !isTerminal(os.Stdout) {
			return writePlain(out, entries)
		}

		width := 80
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}
		renderer, err := styles.GetMarkdownRenderer(width - 2)
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		rendered, err := renderer.Render(dictionaryMarkdown(filepath.Base(args[0]), entries))
		if err != nil {
			return fmt.Errorf("failed to render dictionary: %w", err)
		}
		_, err = io.WriteString(out, rendered)
		return err
	},
}

// writePlain prints one entry per line in dictionary syntax.
func writePlain(w io.Writer, entries [][]byte) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, dictionary.Render(e)); err != nil {
			return err
		}
	}
	return nil
}

// dictionaryMarkdown lays entries out as a numbered table.
func dictionaryMarkdown(name string, entries [][]byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if len(entries) == 0 {
		sb.WriteString("*No entries.*\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "**%d** entries\n\n", len(entries))
	sb.WriteString("| # | Entry | Bytes |\n|---:|---|---:|\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "| %d | `%s` | %d |\n", i+1, escapeCell(dictionary.Render(e)), len(e))
	}
	return sb.String()
}

// escapeCell escapes backticks and pipes for a markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "|", "\\|")
}
