package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"

	"dict2file/internal/analysis"
	"dict2file/internal/config"
	"dict2file/internal/dictionary"
	"dict2file/internal/ir"
	"dict2file/internal/llvmir"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <module.ll>",
	Short: "Browse the comparison sites of a module without writing a dictionary",
	Long: `Scan one module and show, per function, every comparison call site with
the operands that resolved and the entry it would produce. Nothing is written.`,
	Example: `
# Browse interactively
dict2file inspect target.ll

# Print the report instead
dict2file inspect --no-tui target.ll | less
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Bounds().Validate(); err != nil {
			return err
		}

		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		if noTUI || !isTerminal(os.Stdout) {
			rep, err := inspectModule(absPath, cfg)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), rep)
		}

		return runTUI(tea.NewProgram(
			newInspectModel(absPath, cfg),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		))
	},
}

// program is the part of *tea.Program runTUI needs.
type program interface {
	Run() (tea.Model, error)
}

func runTUI(p program) error {
	if _, err := p.Run(); err != nil {
		slog.Error("TUI run error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func init() {
	inspectCmd.Flags().Bool("no-tui", false, "Print the report instead of starting the browser")
	inspectCmd.Flags().String("config", "", "YAML configuration file")
}

// functionReport groups the sites found in one function.
type functionReport struct {
	fn        *ir.Function
	demangled string
	sites     []analysis.Site
}

// moduleReport is the outcome of inspecting one module.
type moduleReport struct {
	path      string
	functions []*functionReport
	result    analysis.Result
}

// boundsSink accepts whatever a dictionary with the same bounds would write.
type boundsSink struct {
	bounds analysis.Bounds
}

func (s boundsSink) Emit(entry []byte) (bool, error) {
	return s.bounds.Contains(len(entry)), nil
}

// inspectModule scans path with the bounds and ignore list of cfg and
// groups the observed sites by function.
func inspectModule(path string, cfg config.Config) (*moduleReport, error) {
	m, err := llvmir.ParseFile(path)
	if err != nil {
		return nil, err
	}

	rep := &moduleReport{path: path}
	byName := make(map[string]*functionReport)
	for _, fn := range m.Functions {
		if fn.Decl || len(fn.Blocks) == 0 {
			continue
		}
		fr := &functionReport{fn: fn, demangled: analysis.CachedDemangle(fn.Name)}
		byName[fn.Name] = fr
		rep.functions = append(rep.functions, fr)
	}

	a := analysis.New(analysis.Options{
		Bounds: cfg.Bounds(),
		Quiet:  true,
		Ignore: cfg.IgnoreList(),
		Observe: func(s analysis.Site) {
			if fr, ok := byName[s.Function]; ok {
				fr.sites = append(fr.sites, s)
			}
		},
	})
	rep.result, err = a.Run(m, boundsSink{bounds: cfg.Bounds()})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// siteStatus summarizes what happened to a site's candidate.
func siteStatus(s analysis.Site) string {
	switch {
	case s.A.Known() && s.B.Known():
		return "both operands known"
	case s.Entry == nil:
		return "no operand known"
	case s.Written:
		return "entry"
	default:
		return "out of bounds"
	}
}

// siteEntry is the rendered candidate of a site, or "-".
func siteEntry(s analysis.Site) string {
	if s.Entry == nil {
		return "-"
	}
	return dictionary.Render(s.Entry.Content)
}

// functionIR reassembles the instruction text of fn.
func functionIR(fn *ir.Function) string {
	var sb strings.Builder
	params := make([]string, 0, len(fn.Sig.Params))
	for _, t := range fn.Sig.Params {
		params = append(params, t.String())
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", fn.Sig.Result, fn.Name, strings.Join(params, ", "))
	for i, blk := range fn.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		if blk.Name != "" {
			fmt.Fprintf(&sb, "%s:\n", blk.Name)
		}
		for _, in := range blk.Insts {
			fmt.Fprintf(&sb, "  %s\n", in.Text)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// writeReport prints rep as plain text, one block per function with sites.
func writeReport(w io.Writer, rep *moduleReport) error {
	r := rep.result
	if _, err := fmt.Fprintf(w, "; %s\n; %d functions, %d ignored, %d comparisons, %d copies, %d entries\n",
		rep.path, r.Functions, r.Ignored, r.Comparisons, r.Copies, r.Entries); err != nil {
		return err
	}
	for _, fr := range rep.functions {
		if len(fr.sites) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", fr.demangled); err != nil {
			return err
		}
		for _, s := range fr.sites {
			if _, err := fmt.Fprintf(w, "  %-12s %-24s %s\n", s.Kind, siteEntry(s), siteStatus(s)); err != nil {
				return err
			}
		}
	}
	return nil
}
