package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dict2file/internal/analysis"
	"dict2file/internal/config"
	"dict2file/internal/dict2file/styles"
	"dict2file/internal/dictionary"
	"dict2file/internal/llvmir"
	"dict2file/internal/logging"
	"dict2file/internal/ui/colorize"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <module.ll>...",
	Short: "Append comparison constants from LLVM IR modules to a dictionary",
	Long: `Scan each module in order and append every constant compared against
input to the dictionary. The dictionary is opened once, in append mode, and
every entry is flushed as soon as it is written.`,
	Example: `
# Write to an explicit dictionary
dict2file run -o /tmp/target.dict a.ll b.ll

# Keep entries between 4 and 16 bytes, with tracing
dict2file run -d --min-len 4 --max-len 16 -o /tmp/target.dict a.ll
  `,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		lg := logging.NewLoggerWithWriter(cmd.ErrOrStderr())
		defer lg.Close()

		_, err = runModules(cfg, args, session{
			stderr:   cmd.ErrOrStderr(),
			logger:   lg.Logger,
			terminal: isTerminal(os.Stderr),
		})
		return err
	},
}

func init() {
	runCmd.Flags().StringP("output", "o", "", "Absolute path of the dictionary file (AFL_LLVM_DICT2FILE)")
	runCmd.Flags().String("config", "", "YAML configuration file")
	runCmd.Flags().BoolP("debug", "d", false, "Trace every classification and resolution (AFL_DEBUG)")
	runCmd.Flags().BoolP("quiet", "q", false, "Hide the banner, per-entry lines and summary (AFL_QUIET)")
	runCmd.Flags().Int("min-len", analysis.MinLen, "Shortest entry to keep")
	runCmd.Flags().Int("max-len", analysis.MaxLen, "Longest entry; longer constants are truncated")
}

// loadConfig layers flags over the file and environment configuration and
// validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("quiet") {
		cfg.Quiet, _ = flags.GetBool("quiet")
	}
	if flags.Changed("min-len") {
		cfg.MinLen, _ = flags.GetInt("min-len")
	}
	if flags.Changed("max-len") {
		cfg.MaxLen, _ = flags.GetInt("max-len")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// session carries the process surroundings of a run.
type session struct {
	stderr   io.Writer
	logger   *log.Logger
	terminal bool
}

// runModules scans paths in order into the dictionary named by cfg. The
// dictionary is opened once and closed on every return path.
func runModules(cfg config.Config, paths []string, s session) (total analysis.Result, err error) {
	if (s.terminal && !cfg.Quiet) || cfg.Debug {
		fmt.Fprintln(s.stderr, styles.Banner(Version))
	}
	if cfg.Debug {
		s.logger.SetLevel(log.DebugLevel)
	}

	w, err := dictionary.Open(cfg.OutputPath, cfg.MinLen, cfg.MaxLen)
	if err != nil {
		return total, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	opts := analysis.Options{
		Bounds: cfg.Bounds(),
		Debug:  cfg.Debug,
		Quiet:  cfg.Quiet,
		Ignore: cfg.IgnoreList(),
		Logger: s.logger,
	}
	if cfg.Debug && s.terminal && !colorize.Disabled() {
		opts.Highlight = colorize.ColorizeLine
	}
	a := analysis.New(opts)

	for _, path := range paths {
		m, err := llvmir.ParseFile(path)
		if err != nil {
			return total, err
		}
		slog.Debug("Scanning module", "path", path, "functions", len(m.Functions))

		res, err := a.Run(m, w)
		total = addResults(total, res)
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(s.stderr, styles.Summary(w.Count(), cfg.OutputPath))
	}
	return total, nil
}

func addResults(a, b analysis.Result) analysis.Result {
	a.Entries += b.Entries
	a.Functions += b.Functions
	a.Ignored += b.Ignored
	a.Comparisons += b.Comparisons
	a.Copies += b.Copies
	a.Ambiguous += b.Ambiguous
	a.OutOfBounds += b.OutOfBounds
	return a
}
