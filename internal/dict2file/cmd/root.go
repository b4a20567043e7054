package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	applog "dict2file/internal/dict2file/log"
	"dict2file/internal/logging"
)

// Version is stamped at build time.
var Version = "dev"

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(schemaCmd)
}

var rootCmd = &cobra.Command{
	Use:   "dict2file",
	Short: "Extract fuzzing dictionary entries from LLVM IR",
	Long: `dict2file scans LLVM IR modules for calls to strcmp, strncmp, strcasecmp,
strncasecmp and memcmp that compare input against a constant, and appends
those constants to an AFL-style fuzzing dictionary.`,
	Example: `
# Scan a module and append entries to a dictionary
dict2file run -o /tmp/target.dict target.ll

# Use the AFL environment instead of flags
AFL_LLVM_DICT2FILE=/tmp/target.dict AFL_DEBUG=1 dict2file run target.ll

# Inspect the result
dict2file show /tmp/target.dict

# Browse the comparison sites of a module
dict2file inspect target.ll
  `,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applog.Setup(cmd.ErrOrStderr(), logging.IsDebug())
	},
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

func Execute() {
	// Bypass fang when output is being piped so errors stay plain text
	if !isTerminal(os.Stdout) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
