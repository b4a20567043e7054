package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"dict2file/internal/dict2file/styles"
	"dict2file/internal/dictionary"
)

var tailCmd = &cobra.Command{
	Use:   "tail <dict>",
	Short: "Follow a dictionary while builds append to it",
	Long: `Print entries as they are appended to a dictionary. Several compiler
invocations may share one dictionary; tail shows what each adds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStart, _ := cmd.Flags().GetBool("from-start")
		poll, _ := cmd.Flags().GetBool("poll")
		return follow(cmd.Context(), args[0], followOptions{
			fromStart: fromStart,
			poll:      poll,
			styled:    isTerminal(os.Stdout),
		}, cmd.OutOrStdout())
	},
}

func init() {
	tailCmd.Flags().BoolP("from-start", "n", false, "Print existing entries before following")
	tailCmd.Flags().Bool("poll", false, "Poll for changes instead of using file notifications")
}

type followOptions struct {
	fromStart bool
	poll      bool
	styled    bool
}

// follow prints decoded entries of path until ctx is done. Lines that are
// not dictionary entries are skipped.
func follow(ctx context.Context, path string, opts followOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := tail.Config{
		Follow: true,
		ReOpen: true,
		Poll:   opts.poll,
		Logger: tail.DiscardingLogger,
	}
	if !opts.fromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, cfg)
	if err != nil {
		return &dictionary.IOError{Op: "follow", Path: path, Err: err}
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return &dictionary.IOError{Op: "follow", Path: path, Err: line.Err}
			}
			entry, err := dictionary.Decode(line.Text)
			if err != nil {
				continue
			}
			rendered := dictionary.Render(entry)
			if opts.styled {
				rendered = styles.Entry(rendered)
			}
			if _, err := fmt.Fprintf(out, "%s\t%d\n", rendered, len(entry)); err != nil {
				return err
			}
		}
	}
}
