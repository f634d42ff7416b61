package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/connectors/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory for token list files",
	Long: `Watches a directory for dropped token list files and downloads
every token they reference. List files hold one reference per line;
blank lines and lines starting with # are ignored. Processed files
are renamed with a .done suffix.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if batchRunner == nil {
		return errors.New("batch runner not configured")
	}

	dir := args[0]
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return errors.New("not a directory: " + dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, press Ctrl-C to stop\n", dir)

	refs, errs := inbox.New(dir).Tokens(ctx)
	summary := batchRunner.Run(ctx, refs, errs)

	cmd.Printf("Processed %d, skipped %d, failed %d\n",
		summary.Processed, summary.Skipped, summary.Failed)
	return nil
}
