package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent extraction runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyStore == nil {
		return errors.New("history store not configured")
	}

	runs, err := historyStore.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		failed := 0
		for _, a := range run.Artifacts {
			if a.Failed() {
				failed++
			}
		}
		cmd.Printf("%s  %s  %s  %d artifact(s)",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Token, run.BaseName, len(run.Artifacts))
		if failed > 0 {
			cmd.Printf("  %d failed", failed)
		}
		cmd.Println()
	}
	return nil
}
