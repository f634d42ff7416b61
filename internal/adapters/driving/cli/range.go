package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

var rangeCmd = &cobra.Command{
	Use:   "range <contract> <first> <last>",
	Short: "Download a contiguous token id range on one contract",
	Long: `Downloads every token in an inclusive id range on one contract.
Token ids may be decimal or 0x-prefixed hex:

  nft-extractor range 0xb932a70a57673d89f4acffbe830e8ed7f75fb9e0 1 250`,
	Args: cobra.ExactArgs(3),
	RunE: runRange,
}

func init() {
	rootCmd.AddCommand(rangeCmd)
}

func runRange(cmd *cobra.Command, args []string) error {
	if batchRunner == nil {
		return errors.New("batch runner not configured")
	}

	contract := args[0]
	first, err := parseBound(args[1])
	if err != nil {
		return fmt.Errorf("first token id: %w", err)
	}
	last, err := parseBound(args[2])
	if err != nil {
		return fmt.Errorf("last token id: %w", err)
	}

	refs := make(chan domain.TokenRef)
	go func() {
		defer close(refs)
		for _, ref := range domain.TokenRange(contract, first, last) {
			select {
			case refs <- ref:
			case <-cmd.Context().Done():
				return
			}
		}
	}()

	summary := batchRunner.Run(cmd.Context(), refs, nil)

	cmd.Printf("Processed %d, skipped %d, failed %d\n",
		summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d token(s) failed", summary.Failed)
	}
	return nil
}

// parseBound accepts a decimal or hex token id as a range bound.
func parseBound(raw string) (uint64, error) {
	decimal, err := domain.ParseTokenID(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(decimal, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: token id %q", domain.ErrInvalidInput, raw)
	}
	return n, nil
}
