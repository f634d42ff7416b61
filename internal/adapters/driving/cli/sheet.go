package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/adapters/driven/config/file"
	"github.com/steve-blackdove/nft-extractor/internal/connectors/sheets"
)

var (
	sheetStartRow int
	sheetCount    int
)

var sheetCmd = &cobra.Command{
	Use:   "sheet <url>",
	Short: "Download every token listed in a Google Sheets spreadsheet",
	Long: `Reads token references from a Google Sheets spreadsheet, one per
row, and downloads each one. Rows are scanned cell by cell for the
first recognisable reference.

Link-shared sheets work without credentials via the CSV export
endpoint. Private sheets need a Google API key in the configuration
(google_api_key).`,
	Args: cobra.ExactArgs(1),
	RunE: runSheet,
}

func init() {
	sheetCmd.Flags().IntVar(&sheetStartRow, "start", 1, "first row to process (1-indexed)")
	sheetCmd.Flags().IntVar(&sheetCount, "count", 0, "maximum tokens to process (0 = all)")
	rootCmd.AddCommand(sheetCmd)
}

func runSheet(cmd *cobra.Command, args []string) error {
	if batchRunner == nil {
		return errors.New("batch runner not configured")
	}

	cfg := sheets.Config{
		URL:      args[0],
		StartRow: sheetStartRow,
		Count:    sheetCount,
	}
	if configStore != nil {
		cfg.APIKey = configStore.GetString(file.KeyGoogleAPIKey)
	}

	refs, errs := sheets.New(cfg).Tokens(cmd.Context())
	summary := batchRunner.Run(cmd.Context(), refs, errs)

	cmd.Printf("Processed %d, skipped %d, failed %d\n",
		summary.Processed, summary.Skipped, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d token(s) failed", summary.Failed)
	}
	return nil
}
