// Package cli implements the command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driving"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by the composition root before Execute.
var (
	extractService driving.ExtractService
	batchRunner    driving.BatchRunner
	historyStore   driven.HistoryStore
	configStore    driven.ConfigStore
)

// Services bundles everything the commands need.
type Services struct {
	Extract driving.ExtractService
	Batch   driving.BatchRunner
	History driven.HistoryStore
	Config  driven.ConfigStore
}

// SetServices wires the services used by the commands.
func SetServices(s Services) {
	extractService = s.Extract
	batchRunner = s.Batch
	historyStore = s.History
	configStore = s.Config
}

// servicesFactory builds the services once global flags are parsed.
// Set by the composition root; tests inject services directly instead.
var servicesFactory func(configDir, outputDir string) (Services, error)

// SetServicesFactory wires the deferred service construction.
func SetServicesFactory(f func(configDir, outputDir string) (Services, error)) {
	servicesFactory = f
}

var (
	verbose   bool
	outputDir string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "nft-extractor",
	Short: "Download NFT artwork and metadata from the Alchemy NFT API",
	Long: `nft-extractor fetches token metadata from the Alchemy NFT API and
saves the artwork, thumbnail and metadata files for each token.

Tokens can be given directly, as OpenSea or Rarible URLs, as an id
range on one contract, or in bulk from a Google Sheets spreadsheet or
a watched drop directory.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if servicesFactory != nil {
			services, err := servicesFactory(configDir, outputDir)
			if err != nil {
				return err
			}
			SetServices(services)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "artifact output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.nft-extractor)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
