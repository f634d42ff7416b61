package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <reference>...",
	Short: "Download artwork and metadata for individual tokens",
	Long: `Downloads artwork and metadata for one or more tokens.

A reference can be an OpenSea URL, a Rarible URL, or a direct
"contract/id" pair:

  nft-extractor fetch https://opensea.io/assets/ethereum/0xb932.../3087
  nft-extractor fetch 0xb932a70a57673d89f4acffbe830e8ed7f75fb9e0/3087`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if extractService == nil {
		return errors.New("extract service not configured")
	}

	failures := 0
	for _, arg := range args {
		ref, err := domain.ParseTokenRef(arg)
		if err != nil {
			cmd.PrintErrf("Skipping %q: %v\n", arg, err)
			failures++
			continue
		}

		manifest, err := extractService.Extract(cmd.Context(), ref)
		if err != nil {
			cmd.PrintErrf("Failed %s: %v\n", ref, err)
			failures++
			continue
		}

		printManifest(cmd, manifest)
		failures += manifest.FailureCount()
	}

	if failures > 0 {
		return fmt.Errorf("%d item(s) failed", failures)
	}
	return nil
}

// printManifest writes one line per artifact.
func printManifest(cmd *cobra.Command, m *domain.Manifest) {
	cmd.Printf("%s -> %s\n", m.Token, m.BaseName)
	for _, a := range m.Artifacts {
		switch {
		case a.Failed():
			cmd.Printf("  %-14s FAILED: %v\n", a.Role, a.Err)
		case a.Skipped:
			cmd.Printf("  %-14s %s (already present)\n", a.Role, a.Path)
		default:
			cmd.Printf("  %-14s %s (%d bytes)\n", a.Role, a.Path, a.ByteSize)
		}
	}
}
