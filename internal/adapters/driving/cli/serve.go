package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/adapters/driving/httpapi"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger server",
	Long: `Runs a local HTTP server that triggers range extractions. A GET
request with the contract address and an inclusive token id range
downloads every token in the range:

  curl "http://127.0.0.1:3128/?NFT_CONTRACT_ADDRESS=0xb932...&FIRST_TOKEN_ID=1&LAST_TOKEN_ID=50"

Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", httpapi.DefaultPort, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if batchRunner == nil {
		return errors.New("batch runner not configured")
	}

	server := httpapi.NewServer(servePort, batchRunner)
	if err := server.Start(); err != nil {
		return err
	}

	cmd.Printf("Listening on %s, press Ctrl-C to stop\n", server.URL())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return server.Stop()
}
