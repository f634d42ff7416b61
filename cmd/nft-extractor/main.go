// Command nft-extractor downloads NFT artwork and metadata.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/steve-blackdove/nft-extractor/internal/adapters/driven/config/file"
	"github.com/steve-blackdove/nft-extractor/internal/adapters/driven/storage/sqlite"
	"github.com/steve-blackdove/nft-extractor/internal/adapters/driving/cli"
	"github.com/steve-blackdove/nft-extractor/internal/artifact"
	"github.com/steve-blackdove/nft-extractor/internal/connectors/alchemy"
	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/core/services"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
	"github.com/steve-blackdove/nft-extractor/internal/media"
)

func main() {
	var history *sqlite.Store

	cli.SetServicesFactory(func(configDir, outputDir string) (cli.Services, error) {
		svcs, store, err := buildServices(configDir, outputDir)
		history = store
		return svcs, err
	})

	err := cli.Execute()
	if history != nil {
		history.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// buildServices is the composition root. It runs after global flags
// are parsed so --config-dir and --output take effect.
func buildServices(configDir, outputDir string) (cli.Services, *sqlite.Store, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening config: %w", err)
	}

	history, err := sqlite.NewStore("")
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("opening history store: %w", err)
	}

	if outputDir == "" {
		outputDir = configStore.GetString(file.KeyOutputDir)
	}
	writer := artifact.NewWriter(artifact.Config{
		Dir:          outputDir,
		GatewayToken: configStore.GetString(file.KeyGatewayToken),
	})

	extractor := services.NewExtractor(
		buildFetcher(configStore), writer, history, extractOptions(configStore))
	batch := services.NewBatch(extractor, configStore.GetInt(file.KeyWorkers))

	return cli.Services{
		Extract: extractor,
		Batch:   batch,
		History: history,
		Config:  configStore,
	}, history, nil
}

// buildFetcher creates the Alchemy client, or a placeholder that
// reports the missing key on first use so that commands which never
// fetch keep working without one.
func buildFetcher(cfg driven.ConfigStore) driven.MetadataFetcher {
	client, err := alchemy.NewClient(alchemy.Config{
		APIKey: cfg.GetString(file.KeyAlchemyAPIKey),
	})
	if err != nil {
		return unconfiguredFetcher{}
	}
	return client
}

// extractOptions reads the extraction tunables. Thumbnails default to
// on; an unknown duplicate policy falls back to the default with a
// warning.
func extractOptions(cfg driven.ConfigStore) services.ExtractOptions {
	opts := services.ExtractOptions{
		DownloadThumbnails: true,
		DuplicatePolicy:    media.DuplicateContains,
	}
	if _, ok := cfg.Get(file.KeyDownloadThumbnails); ok {
		opts.DownloadThumbnails = cfg.GetBool(file.KeyDownloadThumbnails)
	}
	if raw := cfg.GetString(file.KeyDuplicatePolicy); raw != "" {
		policy := media.DuplicatePolicy(raw)
		if policy.IsValid() {
			opts.DuplicatePolicy = policy
		} else {
			logger.Warn("Unknown duplicate_policy %q, using %q", raw, opts.DuplicatePolicy)
		}
	}
	return opts
}

// unconfiguredFetcher fails every fetch with an actionable error.
type unconfiguredFetcher struct{}

func (unconfiguredFetcher) FetchMetadata(context.Context, domain.TokenRef) (domain.MetadataDocument, error) {
	return nil, fmt.Errorf("%w: set it with 'nft-extractor config set alchemy_api_key <key>' or the ALCHEMY_API_KEY environment variable",
		domain.ErrAPIKeyMissing)
}
