package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/steve-blackdove/nft-extractor/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manages the extractor configuration. Recognised keys:

  alchemy_api_key      Alchemy API key (required for fetching)
  google_api_key       Google API key for private spreadsheets
  gateway_token        bearer token for authenticated media gateways
  output_dir           artifact output directory (default "artwork")
  download_thumbnails  also download thumbnails (default true)
  duplicate_policy     thumbnail duplicate check: exact, contains or host-stripped
  workers              concurrent token extractions

Every key can also be supplied as an environment variable, e.g.
ALCHEMY_API_KEY. Environment values win over the config file.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		val, ok := configStore.Get(args[0])
		if !ok {
			return fmt.Errorf("key %q is not set", args[0])
		}
		cmd.Printf("%v\n", val)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		return configStore.Set(args[0], coerce(args[1]))
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errors.New("config store not configured")
		}
		keys := []string{
			file.KeyAlchemyAPIKey,
			file.KeyGoogleAPIKey,
			file.KeyGatewayToken,
			file.KeyOutputDir,
			file.KeyDownloadThumbnails,
			file.KeyDuplicatePolicy,
			file.KeyWorkers,
		}
		for _, key := range keys {
			val, ok := configStore.Get(key)
			if !ok {
				continue
			}
			if key == file.KeyAlchemyAPIKey || key == file.KeyGoogleAPIKey || key == file.KeyGatewayToken {
				val = redact(fmt.Sprint(val))
			}
			cmd.Printf("%-20s %v\n", key, val)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// coerce stores booleans and integers typed, everything else as string.
func coerce(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// redact keeps the first characters of a secret for recognition.
func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
