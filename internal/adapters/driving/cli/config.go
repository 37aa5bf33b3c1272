package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chunkflow/internal/config"
)

var errNoConfigStore = errors.New("config store not configured")

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
	Long: `Show and change the settings stored in ~/.chunkflow/config.toml.

Environment variables override the file:
  CHUNKFLOW_STORAGE_REGION, CHUNKFLOW_STORAGE_BUCKET,
  CHUNKFLOW_STORAGE_ROOT, CHUNKFLOW_LOG_LEVEL`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errNoConfigStore
		}
		if err := config.Set(configStore, args[0], args[1]); err != nil {
			return err
		}
		cmd.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configStore == nil {
			return errNoConfigStore
		}
		if err := configStore.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("%s removed\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configStore == nil {
			return errNoConfigStore
		}
		cmd.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	c := appConfig
	values := map[string]string{
		config.KeyStorageRegion: c.Storage.Region,
		config.KeyStorageBucket: c.Storage.Bucket,
		config.KeyStorageRoot:   c.Storage.Root,
		config.KeyMethod:        c.Chunking.Method,
		config.KeyTokenBudget:   fmt.Sprint(c.Chunking.TokenBudget),
		config.KeyLayout:        c.Chunking.Layout,
		config.KeyDelimiter:     fmt.Sprintf("%q", c.Chunking.Delimiter),
		config.KeyLanguage:      c.Chunking.Language,
		config.KeyLogLevel:      c.Log.Level,
	}
	for _, k := range config.Keys() {
		cmd.Printf("%-22s %s\n", k, values[k])
	}
	return nil
}
