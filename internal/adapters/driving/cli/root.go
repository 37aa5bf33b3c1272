// Package cli provides the chunkflow command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chunkflow/internal/config"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services wired by main.
var (
	pipelineService driving.PipelineService
	envelopeEncoder driven.EnvelopeEncoder
	configStore     driven.ConfigStore
	appConfig       = config.Default()
	log             = logger.Default()
)

var errNotConfigured = errors.New("pipeline service not configured")

// Services holds the dependencies the commands run against.
type Services struct {
	Pipeline    driving.PipelineService
	Envelope    driven.EnvelopeEncoder
	ConfigStore driven.ConfigStore
	Config      config.Config
	Logger      *logger.Logger
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	pipelineService = s.Pipeline
	envelopeEncoder = s.Envelope
	configStore = s.ConfigStore
	appConfig = s.Config
	if s.Logger != nil {
		log = s.Logger
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "chunkflow",
	Short: "Split documents into enriched, content-addressed chunks",
	Long: `chunkflow extracts the text of a document, splits it into bounded chunks
with a configurable chunking method and enriches every chunk with
content-addressable metadata.

Documents can be chunked from local files, from the configured storage
bucket, from a watched inbox directory or through the MCP server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logger.LevelDebug)
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every
// subcommand through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// progressSink writes pipeline progress to the debug log.
func progressSink() domain.ProgressSink {
	return domain.ProgressFunc(func(e domain.ProgressEvent) {
		log.Debug("%s", e.String())
	})
}

// addChunkingFlags registers the per-invocation chunking flags.
func addChunkingFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("method", "m", "", "Chunking method (see 'chunkflow methods')")
	cmd.Flags().IntP("budget", "b", 0, "Maximum tokens per chunk (default from config)")
	cmd.Flags().StringP("layout", "l", "", "Layout mode: DeepDOC or PlainText")
}

func chunkingOptions(cmd *cobra.Command) driving.ProcessOptions {
	method, _ := cmd.Flags().GetString("method")
	budget, _ := cmd.Flags().GetInt("budget")
	layout, _ := cmd.Flags().GetString("layout")
	return driving.ProcessOptions{
		Method:      method,
		TokenBudget: budget,
		LayoutMode:  layout,
		Progress:    progressSink(),
	}
}
