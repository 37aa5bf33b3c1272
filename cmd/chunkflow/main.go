// Command chunkflow splits documents into enriched chunks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/chunkflow/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chunkflow/internal/adapters/driven/storage/localfs"
	"github.com/custodia-labs/chunkflow/internal/adapters/driving/cli"
	"github.com/custodia-labs/chunkflow/internal/chunkers/email"
	"github.com/custodia-labs/chunkflow/internal/chunkers/general"
	"github.com/custodia-labs/chunkflow/internal/config"
	"github.com/custodia-labs/chunkflow/internal/core/services"
	"github.com/custodia-labs/chunkflow/internal/logger"
	"github.com/custodia-labs/chunkflow/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	store, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	cfg, err := config.Load(store, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	log := logger.Default()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.LogLevel())

	chunkers := general.Chunkers()
	chunkers = append(chunkers, email.NewChunker(general.NewNaive(), log))
	registry := services.NewChunkerRegistry(chunkers...)

	codec := email.NewCodec(general.NewOne(), email.WithLogger(log))

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	enricher, err := processors.Build(postprocessors.DefaultProcessor, map[string]any{
		"region": cfg.Storage.Region,
		"bucket": cfg.Storage.Bucket,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	pipeline := services.NewPipeline(registry, codec, enricher,
		services.WithObjectStore(localfs.NewObjectStore(cfg.Storage.Root)),
		services.WithStorageLocation(cfg.Storage.Region, cfg.Storage.Bucket),
		services.WithDefaultMethod(cfg.Chunking.Method),
		services.WithParserConfig(cfg.ParserConfig()),
		services.WithLanguage(cfg.Chunking.Language),
		services.WithPipelineLogger(log),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Pipeline:    pipeline,
		Envelope:    codec,
		ConfigStore: store,
		Config:      cfg,
		Logger:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.ExecuteContext(ctx)
}
