package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chunkflow/internal/connectors/inbox"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
	"github.com/custodia-labs/chunkflow/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Chunk documents dropped into a directory",
	Long: `Watch a directory and chunk every document created in or written to it.
Raw chunks are written to <name>_chunks.json in the output directory.
Documents already present are processed first unless --new-only is set.

Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addChunkingFlags(watchCmd)
	watchCmd.Flags().String("output-dir", "", "Directory for chunk files (default: the watched directory)")
	watchCmd.Flags().Bool("new-only", false, "Skip documents already in the directory")
	watchCmd.Flags().Float64("rate", 0, "Maximum documents processed per second (0 means unlimited)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errNotConfigured
	}

	box := inbox.New(args[0], log)
	defer box.Close()

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		outDir = box.Root()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := chunkingOptions(cmd)
	perSecond, _ := cmd.Flags().GetFloat64("rate")
	throttle := inbox.NewThrottle(perSecond, inbox.DefaultBurst)
	if !throttle.Unlimited() {
		cmd.Printf("Processing at most %g documents per second\n", perSecond)
	}

	if newOnly, _ := cmd.Flags().GetBool("new-only"); !newOnly {
		existing, err := box.Scan(ctx)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if err := throttle.Wait(ctx); err != nil {
				return nil
			}
			processArrival(ctx, cmd, a, outDir, opts)
		}
	}

	arrivals, err := box.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", box.Root())

	for a := range arrivals {
		if err := throttle.Wait(ctx); err != nil {
			break
		}
		processArrival(ctx, cmd, a, outDir, opts)
	}
	return nil
}

// processArrival chunks one inbox document. Failures are reported and
// never stop the watch.
func processArrival(ctx context.Context, cmd *cobra.Command, a inbox.Arrival, outDir string, opts driving.ProcessOptions) {
	opts.SourceKey = a.Name
	opts.OutputFile = filepath.Join(outDir, services.ChunksFileName(a.Name))

	chunks, err := pipelineService.Process(ctx, domain.SourceDocument{
		Filename: a.Name,
		Content:  a.Content,
	}, opts)
	if err != nil {
		log.Error("%s: %v", a.Name, err)
		cmd.Printf("%s: error: %v\n", a.Name, err)
		return
	}
	cmd.Printf("%s: %d chunks -> %s\n", a.Name, len(chunks), opts.OutputFile)
}
