package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/services"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>...",
	Short: "Chunk local documents",
	Long: `Chunk one or more local documents and print the enriched chunks.

Files are processed concurrently, at most --jobs at a time. Results are
printed in the order the files were given.

Examples:
  chunkflow chunk report.pdf
  chunkflow chunk --method book --budget 256 *.docx
  chunkflow chunk --save --output-dir out/ inbox/*.eml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChunk,
}

func init() {
	addChunkingFlags(chunkCmd)
	chunkCmd.Flags().IntP("jobs", "j", 4, "Maximum documents processed at once")
	chunkCmd.Flags().Bool("json", false, "Print chunks as JSON")
	chunkCmd.Flags().Bool("save", false, "Write raw chunks to <name>_chunks.json")
	chunkCmd.Flags().String("output-dir", ".", "Directory for files written by --save")
	rootCmd.AddCommand(chunkCmd)
}

// fileResult is the outcome of chunking one file.
type fileResult struct {
	File   string                 `json:"file"`
	Chunks []domain.EnrichedChunk `json:"chunks,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errNotConfigured
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	outDir, _ := cmd.Flags().GetString("output-dir")
	base := chunkingOptions(cmd)

	if jobs < 1 {
		jobs = 1
	}

	var outputs []string
	var collisions map[int]string
	if save {
		outputs, collisions = outputFiles(outDir, args)
	}

	results := make([]fileResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)

	for i, path := range args {
		g.Go(func() error {
			results[i] = fileResult{File: path}
			if other, ok := collisions[i]; ok {
				results[i].Error = fmt.Sprintf("output %s is already written for %s", outputs[i], other)
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}

			opts := base
			opts.SourceKey = filepath.Base(path)
			if save {
				opts.OutputFile = outputs[i]
			}

			chunks, err := pipelineService.Process(ctx, domain.SourceDocument{
				Filename: filepath.Base(path),
				Content:  content,
			}, opts)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Chunks = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	} else {
		for _, r := range results {
			printResult(cmd, r)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

// outputFiles returns the chunk file for each path. A path whose file is
// already claimed by an earlier path is mapped to that earlier path.
func outputFiles(outDir string, paths []string) ([]string, map[int]string) {
	outputs := make([]string, len(paths))
	claimed := make(map[string]string, len(paths))
	collisions := make(map[int]string)
	for i, path := range paths {
		outputs[i] = filepath.Join(outDir, services.ChunksFileName(path))
		if first, ok := claimed[outputs[i]]; ok {
			collisions[i] = first
			continue
		}
		claimed[outputs[i]] = path
	}
	return outputs, collisions
}

func printResult(cmd *cobra.Command, r fileResult) {
	if r.Error != "" {
		cmd.Printf("%s: error: %s\n", r.File, r.Error)
		return
	}
	cmd.Printf("%s: %d chunks\n", r.File, len(r.Chunks))
	width := previewWidth(cmd.OutOrStdout())
	for _, c := range r.Chunks {
		cmd.Printf("  [%d] %s (%d words) %s\n", c.Metadata.SequenceID, shortHash(c.Metadata.ContentHash), c.Metadata.WordCount, preview(c.Content, width))
	}
}

// previewWidth fits previews to the terminal when w is one.
func previewWidth(w io.Writer) int {
	const (
		fallback = 60
		prefix   = 40
	)
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols-prefix < 20 {
		return fallback
	}
	return cols - prefix
}

// preview returns the first n runes of s on a single line.
func preview(s string, n int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' || r == '\t' || r == '\r' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
