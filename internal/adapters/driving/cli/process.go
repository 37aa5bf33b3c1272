package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

var errProcessFailed = errors.New("process failed")

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a stored document",
	Long: `Process a document from the storage bucket and print the response.

The request is taken from flags, or from a JSON file with --request:

  {"sourceKey": "kb/import-1/report.pdf", "ownerId": "acme",
   "method": "book", "tokenBudget": "256"}

The response is {"chunks": [...]} on success or
{"message": ..., "summary": ...} on failure.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringP("key", "k", "", "Object key of the document")
	processCmd.Flags().String("owner", "", "Owner ID of the document")
	processCmd.Flags().StringP("method", "m", "", "Chunking method")
	processCmd.Flags().String("budget", "", "Maximum tokens per chunk")
	processCmd.Flags().StringP("layout", "l", "", "Layout mode: DeepDOC or PlainText")
	processCmd.Flags().StringP("output", "o", "", "Write raw chunks to this JSON file")
	processCmd.Flags().StringP("request", "r", "", "Read the request from a JSON file")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errNotConfigured
	}

	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	resp := pipelineService.Handle(cmd.Context(), req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: %s", errProcessFailed, resp.Failure.Summary)
	}
	return nil
}

func buildRequest(cmd *cobra.Command) (domain.ProcessRequest, error) {
	var req domain.ProcessRequest

	if path, _ := cmd.Flags().GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("decode request: %w", err)
		}
	}

	// Flags override the request file.
	if v, _ := cmd.Flags().GetString("key"); v != "" {
		req.SourceKey = v
	}
	if v, _ := cmd.Flags().GetString("owner"); v != "" {
		req.OwnerID = v
	}
	if v, _ := cmd.Flags().GetString("method"); v != "" {
		req.Method = v
	}
	if v, _ := cmd.Flags().GetString("layout"); v != "" {
		req.LayoutMode = v
	}
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		req.OutputFile = v
	}
	if v, _ := cmd.Flags().GetString("budget"); v != "" {
		if err := req.TokenBudget.UnmarshalJSON([]byte(v)); err != nil {
			return req, err
		}
	}
	return req, nil
}
