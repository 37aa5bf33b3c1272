package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
)

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	SourceKey   string `json:"sourceKey" jsonschema:"object key of the stored document"`
	OwnerID     string `json:"ownerId" jsonschema:"tenant that owns the document"`
	Method      string `json:"method,omitempty" jsonschema:"chunking method (default naive)"`
	TokenBudget int    `json:"tokenBudget,omitempty" jsonschema:"maximum tokens per chunk (default 512)"`
	LayoutMode  string `json:"layoutMode,omitempty" jsonschema:"DeepDOC or PlainText"`
}

// ChunkTextInput is the input schema for the chunk_text tool.
type ChunkTextInput struct {
	Filename    string `json:"filename" jsonschema:"file name; its extension selects the reader"`
	Content     string `json:"content" jsonschema:"document text"`
	Method      string `json:"method,omitempty" jsonschema:"chunking method (default naive)"`
	TokenBudget int    `json:"tokenBudget,omitempty" jsonschema:"maximum tokens per chunk (default 512)"`
}

// ChunksOutput is the output schema for the chunking tools.
// On failure Chunks is empty and Message and Summary describe the error.
type ChunksOutput struct {
	Chunks  []domain.EnrichedChunk `json:"chunks"`
	Count   int                    `json:"count"`
	Message string                 `json:"message,omitempty"`
	Summary string                 `json:"summary,omitempty"`
}

// MethodsOutput is the output schema for the list_methods tool.
type MethodsOutput struct {
	Methods []string `json:"methods"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Chunk and enrich a document from the configured storage bucket",
	}, s.handleProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chunk_text",
		Description: "Chunk and enrich inline document text",
	}, s.handleChunkText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_methods",
		Description: "List the available chunking methods",
	}, s.handleListMethods)
}

// handleProcess handles the process_document tool invocation.
// Pipeline failures are reported in the output rather than as tool errors.
func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ChunksOutput, error) {
	resp := s.ports.Pipeline.Handle(ctx, domain.ProcessRequest{
		SourceKey:   input.SourceKey,
		OwnerID:     input.OwnerID,
		Method:      input.Method,
		TokenBudget: domain.TokenBudget(input.TokenBudget),
		LayoutMode:  input.LayoutMode,
	})
	if !resp.OK() {
		return nil, failureOutput(resp.Failure), nil
	}
	return nil, chunksOutput(resp.Chunks), nil
}

// handleChunkText handles the chunk_text tool invocation.
// Failures, including panics below the pipeline, are reported in the
// output the same way as for process_document.
func (s *Server) handleChunkText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChunkTextInput,
) (_ *mcp.CallToolResult, out ChunksOutput, _ error) {
	defer func() {
		if r := recover(); r != nil {
			out = failureOutput(domain.NewFailure(fmt.Errorf("unhandled failure: %v", r)))
		}
	}()

	if input.TokenBudget < 0 {
		err := fmt.Errorf("%w: token budget must not be negative", domain.ErrInvalidInput)
		return nil, failureOutput(domain.NewFailure(err)), nil
	}

	chunks, err := s.ports.Pipeline.Process(ctx, domain.SourceDocument{
		Filename: input.Filename,
		Content:  []byte(input.Content),
	}, driving.ProcessOptions{
		Method:      input.Method,
		TokenBudget: input.TokenBudget,
	})
	if err != nil {
		return nil, failureOutput(domain.NewFailure(err)), nil
	}
	return nil, chunksOutput(chunks), nil
}

// handleListMethods handles the list_methods tool invocation.
func (s *Server) handleListMethods(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, MethodsOutput, error) {
	return nil, MethodsOutput{Methods: s.ports.Pipeline.Methods()}, nil
}

func chunksOutput(chunks []domain.EnrichedChunk) ChunksOutput {
	if chunks == nil {
		chunks = []domain.EnrichedChunk{}
	}
	return ChunksOutput{Chunks: chunks, Count: len(chunks)}
}

func failureOutput(f *domain.Failure) ChunksOutput {
	return ChunksOutput{
		Chunks:  []domain.EnrichedChunk{},
		Message: f.Message,
		Summary: f.Summary,
	}
}
