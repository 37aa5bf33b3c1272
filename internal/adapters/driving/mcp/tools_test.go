package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

func newTestServer(t *testing.T, p *mockPipelineService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Pipeline: p})
	require.NoError(t, err)
	return server
}

func TestServer_handleProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("returns chunks", func(t *testing.T) {
		p := &mockPipelineService{
			response: domain.ProcessResponse{Chunks: []domain.EnrichedChunk{
				{Content: "first"},
				{Content: "second"},
			}},
		}
		server := newTestServer(t, p)

		_, out, err := server.handleProcess(ctx, nil, ProcessInput{
			SourceKey:   "kb/imp/a.pdf",
			OwnerID:     "owner-1",
			Method:      "book",
			TokenBudget: 128,
			LayoutMode:  "PlainText",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Count)
		assert.Equal(t, "first", out.Chunks[0].Content)
		assert.Empty(t, out.Message)
		assert.Equal(t, domain.ProcessRequest{
			SourceKey:   "kb/imp/a.pdf",
			OwnerID:     "owner-1",
			Method:      "book",
			TokenBudget: 128,
			LayoutMode:  "PlainText",
		}, p.lastReq)
	})

	t.Run("reports failure in output", func(t *testing.T) {
		p := &mockPipelineService{
			response: domain.ProcessResponse{Failure: domain.NewFailure(domain.ErrUnknownMethod)},
		}
		server := newTestServer(t, p)

		_, out, err := server.handleProcess(ctx, nil, ProcessInput{SourceKey: "a", OwnerID: "o", Method: "nope"})

		require.NoError(t, err)
		assert.Equal(t, 0, out.Count)
		assert.NotNil(t, out.Chunks)
		assert.Equal(t, domain.FailureMessage, out.Message)
		assert.Equal(t, "unknown method", out.Summary)
	})
}

func TestServer_handleChunkText(t *testing.T) {
	ctx := context.Background()

	t.Run("passes document and options", func(t *testing.T) {
		p := &mockPipelineService{chunks: []domain.EnrichedChunk{{Content: "hello"}}}
		server := newTestServer(t, p)

		_, out, err := server.handleChunkText(ctx, nil, ChunkTextInput{
			Filename:    "notes.txt",
			Content:     "hello",
			Method:      "one",
			TokenBudget: 64,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "notes.txt", p.lastDoc.Filename)
		assert.Equal(t, []byte("hello"), p.lastDoc.Content)
		assert.Equal(t, "one", p.lastOpts.Method)
		assert.Equal(t, 64, p.lastOpts.TokenBudget)
	})

	t.Run("nil chunks become empty list", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{})

		_, out, err := server.handleChunkText(ctx, nil, ChunkTextInput{Filename: "a.txt", Content: "x"})

		require.NoError(t, err)
		assert.NotNil(t, out.Chunks)
		assert.Equal(t, 0, out.Count)
	})

	t.Run("reports pipeline error in output", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{err: errors.New("extract failed")})

		_, out, err := server.handleChunkText(ctx, nil, ChunkTextInput{Filename: "a.txt", Content: "x"})

		require.NoError(t, err)
		assert.NotNil(t, out.Chunks)
		assert.Equal(t, 0, out.Count)
		assert.Equal(t, domain.FailureMessage, out.Message)
		assert.Equal(t, "extract failed", out.Summary)
	})

	t.Run("converts panic into failure", func(t *testing.T) {
		server := newTestServer(t, &mockPipelineService{panics: "chunker exploded"})

		_, out, err := server.handleChunkText(ctx, nil, ChunkTextInput{Filename: "a.txt", Content: "x"})

		require.NoError(t, err)
		assert.NotNil(t, out.Chunks)
		assert.Equal(t, domain.FailureMessage, out.Message)
		assert.Equal(t, "unhandled failure: chunker exploded", out.Summary)
	})

	t.Run("rejects negative budget", func(t *testing.T) {
		p := &mockPipelineService{}
		server := newTestServer(t, p)

		_, out, err := server.handleChunkText(ctx, nil, ChunkTextInput{Filename: "a.txt", Content: "x", TokenBudget: -1})

		require.NoError(t, err)
		assert.Equal(t, domain.FailureMessage, out.Message)
		assert.Contains(t, out.Summary, domain.ErrInvalidInput.Error())
		assert.Empty(t, p.lastDoc.Filename)
	})
}

func TestServer_handleListMethods(t *testing.T) {
	server := newTestServer(t, &mockPipelineService{methods: []string{"email", "naive"}})

	_, out, err := server.handleListMethods(context.Background(), nil, struct{}{})

	require.NoError(t, err)
	assert.Equal(t, []string{"email", "naive"}, out.Methods)
}
