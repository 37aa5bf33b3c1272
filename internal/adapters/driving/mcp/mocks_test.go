package mcp

import (
	"context"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
)

// mockPipelineService is a mock implementation of driving.PipelineService.
type mockPipelineService struct {
	chunks   []domain.EnrichedChunk
	response domain.ProcessResponse
	methods  []string
	err      error
	panics   any

	lastDoc  domain.SourceDocument
	lastOpts driving.ProcessOptions
	lastReq  domain.ProcessRequest
}

func (m *mockPipelineService) Process(
	_ context.Context,
	doc domain.SourceDocument,
	opts driving.ProcessOptions,
) ([]domain.EnrichedChunk, error) {
	m.lastDoc = doc
	m.lastOpts = opts
	if m.panics != nil {
		panic(m.panics)
	}
	return m.chunks, m.err
}

func (m *mockPipelineService) Handle(_ context.Context, req domain.ProcessRequest) domain.ProcessResponse {
	m.lastReq = req
	return m.response
}

func (m *mockPipelineService) Methods() []string {
	return m.methods
}
