package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

func TestProcessCmd_FromFlags(t *testing.T) {
	p := &mockPipelineService{
		response: domain.ProcessResponse{Chunks: []domain.EnrichedChunk{{Content: "hello"}}},
	}
	setupServices(t, Services{Pipeline: p})

	out, err := execute(t, "process", "--key", "kb/imp/a.pdf", "--owner", "acme", "--budget", "128", "--method", "book")

	require.NoError(t, err)
	require.Len(t, p.reqs, 1)
	assert.Equal(t, domain.ProcessRequest{
		SourceKey:   "kb/imp/a.pdf",
		OwnerID:     "acme",
		Method:      "book",
		TokenBudget: 128,
	}, p.reqs[0])

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Contains(t, resp, "chunks")
}

func TestProcessCmd_FromRequestFile(t *testing.T) {
	p := &mockPipelineService{response: domain.ProcessResponse{}}
	setupServices(t, Services{Pipeline: p})

	dir := t.TempDir()
	reqFile := writeFile(t, dir, "req.json",
		`{"sourceKey": "kb/imp/a.docx", "ownerId": "acme", "tokenBudget": "256", "layoutMode": "PlainText"}`)
	output := filepath.Join(dir, "out.json")

	out, err := execute(t, "process", "--request", reqFile, "--output", output)

	require.NoError(t, err)
	require.Len(t, p.reqs, 1)
	assert.Equal(t, domain.TokenBudget(256), p.reqs[0].TokenBudget)
	assert.Equal(t, "PlainText", p.reqs[0].LayoutMode)
	assert.Equal(t, output, p.reqs[0].OutputFile)
	assert.JSONEq(t, `{"chunks": []}`, out)
}

func TestProcessCmd_Failure(t *testing.T) {
	p := &mockPipelineService{
		response: domain.ProcessResponse{Failure: domain.NewFailure(domain.ErrValidation)},
	}
	setupServices(t, Services{Pipeline: p})

	out, err := execute(t, "process", "--key", "a.txt")

	require.ErrorIs(t, err, errProcessFailed)
	assert.Contains(t, out, `"message": "Error in process_chunks"`)
	assert.Contains(t, out, `"summary": "validation failed"`)
}

func TestProcessCmd_InvalidBudget(t *testing.T) {
	p := &mockPipelineService{}
	setupServices(t, Services{Pipeline: p})

	_, err := execute(t, "process", "--key", "a.txt", "--owner", "o", "--budget", "lots")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, p.reqs)
}
