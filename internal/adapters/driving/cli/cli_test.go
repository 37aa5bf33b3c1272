package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/chunkflow/internal/config"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// mockPipelineService implements driving.PipelineService for testing.
type mockPipelineService struct {
	mu       sync.Mutex
	process  func(doc domain.SourceDocument, opts driving.ProcessOptions) ([]domain.EnrichedChunk, error)
	response domain.ProcessResponse
	methods  []string

	docs []domain.SourceDocument
	opts []driving.ProcessOptions
	reqs []domain.ProcessRequest
}

func (m *mockPipelineService) Process(
	_ context.Context,
	doc domain.SourceDocument,
	opts driving.ProcessOptions,
) ([]domain.EnrichedChunk, error) {
	m.mu.Lock()
	m.docs = append(m.docs, doc)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.process != nil {
		return m.process(doc, opts)
	}
	return []domain.EnrichedChunk{{Content: string(doc.Content)}}, nil
}

func (m *mockPipelineService) Handle(_ context.Context, req domain.ProcessRequest) domain.ProcessResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	return m.response
}

func (m *mockPipelineService) Methods() []string {
	return m.methods
}

// setupServices installs s for the duration of the test.
func setupServices(t *testing.T, s Services) {
	t.Helper()
	oldPipeline, oldEncoder, oldStore, oldConfig, oldLog := pipelineService, envelopeEncoder, configStore, appConfig, log
	if s.Logger == nil {
		s.Logger = logger.Discard()
	}
	if s.Config == (config.Config{}) {
		s.Config = config.Default()
	}
	SetServices(s)
	t.Cleanup(func() {
		pipelineService, envelopeEncoder, configStore, appConfig, log = oldPipeline, oldEncoder, oldStore, oldConfig, oldLog
	})
}

// execute runs the root command with args and returns its output.
// Flags are reset first because cobra keeps their values between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	// cobra also keeps the context of a previous run on each command.
	cmd.SetContext(nil)

	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// captureOutput redirects the output of cmd until the test ends.
func captureOutput(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	return buf
}
