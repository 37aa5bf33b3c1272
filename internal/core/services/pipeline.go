package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driving"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// EmailMethod is the method whose documents are converted into an
// envelope before they are chunked.
const EmailMethod = "email"

// Pipeline orchestrates extraction, chunker dispatch and enrichment of a
// single document per call. It holds no per-document state, so one
// Pipeline may serve concurrent calls.
type Pipeline struct {
	registry driven.ChunkerRegistry
	encoder  driven.EnvelopeEncoder
	enricher driven.PostProcessor
	store    driven.ObjectStore
	log      *logger.Logger

	method   string
	parser   domain.ParserConfig
	language string
	region   string
	bucket   string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger used for request logging.
func WithPipelineLogger(l *logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithObjectStore sets the store Handle downloads documents from.
func WithObjectStore(store driven.ObjectStore) PipelineOption {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithStorageLocation sets the region and bucket chunk URLs point into.
func WithStorageLocation(region, bucket string) PipelineOption {
	return func(p *Pipeline) {
		p.region = region
		p.bucket = bucket
	}
}

// WithDefaultMethod sets the method used when a call names none.
func WithDefaultMethod(method string) PipelineOption {
	return func(p *Pipeline) {
		if method != "" {
			p.method = method
		}
	}
}

// WithParserConfig sets the parser defaults. Zero fields keep the
// built-in defaults.
func WithParserConfig(cfg domain.ParserConfig) PipelineOption {
	return func(p *Pipeline) {
		p.parser = cfg.WithDefaults()
	}
}

// WithLanguage sets the language passed to chunkers.
func WithLanguage(lang string) PipelineOption {
	return func(p *Pipeline) {
		if lang != "" {
			p.language = lang
		}
	}
}

// NewPipeline creates a pipeline. encoder may be nil, in which case the
// email method receives documents unconverted.
func NewPipeline(
	registry driven.ChunkerRegistry,
	encoder driven.EnvelopeEncoder,
	enricher driven.PostProcessor,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		registry: registry,
		encoder:  encoder,
		enricher: enricher,
		log:      logger.Default(),
		method:   domain.DefaultMethod,
		parser:   domain.DefaultParserConfig(),
		language: domain.DefaultLanguage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Methods returns the chunking methods that can be requested.
func (p *Pipeline) Methods() []string {
	return p.registry.Methods()
}

// Process runs one document through extraction, dispatch and enrichment.
func (p *Pipeline) Process(ctx context.Context, doc domain.SourceDocument, opts driving.ProcessOptions) ([]domain.EnrichedChunk, error) {
	if strings.TrimSpace(doc.Filename) == "" {
		return nil, fmt.Errorf("%w: document has no filename", domain.ErrInvalidInput)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, doc.Filename)
	}

	method := p.resolveMethod(opts.Method, doc.MethodHint)
	if !p.registry.Has(method) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, method)
	}

	cfg, err := p.parserConfig(opts)
	if err != nil {
		return nil, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = domain.DiscardProgress
	}

	in := &domain.ChunkInput{
		Filename: doc.Filename,
		Content:  doc.Content,
		FromPage: 0,
		ToPage:   domain.DefaultToPage,
		Language: p.language,
		Progress: progress,
		Config:   cfg,
	}

	if method == EmailMethod && p.encoder != nil {
		name, eml, err := p.encoder.Encode(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("convert %s to EML: %w", doc.Filename, err)
		}
		p.log.Debug("Converted %s to %s (%d bytes)", doc.Filename, name, len(eml))
		in.Filename = name
		in.Content = eml
	}

	p.log.Debug("Chunking %s with method=%s budget=%d layout=%s", in.Filename, method, cfg.ChunkTokenBudget, cfg.LayoutMode)
	raw, err := p.registry.Dispatch(ctx, method, in)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", in.Filename, err)
	}
	progress.Report(domain.Status(fmt.Sprintf("Chunked into %d raw chunks", len(raw))))

	if opts.OutputFile != "" {
		if err := WriteChunksFile(opts.OutputFile, raw); err != nil {
			return nil, err
		}
		p.log.Info("Chunks saved to %s", opts.OutputFile)
	}

	src := domain.SourceContext{
		SourceKey: opts.SourceKey,
		Region:    p.region,
		Bucket:    p.bucket,
	}
	if src.SourceKey == "" {
		src.SourceKey = doc.Filename
	}

	enriched, err := p.enricher.Process(ctx, src, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.enricher.Name(), err)
	}
	progress.Report(domain.Progressf(1, fmt.Sprintf("Done: %d chunks", len(enriched))))
	return enriched, nil
}

// Handle serves one inbound request. Every error and panic is converted
// into the response's Failure.
func (p *Pipeline) Handle(ctx context.Context, req domain.ProcessRequest) (resp domain.ProcessResponse) {
	id := uuid.New().String()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Request %s: unhandled failure: %v", id, r)
			resp = domain.ProcessResponse{Failure: domain.NewFailure(fmt.Errorf("unhandled failure: %v", r))}
		}
	}()

	if err := req.Validate(); err != nil {
		p.log.Warn("Request %s: %v", id, err)
		return domain.ProcessResponse{Failure: domain.NewFailure(err)}
	}

	p.log.Info("Request %s: processing %s for owner %s", id, req.SourceKey, req.OwnerID)
	chunks, err := p.handle(ctx, req)
	if err != nil {
		p.log.Error("Request %s: %v", id, err)
		return domain.ProcessResponse{Failure: domain.NewFailure(err)}
	}

	p.log.Info("Request %s: produced %d chunks", id, len(chunks))
	return domain.ProcessResponse{Chunks: chunks}
}

func (p *Pipeline) handle(ctx context.Context, req domain.ProcessRequest) ([]domain.EnrichedChunk, error) {
	if p.store == nil {
		return nil, fmt.Errorf("download %s: object store not configured", req.SourceKey)
	}

	content, err := p.download(ctx, req.SourceKey)
	if err != nil {
		return nil, err
	}

	doc := domain.SourceDocument{
		Filename: path.Base(req.SourceKey),
		Content:  content,
	}
	return p.Process(ctx, doc, driving.ProcessOptions{
		Method:      req.Method,
		TokenBudget: int(req.TokenBudget),
		LayoutMode:  req.LayoutMode,
		SourceKey:   req.SourceKey,
		OutputFile:  req.OutputFile,
	})
}

// download fetches key into a scratch file that is removed on return.
func (p *Pipeline) download(ctx context.Context, key string) ([]byte, error) {
	f, err := os.CreateTemp("", "chunkflow-*-"+path.Base(key))
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	n, err := p.store.Download(ctx, key, f)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	p.log.Debug("Downloaded %s (%d bytes) to %s", key, n, f.Name())

	content, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("read scratch file: %w", err)
	}
	return content, nil
}

func (p *Pipeline) resolveMethod(method, hint string) string {
	for _, m := range []string{method, hint, p.method} {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return domain.DefaultMethod
}

func (p *Pipeline) parserConfig(opts driving.ProcessOptions) (domain.ParserConfig, error) {
	cfg := p.parser
	if opts.TokenBudget < 0 {
		return cfg, fmt.Errorf("%w: token budget must not be negative", domain.ErrInvalidInput)
	}
	if opts.TokenBudget > 0 {
		cfg.ChunkTokenBudget = opts.TokenBudget
	}
	if opts.LayoutMode != "" {
		mode, err := domain.ParseLayoutMode(opts.LayoutMode)
		if err != nil {
			return cfg, err
		}
		cfg.LayoutMode = mode
	}
	return cfg.WithDefaults(), nil
}

// ChunksFileName returns the default output file name for a document:
// its base name without extension plus "_chunks.json".
func ChunksFileName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_chunks.json"
}

// WriteChunksFile writes raw chunks as an indented JSON array.
// Values that are not plain JSON types are written as strings.
func WriteChunksFile(name string, chunks []domain.RawChunk) error {
	out := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Serializable())
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
