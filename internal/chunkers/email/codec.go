// Package email implements the envelope round trip: documents are
// converted into synthetic email messages that carry their layout-tagged
// text, and email messages are decoded back into chunks together with
// their attachments.
package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/chunkflow/internal/chunkers/general"
	"github.com/custodia-labs/chunkflow/internal/chunkers/htmltext"
	"github.com/custodia-labs/chunkflow/internal/chunkers/merge"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// Header lines recovered from extracted text.
var (
	fromLine    = regexp.MustCompile(`(?im)^[ \t]*From[ \t]*:[ \t]*(.+)$`)
	toLine      = regexp.MustCompile(`(?im)^[ \t]*To[ \t]*:[ \t]*(.+)$`)
	subjectLine = regexp.MustCompile(`(?im)^[ \t]*Subject[ \t]*:[ \t]*(.+)$`)
	blankLine   = regexp.MustCompile(`\n[ \t\r]*\n`)
)

// Codec converts documents into envelopes.
type Codec struct {
	extractor driven.TaggingChunker
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock sets the clock used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMessageIDs sets the Message-ID generator.
func WithMessageIDs(fn func() string) Option {
	return func(c *Codec) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewCodec creates a codec that extracts text with the given single-pass
// chunker.
func NewCodec(extractor driven.TaggingChunker, opts ...Option) *Codec {
	c := &Codec{
		extractor: extractor,
		log:       logger.Default(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() + "@chunkflow" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode extracts the document in in and returns it as an envelope,
// together with the envelope's filename.
func (c *Codec) Encode(ctx context.Context, in *domain.ChunkInput) (string, []byte, error) {
	if in.Progress != nil {
		in.Progress.Report(domain.Status("Converting to EML"))
	}

	chunks, err := c.extractor.Chunk(ctx, in)
	if err != nil {
		return "", nil, fmt.Errorf("extract %s: %w", in.Filename, err)
	}

	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		parts = append(parts, ch.ContentWithWeight())
	}
	tagged := strings.Join(parts, "\n")
	if strings.TrimSpace(tagged) == "" {
		return "", nil, fmt.Errorf("%s: %w", in.Filename, domain.ErrEmptyExtraction)
	}

	env := RecoverEnvelope(c.extractor.Detag(tagged), in.Filename)
	env.Date = c.now()
	env.TaggedTextB64 = base64.StdEncoding.EncodeToString([]byte(tagged))

	c.log.Debug("Envelope for %s: from=%q to=%q subject=%q tagged=%d bytes", in.Filename, env.From, env.To, env.Subject, len(tagged))
	if in.Progress != nil {
		in.Progress.Report(domain.Status("Converted to EML"))
	}
	return EnvelopeName(in.Filename), Write(env, c.newID()), nil
}

// RecoverEnvelope builds an envelope from plain text, recovering From, To
// and Subject from header-like lines and substituting placeholders for
// missing ones. The body is the whole text unless the recovered lines form
// a leading header block, in which case it starts after that block.
func RecoverEnvelope(plain, filename string) *domain.EmailEnvelope {
	env := &domain.EmailEnvelope{
		From:      domain.PlaceholderFrom,
		To:        domain.PlaceholderTo,
		Subject:   domain.PlaceholderSubjectPrefix + filepath.Base(filename),
		PlainBody: plain,
	}

	first, last := -1, -1
	match := func(re *regexp.Regexp, dst *string) {
		m := re.FindStringSubmatchIndex(plain)
		if m == nil {
			return
		}
		if v := strings.TrimSpace(plain[m[2]:m[3]]); v != "" {
			*dst = v
		}
		if first < 0 || m[0] < first {
			first = m[0]
		}
		if m[1] > last {
			last = m[1]
		}
	}
	match(fromLine, &env.From)
	match(toLine, &env.To)
	match(subjectLine, &env.Subject)

	if body, ok := headerBlockBody(plain, first, last); ok {
		env.PlainBody = body
	}
	return env
}

// headerBlockBody returns the text after a leading header block spanning
// plain[first:last]. The block must be preceded only by whitespace and end
// before the first blank line.
func headerBlockBody(plain string, first, last int) (string, bool) {
	if first < 0 || strings.TrimSpace(plain[:first]) != "" {
		return "", false
	}
	lead := len(plain) - len(strings.TrimLeft(plain, " \t\r\n"))
	loc := blankLine.FindStringIndex(plain[lead:])
	if loc == nil {
		return strings.TrimLeft(plain[last:], "\r\n"), true
	}
	if last > lead+loc[0] {
		return "", false
	}
	return plain[lead+loc[1]:], true
}

// EnvelopeName replaces the filename's extension with ".eml".
func EnvelopeName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".eml"
}

// Decode turns a parsed envelope's main content into raw chunks.
// Envelopes carrying tagged text are chunked from it exactly; others are
// chunked from their headers, plain parts and rendered HTML parts, in
// that order. Attachments are not included.
func Decode(m *Message, filename string, cfg domain.ParserConfig) ([]domain.RawChunk, error) {
	cfg = cfg.WithDefaults()

	text, tagged, err := m.TaggedText()
	if err != nil {
		return nil, err
	}
	if !tagged {
		text, err = organicText(m)
		if err != nil {
			return nil, err
		}
	}

	fields := general.DocFields(filename)
	var chunks []domain.RawChunk
	for _, section := range merge.Sections(text, cfg.Delimiter, cfg.ChunkTokenBudget) {
		chunks = append(chunks, general.NewChunk(section, fields))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, domain.ErrEmptyDocument)
	}
	return chunks, nil
}

// DecodeBytes parses data and decodes its main content.
func DecodeBytes(data []byte, filename string, cfg domain.ParserConfig) ([]domain.RawChunk, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Decode(m, filename, cfg)
}

// organicText renders a message without tagged text.
func organicText(m *Message) (string, error) {
	var plain, html []string
	for _, p := range m.Parts {
		if p.IsAttachment() {
			continue
		}
		switch p.MediaType {
		case "text/plain":
			text, err := p.Text()
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			plain = append(plain, text)
		case "text/html":
			text, err := p.Text()
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			html = append(html, htmltext.String(text))
		}
	}

	var body []string
	for _, s := range append(plain, html...) {
		if strings.TrimSpace(s) != "" {
			body = append(body, s)
		}
	}
	if len(body) == 0 {
		return "", nil
	}

	var header []string
	env := m.Envelope
	if env.From != "" {
		header = append(header, "From: "+env.From)
	}
	if env.To != "" {
		header = append(header, "To: "+env.To)
	}
	if env.Subject != "" {
		header = append(header, "Subject: "+env.Subject)
	}
	if m.DateHeader != "" {
		header = append(header, "Date: "+m.DateHeader)
	}
	return strings.Join(append(header, body...), "\n"), nil
}
