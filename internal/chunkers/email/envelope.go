package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

// TaggedTextHeader carries the base64 form of the high-fidelity tagged text.
const TaggedTextHeader = "X-Tagged-Text"

// LegacyTaggedTextHeader is the tagged-text header written by earlier
// producers. It is accepted on read only.
const LegacyTaggedTextHeader = "X-RAGFlow-Tagged-Text"

// foldWidth is the maximum length of a folded base64 header line.
const foldWidth = 76

// maxDepth bounds multipart nesting.
const maxDepth = 16

// Part is a leaf body part. Its payload stays transfer-encoded until
// Decode is called, so a corrupt part only fails when it is used.
type Part struct {
	MediaType   string
	Params      map[string]string
	Disposition string
	Filename    string
	Encoding    string

	raw []byte
}

// IsAttachment returns true if the part is an explicit, named attachment.
func (p *Part) IsAttachment() bool {
	return p.Disposition == "attachment" && p.Filename != ""
}

// Decode returns the payload with its transfer encoding removed.
func (p *Part) Decode() ([]byte, error) {
	switch p.Encoding {
	case "base64":
		clean := strings.Map(func(r rune) rune {
			if r == '\r' || r == '\n' || r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, string(p.raw))
		b, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("decode base64 part: %w", err)
		}
		return b, nil
	case "quoted-printable":
		b, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(p.raw)))
		if err != nil {
			return nil, fmt.Errorf("decode quoted-printable part: %w", err)
		}
		return b, nil
	default:
		return p.raw, nil
	}
}

// Text returns the decoded payload converted from its declared charset,
// with CRLF line endings normalised to LF.
func (p *Part) Text() (string, error) {
	b, err := p.Decode()
	if err != nil {
		return "", err
	}
	text := decodeCharset(b, p.Params["charset"])
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}

// Message is a parsed envelope.
type Message struct {
	// Envelope holds the decoded headers and the plain body.
	Envelope domain.EmailEnvelope

	// DateHeader is the Date header as received.
	DateHeader string

	// Parts lists leaf body parts in encounter order.
	Parts []*Part

	// Truncated is the read error that cut a multipart body short.
	// Parts read before it are kept.
	Truncated error
}

// TaggedText returns the decoded high-fidelity text and whether the
// envelope carries one.
func (m *Message) TaggedText() (string, bool, error) {
	if !m.Envelope.HasTaggedText() {
		return "", false, nil
	}
	b, err := base64.StdEncoding.DecodeString(m.Envelope.TaggedTextB64)
	if err != nil {
		return "", true, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, TaggedTextHeader, err)
	}
	return string(b), true, nil
}

// Attachments returns the parts that are explicit, named attachments.
func (m *Message) Attachments() []*Part {
	var out []*Part
	for _, p := range m.Parts {
		if p.IsAttachment() {
			out = append(out, p)
		}
	}
	return out
}

// Parse reads an envelope's headers, body and attachment parts.
func Parse(data []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse envelope: %v", domain.ErrInvalidInput, err)
	}

	m := &Message{
		Envelope: domain.EmailEnvelope{
			From:    decodeHeader(msg.Header.Get("From")),
			To:      decodeHeader(msg.Header.Get("To")),
			Subject: decodeHeader(msg.Header.Get("Subject")),
			TaggedTextB64: taggedTextHeader(msg.Header),
		},
		DateHeader: msg.Header.Get("Date"),
	}
	if date, err := msg.Header.Date(); err == nil {
		m.Envelope.Date = date
	}

	if err := m.collect(textproto.MIMEHeader(msg.Header), msg.Body, 0); err != nil {
		return nil, err
	}

	for _, p := range m.Parts {
		if p.MediaType == "text/plain" && !p.IsAttachment() {
			if text, err := p.Text(); err == nil {
				m.Envelope.PlainBody = text
			}
			break
		}
	}
	return m, nil
}

// taggedTextHeader returns the folded tagged-text header with its
// whitespace removed, preferring the current header name.
func taggedTextHeader(h mail.Header) string {
	v := h.Get(TaggedTextHeader)
	if v == "" {
		v = h.Get(LegacyTaggedTextHeader)
	}
	// Continuation lines are joined with spaces by the header reader.
	return strings.Join(strings.Fields(v), "")
}

// collect walks a (possibly multipart) entity and appends its leaf parts.
func (m *Message) collect(header textproto.MIMEHeader, body io.Reader, depth int) error {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "application/octet-stream", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "" && depth < maxDepth {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextRawPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return m.truncate(fmt.Errorf("%w: read multipart: %v", domain.ErrInvalidInput, err))
			}
			raw, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				return m.truncate(fmt.Errorf("%w: read part: %v", domain.ErrInvalidInput, err))
			}
			if err := m.collect(part.Header, bytes.NewReader(raw), depth+1); err != nil {
				return err
			}
		}
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrInvalidInput, err)
	}

	p := &Part{
		MediaType: mediaType,
		Params:    params,
		Encoding:  strings.ToLower(strings.TrimSpace(header.Get("Content-Transfer-Encoding"))),
		raw:       raw,
	}
	if cd := header.Get("Content-Disposition"); cd != "" {
		if disp, dparams, err := mime.ParseMediaType(cd); err == nil {
			p.Disposition = strings.ToLower(disp)
			p.Filename = decodeHeader(dparams["filename"])
		} else {
			p.Disposition = strings.ToLower(strings.TrimSpace(strings.SplitN(cd, ";", 2)[0]))
		}
	}
	if p.Filename == "" {
		p.Filename = decodeHeader(params["name"])
	}
	m.Parts = append(m.Parts, p)
	return nil
}

// truncate records err and stops the walk when earlier parts were read.
// A message with nothing read yet fails with err.
func (m *Message) truncate(err error) error {
	if len(m.Parts) == 0 {
		return err
	}
	if m.Truncated == nil {
		m.Truncated = err
	}
	return nil
}

// Write serialises an envelope with a quoted-printable plain text body.
func Write(env *domain.EmailEnvelope, messageID string) []byte {
	var buf bytes.Buffer

	writeHeader(&buf, "From", encodeHeader(env.From))
	writeHeader(&buf, "To", encodeHeader(env.To))
	writeHeader(&buf, "Subject", encodeHeader(env.Subject))
	writeHeader(&buf, "Date", env.Date.Format(time.RFC1123Z))
	if messageID != "" {
		writeHeader(&buf, "Message-ID", "<"+messageID+">")
	}
	writeHeader(&buf, "MIME-Version", "1.0")
	if env.TaggedTextB64 != "" {
		writeHeader(&buf, TaggedTextHeader, fold(env.TaggedTextB64, foldWidth))
	}
	writeHeader(&buf, "Content-Type", `text/plain; charset="utf-8"`)
	writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_, _ = qp.Write([]byte(env.PlainBody))
	_ = qp.Close()
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

// fold splits a value without spaces into continuation lines of at most
// width characters.
func fold(value string, width int) string {
	if len(value) <= width {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i += width {
		if i > 0 {
			b.WriteString("\r\n ")
		}
		end := i + width
		if end > len(value) {
			end = len(value)
		}
		b.WriteString(value[i:end])
	}
	return b.String()
}
