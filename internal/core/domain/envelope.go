package domain

import "time"

// Placeholder envelope headers used when none can be recovered from text.
const (
	PlaceholderFrom          = "sender@example.com"
	PlaceholderTo            = "receiver@example.com"
	PlaceholderSubjectPrefix = "Converted: "
)

// EmailEnvelope is a synthetic email message used to carry extracted text.
// When TaggedTextB64 is set, base64-decoding it reproduces the exact
// tagged text the envelope was built from.
type EmailEnvelope struct {
	From    string
	To      string
	Subject string
	Date    time.Time

	// TaggedTextB64 is the base64 form of the high-fidelity tagged text.
	// Empty for organically received messages.
	TaggedTextB64 string

	// PlainBody is the human-readable body with structural markers removed.
	PlainBody string
}

// HasTaggedText returns true if the envelope carries high-fidelity text.
func (e *EmailEnvelope) HasTaggedText() bool {
	return e.TaggedTextB64 != ""
}
