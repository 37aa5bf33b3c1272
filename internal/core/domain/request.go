package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProcessRequest is the inbound request consumed by the pipeline boundary.
type ProcessRequest struct {
	// SourceKey is the object key of the document in storage.
	SourceKey string `json:"sourceKey"`

	// OwnerID identifies the tenant. Requests without it are rejected.
	OwnerID string `json:"ownerId"`

	// Method is the chunking method; defaults to "naive".
	Method string `json:"method,omitempty"`

	// TokenBudget is the maximum tokens per chunk; accepts a string or a number.
	TokenBudget TokenBudget `json:"tokenBudget,omitempty"`

	// LayoutMode is "DeepDOC" or "PlainText".
	LayoutMode string `json:"layoutMode,omitempty"`

	// OutputFile optionally names a JSON file to write the raw chunks to.
	OutputFile string `json:"outputFile,omitempty"`
}

// Validate rejects requests missing required identifiers.
func (r *ProcessRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: owner ID not provided in request", ErrValidation)
	}
	if strings.TrimSpace(r.SourceKey) == "" {
		return fmt.Errorf("%w: source key not provided in request", ErrValidation)
	}
	return nil
}

// ProcessResponse is the terminal, non-throwing result shape.
// Exactly one of Chunks or Failure is meaningful.
type ProcessResponse struct {
	Chunks  []EnrichedChunk
	Failure *Failure
}

// OK returns true if the response carries chunks rather than a failure.
func (r ProcessResponse) OK() bool {
	return r.Failure == nil
}

// MarshalJSON encodes {chunks} on success and {message, summary} on failure.
func (r ProcessResponse) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(r.Failure)
	}
	chunks := r.Chunks
	if chunks == nil {
		chunks = []EnrichedChunk{}
	}
	return json.Marshal(struct {
		Chunks []EnrichedChunk `json:"chunks"`
	}{Chunks: chunks})
}

// TokenBudget is a token count that decodes from a JSON number or string.
// Zero means "use the default".
type TokenBudget int

// UnmarshalJSON accepts 512, "512" and null.
func (t *TokenBudget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*t = 0
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: token budget %q", ErrInvalidInput, raw)
	}
	if n < 0 {
		return fmt.Errorf("%w: token budget must not be negative", ErrInvalidInput)
	}
	*t = TokenBudget(n)
	return nil
}
