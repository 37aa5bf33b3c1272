package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a request is missing a required identifier.
	// Requests failing validation never reach the pipeline.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedType indicates a document format a capability cannot read.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrUnknownMethod indicates the chunking method is not registered.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrEmptyExtraction indicates the extraction pass produced no text.
	ErrEmptyExtraction = errors.New("failed to extract any text from the document")

	// ErrEmptyDocument indicates a parsed document has no usable content.
	ErrEmptyDocument = errors.New("document is empty after parsing")

	// ErrAttachmentChunk indicates a single attachment could not be chunked.
	// It is contained by the attachment recursor and never fails a document.
	ErrAttachmentChunk = errors.New("failed to chunk attachment")
)

// Failure is the terminal error shape returned at the service boundary.
type Failure struct {
	// Message is a fixed description of the failing stage.
	Message string `json:"message"`

	// Summary is the underlying error text.
	Summary string `json:"summary"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Summary == "" {
		return f.Message
	}
	return f.Message + ": " + f.Summary
}

// FailureMessage is the message of every failure returned by the pipeline boundary.
const FailureMessage = "Error in process_chunks"

// NewFailure converts err into the outbound failure shape.
func NewFailure(err error) *Failure {
	f := &Failure{Message: FailureMessage}
	if err != nil {
		f.Summary = err.Error()
	}
	return f
}
