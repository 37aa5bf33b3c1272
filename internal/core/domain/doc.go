// Package domain defines the core entities of the chunking pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: The bytes and filename handed to the pipeline
//   - ParserConfig: Chunking parameters passed to every capability
//   - RawChunk: The opaque mapping a capability produces
//   - EnrichedChunk: A retained chunk with content-addressable metadata
//   - EmailEnvelope: The synthetic message used by the email method
//   - ProcessRequest / ProcessResponse: The service boundary shapes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
