// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Chunker: Extracts and groups a document's text for one method
//   - TaggingChunker: Single-pass chunker plus its detag operation
//   - ChunkerRegistry: Maps method names to chunkers
//   - PostProcessor: Normalises and enriches raw chunks
//   - ObjectStore: Downloads stored documents by key
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, chunker, or post-processor package
package driven
