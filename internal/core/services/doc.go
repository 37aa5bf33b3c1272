// Package services implements the driving port interfaces.
//
// Pipeline orchestrates one document per call: it resolves the chunking
// method, converts documents into an envelope for the email method,
// dispatches to the ChunkerRegistry and hands the raw chunks to the
// enriching post-processor. Handle wraps Process for inbound requests and
// turns every error into a Failure response.
package services
