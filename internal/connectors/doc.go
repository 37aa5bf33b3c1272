// Package connectors provides document sources that feed the pipeline
// outside of the request path.
package connectors
