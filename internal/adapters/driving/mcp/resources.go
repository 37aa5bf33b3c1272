package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for chunkflow resources.
	uriScheme = "chunkflow://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "methods",
		Name:        "methods",
		Description: "Chunking methods accepted by the pipeline",
		MIMEType:    "application/json",
	}, s.handleMethodsResource)
}

// handleMethodsResource returns the registered chunking methods.
func (s *Server) handleMethodsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	methods := s.ports.Pipeline.Methods()
	if methods == nil {
		methods = []string{}
	}

	data, err := json.MarshalIndent(methods, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling methods: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
