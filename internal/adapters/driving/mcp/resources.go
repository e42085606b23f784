package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for margin resources.
	uriScheme = "margin://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Documents with suggestion sidecars and their pending counts",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "suggestions/{suggestionId}",
		Name:        "suggestion",
		Description: "A single suggestion with its alternatives",
		MIMEType:    "application/json",
	}, s.handleSuggestionResource)
}

// handleDocumentsResource returns every document summary.
func (s *Server) handleDocumentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	summaries := s.ports.Suggestions.DocumentSummaries()

	infos := make([]DocumentOutput, len(summaries))
	for i := range summaries {
		infos[i] = documentOutput(&summaries[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleSuggestionResource returns one suggestion by id.
func (s *Server) handleSuggestionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractSuggestionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	found, err := s.ports.Suggestions.FindSuggestionByID(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, suggestionOutput(&found.Suggestion))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSuggestionID extracts the id from a URI like margin://suggestions/{suggestionId}.
func extractSuggestionID(uri string) string {
	const prefix = uriScheme + "suggestions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
