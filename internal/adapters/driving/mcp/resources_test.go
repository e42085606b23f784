package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/margin/internal/logger"
)

func TestExtractSuggestionID(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"valid", "margin://suggestions/s1", "s1"},
		{"nested path", "margin://suggestions/s1/extra", ""},
		{"wrong scheme", "file://suggestions/s1", ""},
		{"wrong resource", "margin://documents/s1", ""},
		{"empty id", "margin://suggestions/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSuggestionID(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ports, _, _ := newMockPorts()
	server, err := NewServer(ports, logger.Discard())
	require.NoError(t, err)

	result, err := server.handleDocumentsResource(context.Background(), readRequest("margin://documents"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var docs []DocumentOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "plan.md", docs[0].Name)
	assert.Equal(t, 2, docs[0].Pending)
}

func TestServer_handleSuggestionResource(t *testing.T) {
	ports, _, _ := newMockPorts()
	server, err := NewServer(ports, logger.Discard())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("known id", func(t *testing.T) {
		result, err := server.handleSuggestionResource(ctx, readRequest("margin://suggestions/s2"))
		require.NoError(t, err)

		var s SuggestionOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &s))
		assert.Equal(t, "s2", s.ID)
		assert.Equal(t, "bar", s.Anchor)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := server.handleSuggestionResource(ctx, readRequest("margin://suggestions/nope"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleSuggestionResource(ctx, readRequest("margin://suggestions/"))
		assert.Error(t, err)
	})
}
