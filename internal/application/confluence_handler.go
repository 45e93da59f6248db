package application

import (
	"context"
	"fmt"

	"atlassian-search-mcp/internal/domain"
)

// ConfluenceHandler implements ToolHandler for Confluence content search.
// It routes MCP tool calls to the configured search backend and transforms
// results using the ResponseMapper. The client is nil when the Confluence
// backend had no credentials at startup; the handler then advertises no
// tools and refuses calls.
type ConfluenceHandler struct {
	client domain.SearchClient
	mapper domain.ResponseMapper
}

// NewConfluenceHandler creates a new ConfluenceHandler instance.
func NewConfluenceHandler(client domain.SearchClient, mapper domain.ResponseMapper) *ConfluenceHandler {
	return &ConfluenceHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Confluence operations
const (
	ToolConfluenceSearch = "confluence_search"
)

// ToolName returns the identifier for this handler.
func (h *ConfluenceHandler) ToolName() string {
	return "confluence"
}

// ListTools returns available tools for Confluence content search.
// An unconfigured backend contributes no tools, not placeholders.
func (h *ConfluenceHandler) ListTools() []domain.ToolDefinition {
	if h.client == nil {
		return []domain.ToolDefinition{}
	}

	return []domain.ToolDefinition{
		{
			Name:        ToolConfluenceSearch,
			Description: "Search Confluence content using CQL (Confluence Query Language)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The CQL query string",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "The maximum number of results to return (default: 10, max: 50)",
						"minimum":     1,
						"maximum":     50,
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Confluence content search.
func (h *ConfluenceHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	// Validate that we have arguments
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if req.Name != ToolConfluenceSearch {
		return nil, fmt.Errorf("unknown Confluence tool %q: %w", req.Name, domain.ErrUnknownTool)
	}

	// Backend presence is re-checked on every call; the advertised tool
	// list alone is not trusted
	if h.client == nil {
		return nil, fmt.Errorf("confluence backend: %w", domain.ErrBackendNotConfigured)
	}

	return h.handleSearch(ctx, req.Arguments)
}

// handleSearch handles the confluence_search tool call.
func (h *ConfluenceHandler) handleSearch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	// Validate required parameters
	query, err := getStringParam(args, "query", true)
	if err != nil {
		return nil, err
	}

	// Optional parameters
	limit, err := getIntParam(args, "limit", false)
	if err != nil {
		return nil, err
	}

	// Call the Confluence backend, exactly once
	result, err := h.client.Search(ctx, domain.SearchQuery{Query: query, Limit: limit}.Normalize())
	if err != nil {
		return nil, err
	}

	// Transform the response
	return h.mapper.MapToToolResponse(result)
}
