package application

import (
	"context"
	"fmt"

	"atlassian-search-mcp/internal/domain"
)

// JiraHandler implements ToolHandler for Jira issue search.
// It routes MCP tool calls to the configured search backend and transforms
// results using the ResponseMapper. The client is nil when the Jira backend
// had no credentials at startup; the handler then advertises no tools and
// refuses calls.
type JiraHandler struct {
	client domain.SearchClient
	mapper domain.ResponseMapper
}

// NewJiraHandler creates a new JiraHandler instance.
func NewJiraHandler(client domain.SearchClient, mapper domain.ResponseMapper) *JiraHandler {
	return &JiraHandler{
		client: client,
		mapper: mapper,
	}
}

// Tool name constants for Jira operations
const (
	ToolJiraSearch = "jira_search"
)

// ToolName returns the identifier for this handler.
func (h *JiraHandler) ToolName() string {
	return "jira"
}

// ListTools returns available tools for Jira issue search.
// An unconfigured backend contributes no tools, not placeholders.
func (h *JiraHandler) ListTools() []domain.ToolDefinition {
	if h.client == nil {
		return []domain.ToolDefinition{}
	}

	return []domain.ToolDefinition{
		{
			Name:        ToolJiraSearch,
			Description: "Search Jira issues using JQL (Jira Query Language)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"jql": map[string]interface{}{
						"type":        "string",
						"description": "The JQL query string",
					},
					"limit": map[string]interface{}{
						"type":        "number",
						"description": "The maximum number of results to return (default: 10, max: 50)",
						"minimum":     1,
						"maximum":     50,
					},
				},
				Required: []string{"jql"},
			},
		},
	}
}

// Handle processes an MCP tool call request for Jira issue search.
func (h *JiraHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	// Validate that we have arguments
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	if req.Name != ToolJiraSearch {
		return nil, fmt.Errorf("unknown Jira tool %q: %w", req.Name, domain.ErrUnknownTool)
	}

	// Backend presence is re-checked on every call; the advertised tool
	// list alone is not trusted
	if h.client == nil {
		return nil, fmt.Errorf("jira backend: %w", domain.ErrBackendNotConfigured)
	}

	return h.handleSearch(ctx, req.Arguments)
}

// handleSearch handles the jira_search tool call.
func (h *JiraHandler) handleSearch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	// Validate required parameters
	jql, err := getStringParam(args, "jql", true)
	if err != nil {
		return nil, err
	}

	// Optional parameters
	limit, err := getIntParam(args, "limit", false)
	if err != nil {
		return nil, err
	}

	// Call the Jira backend, exactly once
	result, err := h.client.Search(ctx, domain.SearchQuery{Query: jql, Limit: limit}.Normalize())
	if err != nil {
		return nil, err
	}

	// Transform the response
	return h.mapper.MapToToolResponse(result)
}
