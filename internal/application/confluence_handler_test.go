package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"atlassian-search-mcp/internal/domain"
)

// fakeSearchClient is a canned-response SearchClient for handler tests.
// It records the query it was called with so tests can assert on
// normalization.
type fakeSearchClient struct {
	result    domain.SearchResult
	err       error
	calls     int
	lastQuery domain.SearchQuery
}

func (f *fakeSearchClient) BaseURL() string {
	return "https://backend.example.com"
}

func (f *fakeSearchClient) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error) {
	f.calls++
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestConfluenceHandler_ToolName(t *testing.T) {
	handler := NewConfluenceHandler(nil, nil)
	if handler.ToolName() != "confluence" {
		t.Errorf("expected tool name 'confluence', got '%s'", handler.ToolName())
	}
}

func TestConfluenceHandler_ListTools(t *testing.T) {
	client := &fakeSearchClient{}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	tools := handler.ListTools()
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}

	tool := tools[0]
	if tool.Name != ToolConfluenceSearch {
		t.Errorf("expected tool '%s', got '%s'", ToolConfluenceSearch, tool.Name)
	}
	if tool.Description == "" {
		t.Error("tool has no description")
	}
	if tool.InputSchema.Type != "object" {
		t.Errorf("expected schema type 'object', got '%s'", tool.InputSchema.Type)
	}
	if _, ok := tool.InputSchema.Properties["query"]; !ok {
		t.Error("schema is missing the query property")
	}
	if _, ok := tool.InputSchema.Properties["limit"]; !ok {
		t.Error("schema is missing the limit property")
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "query" {
		t.Errorf("expected required [query], got %v", tool.InputSchema.Required)
	}
}

func TestConfluenceHandler_ListTools_NilClient(t *testing.T) {
	handler := NewConfluenceHandler(nil, domain.NewResponseMapper())

	tools := handler.ListTools()
	if tools == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(tools) != 0 {
		t.Errorf("expected no tools for unconfigured backend, got %d", len(tools))
	}
}

func TestConfluenceHandler_HandleSearch(t *testing.T) {
	client := &fakeSearchClient{
		result: domain.SearchResult{
			{"id": "12345", "title": "Test Page"},
		},
	}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	req := &domain.ToolRequest{
		Name: ToolConfluenceSearch,
		Arguments: map[string]interface{}{
			"query": "type = page",
		},
	}

	resp, err := handler.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(resp.Content))
	}
	if resp.Content[0].Type != "text" {
		t.Errorf("expected content type 'text', got '%s'", resp.Content[0].Type)
	}
	if !strings.Contains(resp.Content[0].Text, "Test Page") {
		t.Errorf("expected serialized records in text, got %q", resp.Content[0].Text)
	}

	if client.lastQuery.Query != "type = page" {
		t.Errorf("expected query 'type = page' passed through, got %q", client.lastQuery.Query)
	}
}

func TestConfluenceHandler_HandleSearch_DefaultLimit(t *testing.T) {
	client := &fakeSearchClient{result: domain.SearchResult{}}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	req := &domain.ToolRequest{
		Name: ToolConfluenceSearch,
		Arguments: map[string]interface{}{
			"query": "type = page",
		},
	}

	if _, err := handler.Handle(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastQuery.Limit != domain.DefaultSearchLimit {
		t.Errorf("expected default limit %d, got %d", domain.DefaultSearchLimit, client.lastQuery.Limit)
	}
}

func TestConfluenceHandler_HandleSearch_LimitClamped(t *testing.T) {
	client := &fakeSearchClient{result: domain.SearchResult{}}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	req := &domain.ToolRequest{
		Name: ToolConfluenceSearch,
		Arguments: map[string]interface{}{
			"query": "type = page",
			"limit": float64(100),
		},
	}

	if _, err := handler.Handle(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastQuery.Limit != domain.MaxSearchLimit {
		t.Errorf("expected clamped limit %d, got %d", domain.MaxSearchLimit, client.lastQuery.Limit)
	}
}

func TestConfluenceHandler_HandleSearch_MissingQuery(t *testing.T) {
	client := &fakeSearchClient{}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	req := &domain.ToolRequest{
		Name:      ToolConfluenceSearch,
		Arguments: map[string]interface{}{},
	}

	_, err := handler.Handle(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for missing query")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.InvalidParams {
		t.Errorf("expected code %d, got %d", domain.InvalidParams, rpcErr.Code)
	}
	if !strings.Contains(rpcErr.Message, "query") {
		t.Errorf("expected message naming the query parameter, got %q", rpcErr.Message)
	}
	if client.calls != 0 {
		t.Errorf("expected no backend call, got %d", client.calls)
	}
}

func TestConfluenceHandler_HandleSearch_WrongTypes(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "query is not a string",
			args: map[string]interface{}{"query": float64(42)},
		},
		{
			name: "limit is not a number",
			args: map[string]interface{}{"query": "type = page", "limit": "ten"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSearchClient{}
			handler := NewConfluenceHandler(client, domain.NewResponseMapper())

			_, err := handler.Handle(context.Background(), &domain.ToolRequest{
				Name:      ToolConfluenceSearch,
				Arguments: tt.args,
			})
			if err == nil {
				t.Fatal("expected error for mistyped argument")
			}

			var rpcErr *domain.Error
			if !errors.As(err, &rpcErr) {
				t.Fatalf("expected *domain.Error, got %T", err)
			}
			if rpcErr.Code != domain.InvalidParams {
				t.Errorf("expected code %d, got %d", domain.InvalidParams, rpcErr.Code)
			}
			if client.calls != 0 {
				t.Errorf("expected no backend call, got %d", client.calls)
			}
		})
	}
}

func TestConfluenceHandler_Handle_UnknownTool(t *testing.T) {
	client := &fakeSearchClient{}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      "confluence_delete_page",
		Arguments: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !errors.Is(err, domain.ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestConfluenceHandler_Handle_NilClient(t *testing.T) {
	handler := NewConfluenceHandler(nil, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolConfluenceSearch,
		Arguments: map[string]interface{}{
			"query": "type = page",
		},
	})
	if err == nil {
		t.Fatal("expected error for unconfigured backend")
	}
	if !errors.Is(err, domain.ErrBackendNotConfigured) {
		t.Errorf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestConfluenceHandler_Handle_BackendError(t *testing.T) {
	failure := &domain.BackendError{Message: "Confluence API error (status 502): bad gateway"}
	client := &fakeSearchClient{err: failure}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolConfluenceSearch,
		Arguments: map[string]interface{}{
			"query": "type = page",
		},
	})
	if err == nil {
		t.Fatal("expected error for backend failure")
	}

	var backendErr *domain.BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *domain.BackendError, got %T", err)
	}
	if backendErr.Message != failure.Message {
		t.Errorf("expected message %q, got %q", failure.Message, backendErr.Message)
	}
	if client.calls != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", client.calls)
	}
}

func TestConfluenceHandler_Handle_NilArguments(t *testing.T) {
	client := &fakeSearchClient{}
	handler := NewConfluenceHandler(client, domain.NewResponseMapper())

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolConfluenceSearch,
	})
	if err == nil {
		t.Fatal("expected error for nil arguments")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.InvalidParams {
		t.Errorf("expected code %d, got %d", domain.InvalidParams, rpcErr.Code)
	}
}
