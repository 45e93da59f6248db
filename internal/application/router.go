package application

import (
	"context"
	"fmt"
	"strings"

	"atlassian-search-mcp/internal/domain"
)

// RequestRouter dispatches MCP tool requests to the appropriate ToolHandler.
// It maintains a registry of handlers for each Atlassian backend (Confluence,
// Jira) and routes requests based on tool name prefixes.
type RequestRouter struct {
	handlers map[string]domain.ToolHandler
	order    []string
}

// NewRequestRouter creates a new RequestRouter with the provided handlers.
// Handlers are registered by their ToolName() identifier. Registration order
// is preserved: ListAllTools reports tools in the order handlers were given.
func NewRequestRouter(handlers ...domain.ToolHandler) *RequestRouter {
	router := &RequestRouter{
		handlers: make(map[string]domain.ToolHandler),
	}

	for _, handler := range handlers {
		name := handler.ToolName()
		if _, exists := router.handlers[name]; !exists {
			router.order = append(router.order, name)
		}
		router.handlers[name] = handler
	}

	return router
}

// Route dispatches a tool request to the appropriate handler based on the tool name.
// Tool names follow the pattern: <handler>_<operation> (e.g., confluence_search).
// A name that cannot be routed fails with domain.ErrUnknownTool.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	// Extract handler name from tool name prefix
	handlerName := r.extractHandlerName(req.Name)
	if handlerName == "" {
		return nil, fmt.Errorf("invalid tool name format %q: %w", req.Name, domain.ErrUnknownTool)
	}

	// Find the appropriate handler
	handler, exists := r.handlers[handlerName]
	if !exists {
		return nil, fmt.Errorf("no handler registered for %q: %w", req.Name, domain.ErrUnknownTool)
	}

	// Delegate to the handler
	return handler.Handle(ctx, req)
}

// ListAllTools aggregates tool definitions from all registered handlers in
// registration order. Handlers whose backend is not configured contribute
// nothing, so the aggregate may be empty; an empty list is returned as an
// empty slice, never nil, so it serializes as [] on the wire.
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	allTools := []domain.ToolDefinition{}

	// Collect tools from all handlers
	for _, name := range r.order {
		tools := r.handlers[name].ListTools()
		allTools = append(allTools, tools...)
	}

	return allTools
}

// extractHandlerName extracts the handler identifier from a tool name.
// Tool names follow the pattern: <handler>_<operation>
// For example: "confluence_search" -> "confluence", "jira_search" -> "jira"
func (r *RequestRouter) extractHandlerName(toolName string) string {
	// Find the first underscore
	idx := strings.Index(toolName, "_")
	if idx == -1 {
		return ""
	}

	return toolName[:idx]
}

// GetHandler returns the handler for a specific tool name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(handlerName string) (domain.ToolHandler, bool) {
	handler, exists := r.handlers[handlerName]
	return handler, exists
}
