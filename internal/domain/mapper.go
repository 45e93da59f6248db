package domain

// ResponseMapper converts backend search results to MCP tool responses.
// This interface is responsible for serializing the raw records returned by
// an Atlassian backend into MCP-compliant content blocks.
type ResponseMapper interface {
	// MapToToolResponse serializes a search result to MCP format.
	// The records are rendered as a single JSON text block, unmodified.
	// Returns an error if serialization fails.
	MapToToolResponse(result SearchResult) (*ToolResponse, error)
}
