package domain

import (
	"encoding/json"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
// It renders backend records as pretty-printed JSON without re-shaping them.
type DefaultResponseMapper struct{}

// NewResponseMapper creates a new instance of DefaultResponseMapper.
func NewResponseMapper() ResponseMapper {
	return &DefaultResponseMapper{}
}

// MapToToolResponse converts a search result to MCP format.
// A nil result is rendered as an empty JSON array so clients always receive
// exactly one text content block.
func (m *DefaultResponseMapper) MapToToolResponse(result SearchResult) (*ToolResponse, error) {
	if result == nil {
		result = SearchResult{}
	}

	// Convert the records to indented JSON
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search result: %w", err)
	}

	// Create a text content block with the JSON payload
	return &ToolResponse{
		Content: []ContentBlock{
			{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
