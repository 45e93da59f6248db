package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"atlassian-search-mcp/internal/domain"
)

// ConfluenceClient handles Confluence REST API interactions.
// It implements the domain.SearchClient interface for CQL content search.
type ConfluenceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewConfluenceClient creates a new Confluence API client.
// The baseURL should be the root URL of the Confluence instance (e.g., "https://confluence.example.com").
// The httpClient should be an authenticated client from domain.NewAuthenticatedClient.
func NewConfluenceClient(baseURL string, httpClient *http.Client) *ConfluenceClient {
	return &ConfluenceClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL for the Confluence instance.
func (c *ConfluenceClient) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with common headers set.
// This method is part of the domain.AtlassianClient interface.
func (c *ConfluenceClient) Do(req *http.Request) (*http.Response, error) {
	// Set common headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Execute the request using the authenticated HTTP client
	return c.httpClient.Do(req)
}

// Search performs a CQL (Confluence Query Language) content search.
// The records from the "results" field are returned as-is, without reshaping.
// Any failure (request construction, transport, non-2xx status, malformed
// body) is reported as a *domain.BackendError; the request is made exactly once.
func (c *ConfluenceClient) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error) {
	// Construct the API endpoint
	// Confluence REST API v1: /rest/api/content/search
	endpoint := fmt.Sprintf("%s/rest/api/content/search", c.baseURL)

	// Build query parameters; expand space so results are self-describing
	params := url.Values{}
	params.Set("cql", query.Query)
	params.Set("limit", fmt.Sprintf("%d", query.Limit))
	params.Set("expand", "space")
	endpoint = endpoint + "?" + params.Encode()

	// Create the HTTP request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.BackendError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}

	// Execute the request
	resp, err := c.Do(req)
	if err != nil {
		return nil, &domain.BackendError{Message: fmt.Sprintf("failed to execute request: %v", err)}
	}
	defer resp.Body.Close()

	// Check for error status codes
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.BackendError{
			Message: fmt.Sprintf("Confluence API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	// Parse the response, keeping the records opaque
	var response struct {
		Results domain.SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &domain.BackendError{Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	// A missing results field yields an empty result, not nil
	if response.Results == nil {
		response.Results = domain.SearchResult{}
	}

	return response.Results, nil
}
