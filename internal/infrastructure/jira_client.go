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

// JiraClient handles Jira REST API interactions.
// It implements the domain.SearchClient interface for JQL issue search.
type JiraClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJiraClient creates a new Jira API client.
// The baseURL should be the root URL of the Jira instance (e.g., "https://jira.example.com").
// The httpClient should be an authenticated client from domain.NewAuthenticatedClient.
func NewJiraClient(baseURL string, httpClient *http.Client) *JiraClient {
	return &JiraClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the configured base URL for the Jira instance.
func (c *JiraClient) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request with common headers set.
// This method is part of the domain.AtlassianClient interface.
func (c *JiraClient) Do(req *http.Request) (*http.Response, error) {
	// Set common headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// Execute the request using the authenticated HTTP client
	return c.httpClient.Do(req)
}

// Search performs a JQL (Jira Query Language) issue search.
// The records from the "issues" field are returned as-is, without reshaping.
// Any failure (request construction, transport, non-2xx status, malformed
// body) is reported as a *domain.BackendError; the request is made exactly once.
func (c *JiraClient) Search(ctx context.Context, query domain.SearchQuery) (domain.SearchResult, error) {
	// Construct the API endpoint
	// Jira REST API v2: /rest/api/2/search
	endpoint := fmt.Sprintf("%s/rest/api/2/search", c.baseURL)

	// Build query parameters
	params := url.Values{}
	params.Set("jql", query.Query)
	params.Set("maxResults", fmt.Sprintf("%d", query.Limit))
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
			Message: fmt.Sprintf("Jira API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	// Parse the response, keeping the records opaque
	var response struct {
		Issues domain.SearchResult `json:"issues"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &domain.BackendError{Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	// A missing issues field yields an empty result, not nil
	if response.Issues == nil {
		response.Issues = domain.SearchResult{}
	}

	return response.Issues, nil
}
