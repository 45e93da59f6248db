package domain

import (
	"context"
	"net/http"
)

// SearchClient executes a read-only search against one Atlassian backend.
// The Confluence client interprets the query as CQL, the Jira client as JQL.
type SearchClient interface {
	// BaseURL returns the configured base URL for the backend.
	BaseURL() string

	// Search runs the query and returns the raw result records. A failure of
	// any kind (transport, non-2xx status, malformed body) is returned as a
	// *BackendError; the caller makes exactly one attempt.
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// AtlassianClient defines common low-level operations for Atlassian backends.
// Concrete clients use it internally to execute authenticated HTTP requests.
type AtlassianClient interface {
	// BaseURL returns the configured base URL for the backend.
	BaseURL() string

	// Do executes an HTTP request with authentication.
	// The request should already be constructed with the appropriate
	// method, path, headers, and body. This method adds authentication
	// and executes the request.
	Do(req *http.Request) (*http.Response, error)
}
