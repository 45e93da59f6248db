package domain

// Search limit bounds shared by all search tools.
const (
	// DefaultSearchLimit is used when a request omits the limit or supplies a
	// non-positive value.
	DefaultSearchLimit = 10

	// MaxSearchLimit caps the number of records requested from a backend.
	MaxSearchLimit = 50
)

// SearchQuery carries a single search invocation to a backend client.
// Query holds CQL for Confluence and JQL for Jira.
type SearchQuery struct {
	Query string
	Limit int
}

// Record is one search hit exactly as the backend returned it. Results are
// passed through opaquely; the server never re-shapes backend payloads.
type Record map[string]interface{}

// SearchResult is the ordered list of records for one query.
type SearchResult []Record

// Normalize applies the limit bounds: a missing or non-positive limit becomes
// DefaultSearchLimit, and anything above MaxSearchLimit is clamped down.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	return q
}
