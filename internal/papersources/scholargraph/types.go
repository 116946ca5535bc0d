// Package scholargraph provides the ScholarGraph provider client.
//
// ScholarGraph is a graph-style paper index exposing a JSON search endpoint
// (GET {base}/paper/search) that returns a "data" list of paper objects.
// Its records carry the highest trust weight during ranking.
package scholargraph

// SearchResponse represents the response from the paper search endpoint.
type SearchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Offset is the current offset in the result set.
	Offset int `json:"offset"`

	// Next is the offset for the next page of results.
	Next int `json:"next"`

	// Data contains the list of papers returned by the search.
	Data []PaperResult `json:"data"`
}

// PaperResult represents a single paper in the search response.
// Nullable fields decode to their zero value.
type PaperResult struct {
	PaperID  string   `json:"paperId"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Abstract string   `json:"abstract"`
	Year     int      `json:"year"`
	Venue    string   `json:"venue"`
	Authors  []Author `json:"authors"`
}

// Author represents a paper author.
type Author struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// ErrorResponse represents an error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
