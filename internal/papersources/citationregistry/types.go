// Package citationregistry provides the CitationRegistry provider client.
//
// CitationRegistry is a DOI registration agency's metadata index. Its works
// endpoint wraps results in a message envelope (message.items[]) where titles
// and venues are string lists, dates are nested date-parts, and abstracts
// (when present) are JATS XML fragments.
package citationregistry

// SearchResponse is the envelope returned by the works endpoint.
type SearchResponse struct {
	Status  string  `json:"status"`
	Message Message `json:"message"`
}

// Message carries the result page.
type Message struct {
	TotalResults int    `json:"total-results"`
	Items        []Item `json:"items"`
}

// Item is a single registered work.
type Item struct {
	DOI            string    `json:"DOI"`
	URL            string    `json:"URL"`
	Title          []string  `json:"title"`
	ContainerTitle []string  `json:"container-title"`
	Abstract       string    `json:"abstract"`
	Author         []Author  `json:"author"`
	Issued         DateParts `json:"issued"`
	Published      DateParts `json:"published"`
}

// Author is a contributor with split name parts.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts holds a partial date as [[year, month, day]].
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the leading year component, or 0 when absent.
func (d DateParts) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}
