// Package workindex provides the WorkIndex provider client.
//
// WorkIndex is an open catalog of scholarly works. Its search endpoint
// (GET {base}/works) returns a "results" list where abstracts are shipped as
// an inverted index of word positions and must be reconstructed.
package workindex

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse represents the top-level response from the works search endpoint.
type SearchResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// Meta contains metadata about the search results.
type Meta struct {
	Count   int `json:"count"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Work represents a scholarly work.
type Work struct {
	ID              string       `json:"id"`
	DOI             string       `json:"doi"`
	Title           string       `json:"title"`
	DisplayName     string       `json:"display_name"`
	PublicationYear int          `json:"publication_year"`
	Authorships     []Authorship `json:"authorships"`
	PrimaryLocation *Location    `json:"primary_location"`

	// AbstractInvertedIndex maps each word to the positions it occupies.
	AbstractInvertedIndex InvertedIndex `json:"abstract_inverted_index"`
}

// Authorship represents an author's contribution to a work.
type Authorship struct {
	AuthorPosition string     `json:"author_position"`
	Author         AuthorInfo `json:"author"`
}

// AuthorInfo contains basic author information.
type AuthorInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Location represents where a work is available.
type Location struct {
	LandingPageURL string  `json:"landing_page_url"`
	PDFURL         string  `json:"pdf_url"`
	Source         *Source `json:"source"`
}

// Source represents a publication venue.
type Source struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// IndexedWord is one entry of an inverted index.
type IndexedWord struct {
	Word      string
	Positions []int
}

// InvertedIndex is an abstract_inverted_index object with its keys in
// document order. When two words claim a position the later key wins, so
// the order must survive decoding.
type InvertedIndex []IndexedWord

// UnmarshalJSON decodes a JSON object of word to positions, or null.
func (ix *InvertedIndex) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("inverted index: %w", err)
	}
	if tok == nil {
		*ix = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("inverted index: expected object, got %v", tok)
	}

	var out InvertedIndex
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("inverted index: %w", err)
		}
		word, _ := keyTok.(string)

		var positions []int
		if err := dec.Decode(&positions); err != nil {
			return fmt.Errorf("inverted index %q: %w", word, err)
		}
		out = append(out, IndexedWord{Word: word, Positions: positions})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("inverted index: %w", err)
	}

	*ix = out
	return nil
}
