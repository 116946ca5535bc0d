// Package preprintarchive provides the PreprintArchive provider client.
//
// PreprintArchive answers searches with an Atom XML feed rather than JSON.
// Feed parsing is confined to this package; callers only ever see
// domain.PaperRecord values.
package preprintarchive

import "encoding/xml"

// Feed represents the Atom XML response from the query endpoint.
type Feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	StartIndex   int      `xml:"startIndex"`
	ItemsPerPage int      `xml:"itemsPerPage"`
	Entries      []Entry  `xml:"entry"`
}

// Entry represents a single preprint in the Atom feed.
type Entry struct {
	ID         string   `xml:"id"` // "http://arxiv.org/abs/2301.12345v1"
	Title      string   `xml:"title"`
	Summary    string   `xml:"summary"`
	Published  string   `xml:"published"` // "2023-01-15T18:30:00Z"
	Authors    []Author `xml:"author"`
	Links      []Link   `xml:"link"`
	JournalRef string   `xml:"journal_ref"`
}

// Author represents a preprint author.
type Author struct {
	Name string `xml:"name"`
}

// Link represents a link element in the Atom feed.
type Link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}
