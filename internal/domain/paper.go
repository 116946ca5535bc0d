package domain

// AbstractNotAvailable marks a ranked paper whose providers supplied no abstract.
// An empty Abstract on an unranked record means "not filled in yet".
const AbstractNotAvailable = "NOT_AVAILABLE"

// UntitledPaper is used by provider clients when the upstream record has no title.
const UntitledPaper = "Untitled"

// PaperRecord is a normalized bibliographic work reported by a provider.
//
// Records are created per query by a provider client, deduplicated and ranked,
// and then handed to the caller for persistence. Year is 0 when unknown.
// PaperUID is assigned during ranking and is scoped to (Title, Year, Source).
type PaperRecord struct {
	Title    string     `json:"title"`
	Abstract string     `json:"abstract,omitempty"`
	URL      string     `json:"url,omitempty"`
	Authors  []string   `json:"authors,omitempty"`
	Year     int        `json:"year,omitempty"`
	Venue    string     `json:"venue,omitempty"`
	Source   SourceType `json:"source"`
	PaperUID string     `json:"paper_uid,omitempty"`

	// PaperID is an optional external identifier used when PaperUID is not set,
	// e.g. for records loaded from storage by a caller.
	PaperID string `json:"paper_id,omitempty"`
}

// HasAbstract reports whether the record carries real abstract text.
func (p *PaperRecord) HasAbstract() bool {
	return p.Abstract != "" && p.Abstract != AbstractNotAvailable
}

// Identifier resolves the id used for graph edges.
// Priority order: PaperUID > PaperID > URL.
// Returns empty string if the record cannot be identified.
func (p *PaperRecord) Identifier() string {
	switch {
	case p.PaperUID != "":
		return p.PaperUID
	case p.PaperID != "":
		return p.PaperID
	default:
		return p.URL
	}
}
