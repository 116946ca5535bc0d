// Package domain provides domain models for the paper aggregation service.
package domain

// SourceType identifies the bibliographic provider that reported a paper.
// These values must match the database column papers.source.
type SourceType string

const (
	SourceTypeScholarGraph     SourceType = "scholar_graph"
	SourceTypeWorkIndex        SourceType = "work_index"
	SourceTypeCitationRegistry SourceType = "citation_registry"
	SourceTypePreprintArchive  SourceType = "preprint_archive"
)

// Default trust weights per provider. Higher wins during deduplication.
const (
	TrustScholarGraph     = 1.0
	TrustWorkIndex        = 0.9
	TrustCitationRegistry = 0.75
	TrustPreprintArchive  = 0.7
)

// AllSourceTypes returns the known providers in their default registration order.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceTypeScholarGraph,
		SourceTypeWorkIndex,
		SourceTypeCitationRegistry,
		SourceTypePreprintArchive,
	}
}

// IsValid reports whether s names a known provider.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeScholarGraph, SourceTypeWorkIndex, SourceTypeCitationRegistry, SourceTypePreprintArchive:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable provider name.
func (s SourceType) DisplayName() string {
	switch s {
	case SourceTypeScholarGraph:
		return "ScholarGraph"
	case SourceTypeWorkIndex:
		return "WorkIndex"
	case SourceTypeCitationRegistry:
		return "CitationRegistry"
	case SourceTypePreprintArchive:
		return "PreprintArchive"
	default:
		return string(s)
	}
}

// TrustTable maps providers to their ranking weight.
type TrustTable map[SourceType]float64

// DefaultTrustTable returns the built-in provider weights.
func DefaultTrustTable() TrustTable {
	return TrustTable{
		SourceTypeScholarGraph:     TrustScholarGraph,
		SourceTypeWorkIndex:        TrustWorkIndex,
		SourceTypeCitationRegistry: TrustCitationRegistry,
		SourceTypePreprintArchive:  TrustPreprintArchive,
	}
}

// Weight returns the trust weight for s. Unknown providers rank last with 0.
func (t TrustTable) Weight(s SourceType) float64 {
	return t[s]
}
