// Package graph scores pairwise relationships between papers and builds
// weighted, symmetric edges from the scores.
package graph

import (
	"math"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// DefaultThreshold is the lowest combined weight that produces an edge.
const DefaultThreshold = 0.55

// Weights are the coefficients of the combined score. They sum to 1.
type Weights struct {
	Keyword float64
	Vector  float64
	Author  float64
	Year    float64
}

// DefaultWeights returns the standard scoring coefficients.
func DefaultWeights() Weights {
	return Weights{Keyword: 0.35, Vector: 0.35, Author: 0.20, Year: 0.10}
}

// Components holds the raw sub-scores of a pair, each in [0,1].
type Components struct {
	Keyword float64 `json:"keyword"`
	Vector  float64 `json:"vector"`
	Author  float64 `json:"author"`
	Year    float64 `json:"year"`
}

// Relation returns the label of the highest sub-score among vector,
// keyword and author overlap. Ties go to the earlier of that order.
// Year proximity never labels a relation.
func (c Components) Relation() domain.RelationType {
	relation, best := domain.RelationSimilarity, c.Vector
	if c.Keyword > best {
		relation, best = domain.RelationSameSubject, c.Keyword
	}
	if c.Author > best {
		relation = domain.RelationAuthorOverlap
	}
	return relation
}

// Config configures a Scorer.
type Config struct {
	Embedder  Embedder
	Weights   *Weights
	Threshold float64
}

// Scorer computes pairwise relationship scores. It is stateless after
// construction and safe for concurrent use.
type Scorer struct {
	embedder  Embedder
	weights   Weights
	threshold float64
}

// NewScorer creates a Scorer. Zero values fall back to a 256-bucket
// HashEmbedder, DefaultWeights and DefaultThreshold.
func NewScorer(cfg Config) *Scorer {
	if cfg.Embedder == nil {
		cfg.Embedder = NewHashEmbedder(DefaultDimensions)
	}
	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Scorer{
		embedder:  cfg.Embedder,
		weights:   weights,
		threshold: cfg.Threshold,
	}
}

// Threshold returns the edge acceptance threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score returns the combined weight of a and b rounded to four decimals,
// and the dominant relation. Missing years or authors score 0 on that
// dimension. Score(a, b) == Score(b, a).
func (s *Scorer) Score(a, b domain.PaperRecord) (float64, domain.RelationType) {
	pa, pb := s.prepare(a), s.prepare(b)
	c := s.components(pa, pb)
	return s.combine(c), c.Relation()
}

// Components returns the raw sub-scores of a and b.
func (s *Scorer) Components(a, b domain.PaperRecord) Components {
	return s.components(s.prepare(a), s.prepare(b))
}

// prepared caches the per-record inputs so each record is embedded once.
type prepared struct {
	text    string
	vector  []float64
	authors []string
	year    int
}

func (s *Scorer) prepare(p domain.PaperRecord) prepared {
	text := p.Title + " " + p.Abstract
	return prepared{
		text:    text,
		vector:  s.embedder.Embed(text),
		authors: p.Authors,
		year:    p.Year,
	}
}

func (s *Scorer) components(a, b prepared) Components {
	return Components{
		Keyword: KeywordOverlap(a.text, b.text),
		Vector:  CosineSimilarity(a.vector, b.vector),
		Author:  AuthorOverlap(a.authors, b.authors),
		Year:    YearProximity(a.year, b.year),
	}
}

func (s *Scorer) combine(c Components) float64 {
	w := s.weights
	score := w.Keyword*c.Keyword + w.Vector*c.Vector + w.Author*c.Author + w.Year*c.Year
	return round4(score)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
