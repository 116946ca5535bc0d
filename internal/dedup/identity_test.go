package dedup

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helixir/paper-aggregator/internal/domain"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "graph neural networks survey", NormalizeTitle("  Graph Neural Networks SURVEY \n"))
	assert.Equal(t, "", NormalizeTitle(" \t "))
	assert.Equal(t, "müller cells", NormalizeTitle("Müller Cells"))
}

func TestPaperUID(t *testing.T) {
	t.Run("hashes title, year and source", func(t *testing.T) {
		sum := sha1.Sum([]byte("Attention Is All You Need|2017|scholar_graph"))
		expected := hex.EncodeToString(sum[:])

		assert.Equal(t, expected, PaperUID("Attention Is All You Need", 2017, domain.SourceTypeScholarGraph))
	})

	t.Run("unknown year contributes an empty segment", func(t *testing.T) {
		sum := sha1.Sum([]byte("Untimed||work_index"))
		assert.Equal(t, hex.EncodeToString(sum[:]), PaperUID("Untimed", 0, domain.SourceTypeWorkIndex))
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := PaperUID("Same", 2020, domain.SourceTypeWorkIndex)
		b := PaperUID("Same", 2020, domain.SourceTypeWorkIndex)
		assert.Equal(t, a, b)
		assert.Len(t, a, 40)
	})

	t.Run("is source scoped", func(t *testing.T) {
		assert.NotEqual(t,
			PaperUID("Same", 2020, domain.SourceTypeWorkIndex),
			PaperUID("Same", 2020, domain.SourceTypePreprintArchive))
	})
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://scholar.google.com/scholar?q=Graph+Neural+Networks%3A+A+Review",
		SearchURL("", "  Graph Neural Networks: A Review "))
	assert.Equal(t, "https://search.example/find?q=a%26b", SearchURL("https://search.example/find", "a&b"))
}
