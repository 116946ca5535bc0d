package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	t.Run("defaults to 256 dimensions", func(t *testing.T) {
		e := NewHashEmbedder(0)
		assert.Equal(t, DefaultDimensions, e.Dimensions())
		assert.Len(t, e.Embed("anything"), DefaultDimensions)
	})

	t.Run("buckets by md5 prefix", func(t *testing.T) {
		vec := NewHashEmbedder(256).Embed("Graph graph NEURAL networks")

		require.Len(t, vec, 256)
		assert.Equal(t, 2.0, vec[36])
		assert.Equal(t, 1.0, vec[38])
		assert.Equal(t, 1.0, vec[34])
	})

	t.Run("counts every token", func(t *testing.T) {
		vec := NewHashEmbedder(16).Embed("a b c a b c d")
		total := 0.0
		for _, v := range vec {
			total += v
		}
		assert.Equal(t, 7.0, total)
	})

	t.Run("empty text is a zero vector", func(t *testing.T) {
		for _, v := range NewHashEmbedder(8).Embed("  ") {
			assert.Zero(t, v)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		e := NewHashEmbedder(64)
		assert.Equal(t, e.Embed("same words here"), e.Embed("same words here"))
	})
}
