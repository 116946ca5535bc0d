package graph

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// DefaultDimensions is the length of vectors produced by HashEmbedder.
const DefaultDimensions = 256

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(text string) []float64
}

// HashEmbedder is a bag-of-words hashing embedder. Each lowercase
// whitespace token increments the bucket chosen by the first four bytes of
// its MD5 digest.
//
// It is a cheap deterministic placeholder for semantic embeddings and
// carries no precision guarantee: unrelated words can share a bucket and
// synonyms never do.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns a HashEmbedder with dim buckets, or DefaultDimensions if dim <= 0.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &HashEmbedder{dim: dim}
}

// Dimensions returns the vector length.
func (h *HashEmbedder) Dimensions() int {
	return h.dim
}

// Embed returns the token-count vector for text.
func (h *HashEmbedder) Embed(text string) []float64 {
	vec := make([]float64, h.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := md5.Sum([]byte(token))
		idx := binary.BigEndian.Uint32(sum[:4]) % uint32(h.dim)
		vec[idx]++
	}
	return vec
}
