// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"context"
	"log"
	"math"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// DefaultDims is the dimensionality of the reference embedding model
// (text-embedding-ada-002).
const DefaultDims = 1536

// maxEmbedChars is a safe character bound for a single embedding input.
// Longer text is truncated before calling the provider.
const maxEmbedChars = 30000

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dims() int
}

// truncate bounds text to maxEmbedChars, logging when it cuts.
func truncate(text string) string {
	if len(text) <= maxEmbedChars {
		return text
	}
	log.Printf("embedding: truncating text of length %d to %d", len(text), maxEmbedChars)
	return text[:maxEmbedChars]
}

// EmbedBatch embeds each text in order. A per-item failure substitutes a zero
// vector of the provider's dimensionality and continues, so the returned slice
// always has the same length as texts.
func EmbedBatch(ctx context.Context, e Embedder, texts []string) []Vector {
	vectors := make([]Vector, 0, len(texts))
	for _, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			log.Printf("embedding: batch item failed, substituting zero vector: %v", err)
			v = make(Vector, e.Dims())
		}
		vectors = append(vectors, v)
	}
	return vectors
}

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
