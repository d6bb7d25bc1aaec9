package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	short := "hello"
	if got := truncate(short); got != short {
		t.Errorf("short text should pass through, got %q", got)
	}

	long := strings.Repeat("a", maxEmbedChars+100)
	if got := truncate(long); len(got) != maxEmbedChars {
		t.Errorf("expected truncation to %d chars, got %d", maxEmbedChars, len(got))
	}
}

// fakeEmbedder fails on texts containing "bad".
type fakeEmbedder struct {
	dims  int
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	f.calls++
	if strings.Contains(text, "bad") {
		return nil, errors.New("provider rejected input")
	}
	v := make(Vector, f.dims)
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedder) Dims() int { return f.dims }

func TestEmbedBatch_ZeroVectorOnFailure(t *testing.T) {
	e := &fakeEmbedder{dims: 4}
	texts := []string{"fine", "bad input", "also fine"}

	vectors := EmbedBatch(context.Background(), e, texts)
	if len(vectors) != len(texts) {
		t.Fatalf("batch length %d != input length %d", len(vectors), len(texts))
	}

	for i, v := range vectors {
		if len(v) != e.dims {
			t.Errorf("vector %d has %d dims, want %d", i, len(v), e.dims)
		}
	}

	// The failed item must be all zeros; the others must not be.
	if vectors[1][0] != 0 {
		t.Errorf("failed item should be a zero vector, got %v", vectors[1])
	}
	if vectors[0][0] == 0 || vectors[2][0] == 0 {
		t.Error("successful items should carry real vectors")
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := &fakeEmbedder{dims: 4}
	vectors := EmbedBatch(context.Background(), e, nil)
	if len(vectors) != 0 {
		t.Errorf("expected empty result, got %d vectors", len(vectors))
	}
}
