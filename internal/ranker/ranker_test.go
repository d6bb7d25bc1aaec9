package ranker

import (
	"math"
	"strings"
	"testing"

	"github.com/rcliao/chat-archive/internal/embedding"
)

func TestRank_SelfSimilarityIsOne(t *testing.T) {
	v := embedding.Vector{0.3, 0.5, 0.2}
	results := Rank(v, []Candidate{{SourceID: "a", Vector: v, Text: "same"}}, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if math.Abs(results[0].Score-1.0) > 0.001 {
		t.Errorf("expected self-similarity 1.0, got %f", results[0].Score)
	}
}

func TestRank_SortedDescending(t *testing.T) {
	query := embedding.Vector{1, 0}
	candidates := []Candidate{
		{SourceID: "far", Vector: embedding.Vector{0, 1}, Text: "orthogonal"},
		{SourceID: "near", Vector: embedding.Vector{1, 0.1}, Text: "close"},
		{SourceID: "mid", Vector: embedding.Vector{1, 1}, Text: "diagonal"},
	}

	results := Rank(query, candidates, 5)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].SourceID != "near" {
		t.Errorf("expected 'near' first, got %q", results[0].SourceID)
	}
}

func TestRank_DeduplicatesBySource(t *testing.T) {
	query := embedding.Vector{1, 0}
	candidates := []Candidate{
		{SourceID: "a", Vector: embedding.Vector{1, 0}, Text: "chunk 0"},
		{SourceID: "a", Vector: embedding.Vector{1, 0.01}, Text: "chunk 1"},
		{SourceID: "b", Vector: embedding.Vector{1, 0.5}, Text: "other"},
	}

	results := Rank(query, candidates, 5)
	seen := map[string]int{}
	for _, r := range results {
		seen[r.SourceID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("source %q appears %d times", id, n)
		}
	}
	if len(results) != 2 {
		t.Errorf("expected 2 unique sources, got %d", len(results))
	}
}

func TestRank_ZeroVectorExcluded(t *testing.T) {
	query := embedding.Vector{1, 0}
	candidates := []Candidate{
		{SourceID: "zero", Vector: embedding.Vector{0, 0}, Text: "failed embed"},
		{SourceID: "ok", Vector: embedding.Vector{1, 0}, Text: "real"},
	}

	results := Rank(query, candidates, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].SourceID != "ok" {
		t.Errorf("zero-vector candidate should be excluded, got %q", results[0].SourceID)
	}
}

func TestRank_TopNLimit(t *testing.T) {
	query := embedding.Vector{1, 0}
	var candidates []Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, Candidate{
			SourceID: string(rune('a' + i)),
			Vector:   embedding.Vector{1, float32(i) / 10},
			Text:     "text",
		})
	}

	results := Rank(query, candidates, 3)
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestRank_ScanWindowIsTwiceTopN(t *testing.T) {
	// Top 2*topN sorted candidates all share one source; unique sources below
	// the window must not be widened into.
	query := embedding.Vector{1, 0}
	var candidates []Candidate
	for i := 0; i < 4; i++ {
		candidates = append(candidates, Candidate{SourceID: "dominant", Vector: embedding.Vector{1, 0}, Text: "dup"})
	}
	candidates = append(candidates, Candidate{SourceID: "buried", Vector: embedding.Vector{0, 1}, Text: "low"})

	results := Rank(query, candidates, 2)
	if len(results) != 1 {
		t.Fatalf("expected 1 result (window exhausted), got %d", len(results))
	}
	if results[0].SourceID != "dominant" {
		t.Errorf("expected 'dominant', got %q", results[0].SourceID)
	}
}

func TestRank_PreviewTruncation(t *testing.T) {
	long := strings.Repeat("p", 300)
	query := embedding.Vector{1}
	results := Rank(query, []Candidate{{SourceID: "a", Vector: embedding.Vector{1}, Text: long}}, 1)
	if len(results) != 1 {
		t.Fatal("expected 1 result")
	}
	if len(results[0].Preview) != 203 || !strings.HasSuffix(results[0].Preview, "...") {
		t.Errorf("expected 200-char preview with ellipsis, got len %d", len(results[0].Preview))
	}

	short := "short text"
	results = Rank(query, []Candidate{{SourceID: "b", Vector: embedding.Vector{1}, Text: short}}, 1)
	if results[0].Preview != short {
		t.Errorf("short text should not be truncated, got %q", results[0].Preview)
	}
}
