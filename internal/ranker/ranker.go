// Package ranker answers top-K cosine-similarity queries over an in-memory
// candidate set, de-duplicating by source conversation.
package ranker

import (
	"sort"

	"github.com/rcliao/chat-archive/internal/embedding"
)

// previewLen bounds the preview text attached to each result.
const previewLen = 200

// Candidate is one embedded chunk considered for ranking.
type Candidate struct {
	SourceID string
	Vector   embedding.Vector
	Text     string
}

// Result is a ranked match. Preview is the candidate text truncated to 200
// characters with a trailing ellipsis when longer.
type Result struct {
	SourceID string  `json:"conversation_id"`
	Score    float64 `json:"similarity_score"`
	Preview  string  `json:"text_preview"`
}

// Rank scores candidates against query by cosine similarity and returns up to
// topN results, at most one per SourceID. Zero-norm candidates are excluded.
// Because several chunks usually share a source, the scan covers the first
// 2*topN sorted candidates before giving up; fewer than topN unique sources in
// that window means fewer results.
func Rank(query embedding.Vector, candidates []Candidate, topN int) []Result {
	if topN <= 0 {
		topN = 5
	}

	type scored struct {
		Candidate
		score float64
	}

	pool := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if isZero(c.Vector) {
			continue
		}
		s := embedding.CosineSimilarity(query, c.Vector)
		pool = append(pool, scored{Candidate: c, score: s})
	}

	// Stable sort keeps input order for equal scores.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	window := 2 * topN
	if window > len(pool) {
		window = len(pool)
	}

	results := make([]Result, 0, topN)
	seen := map[string]bool{}
	for _, s := range pool[:window] {
		if seen[s.SourceID] || len(results) >= topN {
			continue
		}
		seen[s.SourceID] = true
		results = append(results, Result{
			SourceID: s.SourceID,
			Score:    s.score,
			Preview:  preview(s.Text),
		})
	}

	return results
}

func isZero(v embedding.Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func preview(text string) string {
	if len(text) <= previewLen {
		return text
	}
	return text[:previewLen] + "..."
}
