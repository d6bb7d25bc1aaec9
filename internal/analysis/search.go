package analysis

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rcliao/chat-archive/internal/model"
	"github.com/rcliao/chat-archive/internal/ranker"
)

// SemanticQuery reports whether Search will embed the query and rank by
// similarity rather than use the keyword text index. Counted in runes, not
// bytes, so short multibyte queries stay on the keyword path.
func SemanticQuery(query string) bool {
	return utf8.RuneCountInString(query) >= semanticQueryMinLen
}

// Search finds a user's conversations matching the query. Short queries use
// the keyword text index; queries of 10+ characters are embedded and ranked
// against the user's stored embeddings, de-duplicated by conversation.
func (p *Pipeline) Search(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	if !SemanticQuery(query) {
		return p.keywordSearch(ctx, userID, query, limit)
	}
	return p.semanticSearch(ctx, userID, query, limit)
}

func (p *Pipeline) keywordSearch(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	conversations, err := p.Conversations.TextSearch(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	results := make([]model.SearchResult, 0, len(conversations))
	for _, c := range conversations {
		results = append(results, toSearchResult(&c, 0, ""))
	}
	return results, nil
}

func (p *Pipeline) semanticSearch(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	queryVector, err := p.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	stored, err := p.Embeddings.EmbeddingsByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	candidates := make([]ranker.Candidate, 0, len(stored))
	for _, e := range stored {
		candidates = append(candidates, ranker.Candidate{
			SourceID: e.ConversationID,
			Vector:   e.Embedding,
			Text:     e.TextChunk,
		})
	}

	var results []model.SearchResult
	for _, r := range ranker.Rank(queryVector, candidates, limit) {
		c, err := p.Conversations.Conversation(ctx, r.SourceID)
		if err != nil {
			p.logger().Printf("search: enrich %s: %v", r.SourceID, err)
			continue
		}
		results = append(results, toSearchResult(c, r.Score, r.Preview))
	}
	return results, nil
}

// Related finds conversations similar to the given one, using its first
// stored embedding as the query vector.
func (p *Pipeline) Related(ctx context.Context, conversationID string, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	source, err := p.Embeddings.EmbeddingsByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load source embeddings: %w", err)
	}
	if len(source) == 0 {
		p.logger().Printf("related: no embeddings for conversation %s", conversationID)
		return nil, nil
	}

	conv, err := p.Conversations.Conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	stored, err := p.Embeddings.EmbeddingsByUser(ctx, conv.UserID, 0)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	candidates := make([]ranker.Candidate, 0, len(stored))
	for _, e := range stored {
		if e.ConversationID == conversationID {
			continue
		}
		candidates = append(candidates, ranker.Candidate{
			SourceID: e.ConversationID,
			Vector:   e.Embedding,
			Text:     e.TextChunk,
		})
	}

	var results []model.SearchResult
	for _, r := range ranker.Rank(source[0].Embedding, candidates, limit) {
		c, err := p.Conversations.Conversation(ctx, r.SourceID)
		if err != nil {
			p.logger().Printf("related: enrich %s: %v", r.SourceID, err)
			continue
		}
		results = append(results, toSearchResult(c, r.Score, r.Preview))
	}
	return results, nil
}

func toSearchResult(c *model.Conversation, score float64, preview string) model.SearchResult {
	summary := c.Summary
	if summary == "" {
		summary = "No summary available"
	}
	return model.SearchResult{
		ConversationID: c.ID,
		Title:          c.Title,
		Summary:        summary,
		TextPreview:    preview,
		Score:          score,
		Tags:           c.Tags,
		Categories:     c.Categories,
		CreatedAt:      c.CreatedAt,
	}
}
