// Package analysis orchestrates per-conversation enrichment: summarization,
// topic/entity/insight extraction, embedding generation, and semantic search.
// Every stage is best-effort; enrichment never blocks a conversation's existence.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/rcliao/chat-archive/internal/chunker"
	"github.com/rcliao/chat-archive/internal/embedding"
	"github.com/rcliao/chat-archive/internal/llm"
	"github.com/rcliao/chat-archive/internal/model"
	"github.com/rcliao/chat-archive/internal/store"
)

// semanticQueryMinLen is the query length at which search switches from the
// keyword text index to embedding-based ranking.
const semanticQueryMinLen = 10

// suggestTextLimit bounds the conversation text sent with the category prompt.
const suggestTextLimit = 5000

// maxSeedTags is how many top topics seed an untagged conversation.
const maxSeedTags = 5

// Pipeline wires the external model capabilities to the stores. All
// collaborators are injected so the pipeline is testable with stubs.
type Pipeline struct {
	Completer     llm.Completer
	Embedder      embedding.Embedder
	Conversations store.ConversationStore
	Embeddings    store.EmbeddingStore
	ChunkOpts     chunker.Options
	Logger        *log.Logger
}

// analysisResponse is the structured result requested from the chat model.
// The model sometimes returns delimited strings instead of arrays, so list
// fields accept both.
type analysisResponse struct {
	Summary  string     `json:"summary"`
	Topics   stringList `json:"topics"`
	Entities stringList `json:"entities"`
	Insights stringList `json:"insights"`
}

// stringList decodes either a JSON array of strings or a single
// comma/newline-delimited string into a list of trimmed strings.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err == nil {
		*l = items
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = splitList(s)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(s, "\n", ","), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Process enriches a conversation and returns it in its best-known state.
// The returned record is a merged copy; the input is not mutated.
func (p *Pipeline) Process(ctx context.Context, conv *model.Conversation) *model.Conversation {
	analysis := p.analyze(ctx, conv)

	update := store.ConversationUpdate{
		Summary:   &analysis.Summary,
		KeyTopics: (*[]string)(&analysis.Topics),
		Entities:  (*[]string)(&analysis.Entities),
	}
	moments := make([]model.Insight, 0, len(analysis.Insights))
	for _, insight := range analysis.Insights {
		moments = append(moments, model.Insight{Text: insight})
	}
	update.Moments = &moments

	if len(conv.Tags) == 0 && len(analysis.Topics) > 0 {
		tags := analysis.Topics
		if len(tags) > maxSeedTags {
			tags = tags[:maxSeedTags]
		}
		seeded := append([]string(nil), tags...)
		update.Tags = &seeded
	}

	if len(conv.Categories) == 0 {
		if categories := p.SuggestCategories(ctx, conv); len(categories) > 0 {
			update.Categories = &categories
		}
	}

	result := conv
	if conv.ID != "" {
		updated, err := p.Conversations.UpdateConversation(ctx, conv.ID, update)
		if err != nil {
			p.logger().Printf("analysis: persist analysis for %s: %v", conv.ID, err)
		} else {
			result = updated
		}
	}

	p.reembed(ctx, result)
	return result
}

// analyze asks the chat model for a structured summary of the conversation.
// Model errors and undecodable replies both degrade to a fixed fallback.
func (p *Pipeline) analyze(ctx context.Context, conv *model.Conversation) analysisResponse {
	prompt := fmt.Sprintf(`Please analyze the following conversation and extract the following information:
1. A brief summary (2-3 sentences)
2. Main topics discussed (comma-separated list)
3. Key entities mentioned (people, companies, products, etc. as a comma-separated list)
4. Important insights or decisions (bullet points)

Format the response as a JSON object with the following keys:
"summary", "topics", "entities", "insights"

The conversation:
%s`, conv.FullText())

	reply, err := p.Completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: "You are an AI that analyzes conversations and extracts structured information. Respond with JSON only."},
		{Role: "user", Content: prompt},
	}, 0.7, 1000)
	if err != nil {
		p.logger().Printf("analysis: chat model: %v", err)
		return analysisResponse{Summary: "Error during analysis"}
	}

	var analysis analysisResponse
	if err := json.Unmarshal([]byte(reply), &analysis); err != nil {
		p.logger().Printf("analysis: undecodable model reply: %v", err)
		return analysisResponse{
			Summary:  "Unable to generate summary",
			Topics:   stringList{"conversation"},
			Insights: stringList{"Unable to extract insights"},
		}
	}

	return analysis
}

// SuggestCategories asks the chat model to pick 1-3 categories from the
// user's existing vocabulary (or propose a new one). Failures yield nothing.
func (p *Pipeline) SuggestCategories(ctx context.Context, conv *model.Conversation) []string {
	existing, err := p.Conversations.DistinctCategories(ctx, conv.UserID)
	if err != nil {
		p.logger().Printf("analysis: load categories: %v", err)
	}
	if len(existing) == 0 {
		existing = model.DefaultCategories
	}

	text := conv.FullText()
	if len(text) > suggestTextLimit {
		text = text[:suggestTextLimit]
	}

	prompt := fmt.Sprintf(`Based on the following conversation, suggest 1-3 appropriate categories from this list:
%s

If none of the existing categories fit well, you may suggest one new category.

The conversation:
%s

Format your response as a comma-separated list of categories.`, strings.Join(existing, ", "), text)

	reply, err := p.Completer.Complete(ctx, []llm.Message{
		{Role: "system", Content: "You are an AI that categorizes conversations. Respond with only a comma-separated list of categories."},
		{Role: "user", Content: prompt},
	}, 0.7, 1000)
	if err != nil {
		p.logger().Printf("analysis: suggest categories: %v", err)
		return nil
	}

	return splitList(reply)
}

// reembed deletes the conversation's stored embeddings and regenerates them
// from its current full text, one embedding per chunk.
func (p *Pipeline) reembed(ctx context.Context, conv *model.Conversation) {
	if conv.ID == "" {
		p.logger().Printf("analysis: cannot embed conversation without ID")
		return
	}
	fullText := conv.FullText()
	if strings.TrimSpace(fullText) == "" {
		p.logger().Printf("analysis: empty conversation text for %s", conv.ID)
		return
	}

	if _, err := p.Embeddings.DeleteEmbeddingsByConversation(ctx, conv.ID); err != nil {
		p.logger().Printf("analysis: delete stale embeddings for %s: %v", conv.ID, err)
		return
	}

	chunks := chunker.Chunk(fullText, p.ChunkOpts)
	vectors := embedding.EmbedBatch(ctx, p.Embedder, chunks)

	embeddings := make([]model.ConversationEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		embeddings = append(embeddings, model.ConversationEmbedding{
			ConversationID:    conv.ID,
			ConversationTitle: conv.Title,
			TextChunk:         chunk,
			Embedding:         vectors[i],
			ChunkIndex:        i,
		})
	}

	n, err := p.Embeddings.CreateEmbeddings(ctx, embeddings)
	if err != nil {
		p.logger().Printf("analysis: store embeddings for %s: %v", conv.ID, err)
		return
	}
	p.logger().Printf("analysis: stored %d embeddings for conversation %s", n, conv.ID)
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.Default()
}
