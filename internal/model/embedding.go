package model

import "time"

// ConversationEmbedding is one embedded chunk of a conversation's full text.
// All embeddings for a conversation are deleted and regenerated together so
// the stored set always matches the conversation's current text.
type ConversationEmbedding struct {
	ID                string    `json:"id,omitempty"`
	ConversationID    string    `json:"conversation_id"`
	ConversationTitle string    `json:"conversation_title"`
	TextChunk         string    `json:"text_chunk"`
	Embedding         []float32 `json:"embedding"`
	ChunkIndex        int       `json:"chunk_index"`
	CreatedAt         time.Time `json:"created_at"`
}
