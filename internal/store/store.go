// Package store provides the document storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/chat-archive/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ListParams holds parameters for listing a user's conversations.
type ListParams struct {
	UserID   string
	Tag      string
	Category string
	Limit    int
	Skip     int
}

// ConversationUpdate is a partial field set applied to a stored conversation.
// Nil fields are left untouched; updated_at is always bumped.
type ConversationUpdate struct {
	Title      *string
	Tags       *[]string
	Categories *[]string
	Summary    *string
	KeyTopics  *[]string
	Entities   *[]string
	Moments    *[]model.Insight
}

// ConversationStore is the persistence surface for conversations.
type ConversationStore interface {
	// CreateConversation persists a conversation and returns its assigned ID.
	CreateConversation(ctx context.Context, c *model.Conversation) (string, error)

	// Conversation retrieves a conversation by ID.
	Conversation(ctx context.Context, id string) (*model.Conversation, error)

	// ConversationsByUser lists conversations, newest updated first.
	ConversationsByUser(ctx context.Context, p ListParams) ([]model.Conversation, error)

	// UpdateConversation applies a partial update and returns the merged record.
	UpdateConversation(ctx context.Context, id string, u ConversationUpdate) (*model.Conversation, error)

	// DeleteConversation removes a conversation and its embeddings.
	DeleteConversation(ctx context.Context, id string) error

	// AppendMessage adds a message to an existing conversation.
	AppendMessage(ctx context.Context, id string, m model.Message) error

	// TextSearch finds a user's conversations matching the query by title or content.
	TextSearch(ctx context.Context, userID, query string, limit int) ([]model.Conversation, error)

	// DistinctCategories returns the user's category vocabulary.
	DistinctCategories(ctx context.Context, userID string) ([]string, error)

	// DistinctTags returns the user's tag vocabulary.
	DistinctTags(ctx context.Context, userID string) ([]string, error)
}

// EmbeddingStore is the persistence surface for conversation embeddings.
type EmbeddingStore interface {
	// CreateEmbeddings inserts a batch of embeddings, returning the count stored.
	CreateEmbeddings(ctx context.Context, embeddings []model.ConversationEmbedding) (int, error)

	// EmbeddingsByConversation returns a conversation's embeddings ordered by chunk index.
	EmbeddingsByConversation(ctx context.Context, conversationID string) ([]model.ConversationEmbedding, error)

	// EmbeddingsByUser returns all embeddings belonging to a user's conversations.
	EmbeddingsByUser(ctx context.Context, userID string, limit int) ([]model.ConversationEmbedding, error)

	// DeleteEmbeddingsByConversation removes all embeddings for a conversation.
	DeleteEmbeddingsByConversation(ctx context.Context, conversationID string) (int, error)
}
