package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/chat-archive/internal/model"
)

// CreateEmbeddings inserts a batch of embeddings in one transaction and
// returns the count stored.
func (s *SQLiteStore) CreateEmbeddings(ctx context.Context, embeddings []model.ConversationEmbedding) (int, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range embeddings {
		vector, _ := json.Marshal(e.Embedding)
		createdAt := now
		if !e.CreatedAt.IsZero() {
			createdAt = e.CreatedAt.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO embeddings (id, conversation_id, conversation_title, chunk_index, text_chunk, vector, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.newID(), e.ConversationID, e.ConversationTitle, e.ChunkIndex, e.TextChunk, string(vector), createdAt)
		if err != nil {
			return 0, fmt.Errorf("insert embedding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(embeddings), nil
}

// EmbeddingsByConversation returns a conversation's embeddings ordered by chunk index.
func (s *SQLiteStore) EmbeddingsByConversation(ctx context.Context, conversationID string) ([]model.ConversationEmbedding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, conversation_title, chunk_index, text_chunk, vector, created_at
		 FROM embeddings WHERE conversation_id = ? ORDER BY chunk_index`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmbeddings(rows)
}

// EmbeddingsByUser returns all embeddings belonging to a user's conversations.
// A limit of zero or less means no limit; semantic search ranks the full set.
func (s *SQLiteStore) EmbeddingsByUser(ctx context.Context, userID string, limit int) ([]model.ConversationEmbedding, error) {
	query := `
		SELECT e.id, e.conversation_id, e.conversation_title, e.chunk_index, e.text_chunk, e.vector, e.created_at
		FROM embeddings e
		JOIN conversations c ON c.id = e.conversation_id
		WHERE c.user_id = ?
		ORDER BY e.conversation_id, e.chunk_index`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEmbeddings(rows)
}

// DeleteEmbeddingsByConversation removes all embeddings for a conversation.
// Called before regeneration so the stored set always matches the current text.
func (s *SQLiteStore) DeleteEmbeddingsByConversation(ctx context.Context, conversationID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// EmbeddingCount returns the total number of stored embeddings.
func (s *SQLiteStore) EmbeddingCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}

func collectEmbeddings(rows *sql.Rows) ([]model.ConversationEmbedding, error) {
	var out []model.ConversationEmbedding
	for rows.Next() {
		var e model.ConversationEmbedding
		var vector, createdAt string
		err := rows.Scan(&e.ID, &e.ConversationID, &e.ConversationTitle, &e.ChunkIndex, &e.TextChunk, &vector, &createdAt)
		if err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(vector), &e.Embedding)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
