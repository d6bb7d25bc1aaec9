package store

import (
	"context"
	"strings"

	"github.com/rcliao/chat-archive/internal/model"
)

// TextSearch finds a user's conversations whose title or message content
// matches the query, best match first. Used for short keyword queries; longer
// queries go through embedding-based ranking instead.
func (s *SQLiteStore) TextSearch(ctx context.Context, userID, query string, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.title, c.messages, c.tags, c.categories, c.summary,
		       c.key_topics, c.extracted_entities, c.important_moments, c.created_at, c.updated_at
		FROM conversations_fts f
		JOIN conversations c ON c.id = f.conversation_id
		WHERE conversations_fts MATCH ? AND c.user_id = ?
		ORDER BY rank
		LIMIT ?`, ftsQuery(query), userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConversations(rows)
}

// ftsQuery quotes the user's query so FTS5 treats it as a phrase rather than
// match syntax.
func ftsQuery(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}
