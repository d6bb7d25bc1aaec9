package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/chat-archive/internal/model"
)

// SQLiteStore implements the storage interfaces using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		title              TEXT NOT NULL,
		messages           TEXT NOT NULL,
		tags               TEXT,
		categories         TEXT,
		summary            TEXT,
		key_topics         TEXT,
		extracted_entities TEXT,
		important_moments  TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, updated_at DESC);

	CREATE TABLE IF NOT EXISTS embeddings (
		id                 TEXT PRIMARY KEY,
		conversation_id    TEXT NOT NULL REFERENCES conversations(id),
		conversation_title TEXT NOT NULL,
		chunk_index        INTEGER NOT NULL,
		text_chunk         TEXT NOT NULL,
		vector             TEXT NOT NULL,
		created_at         TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_embeddings_conversation ON embeddings(conversation_id);

	CREATE TABLE IF NOT EXISTS users (
		id                TEXT PRIMARY KEY,
		email             TEXT NOT NULL UNIQUE,
		password_hash     TEXT NOT NULL,
		name              TEXT NOT NULL,
		custom_categories TEXT,
		favorite_tags     TEXT,
		ui_preferences    TEXT,
		created_at        TEXT NOT NULL,
		last_login        TEXT
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS conversations_fts USING fts5(
		conversation_id UNINDEXED,
		title,
		content
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// messageText flattens all message content for the text index.
func messageText(c *model.Conversation) string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, " ")
}

func marshalJSON(v interface{}) *string {
	switch x := v.(type) {
	case []string:
		if len(x) == 0 {
			return nil
		}
	case []model.Insight:
		if len(x) == 0 {
			return nil
		}
	}
	b, _ := json.Marshal(v)
	str := string(b)
	return &str
}

// CreateConversation persists a conversation and returns its assigned ID.
func (s *SQLiteStore) CreateConversation(ctx context.Context, c *model.Conversation) (string, error) {
	id := s.newID()
	now := time.Now().UTC()

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	messages, _ := json.Marshal(c.Messages)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, messages, tags, categories, summary,
		                            key_topics, extracted_entities, important_moments, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.UserID, c.Title, string(messages),
		marshalJSON(c.Tags), marshalJSON(c.Categories), nullable(c.Summary),
		marshalJSON(c.KeyTopics), marshalJSON(c.Entities), marshalJSON(c.Moments),
		createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversations_fts (conversation_id, title, content) VALUES (?, ?, ?)`,
		id, c.Title, messageText(c))
	if err != nil {
		return "", fmt.Errorf("index conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return id, nil
}

// Conversation retrieves a conversation by ID.
func (s *SQLiteStore) Conversation(ctx context.Context, id string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, messages, tags, categories, summary,
		        key_topics, extracted_entities, important_moments, created_at, updated_at
		 FROM conversations WHERE id = ?`, id)

	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ConversationsByUser lists a user's conversations, newest updated first.
func (s *SQLiteStore) ConversationsByUser(ctx context.Context, p ListParams) ([]model.Conversation, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"user_id = ?"}
	args := []interface{}{p.UserID}

	// Tag and category filters match against the JSON-encoded arrays.
	if p.Tag != "" {
		where = append(where, "tags LIKE ?")
		args = append(args, "%\""+p.Tag+"\"%")
	}
	if p.Category != "" {
		where = append(where, "categories LIKE ?")
		args = append(args, "%\""+p.Category+"\"%")
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, title, messages, tags, categories, summary,
		       key_topics, extracted_entities, important_moments, created_at, updated_at
		FROM conversations
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`, strings.Join(where, " AND "))
	args = append(args, limit, p.Skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConversations(rows)
}

// UpdateConversation applies a partial update, bumps updated_at, and returns
// the merged record.
func (s *SQLiteStore) UpdateConversation(ctx context.Context, id string, u ConversationUpdate) (*model.Conversation, error) {
	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC().Format(time.RFC3339)}

	if u.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Tags != nil {
		set = append(set, "tags = ?")
		args = append(args, marshalJSON(*u.Tags))
	}
	if u.Categories != nil {
		set = append(set, "categories = ?")
		args = append(args, marshalJSON(*u.Categories))
	}
	if u.Summary != nil {
		set = append(set, "summary = ?")
		args = append(args, nullable(*u.Summary))
	}
	if u.KeyTopics != nil {
		set = append(set, "key_topics = ?")
		args = append(args, marshalJSON(*u.KeyTopics))
	}
	if u.Entities != nil {
		set = append(set, "extracted_entities = ?")
		args = append(args, marshalJSON(*u.Entities))
	}
	if u.Moments != nil {
		set = append(set, "important_moments = ?")
		args = append(args, marshalJSON(*u.Moments))
	}

	args = append(args, id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE conversations SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("update conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	if u.Title != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE conversations_fts SET title = ? WHERE conversation_id = ?`, *u.Title, id); err != nil {
			return nil, fmt.Errorf("reindex title: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.Conversation(ctx, id)
}

// DeleteConversation removes a conversation, its text-index row, and its embeddings.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations_fts WHERE conversation_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// AppendMessage adds a message to an existing conversation and bumps updated_at.
func (s *SQLiteStore) AppendMessage(ctx context.Context, id string, m model.Message) error {
	c, err := s.Conversation(ctx, id)
	if err != nil {
		return err
	}

	c.Messages = append(c.Messages, m)
	messages, _ := json.Marshal(c.Messages)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET messages = ?, updated_at = ? WHERE id = ?`,
		string(messages), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations_fts SET content = ? WHERE conversation_id = ?`,
		messageText(c), id)
	if err != nil {
		return fmt.Errorf("reindex conversation: %w", err)
	}

	return tx.Commit()
}

// DistinctCategories returns the distinct categories across a user's conversations.
func (s *SQLiteStore) DistinctCategories(ctx context.Context, userID string) ([]string, error) {
	return s.distinctArrayValues(ctx, "categories", userID)
}

// DistinctTags returns the distinct tags across a user's conversations.
func (s *SQLiteStore) DistinctTags(ctx context.Context, userID string) ([]string, error) {
	return s.distinctArrayValues(ctx, "tags", userID)
}

// distinctArrayValues unrolls a JSON array column with json_each.
func (s *SQLiteStore) distinctArrayValues(ctx context.Context, column, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT je.value
		FROM conversations c, json_each(c.%s) je
		WHERE c.user_id = ? AND c.%s IS NOT NULL
		ORDER BY je.value`, column, column)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ExportByUser returns all of a user's conversations ordered by creation time.
func (s *SQLiteStore) ExportByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, messages, tags, categories, summary,
		        key_topics, extracted_entities, important_moments, created_at, updated_at
		 FROM conversations WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConversations(rows)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(row scanner) (*model.Conversation, error) {
	var c model.Conversation
	var messages string
	var tags, categories, summary, topics, entities, moments sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&c.ID, &c.UserID, &c.Title, &messages, &tags, &categories, &summary,
		&topics, &entities, &moments, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(messages), &c.Messages)
	if tags.Valid {
		json.Unmarshal([]byte(tags.String), &c.Tags)
	}
	if categories.Valid {
		json.Unmarshal([]byte(categories.String), &c.Categories)
	}
	if summary.Valid {
		c.Summary = summary.String
	}
	if topics.Valid {
		json.Unmarshal([]byte(topics.String), &c.KeyTopics)
	}
	if entities.Valid {
		json.Unmarshal([]byte(entities.String), &c.Entities)
	}
	if moments.Valid {
		json.Unmarshal([]byte(moments.String), &c.Moments)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &c, nil
}

func collectConversations(rows *sql.Rows) ([]model.Conversation, error) {
	var out []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
