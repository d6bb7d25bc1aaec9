package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string          `json:"db_path"`
	DBSizeBytes   int64           `json:"db_size_bytes"`
	Conversations int             `json:"conversations"`
	Embeddings    int             `json:"embeddings"`
	Users         int             `json:"users"`
	Categories    []CategoryStats `json:"categories"`
}

// CategoryStats holds per-category conversation counts.
type CategoryStats struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&st.Conversations)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&st.Embeddings)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&st.Users)

	rows, err := s.db.QueryContext(ctx, `
		SELECT je.value, COUNT(*) as cnt
		FROM conversations c, json_each(c.categories) je
		WHERE c.categories IS NOT NULL
		GROUP BY je.value ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategoryStats
		rows.Scan(&cs.Category, &cs.Count)
		st.Categories = append(st.Categories, cs)
	}

	return st, nil
}
