package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/chat-archive/internal/model"
)

// UserPreferences is a partial preference update. Nil fields are left untouched.
type UserPreferences struct {
	CustomCategories *[]string
	FavoriteTags     *[]string
	UIPreferences    *map[string]string
}

// CreateUser registers a user, returning ErrDuplicateEmail when the email is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *model.User) (string, error) {
	id := s.newID()
	now := time.Now().UTC()

	var prefs *string
	if len(u.UIPreferences) > 0 {
		b, _ := json.Marshal(u.UIPreferences)
		str := string(b)
		prefs = &str
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, custom_categories, favorite_tags, ui_preferences, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.Email, u.PasswordHash, u.Name,
		marshalJSON(u.CustomCategories), marshalJSON(u.FavoriteTags), prefs,
		now.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("user %s: %w", u.Email, ErrDuplicateEmail)
		}
		return "", fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

// UserByID retrieves a user by ID.
func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userBy(ctx, "id", id)
}

// UserByEmail retrieves a user by email.
func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userBy(ctx, "email", email)
}

func (s *SQLiteStore) userBy(ctx context.Context, column, value string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT id, email, password_hash, name, custom_categories, favorite_tags, ui_preferences, created_at, last_login
		 FROM users WHERE %s = ?`, column), value)

	var u model.User
	var categories, tags, prefs, lastLogin sql.NullString
	var createdAt string

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &categories, &tags, &prefs, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if categories.Valid {
		json.Unmarshal([]byte(categories.String), &u.CustomCategories)
	}
	if tags.Valid {
		json.Unmarshal([]byte(tags.String), &u.FavoriteTags)
	}
	if prefs.Valid {
		json.Unmarshal([]byte(prefs.String), &u.UIPreferences)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if lastLogin.Valid {
		t, _ := time.Parse(time.RFC3339, lastLogin.String)
		u.LastLogin = &t
	}

	return &u, nil
}

// UpdateUserPreferences applies a partial preference update.
func (s *SQLiteStore) UpdateUserPreferences(ctx context.Context, id string, p UserPreferences) error {
	var set []string
	var args []interface{}

	if p.CustomCategories != nil {
		set = append(set, "custom_categories = ?")
		args = append(args, marshalJSON(*p.CustomCategories))
	}
	if p.FavoriteTags != nil {
		set = append(set, "favorite_tags = ?")
		args = append(args, marshalJSON(*p.FavoriteTags))
	}
	if p.UIPreferences != nil {
		b, _ := json.Marshal(*p.UIPreferences)
		set = append(set, "ui_preferences = ?")
		args = append(args, string(b))
	}

	if len(set) == 0 {
		return errors.New("no preference fields provided")
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// TouchLastLogin records a login timestamp.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	return err
}
