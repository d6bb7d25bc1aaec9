package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rcliao/chat-archive/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateUser(ctx, &model.User{
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Name:         "Alice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.UserByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %q", got.Email)
	}
	if got.LastLogin != nil {
		t.Error("expected nil last_login before first login")
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	byEmail, err := s.UserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != id {
		t.Errorf("lookup by email returned %q, want %q", byEmail.ID, id)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := &model.User{Email: "bob@example.com", PasswordHash: "h", Name: "Bob"}
	if _, err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	_, err := s.CreateUser(ctx, &model.User{Email: "bob@example.com", PasswordHash: "h2", Name: "Bobby"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UserByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserPreferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateUser(ctx, &model.User{
		Email:        "carol@example.com",
		PasswordHash: "h",
		Name:         "Carol",
		FavoriteTags: []string{"keep-me"},
	})

	categories := []string{"Research", "Cooking"}
	err := s.UpdateUserPreferences(ctx, id, UserPreferences{CustomCategories: &categories})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := s.UserByID(ctx, id)
	if len(got.CustomCategories) != 2 {
		t.Errorf("custom categories = %v", got.CustomCategories)
	}
	// Fields not in the update survive.
	if len(got.FavoriteTags) != 1 || got.FavoriteTags[0] != "keep-me" {
		t.Errorf("favorite tags lost during partial update: %v", got.FavoriteTags)
	}
}

func TestUpdateUserPreferencesEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpdateUserPreferences(context.Background(), "any", UserPreferences{}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestTouchLastLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateUser(ctx, &model.User{Email: "dave@example.com", PasswordHash: "h", Name: "Dave"})
	if err := s.TouchLastLogin(ctx, id); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, _ := s.UserByID(ctx, id)
	if got.LastLogin == nil {
		t.Fatal("expected last_login set")
	}
	if got.LastLogin.IsZero() {
		t.Error("last_login is zero")
	}
}
