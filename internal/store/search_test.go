package store

import (
	"context"
	"testing"
)

func TestTextSearchByContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := testConversation("u1", "untitled")
	c.Messages[0].Content = "the quick brown fox"
	s.CreateConversation(ctx, c)
	s.CreateConversation(ctx, testConversation("u1", "unrelated"))

	got, err := s.TextSearch(ctx, "u1", "quick brown", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got[0].Title != "untitled" {
		t.Errorf("matched %q", got[0].Title)
	}
	// The full record comes back, not just the index row.
	if len(got[0].Messages) != 2 {
		t.Errorf("expected full messages, got %d", len(got[0].Messages))
	}
}

func TestTextSearchByTitle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateConversation(ctx, testConversation("u1", "kubernetes migration notes"))

	got, err := s.TextSearch(ctx, "u1", "kubernetes", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected title match, got %d results", len(got))
	}
}

func TestTextSearchScopedToUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := testConversation("u2", "secret")
	c.Messages[0].Content = "axolotl care guide"
	s.CreateConversation(ctx, c)

	got, err := s.TextSearch(ctx, "u1", "axolotl", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("search leaked across users: %d results", len(got))
	}
}

func TestTextSearchNoMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateConversation(ctx, testConversation("u1", "a"))

	got, err := s.TextSearch(ctx, "u1", "nonexistent", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestTextSearchQuotedQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateConversation(ctx, testConversation("u1", "a"))

	// Queries containing match syntax must not produce an FTS error.
	if _, err := s.TextSearch(ctx, "u1", `"AND" OR near(`, 10); err != nil {
		t.Fatalf("special characters should be escaped: %v", err)
	}
}
