package store

import (
	"context"
	"testing"

	"github.com/rcliao/chat-archive/internal/model"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := testConversation("u1", "a")
	a.Categories = []string{"Work & Career"}
	id, _ := s.CreateConversation(ctx, a)

	b := testConversation("u1", "b")
	b.Categories = []string{"Work & Career", "Learning"}
	s.CreateConversation(ctx, b)

	seedEmbeddings(t, s, id, "a", 2)
	s.CreateUser(ctx, &model.User{Email: "e@example.com", PasswordHash: "h", Name: "E"})

	st, err := s.Stats(ctx, "unknown-path")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Conversations != 2 {
		t.Errorf("conversations = %d", st.Conversations)
	}
	if st.Embeddings != 2 {
		t.Errorf("embeddings = %d", st.Embeddings)
	}
	if st.Users != 1 {
		t.Errorf("users = %d", st.Users)
	}
	if len(st.Categories) != 2 {
		t.Fatalf("categories = %v", st.Categories)
	}
	// Most frequent category first.
	if st.Categories[0].Category != "Work & Career" || st.Categories[0].Count != 2 {
		t.Errorf("top category = %+v", st.Categories[0])
	}
}
