package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rcliao/chat-archive/internal/model"
)

// memStore is an in-memory ConversationCreator for importer tests.
type memStore struct {
	nextID        int
	conversations map[string]*model.Conversation
	failTitles    map[string]bool
}

func newMemStore() *memStore {
	return &memStore{conversations: map[string]*model.Conversation{}}
}

func (s *memStore) CreateConversation(ctx context.Context, c *model.Conversation) (string, error) {
	if s.failTitles[c.Title] {
		return "", errors.New("simulated persistence failure")
	}
	s.nextID++
	id := fmt.Sprintf("conv-%d", s.nextID)
	stored := *c
	stored.ID = id
	s.conversations[id] = &stored
	return id, nil
}

func TestStreamObjects_Basic(t *testing.T) {
	content := `[{"a": 1}, {"b": {"nested": 2}}, {"c": 3}]`
	stream, err := StreamObjects([]byte(content))
	if err != nil {
		t.Fatal(err)
	}

	var spans []string
	for span := range stream {
		spans = append(spans, string(span))
	}
	if len(spans) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(spans))
	}
	if spans[1] != `{"b": {"nested": 2}}` {
		t.Errorf("nested object span wrong: %q", spans[1])
	}
}

func TestStreamObjects_BracesInsideStrings(t *testing.T) {
	content := `[{"text": "a { brace } and \" an escaped quote"}, {"other": "}{"}]`
	stream, err := StreamObjects([]byte(content))
	if err != nil {
		t.Fatal(err)
	}

	count := 0
	for range stream {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 objects, braces in strings miscounted: got %d", count)
	}
}

func TestStreamObjects_NotAnArray(t *testing.T) {
	_, err := StreamObjects([]byte(`{"not": "array"}`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestBulk_ThousandElements(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 1000; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(linearEntry(fmt.Sprintf("conv %d", i)))
	}
	sb.WriteString("]")

	store := newMemStore()
	var callbacks []int
	b := &Bulk{
		Store:     store,
		BatchSize: 20,
		Pause:     time.Nanosecond,
		Progress:  func(n int) { callbacks = append(callbacks, n) },
	}

	result, err := b.Run(context.Background(), []byte(sb.String()), "u1")
	if err != nil {
		t.Fatal(err)
	}

	if len(callbacks) != 50 {
		t.Errorf("expected 50 progress callbacks, got %d", len(callbacks))
	}
	if got := result.Success + result.Errors; got != 1000 {
		t.Errorf("success+error = %d, want 1000", got)
	}
	if result.TotalProcessed != 1000 {
		t.Errorf("total_processed = %d, want 1000", result.TotalProcessed)
	}
	if len(callbacks) > 0 && callbacks[len(callbacks)-1] != 1000 {
		t.Errorf("final progress = %d, want 1000", callbacks[len(callbacks)-1])
	}
	if result.Duration < 0 || result.EndTime.Before(result.StartTime) {
		t.Error("duration must span start to end")
	}
}

func TestBulk_RemainderBatchReportsProgress(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 25; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(linearEntry(fmt.Sprintf("conv %d", i)))
	}
	sb.WriteString("]")

	var callbacks []int
	b := &Bulk{
		Store:     newMemStore(),
		BatchSize: 10,
		Pause:     time.Nanosecond,
		Progress:  func(n int) { callbacks = append(callbacks, n) },
	}

	result, err := b.Run(context.Background(), []byte(sb.String()), "u1")
	if err != nil {
		t.Fatal(err)
	}
	// Two full batches plus the final partial one.
	if len(callbacks) != 3 {
		t.Fatalf("expected 3 callbacks, got %d", len(callbacks))
	}
	if callbacks[2] != 25 || result.Success != 25 {
		t.Errorf("expected 25 processed, got callback %d success %d", callbacks[2], result.Success)
	}
}

func TestBulk_PartialFailures(t *testing.T) {
	payload := `[` +
		linearEntry("good one") + `,` +
		`{"title": "empty", "mapping": {}},` +
		linearEntry("doomed") + `,` +
		linearEntry("good two") + `]`

	store := newMemStore()
	store.failTitles = map[string]bool{"doomed": true}

	b := &Bulk{Store: store, BatchSize: 2, Pause: time.Nanosecond}
	result, err := b.Run(context.Background(), []byte(payload), "u1")
	if err != nil {
		t.Fatal(err)
	}

	if result.Success != 2 {
		t.Errorf("success = %d, want 2", result.Success)
	}
	if result.Errors != 2 {
		t.Errorf("errors = %d, want 2", result.Errors)
	}
	if len(result.ConversationIDs) != 2 {
		t.Errorf("expected 2 created IDs, got %d", len(result.ConversationIDs))
	}
}

func TestBulk_InvalidObjectSkippedInStream(t *testing.T) {
	// The second span is structurally balanced but invalid JSON; the scanner
	// drops it before parsing, so it never reaches the store or the counters.
	payload := `[` + linearEntry("ok") + `, {invalid json}, ` + linearEntry("ok too") + `]`

	store := newMemStore()
	b := &Bulk{Store: store, BatchSize: 5, Pause: time.Nanosecond}
	result, err := b.Run(context.Background(), []byte(payload), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Success != 2 || result.TotalProcessed != 2 {
		t.Errorf("invalid JSON span should be skipped silently: %+v", result)
	}
}
