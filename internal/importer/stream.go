package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"log"
	"time"

	"github.com/rcliao/chat-archive/internal/model"
)

// DefaultBatchSize is the number of streamed conversations persisted per batch.
const DefaultBatchSize = 10

// interBatchPause is an advisory delay between batches so bulk imports do not
// saturate the persistence layer.
const interBatchPause = 100 * time.Millisecond

// StreamObjects scans a top-level JSON array and yields one complete object's
// source span at a time, without materializing the whole document. The scanner
// tracks quoted strings (including escapes) so braces inside string content do
// not affect nesting depth. Spans that are not valid JSON are logged and
// skipped. The sequence is finite and consumed exactly once.
func StreamObjects(content []byte) (iter.Seq[[]byte], error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidPayload
	}
	body := trimmed[1:]

	return func(yield func([]byte) bool) {
		depth := 0
		start := 0
		inString := false
		escaped := false

		for i := 0; i < len(body); i++ {
			ch := body[i]

			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}

			switch ch {
			case '"':
				inString = true
			case '{':
				if depth == 0 {
					start = i
				}
				depth++
			case '}':
				depth--
				if depth == 0 {
					span := body[start : i+1]
					if !json.Valid(span) {
						log.Printf("import: skipping invalid JSON object: %.50s...", span)
						continue
					}
					if !yield(span) {
						return
					}
				}
			}
		}
	}, nil
}

// Bulk imports large export payloads in fixed-size batches so partial progress
// persists even if a later batch fails.
type Bulk struct {
	Store     ConversationCreator
	BatchSize int
	Progress  func(processed int) // invoked after each full batch
	Pause     time.Duration       // delay between batches; defaults to interBatchPause
	Logger    *log.Logger
}

// Run streams conversations out of content and persists them batch by batch.
// A single bad record increments the error count and the run continues.
func (b *Bulk) Run(ctx context.Context, content []byte, userID string) (*model.ImportResult, error) {
	batchSize := b.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	pause := b.Pause
	if pause == 0 {
		pause = interBatchPause
	}

	stream, err := StreamObjects(content)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{StartTime: time.Now().UTC()}

	var batch [][]byte
	for span := range stream {
		// Spans alias the input buffer; keep a copy past this iteration.
		batch = append(batch, bytes.Clone(span))

		if len(batch) >= batchSize {
			b.processBatch(ctx, batch, userID, result)
			batch = batch[:0]

			if b.Progress != nil {
				b.Progress(result.TotalProcessed)
			}
			time.Sleep(pause)
		}
	}

	if len(batch) > 0 {
		b.processBatch(ctx, batch, userID, result)
		if b.Progress != nil {
			b.Progress(result.TotalProcessed)
		}
	}

	result.EndTime = time.Now().UTC()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

func (b *Bulk) processBatch(ctx context.Context, batch [][]byte, userID string, result *model.ImportResult) {
	logger := b.Logger
	if logger == nil {
		logger = log.Default()
	}

	for _, raw := range batch {
		result.TotalProcessed++

		c, err := parseConversation(raw, userID)
		if err != nil {
			logger.Printf("import: %v", err)
			result.Errors++
			continue
		}

		id, err := b.Store.CreateConversation(ctx, c)
		if err != nil {
			logger.Printf("import: persist %q: %v", c.Title, err)
			result.Errors++
			continue
		}

		result.Success++
		result.ConversationIDs = append(result.ConversationIDs, id)
	}
}
