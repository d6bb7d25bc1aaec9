package model

import "time"

// ImportResult aggregates the outcome of an import run. A single bad record
// never aborts an import; it only increments Errors.
type ImportResult struct {
	TotalProcessed  int           `json:"total_processed"`
	Success         int           `json:"success"`
	Errors          int           `json:"error"`
	ConversationIDs []string      `json:"conversation_ids"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration"`
}

// SearchResult is one conversation surfaced by keyword or semantic search.
type SearchResult struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	TextPreview    string    `json:"text_preview,omitempty"`
	Score          float64   `json:"similarity_score,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Categories     []string  `json:"categories,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
