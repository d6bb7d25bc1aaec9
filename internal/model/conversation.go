// Package model defines the core conversation data types.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Message roles retained during import. Anything else (e.g. "system") is dropped.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Insight is a free-text important moment extracted during analysis.
type Insight struct {
	Text string `json:"text"`
}

// Conversation is a stored chat transcript with its enrichment fields.
// Message order is significant and preserved end-to-end.
type Conversation struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Messages   []Message `json:"messages"`
	Tags       []string  `json:"tags,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	KeyTopics  []string  `json:"key_topics,omitempty"`
	Entities   []string  `json:"extracted_entities,omitempty"`
	Moments    []Insight `json:"important_moments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullText flattens the conversation into one analyzable string.
func (c *Conversation) FullText() string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(parts, " ")
}

// UserMessages returns only the user-authored messages.
func (c *Conversation) UserMessages() []Message {
	return c.byRole(RoleUser)
}

// AssistantMessages returns only the assistant-authored messages.
func (c *Conversation) AssistantMessages() []Message {
	return c.byRole(RoleAssistant)
}

func (c *Conversation) byRole(role string) []Message {
	var out []Message
	for _, m := range c.Messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}
