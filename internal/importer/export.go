// Package importer converts tree-structured chat export payloads into flat
// conversation records, either in one pass or as a bounded-memory stream.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/rcliao/chat-archive/internal/model"
)

// ErrInvalidPayload is returned when the import payload is not a JSON array.
var ErrInvalidPayload = errors.New("invalid export format: expected a JSON array")

// defaultTitle is used when an export entry carries no title.
const defaultTitle = "Imported Conversation"

// Export payload shapes. Each conversation embeds a message graph keyed by
// node ID; nodes reference a parent, children, and an optional message.
type exportConversation struct {
	Title   string                `json:"title"`
	Mapping map[string]exportNode `json:"mapping"`
}

type exportNode struct {
	Parent   *string        `json:"parent"`
	Children []string       `json:"children"`
	Message  *exportMessage `json:"message"`
}

type exportMessage struct {
	Author     exportAuthor  `json:"author"`
	Content    exportContent `json:"content"`
	CreateTime *float64      `json:"create_time"`
}

type exportAuthor struct {
	Role string `json:"role"`
}

type exportContent struct {
	Parts []string `json:"parts"`
}

// ConversationCreator persists parsed conversations.
type ConversationCreator interface {
	CreateConversation(ctx context.Context, c *model.Conversation) (string, error)
}

// Analyzer enriches a conversation after it is persisted.
type Analyzer interface {
	Process(ctx context.Context, c *model.Conversation) *model.Conversation
}

// ParseExport parses a whole export payload into conversations. A malformed
// conversation within the array is logged and skipped; a payload that is not
// an array fails with ErrInvalidPayload.
func ParseExport(data []byte, userID string) ([]model.Conversation, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var conversations []model.Conversation
	for _, raw := range entries {
		c, err := parseConversation(raw, userID)
		if err != nil {
			log.Printf("import: skipping conversation: %v", err)
			continue
		}
		conversations = append(conversations, *c)
	}

	return conversations, nil
}

// parseConversation linearizes one export entry's message tree into an
// ordered conversation. Only the first child of each node is followed;
// alternate branches are discarded.
func parseConversation(raw []byte, userID string) (*model.Conversation, error) {
	var entry exportConversation
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("parse conversation: %w", err)
	}

	title := entry.Title
	if title == "" {
		title = defaultTitle
	}

	if len(entry.Mapping) == 0 {
		return nil, fmt.Errorf("conversation %q has no messages", title)
	}

	messages := walkThread(entry.Mapping)
	if len(messages) == 0 {
		return nil, fmt.Errorf("conversation %q has no valid messages", title)
	}

	now := time.Now().UTC()
	createdAt, updatedAt := now, now
	if len(messages) > 0 {
		createdAt = messages[0].Timestamp
		updatedAt = messages[len(messages)-1].Timestamp
	}

	return &model.Conversation{
		UserID:    userID,
		Title:     title,
		Messages:  messages,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// walkThread finds the root node and follows first children only, collecting
// retained messages along the single linear path.
func walkThread(mapping map[string]exportNode) []model.Message {
	var order []string
	for _, node := range mapping {
		if node.Parent == nil && len(node.Children) > 0 {
			order = append(order, node.Children[0])
			break
		}
	}

	for len(order) > 0 {
		// A child pointing back at an ancestor would loop forever; a valid
		// thread never visits more nodes than the mapping holds.
		if len(order) > len(mapping) {
			return nil
		}
		node, ok := mapping[order[len(order)-1]]
		if !ok || len(node.Children) == 0 {
			break
		}
		order = append(order, node.Children[0])
	}

	var messages []model.Message
	for _, id := range order {
		node, ok := mapping[id]
		if !ok || node.Message == nil {
			continue
		}
		if m, ok := convertMessage(node.Message); ok {
			messages = append(messages, m)
		}
	}
	return messages
}

// convertMessage turns an export node's message into a stored message.
// System messages and messages with empty joined text are dropped.
func convertMessage(msg *exportMessage) (model.Message, bool) {
	role := msg.Author.Role
	if role == "" {
		role = model.RoleUser
	}
	if role == "system" {
		return model.Message{}, false
	}
	if role != model.RoleUser && role != model.RoleAssistant {
		return model.Message{}, false
	}

	text := joinParts(msg.Content.Parts)
	if text == "" {
		return model.Message{}, false
	}

	timestamp := time.Now().UTC()
	if msg.CreateTime != nil {
		sec := int64(*msg.CreateTime)
		nsec := int64((*msg.CreateTime - float64(sec)) * 1e9)
		timestamp = time.Unix(sec, nsec).UTC()
	}

	return model.Message{Role: role, Content: text, Timestamp: timestamp}, true
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// Importer runs the whole-payload import path: parse everything, then persist
// and optionally analyze each conversation.
type Importer struct {
	Store    ConversationCreator
	Analyzer Analyzer // optional enrichment after persistence
	Logger   *log.Logger
}

// Import parses content and persists every conversation, reporting aggregate
// counts. Per-conversation failures never abort the run.
func (i *Importer) Import(ctx context.Context, content []byte, userID string) (*model.ImportResult, error) {
	logger := i.logger()

	conversations, err := ParseExport(content, userID)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{StartTime: time.Now().UTC()}
	for idx := range conversations {
		c := &conversations[idx]
		result.TotalProcessed++

		id, err := i.Store.CreateConversation(ctx, c)
		if err != nil {
			logger.Printf("import: persist %q: %v", c.Title, err)
			result.Errors++
			continue
		}
		c.ID = id
		result.Success++
		result.ConversationIDs = append(result.ConversationIDs, id)

		if i.Analyzer != nil {
			i.Analyzer.Process(ctx, c)
		}
	}

	result.EndTime = time.Now().UTC()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

func (i *Importer) logger() *log.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return log.Default()
}
