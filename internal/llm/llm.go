// Package llm wraps the external chat-completion model behind a narrow
// capability interface so callers can be tested with deterministic stubs.
package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Message is a chat message sent to the completion model.
type Message struct {
	Role    string
	Content string
}

// Completer produces a chat completion for the given messages.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error)
}

// OpenAICompleter calls the OpenAI chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer for the given model. An empty baseURL
// targets api.openai.com; an empty model falls back to gpt-4-turbo-preview.
func NewOpenAICompleter(baseURL, apiKey, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4TurboPreview
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	rsp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from model")
	}

	return rsp.Choices[0].Message.Content, nil
}
