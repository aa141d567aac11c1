package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-3.5-turbo"

// OpenAIBackend generates completions through OpenAI's chat API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates an OpenAI backend. org may be empty when the
// key is not scoped to an organization; an empty model selects the default.
func NewOpenAIBackend(apiKey, org, model string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if org != "" {
		cfg.OrgID = org
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Complete implements Backend. HTTP 429 responses come back as
// *RateLimitError; everything else is terminal.
func (b *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", &RateLimitError{Backend: b.Name(), Err: err}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
