package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when no model is configured.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// ClaudeBackend generates completions through Anthropic's messages API.
type ClaudeBackend struct {
	client anthropic.Client
	model  string
}

// NewClaudeBackend creates a Claude backend. An empty model selects the
// default.
func NewClaudeBackend(apiKey, model string) *ClaudeBackend {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Name implements Backend.
func (b *ClaudeBackend) Name() string {
	return "claude"
}

// Complete implements Backend. HTTP 429 responses come back as
// *RateLimitError; everything else is terminal.
func (b *ClaudeBackend) Complete(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(req.Prompt),
			),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}
	if req.Temperature != 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", &RateLimitError{Backend: b.Name(), Err: err}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}
