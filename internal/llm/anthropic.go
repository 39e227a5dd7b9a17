package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/config"
	"github.com/joescharf/recode/internal/prompt"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	api         *anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

// NewAnthropicClient creates a client from cfg. Retries are disabled so that
// failures reach the user immediately.
func NewAnthropicClient(cfg config.Completion) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicClient{
		api:         &client,
		model:       anthropic.Model(cfg.Model),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Model returns the model identifier.
func (c *AnthropicClient) Model() string { return string(c.model) }

// Complete sends the prompt and returns the first text block of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: p.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &apperr.TransportError{StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
		}
		return "", &apperr.TransportError{Err: err}
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &apperr.TransportError{Body: msg.RawJSON(), Err: errors.New("no text content in API response")}
}
