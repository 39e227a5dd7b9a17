package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/config"
	"github.com/joescharf/recode/internal/prompt"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint, such as
// Mistral's Codestral API.
type OpenAIClient struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIClient creates a client for cfg.BaseURL authenticated with cfg.APIKey.
func NewOpenAIClient(cfg config.Completion) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &checkedDoer{client: &http.Client{Timeout: cfg.Timeout}}

	return &OpenAIClient{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Model returns the model identifier.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		var terr *apperr.TransportError
		if errors.As(err, &terr) {
			return "", terr
		}
		return "", &apperr.TransportError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &apperr.TransportError{Err: errors.New("no choices in API response")}
	}
	return resp.Choices[0].Message.Content, nil
}
