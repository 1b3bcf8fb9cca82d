// Package openai completes prompts through the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Client sends single-turn chat completions.
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates a Client. A non-empty baseURL points it at an
// OpenAI-compatible endpoint.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: goopenai.NewClientWithConfig(cfg), model: model}
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return "openai" }

// Complete returns the first choice's message content.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	var msgs []goopenai.ChatCompletionMessage
	if system != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: user})

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", eris.Wrap(classify(err), "openai: chat completion")
	}

	zap.L().Debug("openai: usage",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", eris.New("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return resilience.ClassifyStatus(err, apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return resilience.ClassifyStatus(err, reqErr.HTTPStatusCode)
	}
	return err
}
