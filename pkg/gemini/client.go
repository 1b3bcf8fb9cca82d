// Package gemini completes prompts through the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Client sends single-turn generation requests.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	c, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &Client{client: c, model: model}, nil
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return "gemini" }

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Complete generates a response for user with system as the instruction.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(float32(temperature))
	m.SetMaxOutputTokens(int32(maxTokens))
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", eris.Wrap(classify(err), "gemini: generate content")
	}
	if resp.UsageMetadata != nil {
		zap.L().Debug("gemini: usage",
			zap.String("model", c.model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}

	text := textFromResponse(resp)
	if text == "" {
		return "", eris.New("gemini: empty response")
	}
	return text, nil
}

// textFromResponse joins the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return resilience.ClassifyStatus(err, gerr.Code)
	}
	return err
}
