package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

func fastRetry(c *Client) *Client {
	c.retry.InitialBackoff = time.Millisecond
	c.retry.MaxBackoff = time.Millisecond
	return c
}

func TestClient_PassesArguments(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "sys", "usr", 400, 0.3).Return("ok", nil).Once()

	c := Wrap(p, config.LLMConfig{MaxRetries: 3})
	out, err := c.Complete(context.Background(), "sys", "usr", 400, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "mock", c.Name())
	p.AssertExpectations(t)
}

func TestClient_RetriesTransient(t *testing.T) {
	p := &mockProvider{}
	transient := resilience.NewTransientError(errors.New("overloaded"), 503)
	p.On("Complete", mock.Anything, "", "u", 10, 0.7).Return("", transient).Twice()
	p.On("Complete", mock.Anything, "", "u", 10, 0.7).Return("done", nil).Once()

	c := fastRetry(Wrap(p, config.LLMConfig{MaxRetries: 3}))
	out, err := c.Complete(context.Background(), "", "u", 10, 0.7)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	p.AssertNumberOfCalls(t, "Complete", 3)
}

func TestClient_PermanentNotRetried(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "", "u", 10, 0.7).Return("", errors.New("invalid api key")).Once()

	c := fastRetry(Wrap(p, config.LLMConfig{MaxRetries: 3}))
	_, err := c.Complete(context.Background(), "", "u", 10, 0.7)
	require.Error(t, err)
	p.AssertNumberOfCalls(t, "Complete", 1)
}

func TestClient_RetriesBounded(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "", "u", 10, 0.7).Return("", resilience.NewTransientError(errors.New("busy"), 429))

	c := fastRetry(Wrap(p, config.LLMConfig{MaxRetries: 2}))
	_, err := c.Complete(context.Background(), "", "u", 10, 0.7)
	require.Error(t, err)
	p.AssertNumberOfCalls(t, "Complete", 2)
}

func TestClient_TimeoutApplied(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), "", "u", 10, 0.7).Return("ok", nil).Once()

	c := Wrap(p, config.LLMConfig{TimeoutSecs: 5})
	_, err := c.Complete(context.Background(), "", "u", 10, 0.7)
	require.NoError(t, err)
	p.AssertExpectations(t)
}

func TestClient_RateLimitHonoursCancel(t *testing.T) {
	p := &mockProvider{}
	p.On("Complete", mock.Anything, "", "u", 10, 0.7).Return("ok", nil)

	c := Wrap(p, config.LLMConfig{RequestsPerMinute: 1})
	_, err := c.Complete(context.Background(), "", "u", 10, 0.7)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Complete(ctx, "", "u", 10, 0.7)
	require.Error(t, err)
	p.AssertNumberOfCalls(t, "Complete", 1)
}

func TestModelFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LLMConfig
		want string
	}{
		{"openai default", config.LLMConfig{Provider: "openai", Model: "gpt-3.5-turbo"}, "gpt-3.5-turbo"},
		{"openai custom", config.LLMConfig{Provider: "openai", Model: "gpt-4o"}, "gpt-4o"},
		{"anthropic inherits default", config.LLMConfig{Provider: "anthropic", Model: "gpt-3.5-turbo"}, "claude-3-5-haiku-latest"},
		{"gemini empty", config.LLMConfig{Provider: "Gemini"}, "gemini-1.5-flash"},
		{"bedrock custom", config.LLMConfig{Provider: "bedrock", Model: "anthropic.claude-v2"}, "anthropic.claude-v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelFor(tt.cfg))
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New(context.Background(), config.LLMConfig{Provider: "openai", OpenAIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
	assert.NoError(t, c.Close())

	c, err = New(context.Background(), config.LLMConfig{Provider: "anthropic", AnthropicKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Name())

	_, err = New(context.Background(), config.LLMConfig{Provider: "cohere"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
