// Package llm selects a completion provider and wraps it with rate limiting,
// per-call timeouts and transient-error retries.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/bedrock"
	"github.com/sells-group/outreach-cli/pkg/gemini"
	"github.com/sells-group/outreach-cli/pkg/openai"
)

// Completer turns a system and user prompt into model text.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}

// Provider is a Completer bound to one vendor API.
type Provider interface {
	Completer
	Name() string
}

const openAIDefaultModel = "gpt-3.5-turbo"

var defaultModels = map[string]string{
	"openai":    openAIDefaultModel,
	"anthropic": "claude-3-5-haiku-latest",
	"gemini":    "gemini-1.5-flash",
	"bedrock":   "anthropic.claude-3-haiku-20240307-v1:0",
}

// ModelFor returns the configured model, or the provider's default when the
// configured one is empty or is the OpenAI default under another provider.
func ModelFor(cfg config.LLMConfig) string {
	provider := strings.ToLower(cfg.Provider)
	if cfg.Model == "" || (provider != "openai" && cfg.Model == openAIDefaultModel) {
		return defaultModels[provider]
	}
	return cfg.Model
}

// New builds the provider named by cfg.Provider and wraps it.
func New(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	model := ModelFor(cfg)
	var (
		p      Provider
		closer func() error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		p = openai.NewClient(cfg.OpenAIKey, model, cfg.BaseURL)
	case "anthropic":
		p = anthropic.NewClient(cfg.AnthropicKey, model)
	case "gemini":
		g, err := gemini.NewClient(ctx, cfg.GeminiKey, model)
		if err != nil {
			return nil, err
		}
		p, closer = g, g.Close
	case "bedrock":
		b, err := bedrock.NewClient(ctx, cfg.Region, model)
		if err != nil {
			return nil, err
		}
		p = b
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.Provider)
	}

	zap.L().Info("llm: provider ready",
		zap.String("provider", p.Name()),
		zap.String("model", model),
	)
	c := Wrap(p, cfg)
	c.closer = closer
	return c, nil
}

// Client is the wrapped Completer handed to the pipeline.
type Client struct {
	provider Provider
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	timeout  time.Duration
	closer   func() error
}

// Wrap applies the rate limit, timeout and retry settings in cfg to p.
func Wrap(p Provider, cfg config.LLMConfig) *Client {
	c := &Client{
		provider: p,
		retry:    resilience.ForProvider(cfg.MaxRetries, p.Name(), "complete"),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	if cfg.TimeoutSecs > 0 {
		c.timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return c
}

// Name returns the wrapped provider's name.
func (c *Client) Name() string { return c.provider.Name() }

// Complete calls the provider, waiting on the limiter before every attempt
// and retrying transient failures.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", eris.Wrap(err, "llm: limiter wait")
			}
		}
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		return c.provider.Complete(ctx, system, user, maxTokens, temperature)
	})
}

// Close releases provider resources.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
